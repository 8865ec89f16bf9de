package httpapi

import (
	"net/http"

	"github.com/localbite-davis/localbite/internal/domain"
)

// createOrderRequest is the minimal order intake the dispatch core needs.
// The base fare normally comes from a fare recommendation; a missing value
// is recomputed from the provided distance.
type createOrderRequest struct {
	UserID       int64              `json:"user_id"`
	RestaurantID int64              `json:"restaurant_id"`
	OrderItems   []domain.OrderItem `json:"order_items"`
	BaseFare     float64            `json:"base_fare"`
	DistanceKM   *float64           `json:"distance_km,omitempty"`
}

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.RestaurantID == 0 {
		s.writeError(w, r, domain.InvalidInputf("restaurant_id is required"))
		return
	}

	baseFare := req.BaseFare
	if baseFare == 0 {
		if req.DistanceKM == nil {
			s.writeError(w, r, domain.InvalidInputf("either base_fare or distance_km is required"))
			return
		}
		rec, err := domain.RecommendFare(domain.FareRequest{DistanceKM: req.DistanceKM})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		baseFare = rec.BaseFare
	}

	order := domain.Order{
		UserID:            req.UserID,
		RestaurantID:      req.RestaurantID,
		OrderItems:        req.OrderItems,
		BaseFare:          domain.Round2(baseFare),
		OrderStatus:       domain.OrderStatusPending,
		AgentPayoutStatus: domain.PayoutStatusPending,
	}
	if err := s.store.CreateOrder(r.Context(), &order); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt64(r, "order_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	order, err := s.store.GetOrder(r.Context(), orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}
