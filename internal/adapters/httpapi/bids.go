package httpapi

import (
	"net/http"

	"github.com/localbite-davis/localbite/internal/application/bids"
)

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	var req bids.PlaceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	bid, err := s.bids.Place(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bid)
}

func (s *Server) handleAcceptBid(w http.ResponseWriter, r *http.Request) {
	bidID, err := pathInt64(r, "bid_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	bid, err := s.bids.Award(r.Context(), bidID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

func (s *Server) handleAutoAward(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt64(r, "order_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	bid, err := s.bids.AutoAward(r.Context(), orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bid)
}

func (s *Server) handleListBidsByOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt64(r, "order_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	list, err := s.bids.ListByOrder(r.Context(), orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleListBidsByAgent(w http.ResponseWriter, r *http.Request) {
	list, err := s.bids.ListByAgent(r.Context(), pathString(r, "agent_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
