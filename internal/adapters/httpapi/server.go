// Package httpapi exposes the dispatch core over HTTP: fare quotes, auction
// control, bid placement and the courier endpoints. Routing uses gorilla/mux;
// domain error kinds map onto status codes in writeError.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/localbite-davis/localbite/internal/application/agents"
	"github.com/localbite-davis/localbite/internal/application/bids"
	"github.com/localbite-davis/localbite/internal/application/dispatch"
	"github.com/localbite-davis/localbite/internal/application/feed"
	"github.com/localbite-davis/localbite/internal/domain"
	"github.com/localbite-davis/localbite/internal/ports"
	"golang.org/x/time/rate"
)

// Server holds the wired services behind the HTTP surface.
type Server struct {
	store    ports.OrderStore
	dispatch ports.DispatchStore
	bids     *bids.Service
	engine   *dispatch.Engine
	feed     *feed.Service
	agents   *agents.Service
	params   dispatch.Params
	bidLimit *rate.Limiter
	log      *slog.Logger
}

// NewServer wires the HTTP surface over the application services.
func NewServer(
	store ports.OrderStore,
	dispatchStore ports.DispatchStore,
	bidSvc *bids.Service,
	engine *dispatch.Engine,
	feedSvc *feed.Service,
	agentSvc *agents.Service,
	params dispatch.Params,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		store:    store,
		dispatch: dispatchStore,
		bids:     bidSvc,
		engine:   engine,
		feed:     feedSvc,
		agents:   agentSvc,
		params:   params,
		// Burst-friendly cap on bid placement; auctions invite thundering herds.
		bidLimit: rate.NewLimiter(rate.Limit(50), 100),
		log:      log,
	}
}

// Handler builds the router with all routes and middleware attached.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestID, s.logRequests)

	r.HandleFunc("/healthz", s.handleHealthz).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/fares/recommendation", s.handleFareRecommendation).Methods(http.MethodPost)

	api.HandleFunc("/dispatch/orders/{order_id}/start", s.handleDispatchStart).Methods(http.MethodPost)
	api.HandleFunc("/dispatch/orders/{order_id}/status", s.handleDispatchStatus).Methods(http.MethodGet)
	api.HandleFunc("/dispatch/agents/{agent_id}/available", s.handleAgentFeed).Methods(http.MethodGet)

	api.Handle("/delivery-bids/", s.rateLimited(s.handlePlaceBid)).Methods(http.MethodPost)
	api.HandleFunc("/delivery-bids/{bid_id}/accept", s.handleAcceptBid).Methods(http.MethodPost)
	api.HandleFunc("/delivery-bids/orders/{order_id}/auto-award", s.handleAutoAward).Methods(http.MethodPost)
	api.HandleFunc("/delivery-bids/orders/{order_id}", s.handleListBidsByOrder).Methods(http.MethodGet)
	api.HandleFunc("/delivery-bids/agents/{agent_id}", s.handleListBidsByAgent).Methods(http.MethodGet)

	api.HandleFunc("/delivery-agents/", s.handleRegisterAgent).Methods(http.MethodPost)
	api.HandleFunc("/delivery-agents/{agent_id}", s.handleGetAgent).Methods(http.MethodGet)
	api.HandleFunc("/delivery-agents/{agent_id}/orders/{order_id}/fulfill", s.handleFulfill).Methods(http.MethodPost)
	api.HandleFunc("/delivery-agents/{agent_id}/active-orders", s.handleActiveOrders).Methods(http.MethodGet)

	api.HandleFunc("/orders/", s.handleCreateOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{order_id}", s.handleGetOrder).Methods(http.MethodGet)

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathInt64 parses a numeric path variable.
func pathInt64(r *http.Request, name string) (int64, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.InvalidInputf("%s must be an integer, got %q", name, raw)
	}
	return v, nil
}

func pathString(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return domain.InvalidInputf("invalid request body: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// bidWindowBody is the 422 payload agents use to correct their bid.
type bidWindowBody struct {
	Message            string  `json:"message"`
	MinAllowedFare     float64 `json:"min_allowed_fare"`
	MaxAllowedFare     float64 `json:"max_allowed_fare"`
	SubmittedBidAmount float64 `json:"submitted_bid_amount"`
}

// writeError maps domain errors onto HTTP responses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var bw *domain.BidWindowError
	if errors.As(err, &bw) {
		writeJSON(w, http.StatusUnprocessableEntity, bidWindowBody{
			Message:            bw.Error(),
			MinAllowedFare:     bw.MinAllowedFare,
			MaxAllowedFare:     bw.MaxAllowedFare,
			SubmittedBidAmount: bw.SubmittedBidAmount,
		})
		return
	}

	status := http.StatusInternalServerError
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindInvalidInput:
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, status, map[string]string{"detail": "internal server error"})
		return
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}
