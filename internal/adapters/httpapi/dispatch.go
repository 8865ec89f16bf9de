package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/localbite-davis/localbite/internal/domain"
)

// dispatchStartRequest lets the caller override the auction timings; zero
// fields fall back to the configured defaults.
type dispatchStartRequest struct {
	DeliveryAddress      string `json:"delivery_address"`
	Phase1WaitSecondsMin int    `json:"phase1_wait_seconds_min,omitempty"`
	Phase1WaitSecondsMax int    `json:"phase1_wait_seconds_max,omitempty"`
	Phase2WaitSeconds    int    `json:"phase2_wait_seconds,omitempty"`
	PollIntervalSeconds  int    `json:"poll_interval_seconds,omitempty"`
}

type dispatchStartResponse struct {
	OrderID              int64  `json:"order_id"`
	DispatchStarted      bool   `json:"dispatch_started"`
	Status               string `json:"status"`
	Phase                string `json:"phase"`
	Phase1WaitSecondsMin int    `json:"phase1_wait_seconds_min"`
	Phase1WaitSecondsMax int    `json:"phase1_wait_seconds_max"`
	Phase2WaitSeconds    int    `json:"phase2_wait_seconds"`
	PollIntervalSeconds  int    `json:"poll_interval_seconds"`
	Message              string `json:"message"`
}

func (s *Server) handleDispatchStart(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt64(r, "order_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req dispatchStartRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.DeliveryAddress == "" {
		s.writeError(w, r, domain.InvalidInputf("delivery_address is required"))
		return
	}

	order, err := s.store.GetOrder(r.Context(), orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if order.IsAssigned() {
		s.writeError(w, r, domain.Conflictf("order %d is already assigned", order.OrderID))
		return
	}

	params := s.params
	if req.Phase1WaitSecondsMin > 0 {
		params.Phase1WaitMin = time.Duration(req.Phase1WaitSecondsMin) * time.Second
	}
	if req.Phase1WaitSecondsMax > 0 {
		params.Phase1WaitMax = time.Duration(req.Phase1WaitSecondsMax) * time.Second
	}
	if req.Phase2WaitSeconds > 0 {
		params.Phase2Wait = time.Duration(req.Phase2WaitSeconds) * time.Second
	}
	if req.PollIntervalSeconds > 0 {
		params.PollInterval = time.Duration(req.PollIntervalSeconds) * time.Second
	}

	started := s.engine.Start(order, req.DeliveryAddress, params)
	resp := dispatchStartResponse{
		OrderID:              orderID,
		DispatchStarted:      started,
		Status:               "accepted",
		Phase:                string(domain.DispatchPhaseStudentPool),
		Phase1WaitSecondsMin: int(params.Phase1WaitMin.Seconds()),
		Phase1WaitSecondsMax: int(params.Phase1WaitMax.Seconds()),
		Phase2WaitSeconds:    int(params.Phase2Wait.Seconds()),
		PollIntervalSeconds:  int(params.PollInterval.Seconds()),
		Message:              "Two-phase dispatch started",
	}
	if !started {
		resp.Status = "already_running"
		resp.Phase = "existing"
		resp.Message = "Dispatch already running for this order"
	}
	writeJSON(w, http.StatusAccepted, resp)
}

type dispatchStatusResponse struct {
	OrderID           int64  `json:"order_id"`
	IsRunning         bool   `json:"is_running"`
	Status            string `json:"status"`
	Phase             string `json:"phase"`
	RestaurantID      *int64 `json:"restaurant_id,omitempty"`
	DeliveryAddress   string `json:"delivery_address,omitempty"`
	Phase1WaitSeconds *int   `json:"phase1_wait_seconds,omitempty"`
	Phase2WaitSeconds *int   `json:"phase2_wait_seconds,omitempty"`
	Note              string `json:"note,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
}

func (s *Server) handleDispatchStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := pathInt64(r, "order_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	running := s.engine.Running(orderID)
	state, found, err := s.dispatch.GetState(r.Context(), orderID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, dispatchStatusResponse{
			OrderID:   orderID,
			IsRunning: running,
			Status:    string(domain.DispatchNotStarted),
			Phase:     string(domain.DispatchPhaseNone),
		})
		return
	}

	resp := dispatchStatusResponse{
		OrderID:         orderID,
		IsRunning:       running,
		Status:          string(state.Status),
		Phase:           string(state.Phase),
		DeliveryAddress: state.DeliveryAddress,
		Note:            state.Note,
	}
	if state.RestaurantID != 0 {
		resp.RestaurantID = &state.RestaurantID
	}
	if state.Phase1WaitSeconds != 0 {
		resp.Phase1WaitSeconds = &state.Phase1WaitSeconds
	}
	if state.Phase2WaitSeconds != 0 {
		resp.Phase2WaitSeconds = &state.Phase2WaitSeconds
	}
	if !state.UpdatedAt.IsZero() {
		resp.UpdatedAt = state.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAgentFeed(w http.ResponseWriter, r *http.Request) {
	agentID := pathString(r, "agent_id")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			s.writeError(w, r, domain.InvalidInputf("limit must be a positive integer"))
			return
		}
		limit = v
	}

	resp, err := s.feed.AvailableForAgent(r.Context(), agentID, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
