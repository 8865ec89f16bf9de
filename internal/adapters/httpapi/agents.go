package httpapi

import (
	"net/http"

	"github.com/localbite-davis/localbite/internal/domain"
)

func (s *Server) handleRegisterAgent(w http.ResponseWriter, r *http.Request) {
	var agent domain.DeliveryAgent
	if err := decodeJSON(r, &agent); err != nil {
		s.writeError(w, r, err)
		return
	}

	created, err := s.agents.Register(r.Context(), agent)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := s.agents.Get(r.Context(), pathString(r, "agent_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, agent)
}

// fulfillRequest carries the delivery proof. The photo is referenced, not
// embedded; uploads land in object storage upstream of this API.
type fulfillRequest struct {
	ProofPhotoRef      string `json:"proof_photo_ref"`
	ProofPhotoFilename string `json:"proof_photo_filename,omitempty"`
}

func (s *Server) handleFulfill(w http.ResponseWriter, r *http.Request) {
	agentID := pathString(r, "agent_id")
	orderID, err := pathInt64(r, "order_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req fulfillRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.ProofPhotoRef == "" {
		s.writeError(w, r, domain.InvalidInputf("proof_photo_ref is required"))
		return
	}

	ledger, err := s.agents.Fulfill(r.Context(), agentID, orderID, req.ProofPhotoRef, req.ProofPhotoFilename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledger)
}

func (s *Server) handleActiveOrders(w http.ResponseWriter, r *http.Request) {
	resp, err := s.agents.ActiveOrders(r.Context(), pathString(r, "agent_id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
