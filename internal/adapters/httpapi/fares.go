package httpapi

import (
	"net/http"

	"github.com/localbite-davis/localbite/internal/domain"
)

func (s *Server) handleFareRecommendation(w http.ResponseWriter, r *http.Request) {
	var req domain.FareRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := domain.RecommendFare(req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
