package handlers

import (
	"net/http"

	"github.com/benx421/bankmt/internal/api"
)

// GetAdvice handles POST /api/v1/advice
func (h *Handler) GetAdvice(w http.ResponseWriter, r *http.Request) {
	session, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	advice, err := h.advisor.Advise(r.Context(), session)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	api.WriteJSON(w, http.StatusOK, api.AdviceResponse{Advice: advice})
}
