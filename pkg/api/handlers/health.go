package handlers

import (
	"net/http"

	"github.com/abiiranathan/lexicon-sub000/internal/logger"
)

type healthResponse struct {
	Status string `json:"status"`
}

// Health serves GET /health. Healthy means the store answers a ping.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		logger.Warn("health check failed", logger.Err(err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
