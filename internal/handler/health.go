package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/signalry/triage-console/internal/upstream"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	client *upstream.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(client *upstream.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready: ready only when the upstream answers.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.client.Stats(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "signalry API unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
