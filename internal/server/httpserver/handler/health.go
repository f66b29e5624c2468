package handler

import (
	"net/http"
	"time"

	"github.com/yndnr/pushmesh-go/internal/core/domain"
)

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, _ := h.registry.Count()
	h.writeJSON(w, r, http.StatusOK, "OK", HealthResponse{
		Status:      "healthy",
		Version:     h.version,
		Connections: n,
		Time:        time.Now().UTC().Format(time.RFC3339),
	})
}

// handleReady handles GET /ready. The relay stops being ready once the
// connection registry is closed for shutdown.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.registry.Closed() {
		h.writeError(w, r, http.StatusServiceUnavailable, domain.ErrRegistryUnavailable.Code, "not ready", "shutting down")
		return
	}
	h.writeJSON(w, r, http.StatusOK, "ready", map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
