package handler

import "net/http"

// handleHealth handles GET /health.
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeRaw(w, r, http.StatusOK, HealthResponse{Status: "healthy"})
}

// handleReady handles GET /ready. It fails with 503 while the token store
// is unreachable.
func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.log(r).Warn("readiness check failed", "error", err)
			h.writeRaw(w, r, http.StatusServiceUnavailable, HealthResponse{
				Status: "unavailable",
				Error:  "token store unreachable",
			})
			return
		}
	}
	h.writeRaw(w, r, http.StatusOK, HealthResponse{Status: "healthy"})
}
