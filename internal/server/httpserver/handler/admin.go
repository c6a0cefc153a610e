package handler

import (
	"net/http"
	"time"

	"github.com/Adv1cer/infirmary/internal/infra/buildinfo"
)

// handleAdminStatus handles GET /admin/v1/status/summary.
func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := h.guard.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	info := buildinfo.Get()
	h.writeJSON(w, r, http.StatusOK, StatusSummary{
		Status:            "running",
		InstanceID:        h.instanceID,
		Version:           info.Version,
		Commit:            info.Commit,
		UptimeSeconds:     int64(buildinfo.Uptime().Seconds()),
		StorageBackend:    h.backend,
		OutstandingTokens: stats.Outstanding,
		TokenTTLSeconds:   int64(stats.TTL.Seconds()),
		Time:              time.Now().UTC().Format(time.RFC3339),
	})
}

// handleGCTrigger handles POST /admin/v1/gc/trigger.
func (h *Handler) handleGCTrigger(w http.ResponseWriter, r *http.Request) {
	n, err := h.guard.Sweep(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.log(r).Info("manual sweep completed", "expired_count", n)
	h.writeJSON(w, r, http.StatusOK, GCResponse{
		ExpiredCount: n,
		TriggeredAt:  time.Now().UTC().Format(time.RFC3339),
	})
}
