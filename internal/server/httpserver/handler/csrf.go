package handler

import "net/http"

// handleIssueToken handles GET /csrf.
func (h *Handler) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	resp, err := h.guard.Issue(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	h.writeRaw(w, r, http.StatusOK, IssueTokenResponse{
		CSRFToken: resp.Token,
		ExpiresAt: resp.ExpiresAt.UnixMilli(),
	})
}

// handleVerifyToken handles POST /csrf/verify. RequireCSRF has already
// consumed the token when this runs, so reaching it means the token was valid.
func (h *Handler) handleVerifyToken(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, VerifyTokenResponse{Valid: true})
}
