package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Adv1cer/infirmary/internal/core/domain"
	"github.com/Adv1cer/infirmary/internal/core/service"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 16

func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body")
		return false
	}
	return true
}

// handleListUnits handles GET /api/admin/unit.
func (h *Handler) handleListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := h.units.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if units == nil {
		units = []*domain.Unit{}
	}
	h.writeJSON(w, r, http.StatusOK, units)
}

// handleCreateUnit handles POST /api/admin/unit.
func (h *Handler) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUnitRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	unit, err := h.units.Create(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.log(r).Info("unit added", "unit_id", unit.ID, "unit_type", unit.UnitType)
	h.writeJSON(w, r, http.StatusOK, unit)
}

// handleUpdateUnit handles PUT /api/admin/unit.
func (h *Handler) handleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateUnitRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	unit, err := h.units.Update(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.log(r).Info("unit updated", "unit_id", unit.ID, "unit_type", unit.UnitType)
	h.writeJSON(w, r, http.StatusOK, unit)
}

// handleDeleteUnit handles DELETE /api/admin/unit?unit_id=N.
func (h *Handler) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("unit_id")
	if raw == "" {
		h.handleServiceError(w, r, domain.ErrMissingArgument.WithDetails("unit_id is required"))
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.handleServiceError(w, r, domain.ErrInvalidArgument.WithDetails("unit_id must be an integer"))
		return
	}

	if err := h.units.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.log(r).Info("unit deleted", "unit_id", id)
	h.writeRaw(w, r, http.StatusOK, &Response{Success: true, Message: "Unit deleted successfully"})
}
