package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/Adv1cer/infirmary/internal/core/domain"
	"github.com/Adv1cer/infirmary/internal/core/service"
	"github.com/Adv1cer/infirmary/internal/telemetry/logger"
)

// Config holds handler dependencies.
type Config struct {
	Guard *service.GuardService
	Units *service.UnitService

	// Ready reports whether the token store is reachable. Nil means always ready.
	Ready func(ctx context.Context) error

	// Backend is the storage backend name shown in the status summary.
	Backend string

	Logger logger.Logger
}

// Handler is the main HTTP handler that routes requests to appropriate handlers.
type Handler struct {
	guard      *service.GuardService
	units      *service.UnitService
	ready      func(ctx context.Context) error
	backend    string
	instanceID string
	logger     logger.Logger
	mux        *http.ServeMux
}

// New creates a new Handler.
func New(cfg Config) *Handler {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	h := &Handler{
		guard:      cfg.Guard,
		units:      cfg.Units,
		ready:      cfg.Ready,
		backend:    cfg.Backend,
		instanceID: uuid.NewString(),
		logger:     cfg.Logger,
		mux:        http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// InstanceID returns the per-process identifier reported by the status summary.
func (h *Handler) InstanceID() string {
	return h.instanceID
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("GET /csrf", h.handleIssueToken)
	h.mux.HandleFunc("POST /csrf/verify", h.handleVerifyToken)

	h.mux.HandleFunc("GET /api/admin/unit", h.handleListUnits)
	h.mux.HandleFunc("POST /api/admin/unit", h.handleCreateUnit)
	h.mux.HandleFunc("PUT /api/admin/unit", h.handleUpdateUnit)
	h.mux.HandleFunc("DELETE /api/admin/unit", h.handleDeleteUnit)

	h.mux.HandleFunc("GET /admin/v1/status/summary", h.handleAdminStatus)
	h.mux.HandleFunc("POST /admin/v1/gc/trigger", h.handleGCTrigger)
}

func (h *Handler) log(r *http.Request) logger.Logger {
	if id := logger.RequestIDFromContext(r.Context()); id != "" {
		return h.logger.With("request_id", id)
	}
	return h.logger
}

// writeRaw writes v as JSON without the envelope.
func (h *Handler) writeRaw(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log(r).Error("failed to encode response", "error", err)
	}
}

// writeJSON writes a success envelope.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	h.writeRaw(w, r, status, NewResponse(logger.RequestIDFromContext(r.Context()), data))
}

// writeError writes an error envelope.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	w.Header().Set("X-Error-Code", code)
	h.writeRaw(w, r, status, NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message))
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var de *domain.DomainError
	if asDomainError(err, &de) && de.Code != domain.ErrInternalServer.Code && de.Code != domain.ErrStorageError.Code {
		msg := de.Message
		if de.Details != "" {
			msg += ": " + de.Details
		}
		h.writeError(w, r, errorCodeToHTTPStatus(de.Code), de.Code, msg)
		return
	}

	code := domain.ErrInternalServer.Code
	if de != nil {
		code = de.Code
	}
	h.log(r).Error("internal error", "error", err)
	h.writeError(w, r, http.StatusInternalServerError, code, "internal server error")
}

// errorCodeToHTTPStatus maps an error code to its HTTP status. The numeric
// part of a code is the status followed by one discriminator digit:
// CG-DATA-4040 is 404, CG-SYS-5030 is 503.
func errorCodeToHTTPStatus(code string) int {
	if len(code) < 4 {
		return http.StatusInternalServerError
	}
	n, err := strconv.Atoi(code[len(code)-4:])
	if err != nil {
		return http.StatusInternalServerError
	}
	status := n / 10
	if status < 400 || status > 599 || http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}
