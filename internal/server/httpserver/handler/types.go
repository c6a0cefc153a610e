package handler

import (
	"errors"

	"github.com/Adv1cer/infirmary/internal/core/domain"
)

// Response is the standard API response envelope.
//
//	{"success":true,"data":{...}}
//	{"success":false,"error":"unit not found","code":"CG-DATA-4040"}
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Success:   true,
		Data:      data,
		RequestID: requestID,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string) *Response {
	return &Response{
		Success:   false,
		Error:     message,
		Code:      code,
		RequestID: requestID,
	}
}

// IssueTokenResponse is the body of GET /csrf.
type IssueTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
	ExpiresAt int64  `json:"expires_at"`
}

// VerifyTokenResponse is the data of POST /csrf/verify.
type VerifyTokenResponse struct {
	Valid bool `json:"valid"`
}

// HealthResponse is the body of GET /health and GET /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusSummary is the data of GET /admin/v1/status/summary.
type StatusSummary struct {
	Status            string `json:"status"`
	InstanceID        string `json:"instance_id"`
	Version           string `json:"version"`
	Commit            string `json:"commit"`
	UptimeSeconds     int64  `json:"uptime_seconds"`
	StorageBackend    string `json:"storage_backend"`
	OutstandingTokens int    `json:"outstanding_tokens"`
	TokenTTLSeconds   int64  `json:"token_ttl_seconds"`
	Time              string `json:"time"`
}

// GCResponse is the data of POST /admin/v1/gc/trigger.
type GCResponse struct {
	ExpiredCount int    `json:"expired_count"`
	TriggeredAt  string `json:"triggered_at"`
}

func asDomainError(err error, target **domain.DomainError) bool {
	return errors.As(err, target)
}
