package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes follow the pattern CG-<FAMILY>-<NNNN>, where the first digit group
// mirrors the HTTP status class the error maps to.
type DomainError struct {
	Code    string // Error code (e.g., "CG-CSRF-4002")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// Wrap wraps an error with this domain error as the cause.
func (e *DomainError) Wrap(cause error) *DomainError {
	return e.WithCause(cause)
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// CSRF Token Errors (CSRF)
// ============================================================================

var (
	// ErrTokenMissing indicates the request carried no token.
	ErrTokenMissing = NewDomainError("CG-CSRF-4001", "csrf token missing")

	// ErrTokenUnknown indicates the token is not outstanding: never issued,
	// already consumed, swept, or a modified copy of a real token.
	ErrTokenUnknown = NewDomainError("CG-CSRF-4002", "csrf token unknown or consumed")

	// ErrTokenExpired indicates the token was found but is older than the TTL.
	ErrTokenExpired = NewDomainError("CG-CSRF-4003", "csrf token expired")

	// ErrTokenSignatureInvalid indicates the token was found but its MAC does not verify.
	ErrTokenSignatureInvalid = NewDomainError("CG-CSRF-4004", "csrf token signature invalid")

	// ErrTokenRejected is the only token error exposed to callers. Every
	// token failure above is reported to clients as this one.
	ErrTokenRejected = NewDomainError("CG-CSRF-4030", "Invalid or used CSRF Token")

	// ErrTokenConflict indicates a freshly generated token collided with an outstanding one.
	ErrTokenConflict = NewDomainError("CG-CSRF-4090", "csrf token conflict")
)

// IsTokenError reports whether err is one of the token validation failures.
func IsTokenError(err error) bool {
	switch GetErrorCode(err) {
	case ErrTokenMissing.Code, ErrTokenUnknown.Code, ErrTokenExpired.Code,
		ErrTokenSignatureInvalid.Code, ErrTokenRejected.Code:
		return true
	}
	return false
}

// ============================================================================
// Unit Errors (DATA)
// ============================================================================

var (
	// ErrUnitNotFound indicates the requested medicine unit does not exist.
	ErrUnitNotFound = NewDomainError("CG-DATA-4040", "unit not found")

	// ErrUnitConflict indicates a unit with the same type already exists.
	ErrUnitConflict = NewDomainError("CG-DATA-4000", "unit type already exists")
)

// ============================================================================
// Access Errors (AUTH)
// ============================================================================

var (
	// ErrIPNotAllowed indicates the client IP is not in the admin allowlist.
	ErrIPNotAllowed = NewDomainError("CG-AUTH-4031", "ip not in allowlist")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("CG-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("CG-SYS-5001", "storage error")

	// ErrServiceUnavailable indicates the service or its backing store is unavailable.
	ErrServiceUnavailable = NewDomainError("CG-SYS-5030", "service unavailable")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("CG-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("CG-SYS-4290", "too many requests")

	// ErrRouteNotFound indicates no endpoint serves the requested path.
	ErrRouteNotFound = NewDomainError("CG-SYS-4040", "route not found")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("CG-ARG-4000", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("CG-ARG-4001", "missing required argument")
)
