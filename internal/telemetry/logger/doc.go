// Package logger provides structured logging for the CSRF guard.
//
// It wraps log/slog:
//
//   - logger.go: Logger interface, handler construction, global level
//   - context.go: request-scoped loggers and request IDs
//   - redact.go: masking of secrets and CSRF token values
//
// CSRF tokens (cgt_ prefix) are masked wherever they appear as string
// attribute values. Attributes whose key names look sensitive are fully
// redacted.
package logger
