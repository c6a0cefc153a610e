// Package main provides the entry point for csrfguard-server.
//
// The server issues single-use CSRF tokens on GET /csrf and consumes them
// on every mutating route. Tokens live in memory or, for multi-instance
// deployments, in Redis.
//
// Usage:
//
//	csrfguard-server [flags]
//	csrfguard-server -config /etc/csrfguard/config.yaml
//
// CSRF_SECRET sets the signing secret, as does CSRFGUARD_CSRF_SECRET,
// which wins when both are present.
package main
