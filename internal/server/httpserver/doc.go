// Package httpserver provides the HTTP/HTTPS server for csrfguard.
//
// It uses net/http and serves:
//
//   - Token endpoints: GET /csrf, POST /csrf/verify
//   - Protected sample resource: /api/admin/unit
//   - Admin endpoints: /admin/v1/*
//   - Health endpoints: /health, /ready, /metrics
//
// Middleware chain: Recover, RequestID, Audit, CORS, then per route
// RateLimit, NetworkACL and RequireCSRF.
package httpserver
