// Package connection provides the HTTP client used by csrfguard-cli.
//
// Mutating calls fetch a fresh CSRF token from GET /csrf, send it in the
// token header, and retry once with a new token if the server rejects it.
package connection
