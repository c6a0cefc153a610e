// Package domain defines the core models of the CSRF guard.
//
// Domain models are plain values without IO dependencies:
//
//   - Token: signed one-time token format, digests and masking
//   - Record: an outstanding token and its issuance time
//   - Unit: medicine unit type, the sample resource behind the guard
//   - Errors: coded domain errors
package domain
