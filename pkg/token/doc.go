// Package token provides the cryptographic primitives behind CSRF tokens.
//
// Random material comes from crypto/rand and is encoded with Base64
// RawURL. Tokens are authenticated with HMAC-SHA256 under a key derived
// from the configured secret with HKDF-SHA256, so the operator-supplied
// secret is never used directly as a MAC key.
//
// Comparisons of MACs and digests are constant time.
package token
