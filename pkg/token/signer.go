package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// KeyInfo is the HKDF context string for token signing keys.
// Changing it invalidates every outstanding token.
const KeyInfo = "csrfguard token signing v1"

// KeySize is the size of the derived HMAC key in bytes.
const KeySize = 32

// MACSize is the size of an HMAC-SHA256 tag in bytes.
const MACSize = sha256.Size

// ErrEmptySecret is returned when a signer is built without a secret.
var ErrEmptySecret = errors.New("token: empty signing secret")

// Signer computes and checks HMAC-SHA256 tags under a secret-derived key.
// It is safe for concurrent use.
type Signer struct {
	key []byte
}

// NewSigner derives a signing key from secret with HKDF-SHA256.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(KeyInfo)), key); err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// Sign returns the HMAC-SHA256 tag of msg.
func (s *Signer) Sign(msg []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(msg)
	return mac.Sum(nil)
}

// Verify reports whether tag is the valid tag of msg.
func (s *Signer) Verify(msg, tag []byte) bool {
	return hmac.Equal(s.Sign(msg), tag)
}
