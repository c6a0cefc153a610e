package token

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultLength is the default number of random bytes.
const DefaultLength = 16

// Generate returns DefaultLength random bytes encoded as Base64 RawURL.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength returns length random bytes encoded as Base64 RawURL.
func GenerateWithLength(length int) (string, error) {
	b, err := GenerateBytes(length)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateBytes generates random bytes.
func GenerateBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
