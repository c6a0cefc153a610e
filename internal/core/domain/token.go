package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"github.com/Adv1cer/infirmary/pkg/token"
)

// Token format: cgt_<salt>.<mac>
//
// salt is TokenSaltBytes random bytes and mac is HMAC-SHA256 over the
// encoded salt, both Base64 RawURL. The separator is outside the Base64
// RawURL alphabet, so a token splits unambiguously.
const (
	// TokenPrefix marks CSRF tokens; log redaction keys on it.
	TokenPrefix = "cgt_"

	// TokenDigestPrefix marks digests used as store keys.
	TokenDigestPrefix = "cgd_"

	// TokenSeparator joins salt and MAC.
	TokenSeparator = "."

	// TokenSaltBytes is the number of random bytes per token.
	TokenSaltBytes = 16

	// TokenSaltLength is the encoded salt length (16 bytes -> 22 chars).
	TokenSaltLength = 22

	// TokenMACLength is the encoded MAC length (32 bytes -> 43 chars).
	TokenMACLength = 43

	// TokenLength is the total token length.
	TokenLength = len(TokenPrefix) + TokenSaltLength + len(TokenSeparator) + TokenMACLength

	// TokenDigestLength is the total digest length (prefix + hex SHA-256).
	TokenDigestLength = len(TokenDigestPrefix) + 64
)

// NewToken generates a fresh signed token.
func NewToken(signer *token.Signer) (string, error) {
	salt, err := token.GenerateWithLength(TokenSaltBytes)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}

	mac := base64.RawURLEncoding.EncodeToString(signer.Sign([]byte(salt)))
	return TokenPrefix + salt + TokenSeparator + mac, nil
}

// VerifyToken reports whether value is well formed and carries a valid MAC.
func VerifyToken(signer *token.Signer, value string) bool {
	salt, mac, ok := splitToken(value)
	if !ok {
		return false
	}

	tag, err := base64.RawURLEncoding.Strict().DecodeString(mac)
	if err != nil {
		return false
	}
	return signer.Verify([]byte(salt), tag)
}

// ValidateTokenFormat checks prefix, lengths and encoding without verifying the MAC.
func ValidateTokenFormat(value string) bool {
	salt, mac, ok := splitToken(value)
	if !ok {
		return false
	}
	if _, err := base64.RawURLEncoding.DecodeString(salt); err != nil {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(mac)
	return err == nil
}

func splitToken(value string) (salt, mac string, ok bool) {
	if len(value) != TokenLength || !strings.HasPrefix(value, TokenPrefix) {
		return "", "", false
	}
	body := value[len(TokenPrefix):]
	salt, mac, ok = strings.Cut(body, TokenSeparator)
	if !ok || len(salt) != TokenSaltLength || len(mac) != TokenMACLength {
		return "", "", false
	}
	return salt, mac, true
}

// DigestToken returns the store key for a token value: cgd_{hex sha256}.
// Any byte change in value yields a different digest.
func DigestToken(value string) string {
	h := sha256.Sum256([]byte(value))
	return TokenDigestPrefix + hex.EncodeToString(h[:])
}

// MaskToken shortens a token for logs, keeping only the prefix and the
// first characters of the salt.
func MaskToken(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= len(TokenPrefix)+4 {
		return "***"
	}
	if strings.HasPrefix(value, TokenPrefix) {
		return value[:len(TokenPrefix)+4] + "***"
	}
	return value[:4] + "***"
}
