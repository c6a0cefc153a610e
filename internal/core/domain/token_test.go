package domain

import (
	"strings"
	"testing"

	"github.com/Adv1cer/infirmary/pkg/token"
)

func newTestSigner(t *testing.T) *token.Signer {
	t.Helper()
	s, err := token.NewSigner([]byte("test-secret-0123456789"))
	if err != nil {
		t.Fatalf("NewSigner() error = %v", err)
	}
	return s
}

func TestNewToken_Format(t *testing.T) {
	signer := newTestSigner(t)

	tok, err := NewToken(signer)
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}

	if len(tok) != TokenLength {
		t.Errorf("len = %d, want %d", len(tok), TokenLength)
	}
	if !strings.HasPrefix(tok, TokenPrefix) {
		t.Errorf("token %q missing prefix", tok)
	}
	if strings.Count(tok, TokenSeparator) != 1 {
		t.Errorf("token %q should contain exactly one separator", tok)
	}
	if !ValidateTokenFormat(tok) {
		t.Error("ValidateTokenFormat() rejected a fresh token")
	}
	if !VerifyToken(signer, tok) {
		t.Error("VerifyToken() rejected a fresh token")
	}
}

func TestNewToken_Distinct(t *testing.T) {
	signer := newTestSigner(t)
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		tok, err := NewToken(signer)
		if err != nil {
			t.Fatalf("NewToken() error = %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true
	}
}

func TestVerifyToken_Rejects(t *testing.T) {
	signer := newTestSigner(t)
	tok, _ := NewToken(signer)

	other, _ := token.NewSigner([]byte("a-different-secret"))

	flip := func(s string, i int) string {
		b := []byte(s)
		if b[i] == 'A' {
			b[i] = 'B'
		} else {
			b[i] = 'A'
		}
		return string(b)
	}

	tests := []struct {
		name  string
		value string
		s     *token.Signer
	}{
		{"empty", "", signer},
		{"wrong prefix", "xyz_" + tok[len(TokenPrefix):], signer},
		{"truncated", tok[:len(tok)-1], signer},
		{"flipped salt", flip(tok, len(TokenPrefix)+1), signer},
		{"flipped mac", flip(tok, len(tok)-2), signer},
		{"other secret", tok, other},
		{"no separator", strings.Replace(tok, TokenSeparator, "A", 1), signer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifyToken(tt.s, tt.value) {
				t.Errorf("VerifyToken(%q) = true, want false", tt.value)
			}
		})
	}
}

func TestDigestToken(t *testing.T) {
	d := DigestToken("cgt_abc")
	if len(d) != TokenDigestLength {
		t.Errorf("len = %d, want %d", len(d), TokenDigestLength)
	}
	if !strings.HasPrefix(d, TokenDigestPrefix) {
		t.Errorf("digest %q missing prefix", d)
	}
	if d != DigestToken("cgt_abc") {
		t.Error("DigestToken() is not deterministic")
	}
	if d == DigestToken("cgt_abd") {
		t.Error("one-character change must change the digest")
	}
}

func TestMaskToken(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"short", "***"},
		{"cgt_abcdefgh.xyz", "cgt_abcd***"},
		{"plainvalue123", "plai***"},
	}
	for _, tt := range tests {
		if got := MaskToken(tt.in); got != tt.want {
			t.Errorf("MaskToken(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
