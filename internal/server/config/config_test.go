package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Address != DefaultHTTPAddr {
		t.Errorf("HTTP.Address = %q, want %q", cfg.Server.HTTP.Address, DefaultHTTPAddr)
	}
	if cfg.CSRF.TTL != 30*time.Minute {
		t.Errorf("CSRF.TTL = %v, want 30m", cfg.CSRF.TTL)
	}
	if cfg.CSRF.Header != "csrf-token" {
		t.Errorf("CSRF.Header = %q, want csrf-token", cfg.CSRF.Header)
	}
	if cfg.CSRF.Secret != "" {
		t.Error("no secret should be set by default")
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("Storage.Backend = %q, want memory", cfg.Storage.Backend)
	}
	if !cfg.Telemetry.MetricsEnabled {
		t.Error("metrics should be enabled by default")
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, DefaultLogLevel)
	}
	if cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", cfg.Log.Format, DefaultLogFormat)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) = %v", err)
	}
}

func TestResolveSecret(t *testing.T) {
	var c CSRFSection

	secret, fallback := c.ResolveSecret()
	if secret != DevSecret || !fallback {
		t.Errorf("ResolveSecret() = (%q, %v), want (%q, true)", secret, fallback, DevSecret)
	}

	c.Secret = "a-much-longer-production-secret"
	secret, fallback = c.ResolveSecret()
	if secret != c.Secret || fallback {
		t.Errorf("ResolveSecret() = (%q, %v), want configured secret", secret, fallback)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.CSRF.Secret = "super-secret-key-1234567890"
	cfg.Storage.Redis.Password = "redis-pass"

	sanitized := Sanitize(cfg)

	// Original should be unchanged
	if cfg.CSRF.Secret != "super-secret-key-1234567890" {
		t.Error("Original config should not be modified")
	}
	if sanitized.CSRF.Secret == cfg.CSRF.Secret {
		t.Error("Sanitized config should mask the secret")
	}
	if len(sanitized.CSRF.Secret) != len(cfg.CSRF.Secret) {
		t.Errorf("Masked secret length = %d, want %d", len(sanitized.CSRF.Secret), len(cfg.CSRF.Secret))
	}
	if sanitized.Storage.Redis.Password != "re******ss" {
		t.Errorf("Masked redis password = %q", sanitized.Storage.Redis.Password)
	}
}

func TestSanitize_EmptySecret(t *testing.T) {
	sanitized := Sanitize(Default())

	if sanitized.CSRF.Secret != "" {
		t.Error("Empty secret should remain empty")
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"abcdef", "ab**ef"},
		{"1234567890", "12******90"},
	}

	for _, tt := range tests {
		result := maskSecret(tt.input)
		if result != tt.expected {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")
	for _, f := range []string{certFile, keyFile} {
		if err := os.WriteFile(f, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"defaults", func(*ServerConfig) {}, ""},
		{"dev secret accepted", func(c *ServerConfig) { c.CSRF.Secret = DevSecret }, ""},
		{"long secret", func(c *ServerConfig) { c.CSRF.Secret = strings.Repeat("k", 16) }, ""},
		{"short secret", func(c *ServerConfig) { c.CSRF.Secret = "short" }, "csrf.secret"},
		{"empty address", func(c *ServerConfig) { c.Server.HTTP.Address = "" }, "server.http.address"},
		{"bad address", func(c *ServerConfig) { c.Server.HTTP.Address = "no-port" }, "server.http.address"},
		{"cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = certFile }, "together"},
		{"tls pair", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = certFile
			c.Server.HTTP.TLSKeyFile = keyFile
		}, ""},
		{"missing tls file", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = certFile
			c.Server.HTTP.TLSKeyFile = filepath.Join(dir, "absent.pem")
		}, "tls file"},
		{"zero ttl", func(c *ServerConfig) { c.CSRF.TTL = 0 }, "csrf.ttl"},
		{"empty header", func(c *ServerConfig) { c.CSRF.Header = " " }, "csrf.header"},
		{"negative sweep", func(c *ServerConfig) { c.CSRF.SweepInterval = -time.Second }, "sweep_interval"},
		{"sweep disabled", func(c *ServerConfig) { c.CSRF.SweepInterval = 0 }, ""},
		{"redis backend", func(c *ServerConfig) { c.Storage.Backend = "redis" }, ""},
		{"redis without address", func(c *ServerConfig) {
			c.Storage.Backend = "redis"
			c.Storage.Redis.Address = ""
		}, "storage.redis.address"},
		{"unknown backend", func(c *ServerConfig) { c.Storage.Backend = "badger" }, "storage.backend"},
		{"negative rps", func(c *ServerConfig) { c.Security.RateLimit.RPS = -1 }, "rate_limit.rps"},
		{"zero burst", func(c *ServerConfig) { c.Security.RateLimit.Burst = 0 }, "rate_limit.burst"},
		{"limiter disabled", func(c *ServerConfig) {
			c.Security.RateLimit.RPS = 0
			c.Security.RateLimit.Burst = 0
		}, ""},
		{"allow list", func(c *ServerConfig) {
			c.Security.AdminAllowList = []string{"10.0.0.0/8", "192.168.1.5", "::1"}
		}, ""},
		{"bad allow list", func(c *ServerConfig) {
			c.Security.AdminAllowList = []string{"not-an-ip"}
		}, "admin_allow_list"},
		{"bad log level", func(c *ServerConfig) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Verify() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Verify() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
