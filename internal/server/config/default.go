package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr     = "127.0.0.1:5080"
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 10 * time.Second

	// DevSecret is used when no secret is configured. It is only fit for
	// local development.
	DevSecret            = "secret"
	DefaultTokenTTL      = 30 * time.Minute
	DefaultCSRFHeader    = "csrf-token"
	DefaultSweepInterval = time.Minute

	DefaultStorageBackend = "memory"
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultRedisKeyPrefix = "csrfguard:token"

	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Address:      DefaultHTTPAddr,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
			},
		},
		CSRF: CSRFSection{
			TTL:           DefaultTokenTTL,
			Header:        DefaultCSRFHeader,
			SweepInterval: DefaultSweepInterval,
		},
		Storage: StorageSection{
			Backend: DefaultStorageBackend,
			Redis: RedisStorageConfig{
				Address:   DefaultRedisAddr,
				KeyPrefix: DefaultRedisKeyPrefix,
			},
		},
		Security: SecuritySection{
			RateLimit: RateLimitConfig{
				RPS:   DefaultRateLimitRPS,
				Burst: DefaultRateLimitBurst,
			},
		},
		Telemetry: TelemetrySection{
			MetricsEnabled: true,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// ResolveSecret returns the configured secret, or DevSecret when none is
// set. The boolean reports whether the fallback was used.
func (c *CSRFSection) ResolveSecret() (string, bool) {
	if c.Secret == "" {
		return DevSecret, true
	}
	return c.Secret, false
}
