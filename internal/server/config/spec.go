package config

import "time"

// ServerConfig is the root configuration for csrfguard-server.
type ServerConfig struct {
	Server    ServerSection    `koanf:"server"`
	CSRF      CSRFSection      `koanf:"csrf"`
	Storage   StorageSection   `koanf:"storage"`
	Security  SecuritySection  `koanf:"security"`
	Telemetry TelemetrySection `koanf:"telemetry"`
	Log       LogSection       `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Address      string        `koanf:"address"`
	TLSCertFile  string        `koanf:"tls_cert_file"`
	TLSKeyFile   string        `koanf:"tls_key_file"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// CSRFSection configures token issuance and enforcement.
type CSRFSection struct {
	// Secret is the shared signing secret. CSRF_SECRET overrides it.
	Secret string `koanf:"secret"`

	// TTL is the maximum token age.
	TTL time.Duration `koanf:"ttl"`

	// Header is the request header carrying the token.
	Header string `koanf:"header"`

	// SweepInterval is the period of the expired-record sweep. 0 disables it.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// StorageSection configures the token store backend.
type StorageSection struct {
	// Backend is "memory" or "redis".
	Backend string             `koanf:"backend"`
	Redis   RedisStorageConfig `koanf:"redis"`
}

// RedisStorageConfig configures the redis backend.
type RedisStorageConfig struct {
	Address   string `koanf:"address"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// SecuritySection configures security settings.
type SecuritySection struct {
	RateLimit RateLimitConfig `koanf:"rate_limit"`

	// AdminAllowList lists IPs or CIDRs allowed to reach /admin/v1.
	// Empty means loopback only.
	AdminAllowList []string `koanf:"admin_allow_list"`

	// AllowedOrigins lists CORS origins. Empty disables CORS headers.
	AllowedOrigins []string `koanf:"allowed_origins"`

	// TrustProxyHeaders takes the client IP from X-Forwarded-For / X-Real-IP.
	// Enable only behind a reverse proxy that overwrites them.
	TrustProxyHeaders bool `koanf:"trust_proxy_headers"`
}

// RateLimitConfig configures the per-client limiter on token issuance.
type RateLimitConfig struct {
	RPS   float64 `koanf:"rps"`
	Burst int     `koanf:"burst"`
}

// TelemetrySection configures metrics.
type TelemetrySection struct {
	MetricsEnabled bool `koanf:"metrics_enabled"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
