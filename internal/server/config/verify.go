package config

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"strings"
)

// MinSecretLength is the minimum accepted secret length in bytes.
const MinSecretLength = 16

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyCSRF(&cfg.CSRF); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifySecurity(&cfg.Security); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	if cfg.HTTP.Address == "" {
		return errors.New("server.http.address is required")
	}
	if _, _, err := net.SplitHostPort(cfg.HTTP.Address); err != nil {
		return fmt.Errorf("server.http.address: %w", err)
	}

	cert, key := cfg.HTTP.TLSCertFile, cfg.HTTP.TLSKeyFile
	if (cert == "") != (key == "") {
		return errors.New("server.http.tls_cert_file and tls_key_file must be set together")
	}
	for _, f := range []string{cert, key} {
		if f == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			return fmt.Errorf("tls file: %w", err)
		}
	}
	return nil
}

func verifyCSRF(cfg *CSRFSection) error {
	if cfg.Secret != "" && cfg.Secret != DevSecret && len(cfg.Secret) < MinSecretLength {
		return fmt.Errorf("csrf.secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.TTL <= 0 {
		return errors.New("csrf.ttl must be positive")
	}
	if strings.TrimSpace(cfg.Header) == "" {
		return errors.New("csrf.header is required")
	}
	if cfg.SweepInterval < 0 {
		return errors.New("csrf.sweep_interval must not be negative")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	switch strings.ToLower(cfg.Backend) {
	case "memory", "":
		return nil
	case "redis":
		if cfg.Redis.Address == "" {
			return errors.New("storage.redis.address is required for the redis backend")
		}
		if cfg.Redis.DB < 0 {
			return errors.New("storage.redis.db must not be negative")
		}
		return nil
	default:
		return fmt.Errorf("storage.backend %q is not supported", cfg.Backend)
	}
}

func verifySecurity(cfg *SecuritySection) error {
	if cfg.RateLimit.RPS < 0 {
		return errors.New("security.rate_limit.rps must not be negative")
	}
	if cfg.RateLimit.RPS > 0 && cfg.RateLimit.Burst < 1 {
		return errors.New("security.rate_limit.burst must be at least 1")
	}
	for _, entry := range cfg.AdminAllowList {
		if _, err := netip.ParsePrefix(entry); err == nil {
			continue
		}
		if _, err := netip.ParseAddr(entry); err != nil {
			return fmt.Errorf("security.admin_allow_list: invalid entry %q", entry)
		}
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	switch strings.ToLower(cfg.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level %q is not supported", cfg.Level)
	}
	switch strings.ToLower(cfg.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format %q is not supported", cfg.Format)
	}
	return nil
}
