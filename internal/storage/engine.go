package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/Adv1cer/infirmary/internal/core/service"
	"github.com/Adv1cer/infirmary/internal/storage/memory"
	"github.com/Adv1cer/infirmary/internal/storage/redisstore"
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config configures the storage engine.
type Config struct {
	// Backend is "memory" or "redis" (default: memory).
	Backend string

	// MemoryShards is the shard count for the memory backend.
	MemoryShards int

	// Redis configures the redis backend.
	Redis redisstore.Config

	// Logger is the structured logger.
	Logger *slog.Logger
}

// DefaultConfig returns the default storage configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Redis: redisstore.Config{
			KeyPrefix:   redisstore.DefaultKeyPrefix,
			DialTimeout: redisstore.DefaultDialTimeout,
			ExpiryGrace: redisstore.DefaultExpiryGrace,
		},
		Logger: slog.Default(),
	}
}

type pinger interface {
	Ping(ctx context.Context) error
}

type closer interface {
	Close() error
}

// Engine owns the selected token store.
type Engine struct {
	backend string
	store   service.TokenStore
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// New opens the configured backend. The redis backend is dialled and
// pinged before New returns.
func New(ctx context.Context, cfg Config) (*Engine, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendMemory
	}

	var store service.TokenStore
	switch backend {
	case BackendMemory:
		var opts []memory.Option
		if cfg.MemoryShards > 0 {
			opts = append(opts, memory.WithShardCount(cfg.MemoryShards))
		}
		store = memory.New(opts...)

	case BackendRedis:
		rs, err := redisstore.Dial(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("storage: open redis: %w", err)
		}
		store = rs

	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}

	cfg.Logger.Info("token store opened", "backend", backend)

	return &Engine{
		backend: backend,
		store:   store,
		logger:  cfg.Logger,
	}, nil
}

// NewWithStore wraps an already constructed store.
func NewWithStore(backend string, store service.TokenStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{backend: backend, store: store, logger: logger}
}

// Store returns the token store.
func (e *Engine) Store() service.TokenStore {
	return e.store
}

// Backend returns the backend name.
func (e *Engine) Backend() string {
	return e.backend
}

// Ping reports whether the backend is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if p, ok := e.store.(pinger); ok {
		ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return p.Ping(ctx)
	}
	return nil
}

// Close releases backend resources. Safe to call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if c, ok := e.store.(closer); ok {
			e.closeErr = c.Close()
		}
		e.logger.Info("token store closed", "backend", e.backend)
	})
	return e.closeErr
}
