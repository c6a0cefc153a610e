package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Adv1cer/infirmary/internal/core/domain"
)

// Default configuration values.
const (
	DefaultKeyPrefix   = "csrfguard:token"
	DefaultDialTimeout = 5 * time.Second
	DefaultExpiryGrace = time.Minute
	scanBatch          = 512
)

// Config configures a Redis connection.
type Config struct {
	Address     string
	Password    string
	DB          int
	KeyPrefix   string
	DialTimeout time.Duration

	// ExpiryGrace is added to the token TTL when setting the key expiry.
	ExpiryGrace time.Duration
}

// Store is a token store backed by Redis.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	grace  time.Duration
}

// New wraps an existing client.
func New(client redis.UniversalClient, prefix string, grace time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if grace < 0 {
		grace = 0
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		grace:  grace,
	}
}

// Dial connects to Redis and verifies the connection with PING.
func Dial(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Address == "" {
		return nil, errors.New("redisstore: address is required")
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.ExpiryGrace == 0 {
		cfg.ExpiryGrace = DefaultExpiryGrace
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Address,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redisstore: ping %s: %w", cfg.Address, err)
	}

	return New(client, cfg.KeyPrefix, cfg.ExpiryGrace), nil
}

func (s *Store) key(digest string) string {
	return s.prefix + ":" + digest
}

// Put stores rec with SET NX. The key expires after ttl plus the grace period.
func (s *Store) Put(ctx context.Context, rec *domain.Record, ttl time.Duration) error {
	expiry := time.Duration(0)
	if ttl > 0 {
		expiry = ttl + s.grace
	}

	ok, err := s.redis.SetNX(ctx, s.key(rec.Digest), strconv.FormatInt(rec.CreatedAt, 10), expiry).Result()
	if err != nil {
		return fmt.Errorf("redisstore: set: %w", err)
	}
	if !ok {
		return domain.ErrTokenConflict
	}
	return nil
}

// Get retrieves a record by digest.
func (s *Store) Get(ctx context.Context, digest string) (*domain.Record, error) {
	val, err := s.redis.Get(ctx, s.key(digest)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTokenUnknown
		}
		return nil, fmt.Errorf("redisstore: get: %w", err)
	}
	return decodeRecord(digest, val)
}

// Delete removes a record by digest.
func (s *Store) Delete(ctx context.Context, digest string) error {
	if err := s.redis.Del(ctx, s.key(digest)).Err(); err != nil {
		return fmt.Errorf("redisstore: del: %w", err)
	}
	return nil
}

// Pop atomically retrieves and removes a record with GETDEL.
func (s *Store) Pop(ctx context.Context, digest string) (*domain.Record, error) {
	val, err := s.redis.GetDel(ctx, s.key(digest)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrTokenUnknown
		}
		return nil, fmt.Errorf("redisstore: getdel: %w", err)
	}
	return decodeRecord(digest, val)
}

// Count scans the key prefix and returns the number of outstanding records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var (
		cursor uint64
		total  int
	)
	match := s.prefix + ":*"
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, match, scanBatch).Result()
		if err != nil {
			return 0, fmt.Errorf("redisstore: scan: %w", err)
		}
		total += len(keys)
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

// DeleteExpired is a no-op: keys expire natively.
func (s *Store) DeleteExpired(ctx context.Context, _ time.Time) (int, error) {
	return 0, ctx.Err()
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.redis.Close()
}

func decodeRecord(digest, val string) (*domain.Record, error) {
	createdAt, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("redisstore: decode record %s: %w", digest, err)
	}
	return &domain.Record{Digest: digest, CreatedAt: createdAt}, nil
}
