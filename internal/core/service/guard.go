package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adv1cer/infirmary/internal/core/domain"
	"github.com/Adv1cer/infirmary/pkg/token"
)

// DefaultTokenTTL is how long an issued token stays acceptable.
const DefaultTokenTTL = 30 * time.Minute

// maxIssueAttempts bounds retries on a digest collision.
const maxIssueAttempts = 3

// Rejection reasons reported to the Observer.
const (
	ReasonMissing   = "missing"
	ReasonUnknown   = "unknown"
	ReasonExpired   = "expired"
	ReasonSignature = "signature"
	ReasonStore     = "store_error"
)

// TokenStore holds outstanding token records keyed by digest.
type TokenStore interface {
	// Put stores a new record. ttl is a hint for stores with native expiry.
	// Returns domain.ErrTokenConflict if the digest is already present.
	Put(ctx context.Context, rec *domain.Record, ttl time.Duration) error

	// Get returns the record for digest or domain.ErrTokenUnknown.
	Get(ctx context.Context, digest string) (*domain.Record, error)

	// Delete removes the record for digest. Deleting an absent digest is not an error.
	Delete(ctx context.Context, digest string) error

	// Pop atomically returns and removes the record for digest, or
	// domain.ErrTokenUnknown. Concurrent Pops of one digest succeed at most once.
	Pop(ctx context.Context, digest string) (*domain.Record, error)

	// Count returns the number of outstanding records.
	Count(ctx context.Context) (int, error)

	// DeleteExpired removes records created before cutoff and returns how many.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// Observer receives guard events, typically for metrics.
type Observer interface {
	TokenIssued()
	TokenConsumed()
	TokenRejected(reason string)
	TokensSweptAdd(n int)
}

type nopObserver struct{}

func (nopObserver) TokenIssued()         {}
func (nopObserver) TokenConsumed()       {}
func (nopObserver) TokenRejected(string) {}
func (nopObserver) TokensSweptAdd(int)   {}

// GuardConfig holds configuration for GuardService.
type GuardConfig struct {
	// Secret is the shared signing secret (CSRF_SECRET).
	Secret []byte

	// TTL is the maximum token age (default: 30m).
	TTL time.Duration
}

// GuardOption configures a GuardService.
type GuardOption func(*GuardService)

// WithClock replaces the time source.
func WithClock(now func() time.Time) GuardOption {
	return func(s *GuardService) {
		s.now = now
	}
}

// WithObserver registers an event observer.
func WithObserver(o Observer) GuardOption {
	return func(s *GuardService) {
		if o != nil {
			s.observer = o
		}
	}
}

// GuardService issues one-time CSRF tokens and validates them exactly once.
type GuardService struct {
	store    TokenStore
	signer   *token.Signer
	ttl      time.Duration
	now      func() time.Time
	observer Observer
}

// NewGuardService creates a GuardService over store.
func NewGuardService(store TokenStore, cfg *GuardConfig, opts ...GuardOption) (*GuardService, error) {
	if cfg == nil {
		return nil, domain.ErrMissingArgument.WithDetails("guard config is required")
	}

	signer, err := token.NewSigner(cfg.Secret)
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithDetails("csrf secret").WithCause(err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	s := &GuardService{
		store:    store,
		signer:   signer,
		ttl:      ttl,
		now:      time.Now,
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured token lifetime.
func (s *GuardService) TTL() time.Duration {
	return s.ttl
}

// IssueResponse contains a freshly issued token.
type IssueResponse struct {
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Issue generates a signed token and registers it as outstanding.
func (s *GuardService) Issue(ctx context.Context) (*IssueResponse, error) {
	for attempt := 0; attempt < maxIssueAttempts; attempt++ {
		value, err := domain.NewToken(s.signer)
		if err != nil {
			return nil, err
		}

		now := s.now()
		rec := domain.NewRecord(value, now)
		err = s.store.Put(ctx, rec, s.ttl)
		if errors.Is(err, domain.ErrTokenConflict) {
			continue
		}
		if err != nil {
			return nil, storeError(err)
		}

		s.observer.TokenIssued()
		return &IssueResponse{
			Token:     value,
			CreatedAt: time.UnixMilli(rec.CreatedAt),
			ExpiresAt: rec.ExpiresAt(s.ttl),
		}, nil
	}
	return nil, domain.ErrTokenConflict.WithDetails("digest collision persisted")
}

// Consume validates value and removes it from the store.
//
// Any record found is removed whatever the outcome, so a token can be
// presented at most once. Errors are domain.ErrTokenMissing,
// domain.ErrTokenUnknown, domain.ErrTokenExpired,
// domain.ErrTokenSignatureInvalid, or a storage error.
func (s *GuardService) Consume(ctx context.Context, value string) error {
	if value == "" {
		s.observer.TokenRejected(ReasonMissing)
		return domain.ErrTokenMissing
	}

	rec, err := s.store.Pop(ctx, domain.DigestToken(value))
	if err != nil {
		if errors.Is(err, domain.ErrTokenUnknown) {
			s.observer.TokenRejected(ReasonUnknown)
			return domain.ErrTokenUnknown
		}
		s.observer.TokenRejected(ReasonStore)
		return storeError(err)
	}

	// Both checks run before deciding so the outcome does not short-circuit.
	now := s.now()
	expired := rec.IsExpired(now, s.ttl)
	verified := domain.VerifyToken(s.signer, value)

	switch {
	case expired:
		s.observer.TokenRejected(ReasonExpired)
		return domain.ErrTokenExpired.WithDetails(fmt.Sprintf("age %s exceeds %s", rec.Age(now), s.ttl))
	case !verified:
		s.observer.TokenRejected(ReasonSignature)
		return domain.ErrTokenSignatureInvalid
	}

	s.observer.TokenConsumed()
	return nil
}

// ValidateAndConsume reports whether value is an outstanding, fresh,
// authentic token, consuming it in every case where it was found.
func (s *GuardService) ValidateAndConsume(ctx context.Context, value string) bool {
	return s.Consume(ctx, value) == nil
}

// Sweep removes records older than the TTL and returns how many were removed.
func (s *GuardService) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.ttl)
	n, err := s.store.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, storeError(err)
	}
	s.observer.TokensSweptAdd(n)
	return n, nil
}

// GuardStats summarises the guard state.
type GuardStats struct {
	Outstanding int
	TTL         time.Duration
}

// Stats returns the number of outstanding tokens.
func (s *GuardService) Stats(ctx context.Context) (*GuardStats, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return &GuardStats{Outstanding: n, TTL: s.ttl}, nil
}

// Count implements metric.CountFunc.
func (s *GuardService) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

func storeError(err error) error {
	if domain.IsDomainError(err, "") {
		return err
	}
	return domain.ErrStorageError.WithCause(err)
}
