package memory

import (
	"context"
	"time"

	"github.com/Adv1cer/infirmary/internal/core/domain"
	"github.com/Adv1cer/infirmary/pkg/cmap"
)

// Store holds outstanding token records keyed by token digest.
type Store struct {
	records *cmap.Map[string, *domain.Record]
}

// Option configures the Store.
type Option func(*storeOptions)

type storeOptions struct {
	shards int
}

// WithShardCount sets the number of map shards (power of two).
func WithShardCount(n int) Option {
	return func(o *storeOptions) {
		o.shards = n
	}
}

// New creates a new in-memory token store.
func New(opts ...Option) *Store {
	o := storeOptions{shards: cmap.DefaultShardCount}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		records: cmap.NewWithShards[string, *domain.Record](o.shards),
	}
}

// Put stores a new record. The ttl hint is unused; expiry is handled by
// the guard and the sweeper.
func (s *Store) Put(_ context.Context, rec *domain.Record, _ time.Duration) error {
	cp := *rec
	if !s.records.SetIfAbsent(rec.Digest, &cp) {
		return domain.ErrTokenConflict
	}
	return nil
}

// Get retrieves a record by digest.
func (s *Store) Get(_ context.Context, digest string) (*domain.Record, error) {
	rec, ok := s.records.Get(digest)
	if !ok {
		return nil, domain.ErrTokenUnknown
	}
	cp := *rec
	return &cp, nil
}

// Delete removes a record by digest.
func (s *Store) Delete(_ context.Context, digest string) error {
	s.records.Delete(digest)
	return nil
}

// Pop atomically retrieves and removes a record.
func (s *Store) Pop(_ context.Context, digest string) (*domain.Record, error) {
	rec, ok := s.records.Pop(digest)
	if !ok {
		return nil, domain.ErrTokenUnknown
	}
	return rec, nil
}

// Count returns the number of outstanding records.
func (s *Store) Count(_ context.Context) (int, error) {
	return s.records.Count(), nil
}

// DeleteExpired removes records created before cutoff.
func (s *Store) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	limit := cutoff.UnixMilli()
	return s.records.DeleteIf(func(_ string, rec *domain.Record) bool {
		return rec.CreatedAt < limit
	}), nil
}

// Len returns the number of outstanding records.
func (s *Store) Len() int {
	return s.records.Count()
}
