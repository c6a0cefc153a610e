package domain

import "time"

// Record is an outstanding token. Records are immutable once stored.
type Record struct {
	// Digest is DigestToken(value); the raw token is not retained.
	Digest string `json:"digest"`

	// CreatedAt is the issuance time in Unix milliseconds.
	CreatedAt int64 `json:"created_at"`
}

// NewRecord creates a record for a token issued at now.
func NewRecord(value string, now time.Time) *Record {
	return &Record{
		Digest:    DigestToken(value),
		CreatedAt: now.UnixMilli(),
	}
}

// Age returns how long ago the token was issued.
func (r *Record) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-r.CreatedAt) * time.Millisecond
}

// IsExpired reports whether the record is older than ttl.
// A record exactly ttl old is still fresh.
func (r *Record) IsExpired(now time.Time, ttl time.Duration) bool {
	return r.Age(now) > ttl
}

// ExpiresAt returns the last instant at which the token is accepted.
func (r *Record) ExpiresAt(ttl time.Duration) time.Time {
	return time.UnixMilli(r.CreatedAt).Add(ttl)
}
