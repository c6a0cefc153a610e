package httpserver

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/Adv1cer/infirmary/pkg/cmap"
)

// limiterIdleTTL is how long an unused client limiter is kept.
const limiterIdleTTL = 10 * time.Minute

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// ClientLimiter keeps one token bucket per client key.
type ClientLimiter struct {
	limit     rate.Limit
	burst     int
	clients   *cmap.Map[string, *clientEntry]
	lastPrune atomic.Int64
	now       func() time.Time
}

// NewClientLimiter returns a limiter allowing rps requests per second per
// client with the given burst. rps <= 0 disables limiting.
func NewClientLimiter(rps float64, burst int) *ClientLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst < 1 {
		burst = 1
	}
	return &ClientLimiter{
		limit:   limit,
		burst:   burst,
		clients: cmap.New[string, *clientEntry](),
		now:     time.Now,
	}
}

// Allow reports whether key may make a request now.
func (l *ClientLimiter) Allow(key string) bool {
	if l.limit == rate.Inf {
		return true
	}

	now := l.now()
	l.maybePrune(now)

	e, ok := l.clients.Get(key)
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		if !l.clients.SetIfAbsent(key, e) {
			if existing, found := l.clients.Get(key); found {
				e = existing
			}
		}
	}

	e.lastSeen.Store(now.UnixNano())
	return e.limiter.AllowN(now, 1)
}

// Len returns the number of tracked clients.
func (l *ClientLimiter) Len() int {
	return l.clients.Count()
}

func (l *ClientLimiter) maybePrune(now time.Time) {
	last := l.lastPrune.Load()
	if now.UnixNano()-last < int64(time.Minute) {
		return
	}
	if !l.lastPrune.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	cutoff := now.Add(-limiterIdleTTL).UnixNano()
	l.clients.DeleteIf(func(_ string, e *clientEntry) bool {
		return e.lastSeen.Load() < cutoff
	})
}
