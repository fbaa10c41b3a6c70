package ratelimit

import (
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/sigstream/pkg/cmap"
)

// DefaultIdleTimeout is how long a client bucket survives without requests.
const DefaultIdleTimeout = 5 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64 // Unix nanoseconds
}

// Registry hands out per-key token buckets of perSecond tokens with an equal
// burst. Buckets idle for longer than the idle timeout are dropped by a sweep
// that runs at most once per idle timeout, on the request path.
type Registry struct {
	limit rate.Limit
	burst int
	idle  time.Duration
	now   func() time.Time

	buckets   *cmap.Map[string, *bucket]
	lastSweep atomic.Int64
}

// Option configures a Registry.
type Option func(*Registry)

// WithIdleTimeout overrides DefaultIdleTimeout. Values shorter than the
// time a bucket needs to refill completely are raised to that time, so an
// evicted client never gets more tokens than it would have had.
func WithIdleTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.idle = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates a registry allowing perSecond requests per key.
func NewRegistry(perSecond int, opts ...Option) *Registry {
	r := &Registry{
		limit:   rate.Limit(perSecond),
		burst:   perSecond,
		idle:    DefaultIdleTimeout,
		now:     time.Now,
		buckets: cmap.New[string, *bucket](cmap.HashString),
	}
	for _, opt := range opts {
		opt(r)
	}
	// burst equals the per-second rate, so a drained bucket refills in one second.
	if r.idle < time.Second {
		r.idle = time.Second
	}
	r.lastSweep.Store(r.now().UnixNano())
	return r
}

// Allow takes one token from key's bucket.
func (r *Registry) Allow(key string) bool {
	now := r.now()
	r.maybeSweep(now)

	b, ok := r.buckets.Get(key)
	if !ok {
		b, _ = r.buckets.GetOrSet(key, &bucket{limiter: rate.NewLimiter(r.limit, r.burst)})
	}
	b.lastSeen.Store(now.UnixNano())
	return b.limiter.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (r *Registry) Len() int {
	return r.buckets.Count()
}

func (r *Registry) maybeSweep(now time.Time) {
	last := r.lastSweep.Load()
	if now.UnixNano()-last < int64(r.idle) {
		return
	}
	if !r.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	r.Sweep(now)
}

// Sweep drops every bucket that has been idle for longer than the idle
// timeout at now.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idle).UnixNano()

	var stale []string
	r.buckets.Range(func(key string, b *bucket) bool {
		if b.lastSeen.Load() < cutoff {
			stale = append(stale, key)
		}
		return true
	})
	for _, key := range stale {
		r.buckets.Delete(key)
	}
	return len(stale)
}
