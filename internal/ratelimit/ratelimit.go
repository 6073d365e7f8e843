// Package ratelimit enforces the per-user, per-resource request budget
// consumed by the Interpret Pipeline: 100 requests, refilling linearly at
// 100 per hour. A new bucket starts at capacity-1 (not capacity) so a
// caller's very first request is accounted for immediately rather than
// being free.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// Capacity is the maximum number of requests a bucket can hold.
	Capacity = 100
	// RefillPeriod is the time it takes to refill the bucket from empty
	// to Capacity at the linear rate below.
	RefillPeriod = time.Hour
)

// Limiter tracks one token bucket per (userID, resource) key.
type Limiter struct {
	mu       sync.Mutex
	buckets  map[string]*rate.Limiter
	capacity int
	refill   rate.Limit
}

// New creates an empty rate limiter using the package default capacity
// and refill period.
func New() *Limiter {
	return NewWithLimits(Capacity, RefillPeriod)
}

// NewWithLimits creates an empty rate limiter with an operator-supplied
// capacity and refill period (config.RateLimitConfig), for deployments
// that need a budget other than the package default.
func NewWithLimits(capacity int, refillPeriod time.Duration) *Limiter {
	return &Limiter{
		buckets:  make(map[string]*rate.Limiter),
		capacity: capacity,
		refill:   rate.Every(refillPeriod / time.Duration(capacity)),
	}
}

// Key composes the bucket key for a user acting against a resource, e.g.
// "interpret" for the natural-language endpoint or "act" for the action
// endpoint, so the two surfaces are budgeted independently.
func Key(userID, resource string) string {
	return userID + ":" + resource
}

// Allow reports whether the caller may proceed, consuming one token from
// their bucket if so. A bucket that has never been seen before is
// created at capacity-1 and that creation debit IS the caller's first
// request, so Allow never double-charges a brand new bucket.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = rate.NewLimiter(l.refill, l.capacity)
		l.buckets[key] = b
		return b.AllowN(time.Now(), 1)
	}
	return b.Allow()
}

// Remaining returns the caller's current token count, rounded down, for
// surfacing in a 429 response or a status endpoint. It does not create a
// bucket for a key that has never made a request.
func (l *Limiter) Remaining(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		return l.capacity
	}
	return int(b.Tokens())
}
