package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	emptyKey   = "__empty__"
	sweepEvery = 1024
)

// InMemoryRateLimiter keeps one token bucket per key. Buckets start full, so
// a new key gets a burst of Requests before the refill rate applies.
type InMemoryRateLimiter struct {
	requests int
	window   time.Duration
	every    rate.Limit
	now      func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   uint64
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewInMemoryRateLimiter(requests int, window time.Duration) *InMemoryRateLimiter {
	every := rate.Inf
	if requests > 0 && window > 0 {
		every = rate.Every(window / time.Duration(requests))
	}

	return &InMemoryRateLimiter{
		requests: requests,
		window:   window,
		every:    every,
		now:      time.Now,
		buckets:  make(map[string]*bucket),
	}
}

func (r *InMemoryRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *InMemoryRateLimiter) IsLimited(_ context.Context, key string) (bool, error) {
	if key == "" {
		key = emptyKey
	}
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b := r.bucketFor(key, now)

	r.calls++
	if r.calls%sweepEvery == 0 {
		r.sweep(now.Add(-2 * r.window))
	}

	return !b.limiter.AllowN(now, 1), nil
}

func (r *InMemoryRateLimiter) bucketFor(key string, now time.Time) *bucket {
	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(r.every, r.requests)}
		r.buckets[key] = b
	}
	b.lastSeen = now
	return b
}

// sweep drops buckets idle since before cutoff. A dropped bucket would have
// refilled completely, so recreating it later changes nothing.
func (r *InMemoryRateLimiter) sweep(cutoff time.Time) {
	for key, b := range r.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(r.buckets, key)
		}
	}
}

func (r *InMemoryRateLimiter) Close() error {
	return nil
}
