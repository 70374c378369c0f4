package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/akeren/welcome-form/pkg/circuitbreaker"
)

// FallbackRateLimiter asks primary through a circuit breaker and answers
// from fallback whenever that fails or the breaker is open.
type FallbackRateLimiter struct {
	primary  RateLimiter
	fallback RateLimiter
	breaker  circuitbreaker.CircuitBreaker
	logger   Logger
}

func NewFallbackRateLimiter(primary, fallback RateLimiter, breaker circuitbreaker.CircuitBreaker, logger Logger) *FallbackRateLimiter {
	if breaker == nil {
		breaker = circuitbreaker.NewCircuitBreaker(nil)
	}
	return &FallbackRateLimiter{
		primary:  primary,
		fallback: fallback,
		breaker:  breaker,
		logger:   logger,
	}
}

func (r *FallbackRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.primary.GetLimitDetails()
}

func (r *FallbackRateLimiter) IsLimited(ctx context.Context, key string) (bool, error) {
	var limited bool
	err := r.breaker.Call(func() (err error) {
		limited, err = r.primary.IsLimited(ctx, key)
		return err
	})
	if err == nil {
		return limited, nil
	}

	// An open breaker is already logged on transition.
	if r.logger != nil && !errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		r.logger.Warn("Primary rate limiter failed, using in-memory fallback", "error", err)
	}
	return r.fallback.IsLimited(ctx, key)
}

// BreakerState reports Open while Redis is being bypassed.
func (r *FallbackRateLimiter) BreakerState() circuitbreaker.CircuitState {
	return r.breaker.State()
}

func (r *FallbackRateLimiter) Close() error {
	return errors.Join(r.primary.Close(), r.fallback.Close())
}
