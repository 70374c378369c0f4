package ratelimit

import (
	"context"
	"time"

	"github.com/akeren/welcome-form/pkg/circuitbreaker"
	"github.com/go-redis/redis/v8"
)

type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

// RateLimiter reports whether the caller identified by key has exhausted
// its budget for the current window.
type RateLimiter interface {
	GetLimitDetails() (int, time.Duration)
	IsLimited(ctx context.Context, key string) (bool, error)
	Close() error
}

type RateLimitConfig struct {
	// Name namespaces the limiter's Redis keys.
	Name     string
	Requests int
	Window   time.Duration
	// Redis nil selects the in-memory limiter.
	Redis   *redis.Client
	Logger  Logger
	Breaker *circuitbreaker.Config
}

// NewRateLimiter picks the strategy for config. A Redis limiter is always
// wrapped so that it degrades to memory while Redis misbehaves.
func NewRateLimiter(config *RateLimitConfig) RateLimiter {
	memory := NewInMemoryRateLimiter(config.Requests, config.Window)
	if config.Redis == nil {
		return memory
	}

	return NewFallbackRateLimiter(
		NewRedisRateLimiter(config.Redis, config.Name, config.Requests, config.Window, config.Logger),
		memory,
		circuitbreaker.NewCircuitBreaker(config.Breaker),
		config.Logger,
	)
}
