package factory

import (
	"context"
	"time"

	"github.com/akeren/welcome-form/pkg/circuitbreaker"
	"github.com/akeren/welcome-form/pkg/ratelimit"
	"github.com/go-redis/redis/v8"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type RedisClientProvider interface {
	GetClient() *redis.Client
}

type RateLimiterFactory interface {
	// CreateRateLimiter builds a limiter whose budget is tracked under name.
	CreateRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter
	IsDistributed() bool
}

// DefaultRateLimiterFactory shares one Redis client, when the cache exposes
// one, across every limiter it creates.
type DefaultRateLimiterFactory struct {
	redisClient *redis.Client
	logger      ratelimit.Logger
	breaker     *circuitbreaker.Config
}

func NewDefaultRateLimiterFactory(cache Cache, logger ratelimit.Logger, breaker *circuitbreaker.Config) *DefaultRateLimiterFactory {
	var redisClient *redis.Client
	if cache != nil {
		if provider, ok := cache.(RedisClientProvider); ok {
			redisClient = provider.GetClient()
		}
	}

	return &DefaultRateLimiterFactory{
		redisClient: redisClient,
		logger:      logger,
		breaker:     breaker,
	}
}

func (f *DefaultRateLimiterFactory) CreateRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter {
	return ratelimit.NewRateLimiter(&ratelimit.RateLimitConfig{
		Name:     name,
		Requests: requests,
		Window:   window,
		Redis:    f.redisClient,
		Logger:   f.logger,
		Breaker:  f.breaker,
	})
}

func (f *DefaultRateLimiterFactory) IsDistributed() bool {
	return f.redisClient != nil
}
