package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const redisKeyPrefix = "ratelimit:"

// slidingWindowScript trims entries older than the window, then records the
// request unless the window is already full. It returns 1 when limited.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
if redis.call('ZCARD', key) >= limit then
	return 1
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window * 2)
return 0
`)

// RedisRateLimiter is a sliding-window log shared by every instance that
// talks to the same Redis. Limiters with different names never share a
// window, even for the same key.
type RedisRateLimiter struct {
	client   *redis.Client
	name     string
	requests int
	window   time.Duration
	logger   Logger
}

func NewRedisRateLimiter(client *redis.Client, name string, requests int, window time.Duration, logger Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:   client,
		name:     name,
		requests: requests,
		window:   window,
		logger:   logger,
	}
}

func (r *RedisRateLimiter) GetLimitDetails() (int, time.Duration) {
	return r.requests, r.window
}

func (r *RedisRateLimiter) IsLimited(ctx context.Context, key string) (bool, error) {
	redisKey := redisKeyFor(r.name, key)

	windowMs := r.window.Milliseconds()
	if windowMs < 1 {
		windowMs = 1
	}

	result, err := slidingWindowScript.Run(ctx, r.client, []string{redisKey},
		time.Now().UnixMilli(), windowMs, r.requests, uuid.NewString(),
	).Int()
	if err != nil {
		if r.logger != nil {
			r.logger.Error("Redis rate limit script failed", "key", redisKey, "error", err)
		}
		return false, fmt.Errorf("redis rate limiter: %w", err)
	}

	return result == 1, nil
}

// Close is a no-op; the client belongs to the cache and is closed with it.
func (r *RedisRateLimiter) Close() error {
	return nil
}

// redisKeyFor builds ratelimit:<name>:<key>; an unnamed limiter uses
// ratelimit:<key>.
func redisKeyFor(name, key string) string {
	if name == "" {
		return redisKeyPrefix + key
	}
	return redisKeyPrefix + name + ":" + key
}
