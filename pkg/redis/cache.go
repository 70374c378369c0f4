package redis

import (
	"context"
	"fmt"
	"net"
	"time"

	apperrors "github.com/akeren/welcome-form/pkg/errors"
	"github.com/akeren/welcome-form/pkg/retry"
	"github.com/go-redis/redis/v8"
)

const defaultDialTimeout = 2 * time.Second

type Config struct {
	Host     string
	Port     string
	Password string
	DB       int

	DialTimeout time.Duration
	// Retry governs the initial connectivity check. Nil uses retry.DefaultConfig.
	Retry *retry.Config
}

func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// RedisCache owns the go-redis client shared by health checks and the
// distributed rate limiters.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings with exponential backoff before returning.
func NewRedisCache(cfg *Config) (*RedisCache, error) {
	if cfg == nil || cfg.Host == "" {
		return nil, apperrors.NewConfigurationError("redis host is required", nil)
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dialTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*dialTimeout)
	defer cancel()

	err := retry.NewExponentialBackoff(cfg.Retry).Execute(ctx, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		_ = client.Close()
		return nil, apperrors.NewUnavailableError(fmt.Sprintf("redis at %s is unreachable", cfg.Addr()), err)
	}

	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) GetClient() *redis.Client {
	return c.client
}
