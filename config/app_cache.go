package config

import (
	"context"
	"time"

	"github.com/akeren/welcome-form/internal/log"
	apperrors "github.com/akeren/welcome-form/pkg/errors"
	pkgredis "github.com/akeren/welcome-form/pkg/redis"
	"github.com/akeren/welcome-form/pkg/utils"
	"github.com/go-redis/redis/v8"
)

// Cache is the optional Redis backend. Its client is shared with the
// distributed rate limiters; health checks only Ping it.
type Cache interface {
	Ping(ctx context.Context) error
	Close() error
	GetClient() *redis.Client
}

var ErrCacheNotConfigured = apperrors.NewConfigurationError("cache host is not configured", nil)

type CacheConfig struct {
	Host        string
	Port        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewCacheConfig reads REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB and
// REDIS_DIAL_TIMEOUT. An empty REDIS_HOST leaves the cache unconfigured.
func NewCacheConfig() *CacheConfig {
	return &CacheConfig{
		Host:        utils.GetEnvTrimmed("REDIS_HOST"),
		Port:        utils.GetEnvTrimmedOrDefault("REDIS_PORT", "6379"),
		Password:    GetValueFromEnvironmentVariable("REDIS_PASSWORD", ""),
		DB:          utils.GetEnvInt("REDIS_DB", 0),
		DialTimeout: utils.GetEnvDuration("REDIS_DIAL_TIMEOUT", 0),
	}
}

func (cc *CacheConfig) IsConfigured() bool {
	return cc.Host != ""
}

func (cc *CacheConfig) redisConfig() *pkgredis.Config {
	return &pkgredis.Config{
		Host:        cc.Host,
		Port:        cc.Port,
		Password:    cc.Password,
		DB:          cc.DB,
		DialTimeout: cc.DialTimeout,
	}
}

// NewCache connects to Redis, retrying the first ping with backoff.
func (cc *CacheConfig) NewCache(logger *log.Logger) (Cache, error) {
	if !cc.IsConfigured() {
		return nil, ErrCacheNotConfigured
	}

	cfg := cc.redisConfig()
	cache, err := pkgredis.NewRedisCache(cfg)
	if err != nil {
		logger.Error("Failed to connect to Redis", "addr", cfg.Addr(), "error", err)
		return nil, err
	}

	logger.Info("Redis connected", "addr", cfg.Addr(), "db", cc.DB)
	return cache, nil
}

// NewCacheOrNil returns nil when Redis is unset or unreachable; rate limiting
// then stays in-memory.
func (cc *CacheConfig) NewCacheOrNil(logger *log.Logger) Cache {
	if !cc.IsConfigured() {
		logger.Info("Redis not configured; rate limits are kept in memory")
		return nil
	}

	cache, err := cc.NewCache(logger)
	if err != nil {
		logger.Warn("Proceeding without Redis", "error", err)
		return nil
	}
	return cache
}

func CloseCache(cache Cache, logger *log.Logger) error {
	if cache == nil {
		return nil
	}

	if err := cache.Close(); err != nil {
		logger.Error("Failed to close cache", "error", err)
		return err
	}

	logger.Info("Cache connection closed")
	return nil
}
