package config

import (
	"context"
	"strings"
	"time"

	"github.com/akeren/welcome-form/config/router"
	"github.com/akeren/welcome-form/internal/log"
	"github.com/akeren/welcome-form/pkg/constants"
	apperrors "github.com/akeren/welcome-form/pkg/errors"
	"github.com/akeren/welcome-form/pkg/utils"
	"github.com/go-playground/validator/v10"
)

type ApplicationConfig struct {
	RouterService   *router.RouterService
	Logger          *log.Logger
	Cache           Cache
	Config          *AppConfig
	TracingShutdown func(context.Context) error
}

// AppConfig is read from the environment; the env tag names the variable.
type AppConfig struct {
	AppEnv                   string        `env:"APP_ENV" validate:"omitempty,oneof=dev development local test testing staging production prod"`
	RateLimitRequests        int           `env:"RATE_LIMIT_REQUESTS" validate:"gt=0"`
	RateLimitWindow          time.Duration `env:"RATE_LIMIT_WINDOW" validate:"gte=1s"`
	RequestTimeout           time.Duration `env:"REQUEST_TIMEOUT" validate:"gte=1s,lte=5m"`
	WelcomeRateLimitRequests int           `env:"WELCOME_RATE_LIMIT_REQUESTS" validate:"gt=0"`
}

var configValidator = validator.New()

func NewAppConfig() *AppConfig {
	return &AppConfig{
		AppEnv:                   GetAppEnv(),
		RateLimitRequests:        utils.GetEnvInt("RATE_LIMIT_REQUESTS", constants.DefaultRateLimitRequests),
		RateLimitWindow:          utils.GetEnvDuration("RATE_LIMIT_WINDOW", constants.DefaultRateLimitWindow),
		RequestTimeout:           utils.GetEnvDuration("REQUEST_TIMEOUT", constants.DefaultRequestTimeout),
		WelcomeRateLimitRequests: utils.GetEnvInt("WELCOME_RATE_LIMIT_REQUESTS", constants.DefaultWelcomeRateLimitRequests),
	}
}

// Validate reports every offending variable at once.
func (c *AppConfig) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	msg := "invalid configuration"
	if violations := apperrors.FormatValidationErrorsByTag(err, c, "env"); len(violations) > 0 {
		parts := make([]string, len(violations))
		for i, v := range violations {
			parts[i] = v.String()
		}
		msg += ": " + strings.Join(parts, "; ")
	}
	return apperrors.NewConfigurationError(msg, err)
}

const tracerShutdownTimeout = 5 * time.Second

// Cleanup releases resources in reverse order of creation: limiters first,
// then the tracer so their final spans are flushed, then the cache.
func (ac *ApplicationConfig) Cleanup() {
	if ac.RouterService != nil {
		ac.RouterService.Cleanup()
	}

	if ac.TracingShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		if err := ac.TracingShutdown(ctx); err != nil {
			ac.Logger.Error("Failed to shutdown tracer provider", "error", err)
		}
		cancel()
	}

	// CloseCache logs its own failure.
	_ = CloseCache(ac.Cache, ac.Logger)

	ac.Logger.Info("Application cleanup completed")
}

func LoadApplicationConfiguration(logger *log.Logger) (*ApplicationConfig, error) {
	InitializeEnvFile(logger)

	appConfig := NewAppConfig()
	if err := appConfig.Validate(); err != nil {
		logger.Error("Invalid application configuration", "error", err.Error())
		return nil, err
	}

	if appConfig.AppEnv == "" {
		logger.Warn("APP_ENV not set; assuming development")
	}

	tracingShutdown, err := SetupTracing(logger)
	if err != nil {
		return nil, err
	}

	cache := NewCacheConfig().NewCacheOrNil(logger)
	if cache == nil && IsProduction(appConfig.AppEnv) {
		logger.Warn("Running in production without Redis; rate limits apply per instance")
	}

	routerService := router.CreateRouterService(logger, cache, &router.RouterConfig{
		RateLimitRequests: appConfig.RateLimitRequests,
		RateLimitWindow:   appConfig.RateLimitWindow,
		RequestTimeout:    appConfig.RequestTimeout,
	})

	logger.Info("Application configuration loaded successfully", "app_env", appConfig.AppEnv)

	return &ApplicationConfig{
		RouterService:   routerService,
		Logger:          logger,
		Cache:           cache,
		Config:          appConfig,
		TracingShutdown: tracingShutdown,
	}, nil
}
