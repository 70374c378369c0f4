package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/akeren/welcome-form/internal/log"
	"github.com/akeren/welcome-form/pkg/circuitbreaker"
	apperrors "github.com/akeren/welcome-form/pkg/errors"
	"github.com/akeren/welcome-form/pkg/factory"
	"github.com/akeren/welcome-form/pkg/ratelimit"
	"github.com/akeren/welcome-form/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	defaultPort        = "8080"
	defaultLimiterName = "default"
	readHeaderTimeout  = 5 * time.Second
	idleTimeout        = 60 * time.Second
)

type Cache interface {
	Ping(ctx context.Context) error
}

type RouterService struct {
	engine          *gin.Engine
	server          *http.Server
	logger          *log.Logger
	policy          *HTTPPolicy
	requestTimeout  time.Duration
	rateLimiter     ratelimit.RateLimiter
	limiterFactory  factory.RateLimiterFactory
	metricsRegistry *prometheus.Registry

	routes             map[route]*RESTController
	handlerLimiters    map[route]ratelimit.RateLimiter
	controllerLimiters map[string]ratelimit.RateLimiter
	ownedLimiters      []ratelimit.RateLimiter
	limiterNames       map[string]bool
}

type RouterConfig struct {
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RequestTimeout    time.Duration
	// Policy nil means LoadHTTPPolicy.
	Policy *HTTPPolicy
}

func CreateRouterService(logger *log.Logger, cache Cache, routerConfig *RouterConfig) *RouterService {
	if mode := utils.GetEnvTrimmed("GIN_MODE"); mode != "" {
		logger.Info("Setting Gin mode", "mode", mode)
		gin.SetMode(mode)
	}

	policy := routerConfig.Policy
	if policy == nil {
		policy = LoadHTTPPolicy()
	}

	rs := &RouterService{
		engine:          gin.New(),
		logger:          logger,
		policy:          policy,
		requestTimeout:  routerConfig.RequestTimeout,
		limiterFactory:  factory.NewDefaultRateLimiterFactory(cache, logger, limiterBreakerConfig(logger)),
		metricsRegistry: prometheus.NewRegistry(),

		routes:             make(map[route]*RESTController),
		handlerLimiters:    make(map[route]ratelimit.RateLimiter),
		controllerLimiters: make(map[string]ratelimit.RateLimiter),
		limiterNames:       map[string]bool{defaultLimiterName: true},
	}

	rs.rateLimiter = rs.limiterFactory.CreateRateLimiter(defaultLimiterName, routerConfig.RateLimitRequests, routerConfig.RateLimitWindow)
	logger.Info("Rate limiting initialized",
		"backend", rs.RateLimitBackend(),
		"requests", routerConfig.RateLimitRequests,
		"window", routerConfig.RateLimitWindow,
	)

	rs.configureEngine()

	rs.server = &http.Server{
		Addr:              ":" + defaultPort,
		Handler:           rs.engine,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       routerConfig.RequestTimeout,
		WriteTimeout:      routerConfig.RequestTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("Router service initialized")
	return rs
}

// limiterBreakerConfig guards the Redis limiters. Transitions are logged so
// a fallback to in-memory limiting shows up in the logs.
func limiterBreakerConfig(logger *log.Logger) *circuitbreaker.Config {
	cfg := circuitbreaker.DefaultConfig()
	cfg.OnStateChange = func(from, to circuitbreaker.CircuitState) {
		if to == circuitbreaker.Open {
			logger.Warn("Redis rate limiter circuit opened; using in-memory limiting", "from", from.String())
			return
		}
		logger.Info("Redis rate limiter circuit changed state", "from", from.String(), "to", to.String())
	}
	return cfg
}

// configureEngine installs the middleware chain in order. Routes registered
// before a Use call do not get that middleware, so /metrics sits outside
// rate limiting and the security headers.
func (routerService *RouterService) configureEngine() {
	engine := routerService.engine
	logger := routerService.logger

	engine.Use(gin.Recovery())

	if utils.IsTracingEnabled() {
		engine.Use(otelgin.Middleware(utils.OTelServiceName()))
		logger.Info("Tracing middleware enabled")
	}

	if err := engine.SetTrustedProxies(routerService.policy.TrustedProxies); err != nil {
		logger.Error("Invalid TRUSTED_PROXIES; disabling trusted proxies", "error", err)
		_ = engine.SetTrustedProxies(nil)
	} else if routerService.policy.TrustedProxies == nil {
		logger.Info("Trusted proxies disabled (TRUSTED_PROXIES not set)")
	}

	routerService.mountMetrics()

	// Correlation comes first so every response, rejections included,
	// carries X-Correlation-ID and is logged under it.
	engine.Use(
		routerService.requestContextMiddleware(),
		routerService.requestLoggingMiddleware(),
		routerService.securityHeadersMiddleware(),
		routerService.maxBodySizeMiddleware(),
		routerService.corsMiddleware(),
		routerService.rateLimitMiddleware(),
		routerService.timeoutMiddleware(),
	)

	engine.HandleMethodNotAllowed = true
	engine.RedirectTrailingSlash = true

	engine.NoRoute(func(c *gin.Context) {
		log.GetLoggerInstanceFromContext(c.Request.Context(), logger).Warn("Route not found", "path", c.Request.URL.Path)
		c.JSON(http.StatusNotFound, JSONResult(apperrors.StatusNotFound, "Route not found", nil).ToJSON())
	})

	engine.NoMethod(func(c *gin.Context) {
		log.GetLoggerInstanceFromContext(c.Request.Context(), logger).Warn("Method not allowed", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.JSON(http.StatusMethodNotAllowed, JSONResult(apperrors.StatusMethodNotAllowed, "Method not allowed", nil).ToJSON())
	})
}

// NewRateLimiter builds a limiter on the same backend as the default one.
// name keeps its budget apart from every other limiter and must be unique
// within the router. The router closes it during Cleanup.
func (routerService *RouterService) NewRateLimiter(name string, requests int, window time.Duration) ratelimit.RateLimiter {
	if routerService.limiterNames[name] {
		panic(fmt.Sprintf("A rate limiter named '%s' already exists", name))
	}
	routerService.limiterNames[name] = true

	limiter := routerService.limiterFactory.CreateRateLimiter(name, requests, window)
	routerService.ownedLimiters = append(routerService.ownedLimiters, limiter)
	return limiter
}

// RateLimitBackend is "redis" when limiters share a Redis client, else
// "in-memory". While the default limiter's breaker is open, requests are
// counted in memory and the backend says so.
func (routerService *RouterService) RateLimitBackend() string {
	if !routerService.limiterFactory.IsDistributed() {
		return "in-memory"
	}
	if b, ok := routerService.rateLimiter.(breakerReporter); ok && b.BreakerState() == circuitbreaker.Open {
		return "in-memory (redis breaker open)"
	}
	return "redis"
}

type breakerReporter interface {
	BreakerState() circuitbreaker.CircuitState
}

// MetricsRegisterer is where domain collectors belong so they appear on /metrics.
func (routerService *RouterService) MetricsRegisterer() prometheus.Registerer {
	return routerService.metricsRegistry
}

func (routerService *RouterService) GetEngine() *gin.Engine {
	return routerService.engine
}

func (routerService *RouterService) MountController(controller *RESTController) {
	routerService.logger.Info("Mounting controller", "name", controller.name, "path", controller.mountPoint)

	controller.prepare(routerService, controller)

	routerService.logger.Info("Controller mounted", "name", controller.name, "handlers", controller.handlerCount)
}

func (routerService *RouterService) RunHTTPServer() error {
	routerService.server.Addr = ":" + utils.GetEnvTrimmedOrDefault("APP_PORT", defaultPort)

	routerService.logger.Info("Starting HTTP server", "addr", routerService.server.Addr)

	if err := routerService.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		routerService.logger.Error("Failed to start HTTP server", "error", err)
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

func (routerService *RouterService) Shutdown(ctx context.Context) error {
	routerService.logger.Info("Shutting down HTTP server gracefully...")
	return routerService.server.Shutdown(ctx)
}

func (routerService *RouterService) Cleanup() {
	limiters := append([]ratelimit.RateLimiter{routerService.rateLimiter}, routerService.ownedLimiters...)
	for _, limiter := range limiters {
		if limiter == nil {
			continue
		}
		if err := limiter.Close(); err != nil {
			routerService.logger.Error("Failed to close rate limiter", "error", err)
		}
	}
	routerService.logger.Info("Router service cleanup completed")
}
