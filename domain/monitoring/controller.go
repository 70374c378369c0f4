package monitoring

import (
	"context"
	"time"

	"github.com/akeren/welcome-form/config/router"
	"github.com/akeren/welcome-form/internal/log"
)

const (
	monitoringRequestsPerMinute = 10
	cachePingTimeout            = 2 * time.Second
)

const (
	statusOK       = "ok"
	statusDegraded = "degraded"
)

type Cache interface {
	Ping(ctx context.Context) error
}

type HealthStatus struct {
	// Status is "degraded" when a configured dependency does not answer.
	Status string `json:"status"`
	// Cache is 1 when Redis answers a ping, else 0.
	Cache            int    `json:"cache"`
	RateLimitBackend string `json:"rate_limit_backend"`
	Uptime           int    `json:"uptime"` // seconds
}

type MonitoringController struct {
	cache     Cache
	startTime time.Time
}

func NewMonitoringController(cache Cache) *router.RESTController {
	ctrl := &MonitoringController{cache: cache, startTime: time.Now()}

	return router.NewRESTController("MonitoringController", "/", func(rs *router.RouterService, c *router.RESTController) {
		// Probes share one budget per client across all monitoring routes.
		limiter := rs.NewRateLimiter("monitoring", monitoringRequestsPerMinute, time.Minute)

		rs.AddGetHandler(c, limiter, "status", ctrl.status)
		rs.AddHeadHandler(c, limiter, "status", ctrl.status)
		rs.AddGetHandler(c, limiter, "health", func(rc *router.RequestContext) *router.ServiceResult {
			health := ctrl.check(rc.Request.Context(), router.GetLogger(rc))
			health.RateLimitBackend = rs.RateLimitBackend()
			return router.OKResult(health, "welcome-form health check completed")
		})
	})
}

func (ctrl *MonitoringController) status(*router.RequestContext) *router.ServiceResult {
	return router.OKResult("Service is operational.", "Status check successful")
}

func (ctrl *MonitoringController) check(ctx context.Context, logger *log.Logger) HealthStatus {
	health := HealthStatus{
		Status: statusOK,
		Uptime: int(time.Since(ctrl.startTime).Seconds()),
	}

	switch {
	case ctrl.cache == nil:
		logger.Debug("Cache not configured, cache health check skipped")
	case ctrl.pingCache(ctx) != nil:
		health.Status = statusDegraded
		logger.Error("Cache health check failed")
	default:
		health.Cache = 1
	}

	logger.Info("Health check completed", "status", health.Status, "cache", health.Cache)
	return health
}

func (ctrl *MonitoringController) pingCache(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, cachePingTimeout)
	defer cancel()

	return ctrl.cache.Ping(ctx)
}
