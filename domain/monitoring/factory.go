package monitoring

import (
	"github.com/akeren/welcome-form/config/router"
	"github.com/akeren/welcome-form/internal/log"
)

type MonitoringControllerFactory interface {
	CreateController() *router.RESTController
}

type DefaultMonitoringControllerFactory struct {
	logger *log.Logger
	cache  Cache
}

func NewMonitoringControllerFactory(logger *log.Logger, cache Cache) MonitoringControllerFactory {
	return &DefaultMonitoringControllerFactory{logger: logger, cache: cache}
}

func (f *DefaultMonitoringControllerFactory) CreateController() *router.RESTController {
	if f.cache == nil {
		f.logger.Info("Health checks will report the cache as not configured")
	}
	return NewMonitoringController(f.cache)
}
