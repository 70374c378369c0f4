package welcome

import (
	"github.com/akeren/welcome-form/config/router"
	"github.com/akeren/welcome-form/internal/log"
	"github.com/prometheus/client_golang/prometheus"
)

type WelcomeServiceFactory interface {
	CreateService(reg prometheus.Registerer) WelcomeService
	CreateController() *router.RESTController
}

type DefaultWelcomeServiceFactory struct {
	logger *log.Logger
	opts   ControllerOptions
}

func NewWelcomeServiceFactory(logger *log.Logger, opts ControllerOptions) WelcomeServiceFactory {
	return &DefaultWelcomeServiceFactory{
		logger: logger,
		opts:   opts,
	}
}

func (f *DefaultWelcomeServiceFactory) CreateService(reg prometheus.Registerer) WelcomeService {
	return NewWelcomeService(f.logger, NewRenderer(), NewMetrics(reg))
}

func (f *DefaultWelcomeServiceFactory) CreateController() *router.RESTController {
	return NewWelcomeController(f.logger, f.opts)
}
