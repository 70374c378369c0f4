package domain

import (
	"github.com/akeren/welcome-form/config"
	"github.com/akeren/welcome-form/domain/monitoring"
	"github.com/akeren/welcome-form/domain/welcome"
	"github.com/akeren/welcome-form/pkg/constants"
)

func SetupCoreDomain(appConfig *config.ApplicationConfig) {
	appConfig.RouterService.MountController(
		monitoring.NewMonitoringControllerFactory(appConfig.Logger, appConfig.Cache).CreateController(),
	)
	appConfig.RouterService.MountController(
		welcome.NewWelcomeServiceFactory(appConfig.Logger, welcomeOptions(appConfig.Config)).CreateController(),
	)
}

func welcomeOptions(cfg *config.AppConfig) welcome.ControllerOptions {
	if cfg == nil {
		return welcome.ControllerOptions{
			SubmissionRequests: constants.DefaultWelcomeRateLimitRequests,
			SubmissionWindow:   constants.DefaultRateLimitWindow,
		}
	}

	return welcome.ControllerOptions{
		SubmissionRequests: cfg.WelcomeRateLimitRequests,
		SubmissionWindow:   cfg.RateLimitWindow,
	}
}
