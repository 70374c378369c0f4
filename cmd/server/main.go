package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/akeren/welcome-form/config"
	"github.com/akeren/welcome-form/domain"
	"github.com/akeren/welcome-form/internal/log"
	"github.com/akeren/welcome-form/pkg/constants"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	if err := run(logger); err != nil {
		logger.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

// run serves until SIGINT or SIGTERM, then drains in-flight requests for at
// most DefaultShutdownTimeout before cleaning up.
func run(logger *log.Logger) error {
	appConfig, err := config.LoadApplicationConfiguration(logger)
	if err != nil {
		return err
	}
	defer appConfig.Cleanup()

	domain.SetupCoreDomain(appConfig)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- appConfig.RouterService.RunHTTPServer()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received, draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.DefaultShutdownTimeout)
	defer cancel()

	if err := appConfig.RouterService.Shutdown(shutdownCtx); err != nil {
		return errors.Join(err, <-serverErr)
	}
	logger.Info("HTTP server shut down gracefully")
	return <-serverErr
}
