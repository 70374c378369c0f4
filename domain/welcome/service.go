package welcome

import (
	"context"

	"github.com/akeren/welcome-form/internal/log"
	apperrors "github.com/akeren/welcome-form/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const tracerName = "github.com/akeren/welcome-form/domain/welcome"

type WelcomeService interface {
	// RenderWelcome renders the welcome page for a submission. It never fails:
	// absent fields render as empty strings.
	RenderWelcome(ctx context.Context, submission *Submission) string

	// FormPage returns the static form that posts to the welcome page.
	FormPage(ctx context.Context) (string, error)
}

type welcomeService struct {
	logger   *log.Logger
	renderer Renderer
	metrics  *Metrics
}

func NewWelcomeService(logger *log.Logger, renderer Renderer, metrics *Metrics) WelcomeService {
	return &welcomeService{logger: logger, renderer: renderer, metrics: metrics}
}

func (s *welcomeService) RenderWelcome(ctx context.Context, submission *Submission) string {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "welcome.render")
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	// Submitted values are user data; only their presence is recorded.
	span.SetAttributes(
		attribute.Bool("welcome.name_present", submission.HasName()),
		attribute.Bool("welcome.email_present", submission.HasEmail()),
	)
	logger.Info("Rendering welcome page",
		"name_present", submission.HasName(),
		"email_present", submission.HasEmail(),
	)

	page := RenderSubmission(s.renderer, submission)
	s.metrics.observeRender(submission)

	return page
}

func (s *welcomeService) FormPage(ctx context.Context) (string, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	page, err := IndexPage()
	if err != nil {
		logger.Error("Failed to read embedded form page", "error", err)
		return "", apperrors.NewInternalServerError("form page unavailable", err)
	}

	return string(page), nil
}
