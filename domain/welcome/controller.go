package welcome

import (
	"net/http"
	"strings"
	"time"

	"github.com/akeren/welcome-form/config/router"
	"github.com/akeren/welcome-form/internal/log"
	"github.com/gin-gonic/gin/binding"
)

type ControllerOptions struct {
	// SubmissionRequests per SubmissionWindow are allowed per client on POST /welcome.
	SubmissionRequests int
	SubmissionWindow   time.Duration
}

func NewWelcomeController(logger *log.Logger, opts ControllerOptions) *router.RESTController {
	return router.NewRESTController(
		"WelcomeController",
		"/",
		func(rs *router.RouterService, c *router.RESTController) {
			service := NewWelcomeService(logger, NewRenderer(), NewMetrics(rs.MetricsRegisterer()))

			submissionLimiter := rs.NewRateLimiter("welcome", opts.SubmissionRequests, opts.SubmissionWindow)

			rs.AddGetHandler(c, nil, "", formPageHandler(service))
			rs.AddGetHandler(c, nil, "index.html", formPageHandler(service))
			rs.AddPostHandler(c, submissionLimiter, "welcome", submitWelcomeHandler(service))
		},
	)
}

func formPageHandler(service WelcomeService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		page, err := service.FormPage(ctx.Request.Context())
		if err != nil {
			return router.AppErrorResult(err)
		}

		return router.HTMLResult(http.StatusOK, page)
	}
}

func submitWelcomeHandler(service WelcomeService) router.HandlerFunction {
	return func(ctx *router.RequestContext) *router.ServiceResult {
		submission := bindSubmission(ctx)

		return router.HTMLResult(http.StatusOK, service.RenderWelcome(ctx.Request.Context(), submission))
	}
}

// bindSubmission reads name and email from the request body only. A body that
// cannot be parsed yields an empty submission rather than an error page.
func bindSubmission(ctx *router.RequestContext) *Submission {
	logger := router.GetLogger(ctx)

	var submission Submission

	var b binding.Binding = binding.FormPost
	if strings.HasPrefix(ctx.ContentType(), binding.MIMEMultipartPOSTForm) {
		b = binding.FormMultipart
	}

	if err := ctx.ShouldBindWith(&submission, b); err != nil {
		logger.Warn("Failed to bind welcome form; rendering with empty fields", "content_type", ctx.ContentType(), "error", err)
		return &Submission{}
	}

	return &submission
}
