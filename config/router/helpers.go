package router

import (
	"net/http"

	"github.com/akeren/welcome-form/internal/log"
	"github.com/akeren/welcome-form/pkg/constants"
	apperrors "github.com/akeren/welcome-form/pkg/errors"
)

// GetLogger returns the correlated logger the request middleware stored.
func GetLogger(ctx *RequestContext) *log.Logger {
	return log.GetLoggerInstanceFromContext(ctx.Request.Context(), nil)
}

func OKResult(data any, message string) *ServiceResult {
	return JSONResult(http.StatusOK, message, data)
}

// HTMLResult writes page as a complete text/html document.
func HTMLResult(statusCode int, page string) *ServiceResult {
	return &ServiceResult{
		StatusCode:  statusCode,
		ContentType: constants.HTMLContentType,
		Body:        []byte(page),
	}
}

// AppErrorResult maps err to its status and a message that is safe to show.
func AppErrorResult(err error) *ServiceResult {
	return JSONResult(apperrors.HTTPStatusCode(err), apperrors.GetHumanReadableMessage(err), nil)
}

func TooManyRequestsResult(data RateLimitResponse) *ServiceResult {
	return JSONResult(http.StatusTooManyRequests, "Too Many Requests", data)
}

func NotFoundResult(message string) *ServiceResult {
	return JSONResult(http.StatusNotFound, message, nil)
}

func InternalServerErrorResult(message string) *ServiceResult {
	return JSONResult(http.StatusInternalServerError, message, nil)
}

// JSONResult builds the {code, data, message} envelope.
func JSONResult(statusCode int, message string, data any) *ServiceResult {
	return &ServiceResult{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	}
}
