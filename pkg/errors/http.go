package errors

import (
	"errors"
)

const fallbackMessage = "An unexpected error occurred"

var statusByType = map[ErrorType]int{
	ErrorTypeNotFound:    StatusNotFound,
	ErrorTypeUnavailable: StatusServiceUnavailable,
}

// HTTPStatusCode maps err's AppError type to a status; anything else is a 500.
func HTTPStatusCode(err error) int {
	if status, ok := statusByType[GetErrorType(err)]; ok {
		return status
	}
	return StatusInternalServerError
}

// GetHumanReadableMessage returns the AppError message. Other errors may carry
// paths or addresses, so they are replaced by a generic message.
func GetHumanReadableMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return fallbackMessage
}
