package constants

import "time"

// ServiceName identifies this service in traces and logs.
const ServiceName = "welcome-form"

// Rate limits apply per client IP.
const (
	DefaultRateLimitRequests = 100
	DefaultRateLimitWindow   = time.Minute

	// DefaultWelcomeRateLimitRequests applies to form submissions only.
	DefaultWelcomeRateLimitRequests = 30
)

const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

const HTMLContentType = "text/html; charset=utf-8"
