package router

import (
	"fmt"
	"os"
	"strings"

	"github.com/akeren/welcome-form/pkg/utils"
)

const (
	defaultMaxBodyBytes = 1 << 20
	defaultHSTSMaxAge   = 31536000

	// Pages load nothing external and only submit to this origin.
	defaultContentSecurityPolicy = "default-src 'none'; form-action 'self'; frame-ancestors 'none'; base-uri 'none'"
)

// HTTPPolicy is the transport-level behaviour the router enforces. It is read
// from the environment once, when the router is created.
type HTTPPolicy struct {
	// TrustedProxies nil means ClientIP always uses RemoteAddr.
	TrustedProxies        []string
	MaxBodyBytes          int64
	AllowedOrigins        []string
	ContentSecurityPolicy string
	HSTS                  HSTSPolicy
}

type HSTSPolicy struct {
	Enabled           bool
	MaxAge            int64
	IncludeSubdomains bool
}

// LoadHTTPPolicy reads TRUSTED_PROXIES, MAX_REQUEST_BODY_BYTES,
// CORS_ALLOWED_ORIGIN, CONTENT_SECURITY_POLICY and the HSTS_* variables.
// HSTS defaults to on only when APP_ENV names production.
func LoadHTTPPolicy() *HTTPPolicy {
	appEnv := strings.ToLower(utils.GetEnvTrimmed("APP_ENV"))
	production := appEnv == "production" || appEnv == "prod"

	return &HTTPPolicy{
		TrustedProxies:        parseTrustedProxiesEnv(os.Getenv("TRUSTED_PROXIES")),
		MaxBodyBytes:          positiveOrDefault(utils.GetEnvInt("MAX_REQUEST_BODY_BYTES", defaultMaxBodyBytes), defaultMaxBodyBytes),
		AllowedOrigins:        splitList(os.Getenv("CORS_ALLOWED_ORIGIN")),
		ContentSecurityPolicy: utils.GetEnvTrimmedOrDefault("CONTENT_SECURITY_POLICY", defaultContentSecurityPolicy),
		HSTS: HSTSPolicy{
			Enabled:           utils.GetEnvBool("HSTS_ENABLED", production),
			MaxAge:            positiveOrDefault(utils.GetEnvInt("HSTS_MAX_AGE", defaultHSTSMaxAge), defaultHSTSMaxAge),
			IncludeSubdomains: utils.GetEnvBool("HSTS_INCLUDE_SUBDOMAINS", true),
		},
	}
}

func (p HSTSPolicy) HeaderValue() string {
	value := fmt.Sprintf("max-age=%d", p.MaxAge)
	if p.IncludeSubdomains {
		value += "; includeSubDomains"
	}
	return value
}

func (p *HTTPPolicy) AllowsOrigin(origin string) bool {
	if origin == "" {
		return false
	}
	for _, allowed := range p.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func parseTrustedProxiesEnv(v string) []string {
	if strings.TrimSpace(v) == "*" {
		// Explicit escape hatch for local/dev.
		return []string{"0.0.0.0/0", "::/0"}
	}
	return splitList(v)
}

// splitList parses a comma-separated value, returning nil when nothing is left.
func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func positiveOrDefault(v, def int) int64 {
	if v <= 0 {
		return int64(def)
	}
	return int64(v)
}
