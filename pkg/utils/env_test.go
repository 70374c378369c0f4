package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("UTILS_INT", " 42 ")
	t.Setenv("UTILS_BAD_INT", "forty-two")
	t.Setenv("UTILS_DURATION", "90s")
	t.Setenv("UTILS_BOOL", "true")
	t.Setenv("UTILS_TRIM", "  value  ")

	assert.Equal(t, 42, GetEnvInt("UTILS_INT", 1))
	assert.Equal(t, 1, GetEnvInt("UTILS_BAD_INT", 1))
	assert.Equal(t, 7, GetEnvInt("UTILS_UNSET_INT", 7))
	assert.Equal(t, 90*time.Second, GetEnvDuration("UTILS_DURATION", time.Second))
	assert.Equal(t, time.Second, GetEnvDuration("UTILS_UNSET_DURATION", time.Second))
	assert.True(t, GetEnvBool("UTILS_BOOL", false))
	assert.True(t, GetEnvBool("UTILS_UNSET_BOOL", true))
	assert.Equal(t, "value", GetEnvTrimmed("UTILS_TRIM"))
	assert.Equal(t, "fallback", GetEnvTrimmedOrDefault("UTILS_UNSET", "fallback"))
}

func TestOTelServiceName_Default(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	assert.Equal(t, "welcome-form", OTelServiceName())

	t.Setenv("OTEL_SERVICE_NAME", "custom")
	assert.Equal(t, "custom", OTelServiceName())
}
