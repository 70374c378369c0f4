package config

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/akeren/welcome-form/internal/log"
	apperrors "github.com/akeren/welcome-form/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppConfig_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "REQUEST_TIMEOUT", "WELCOME_RATE_LIMIT_REQUESTS"} {
		t.Setenv(key, "")
	}

	cfg := NewAppConfig()

	assert.Equal(t, "", cfg.AppEnv)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 30, cfg.WelcomeRateLimitRequests)
	assert.NoError(t, cfg.Validate())
}

func TestNewAppConfig_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "  Production ")
	t.Setenv("RATE_LIMIT_REQUESTS", "250")
	t.Setenv("RATE_LIMIT_WINDOW", "2m")
	t.Setenv("REQUEST_TIMEOUT", "10s")
	t.Setenv("WELCOME_RATE_LIMIT_REQUESTS", "5")

	cfg := NewAppConfig()

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, 250, cfg.RateLimitRequests)
	assert.Equal(t, 2*time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 5, cfg.WelcomeRateLimitRequests)
	assert.True(t, IsProduction(cfg.AppEnv))
	assert.NoError(t, cfg.Validate())
}

func TestAppConfig_Validate_AllowsKnownEnvs(t *testing.T) {
	allowed := []string{"", "dev", "development", "local", "test", "testing", "staging", "production", "prod"}

	for _, env := range allowed {
		t.Run(env, func(t *testing.T) {
			cfg := &AppConfig{AppEnv: env, RateLimitRequests: 1, RateLimitWindow: time.Second, RequestTimeout: time.Second, WelcomeRateLimitRequests: 1}
			assert.NoError(t, cfg.Validate())
		})
	}
}

func TestAppConfig_Validate_ReportsEnvNames(t *testing.T) {
	cfg := &AppConfig{
		AppEnv:                   "qa",
		RateLimitRequests:        0,
		RateLimitWindow:          time.Millisecond,
		RequestTimeout:           time.Hour,
		WelcomeRateLimitRequests: -1,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrorTypeConfiguration, apperrors.GetErrorType(err))

	msg := apperrors.GetHumanReadableMessage(err)
	for _, name := range []string{"APP_ENV", "RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW", "REQUEST_TIMEOUT", "WELCOME_RATE_LIMIT_REQUESTS"} {
		assert.Contains(t, msg, name)
	}
}

func TestGetValueFromEnvironmentVariable(t *testing.T) {
	t.Setenv("CONFIG_TEST_SET_EMPTY", "")

	assert.Equal(t, "", GetValueFromEnvironmentVariable("CONFIG_TEST_SET_EMPTY", "fallback"))
	assert.Equal(t, "fallback", GetValueFromEnvironmentVariable("CONFIG_TEST_DEFINITELY_UNSET", "fallback"))
}

func TestInitializeEnvFile_LoadsListedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CONFIG_TEST_FROM_FILE=loaded\nCONFIG_TEST_PRESET=file\n"), 0o600))

	t.Setenv(EnvFileKey, path)
	t.Setenv("SKIP_DOTENV", "")
	t.Setenv("CONFIG_TEST_PRESET", "process")
	t.Cleanup(func() { _ = os.Unsetenv("CONFIG_TEST_FROM_FILE") })

	InitializeEnvFile(log.NewLogger(io.Discard))

	assert.Equal(t, "loaded", os.Getenv("CONFIG_TEST_FROM_FILE"))
	assert.Equal(t, "process", os.Getenv("CONFIG_TEST_PRESET"))
}

func TestInitializeEnvFile_MissingFileIsNotFatal(t *testing.T) {
	t.Setenv(EnvFileKey, filepath.Join(t.TempDir(), "absent.env"))

	assert.NotPanics(t, func() { InitializeEnvFile(log.NewLogger(io.Discard)) })
}

func TestIsProduction(t *testing.T) {
	assert.True(t, IsProduction(" PROD "))
	assert.True(t, IsProduction("production"))
	assert.False(t, IsProduction("staging"))
	assert.False(t, IsProduction(""))
}
