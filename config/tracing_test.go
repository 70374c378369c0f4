package config

import (
	"io"
	"testing"

	"github.com/akeren/welcome-form/internal/log"
	apperrors "github.com/akeren/welcome-form/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOTLPEndpoint(t *testing.T) {
	cases := []struct {
		raw      string
		hostport string
		path     string
		insecure bool
	}{
		{"http://localhost:4318", "localhost:4318", "/v1/traces", true},
		{"https://collector.example.com/custom", "collector.example.com", "/custom", false},
		{"collector:4318", "collector:4318", "/v1/traces", true},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			endpoint, err := parseOTLPEndpoint(tc.raw)
			require.NoError(t, err)
			assert.Equal(t, otlpEndpoint{HostPort: tc.hostport, Path: tc.path, Insecure: tc.insecure}, endpoint)

			wantOpts := 2
			if tc.insecure {
				wantOpts = 3
			}
			assert.Len(t, endpoint.exporterOptions(), wantOpts)
		})
	}
}

func TestParseOTLPEndpoint_Rejects(t *testing.T) {
	for _, raw := range []string{"", "   ", "grpc://collector:4317", "http://", "collector:4318/v1/traces"} {
		t.Run(raw, func(t *testing.T) {
			_, err := parseOTLPEndpoint(raw)
			assert.Error(t, err)
		})
	}
}

func TestSetupTracing_RejectsBadEndpoint(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "grpc://collector:4317")

	shutdown, err := SetupTracing(log.NewLogger(io.Discard))

	assert.Nil(t, shutdown)
	assert.Equal(t, apperrors.ErrorTypeConfiguration, apperrors.GetErrorType(err))
}

func TestSetupTracing_DisabledIsNoop(t *testing.T) {
	t.Setenv("OTEL_TRACES_ENABLED", "false")

	shutdown, err := SetupTracing(log.NewLogger(io.Discard))

	assert.NoError(t, err)
	assert.Nil(t, shutdown)
}
