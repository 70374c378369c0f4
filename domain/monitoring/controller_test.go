package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akeren/welcome-form/config/router"
	"github.com/akeren/welcome-form/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCache struct {
	err error
}

func (s *stubCache) Ping(ctx context.Context) error {
	return s.err
}

type healthResponse struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    HealthStatus `json:"data"`
}

func newMonitoredRouter(t *testing.T, cache Cache) *router.RouterService {
	t.Helper()

	logger := log.NewLogger(io.Discard)
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	rs.MountController(NewMonitoringControllerFactory(logger, cache).CreateController())
	t.Cleanup(rs.Cleanup)

	return rs
}

func getHealth(t *testing.T, rs *router.RouterService) healthResponse {
	t.Helper()

	w := httptest.NewRecorder()
	rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth_CacheStates(t *testing.T) {
	cases := []struct {
		name   string
		cache  Cache
		want   int
		status string
	}{
		{"not configured", nil, 0, "ok"},
		{"healthy", &stubCache{}, 1, "ok"},
		{"unreachable", &stubCache{err: errors.New("connection refused")}, 0, "degraded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := getHealth(t, newMonitoredRouter(t, tc.cache))

			assert.Equal(t, 200, resp.Code)
			assert.Contains(t, resp.Message, "health check completed")
			assert.Equal(t, tc.want, resp.Data.Cache)
			assert.Equal(t, tc.status, resp.Data.Status)
			assert.Equal(t, "in-memory", resp.Data.RateLimitBackend)
		})
	}
}

func TestStatus(t *testing.T) {
	rs := newMonitoredRouter(t, nil)

	for _, method := range []string{http.MethodGet, http.MethodHead} {
		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, httptest.NewRequest(method, "/status", nil))
		assert.Equal(t, http.StatusOK, w.Code, method)
	}
}

func TestMonitoring_IsRateLimited(t *testing.T) {
	rs := newMonitoredRouter(t, nil)

	var last int
	for i := 0; i <= monitoringRequestsPerMinute; i++ {
		w := httptest.NewRecorder()
		rs.GetEngine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/status", nil))
		last = w.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}
