package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/akeren/welcome-form/config"
	"github.com/akeren/welcome-form/config/router"
	"github.com/akeren/welcome-form/domain"
	"github.com/akeren/welcome-form/internal/log"
	"github.com/stretchr/testify/suite"
)

type WelcomeAPITestSuite struct {
	suite.Suite
	server    *httptest.Server
	baseURL   string
	logger    *log.Logger
	appConfig *config.ApplicationConfig
}

func (suite *WelcomeAPITestSuite) SetupSuite() {
	suite.T().Setenv("METRICS_ENABLED", "true")

	suite.logger = log.NewLogger(io.Discard)

	suite.appConfig = &config.ApplicationConfig{
		Logger: suite.logger,
		Config: &config.AppConfig{
			RateLimitRequests:        100,
			RateLimitWindow:          time.Minute,
			RequestTimeout:           30 * time.Second,
			WelcomeRateLimitRequests: 100,
		},
	}

	suite.appConfig.RouterService = router.CreateRouterService(suite.logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	domain.SetupCoreDomain(suite.appConfig)

	suite.server = httptest.NewServer(suite.appConfig.RouterService.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *WelcomeAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	suite.appConfig.Cleanup()
}

func (suite *WelcomeAPITestSuite) readBody(resp *http.Response) string {
	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return string(body)
}

func (suite *WelcomeAPITestSuite) TestHealthCheck() {
	resp, err := http.Get(suite.baseURL + "/health")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)

	var response map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&response)
	suite.Require().NoError(err)

	suite.Equal(float64(200), response["code"])
	suite.Contains(response["message"], "health check completed")

	data := response["data"].(map[string]interface{})
	suite.Contains(data, "uptime")
	suite.Equal(float64(0), data["cache"])
	suite.Equal("ok", data["status"])
	suite.Equal("in-memory", data["rate_limit_backend"])
}

func (suite *WelcomeAPITestSuite) TestStatus() {
	resp, err := http.Get(suite.baseURL + "/status")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)
}

func (suite *WelcomeAPITestSuite) TestFormPage() {
	resp, err := http.Get(suite.baseURL + "/index.html")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	suite.Contains(suite.readBody(resp), `<form action="welcome" method="post">`)
}

func (suite *WelcomeAPITestSuite) TestSubmitWelcome() {
	resp, err := http.PostForm(suite.baseURL+"/welcome", url.Values{
		"name":  {"Ana"},
		"email": {"ana@example.com"},
	})
	suite.Require().NoError(err)
	defer resp.Body.Close()

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("text/html; charset=utf-8", resp.Header.Get("Content-Type"))
	suite.NotEmpty(resp.Header.Get("X-Correlation-ID"))
	suite.NotEmpty(resp.Header.Get("Content-Security-Policy"))

	body := suite.readBody(resp)
	suite.Contains(body, "<title>Boas-Vindas</title>")
	suite.Contains(body, "Boas-vindas, Ana!")
	suite.Contains(body, "Seu e-mail é: ana@example.com")
	suite.Contains(body, `<a href="index.html">Voltar ao formulário</a>`)
}

func (suite *WelcomeAPITestSuite) TestSubmitWelcomeEscapesInput() {
	resp, err := http.PostForm(suite.baseURL+"/welcome", url.Values{
		"name":  {"<script>alert(1)</script>"},
		"email": {"x@y.com\" onmouseover=\"alert(1)"},
	})
	suite.Require().NoError(err)
	defer resp.Body.Close()

	body := suite.readBody(resp)
	suite.NotContains(body, "<script>")
	suite.Contains(body, "&lt;script&gt;alert(1)&lt;/script&gt;")
	suite.Contains(body, "x@y.com&quot; onmouseover=&quot;alert(1)")
}

func (suite *WelcomeAPITestSuite) TestSubmitWelcomeRecordsMetric() {
	resp, err := http.PostForm(suite.baseURL+"/welcome", url.Values{"email": {"only@example.com"}})
	suite.Require().NoError(err)
	resp.Body.Close()

	metrics, err := http.Get(suite.baseURL + "/metrics")
	suite.Require().NoError(err)
	defer metrics.Body.Close()

	body := suite.readBody(metrics)
	suite.True(strings.Contains(body, `welcome_renders_total{email_present="true",name_present="false"}`), "missing welcome counter in:\n%s", body)
}

func TestWelcomeAPITestSuite(t *testing.T) {
	suite.Run(t, new(WelcomeAPITestSuite))
}
