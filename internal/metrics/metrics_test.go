package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/erpnext-api-tester/internal/errors"
)

// assertMetricLine checks the exposition output for a sample with the given name,
// partial label pattern and value. The regex tolerates OTel scope labels.
func assertMetricLine(t *testing.T, output, name, labels, value string) {
	t.Helper()
	pattern := name + `\{[^}]*` + labels + `[^}]*\} ` + value
	assert.Regexp(t, pattern, output)
}

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func newTestProvider(t *testing.T, namespace string) *Provider {
	t.Helper()
	provider, err := NewProvider(namespace)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	})
	return provider
}

func TestProvider(t *testing.T) {
	provider := newTestProvider(t, "test_app")
	assert.NotNil(t, provider.MeterProvider())
	assert.NotNil(t, provider.Handler())

	output := scrape(t, provider)
	assert.Contains(t, output, "go_goroutines")

	assert.NoError(t, (&Provider{}).Shutdown(context.Background()))
}

func TestOperationStatus(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, StatusSuccess},
		{apperrors.Wrap(apperrors.ErrIntegrity, "sealed secret failed authentication"), StatusIntegrity},
		{fmt.Errorf("outer: %w", apperrors.ErrNotFound), StatusNotFound},
		{apperrors.ErrInvalidInput, StatusInvalid},
		{apperrors.ErrUpstream, StatusUpstream},
		{errors.New("boom"), StatusError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, OperationStatus(tt.err), "%v", tt.err)
	}
}

func TestBusinessMetrics(t *testing.T) {
	provider := newTestProvider(t, "biz_test")
	bm, err := NewBusinessMetrics(provider.MeterProvider(), "biz_test")
	require.NoError(t, err)

	ctx := context.Background()
	bm.RecordOperation(ctx, "connections", "connection_create", StatusSuccess)
	bm.RecordOperation(ctx, "connections", "connection_create", StatusSuccess)
	bm.RecordOperation(ctx, "connections", "credentials_reveal", StatusIntegrity)
	bm.RecordDuration(ctx, "connections", "connection_create", 50*time.Millisecond, StatusSuccess)
	bm.RecordDuration(ctx, "connections", "connection_create", 70*time.Millisecond, StatusSuccess)

	output := scrape(t, provider)
	assertMetricLine(t, output, `biz_test_operations_total`,
		`domain="connections".*operation="connection_create".*status="success"`, `2`)
	assertMetricLine(t, output, `biz_test_operations_total`,
		`domain="connections".*operation="credentials_reveal".*status="integrity_failure"`, `1`)
	assertMetricLine(t, output, `biz_test_operation_duration_seconds_count`,
		`domain="connections".*operation="connection_create".*status="success"`, `2`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()
	assert.IsType(t, &NoOpBusinessMetrics{}, bm)

	bm.RecordOperation(context.Background(), "connections", "connection_get", StatusSuccess)
	bm.RecordDuration(context.Background(), "connections", "connection_get", time.Millisecond, StatusSuccess)
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider := newTestProvider(t, "http_test")

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "http_test"))
	router.GET("/v1/connections/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
	})

	for _, path := range []string{"/v1/connections/a", "/v1/connections/b", "/missing"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	output := scrape(t, provider)
	assertMetricLine(t, output, `http_test_http_requests_total`,
		`method="GET".*path="/v1/connections/:id".*status_code="200"`, `2`)
	assertMetricLine(t, output, `http_test_http_requests_total`,
		`method="GET".*path="unknown".*status_code="404"`, `1`)
	assertMetricLine(t, output, `http_test_http_requests_in_flight`, ``, `0`)
}

func TestRoutePattern(t *testing.T) {
	assert.Equal(t, "unknown", routePattern(""))
	assert.Equal(t, "/v1/connections/:id", routePattern("/v1/connections/:id"))
}
