package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetricsServesInstruments(t *testing.T) {
	provider, handler, err := InitMetrics(MetricsConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	counter, err := provider.Meter("test").Int64Counter("risk_test_events")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body), "risk_test_events_total")
	assert.Regexp(t, `risk_test_events_total\{[^}]*\} 3`, string(body))
}

func TestInitMetricsIndependentRegistries(t *testing.T) {
	_, _, err := InitMetrics(MetricsConfig{})
	require.NoError(t, err)
	_, _, err = InitMetrics(MetricsConfig{})
	require.NoError(t, err)
}

func TestInitTracerRequiresEndpoint(t *testing.T) {
	_, err := InitTracer(context.Background(), TracingConfig{ServiceName: "riskd"})
	require.Error(t, err)
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 1.0, sampleRatio(0))
	assert.Equal(t, 1.0, sampleRatio(2))
	assert.Equal(t, 0.25, sampleRatio(0.25))
}
