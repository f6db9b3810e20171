package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()

	m.RecordPricing("call")
	m.RecordPricing("call")
	m.RecordPayoff()
	m.RecordAlert("critical")
	m.RecordUpload(1024)
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordOutbox("sent")
	m.RecordHTTPRequest("GET", "/api/v1/portfolios", 200, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PricingTotal.WithLabelValues("call")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PayoffTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AlertsTotal.WithLabelValues("critical")))
	assert.Equal(t, 1024.0, testutil.ToFloat64(m.UploadBytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRelayed.WithLabelValues("sent")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/portfolios", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordPricing("put")
		m.RecordPayoff()
		m.RecordAlert("info")
		m.RecordUpload(1)
		m.RecordCacheLookup(true)
		m.RecordOutbox("retry")
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.RecordPayoff()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "optionsdesk_")
}
