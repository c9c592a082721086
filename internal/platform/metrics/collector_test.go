package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRecordsDispatchProgress(t *testing.T) {
	c, err := NewCollector(prometheus.NewRegistry())
	require.NoError(t, err)

	c.PackageDelivered(1, false)
	c.PackageDelivered(1, true)
	c.PackageDelivered(2, false)
	c.TruckMoved(2, 12.5)
	c.TruckMoved(2, 17.0)
	c.RoundCompleted(4)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Deliveries.WithLabelValues("1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Deliveries.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.LateDeliveries))
	assert.Equal(t, 17.0, testutil.ToFloat64(c.TruckMiles.WithLabelValues("2")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Rounds))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.PendingPackages))
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.PackageDelivered(1, true)
		c.RoundCompleted(0)
		c.TruckMoved(1, 3)
		c.ObserveRequest(http.MethodGet, "/health", http.StatusOK, 0.01)
	})
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	c, err := NewCollector(nil)
	require.NoError(t, err)
	c.ObserveRequest(http.MethodGet, "GET /packages", http.StatusOK, 0.002)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `http_requests_total{method="GET",path="GET /packages",status="200"} 1`)
	assert.Contains(t, string(body), "http_request_duration_seconds_bucket")
}

func TestNewCollectorRejectsDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewCollector(reg)
	require.NoError(t, err)

	_, err = NewCollector(reg)
	assert.Error(t, err)
}
