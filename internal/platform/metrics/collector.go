package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics for dispatch runs and the
// query API.
type Collector struct {
	gatherer prometheus.Gatherer

	Deliveries      *prometheus.CounterVec
	LateDeliveries  prometheus.Counter
	Rounds          prometheus.Counter
	TruckMiles      *prometheus.GaugeVec
	PendingPackages prometheus.Gauge

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

// NewCollector registers all metrics on reg. A nil reg gets a fresh registry.
func NewCollector(reg *prometheus.Registry) (*Collector, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	c := &Collector{
		gatherer: reg,
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_deliveries_total",
			Help: "Packages delivered, by truck.",
		}, []string{"truck"}),
		LateDeliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_late_deliveries_total",
			Help: "Packages delivered after their deadline.",
		}),
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_rounds_total",
			Help: "Dispatch loop iterations after the first delivery round.",
		}),
		TruckMiles: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "dispatch_truck_miles",
			Help: "Cumulative miles driven, by truck.",
		}, []string{"truck"}),
		PendingPackages: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_pending_packages",
			Help: "Packages not yet loaded onto a truck.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	for _, m := range []prometheus.Collector{
		c.Deliveries,
		c.LateDeliveries,
		c.Rounds,
		c.TruckMiles,
		c.PendingPackages,
		c.HTTPRequests,
		c.HTTPDuration,
		collectors.NewGoCollector(),
	} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

func (c *Collector) PackageDelivered(truckID int, late bool) {
	if c == nil {
		return
	}
	c.Deliveries.WithLabelValues(strconv.Itoa(truckID)).Inc()
	if late {
		c.LateDeliveries.Inc()
	}
}

func (c *Collector) RoundCompleted(pending int) {
	if c == nil {
		return
	}
	c.Rounds.Inc()
	c.PendingPackages.Set(float64(pending))
}

func (c *Collector) TruckMoved(truckID int, miles float64) {
	if c == nil {
		return
	}
	c.TruckMiles.WithLabelValues(strconv.Itoa(truckID)).Set(miles)
}

func (c *Collector) ObserveRequest(method, path string, status int, seconds float64) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, path).Observe(seconds)
}
