package realtime

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	resultDelivered = "delivered"
	resultFailed    = "failed"
)

// Metrics holds the Hub's collectors on a registry the Hub owns, so
// several Hubs (as in tests) never collide on the default registerer.
type Metrics struct {
	registry    *prometheus.Registry
	subscribers prometheus.Gauge
	deliveries  *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them, together with the
// Go runtime and process collectors, on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "studyhub",
			Subsystem: "realtime",
			Name:      "subscribers",
			Help:      "Live realtime connections subscribed to a group.",
		}),
		deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studyhub",
			Subsystem: "realtime",
			Name:      "deliveries_total",
			Help:      "Broadcast writes to realtime connections by result.",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.subscribers,
		m.deliveries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.deliveries.WithLabelValues(resultDelivered)
	m.deliveries.WithLabelValues(resultFailed)
	return m
}

// Registry returns the registry backing these metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
