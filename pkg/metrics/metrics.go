// Package metrics pkg/metrics/metrics.go exposes Prometheus instrumentation
// for the telemetry pipeline. The registry is injected at construction so
// tests can run isolated collectors in one process.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the pipeline updates.
type Metrics struct {
	registry *prometheus.Registry

	TelemetryIngested prometheus.Counter
	AlertsRaised      *prometheus.CounterVec
	IngestErrors      prometheus.Counter
	PushClients       prometheus.Gauge
}

// New creates and registers the pipeline collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		TelemetryIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigwatch_telemetry_ingested_total",
			Help: "Total number of telemetry submissions accepted",
		}),
		AlertsRaised: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rigwatch_alerts_raised_total",
				Help: "Total number of alerts raised by severity",
			},
			[]string{"severity"},
		),
		IngestErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigwatch_ingest_errors_total",
			Help: "Total number of rejected or failed telemetry submissions",
		}),
		PushClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rigwatch_push_clients",
			Help: "Number of connected push subscribers",
		}),
	}

	registry.MustRegister(
		m.TelemetryIngested,
		m.AlertsRaised,
		m.IngestErrors,
		m.PushClients,
	)

	return m
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
