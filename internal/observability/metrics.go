package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments exported in watch mode.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	PlanEntries     *prometheus.CounterVec
	ApplyFailures   prometheus.Counter
	PinsProvisioned prometheus.Counter
	PinFailures     prometheus.Counter
}

// NewMetrics builds and registers the run metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guestsync_runs_total",
			Help: "Sync runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "guestsync_run_duration_seconds",
			Help:    "Wall-clock duration of a sync run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		PlanEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guestsync_plan_entries_total",
			Help: "Plan entries by action.",
		}, []string{"action"}),
		ApplyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guestsync_apply_failures_total",
			Help: "Plan entries that failed to apply.",
		}),
		PinsProvisioned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guestsync_pins_provisioned_total",
			Help: "Access codes that reached the loaded state.",
		}),
		PinFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guestsync_pin_failures_total",
			Help: "Access code provisioning attempts that failed.",
		}),
	}

	registry.MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.PlanEntries,
		m.ApplyFailures,
		m.PinsProvisioned,
		m.PinFailures,
	)
	return m
}

// Handler serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRun records the outcome and duration of one run.
func (m *Metrics) ObserveRun(outcome string, elapsed time.Duration) {
	m.RunsTotal.WithLabelValues(outcome).Inc()
	m.RunDuration.Observe(elapsed.Seconds())
}
