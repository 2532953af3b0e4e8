// Package metrics exposes supervisor counters in Prometheus format.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the supervisor's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	sweeps        prometheus.Counter
	sweepDuration prometheus.Histogram
	managed       prometheus.Gauge
	starts        *prometheus.CounterVec
	startFailures *prometheus.CounterVec
	probeFailures *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "depstart_sweeps_total",
			Help: "Total supervisor sweeps over the managed containers",
		}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "depstart_sweep_duration_seconds",
			Help:    "Duration of one supervisor sweep",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		}),
		managed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "depstart_managed_containers",
			Help: "Number of containers under supervision",
		}),
		starts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depstart_container_starts_total",
			Help: "Start commands issued, by container and trigger",
		}, []string{"container", "trigger"}),
		startFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depstart_container_start_failures_total",
			Help: "Start commands that failed, by container and reason",
		}, []string{"container", "reason"}),
		probeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "depstart_probe_failures_total",
			Help: "Status probes that could not reach the runtime, by container",
		}, []string{"container"}),
	}
	m.registry.MustRegister(m.sweeps, m.sweepDuration, m.managed, m.starts, m.startFailures, m.probeFailures)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// SetManaged records how many containers are supervised.
func (m *Metrics) SetManaged(n int) {
	if m == nil {
		return
	}
	m.managed.Set(float64(n))
}

// ObserveSweep records a completed sweep.
func (m *Metrics) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweeps.Inc()
	m.sweepDuration.Observe(d.Seconds())
}

// StartIssued records a start command sent for container.
func (m *Metrics) StartIssued(container, trigger string) {
	if m == nil {
		return
	}
	m.starts.WithLabelValues(container, trigger).Inc()
}

// StartFailed records a failed start command.
func (m *Metrics) StartFailed(container, reason string) {
	if m == nil {
		return
	}
	m.startFailures.WithLabelValues(container, reason).Inc()
}

// ProbeFailed records a status probe that could not be answered.
func (m *Metrics) ProbeFailed(container string) {
	if m == nil {
		return
	}
	m.probeFailures.WithLabelValues(container).Inc()
}
