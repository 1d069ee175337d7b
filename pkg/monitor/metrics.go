package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes probe and circuit instrumentation.
type Metrics struct {
	ProbeCount    *prometheus.CounterVec
	ProbeDuration *prometheus.HistogramVec
	CircuitState  *prometheus.GaugeVec
	RunCount      prometheus.Counter

	registry *prometheus.Registry
	handler  http.Handler
}

// NewMetrics creates the monitor metric set.
func NewMetrics() *Metrics {
	return &Metrics{
		ProbeCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "healthwatch_probes_total",
				Help: "Total count of probe executions by service, test and status",
			},
			[]string{"service", "test", "status"},
		),
		ProbeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "healthwatch_probe_duration_seconds",
				Help:    "Probe latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		CircuitState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "healthwatch_circuit_state",
				Help: "Circuit state per service (1=open, 0=closed)",
			},
			[]string{"service"},
		),
		RunCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "healthwatch_runs_total",
				Help: "Total count of full probe runs",
			},
		),
	}
}

// Register registers all metrics with a dedicated registry and builds the
// /metrics handler from it.
func (m *Metrics) Register() error {
	m.registry = prometheus.NewRegistry()

	for _, c := range []prometheus.Collector{m.ProbeCount, m.ProbeDuration, m.CircuitState, m.RunCount} {
		if err := m.registry.Register(c); err != nil {
			return err
		}
	}

	m.handler = promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return nil
}

// Handler returns the HTTP handler serving the registry.
func (m *Metrics) Handler() http.Handler {
	if m.handler != nil {
		return m.handler
	}
	return promhttp.Handler()
}
