package monitor

import (
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doodlesbykumbi/healthwatch/pkg/config"
	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

// Monitor runs the configured probes against their services and records the
// outcomes in the results and summary stores.
type Monitor struct {
	results store.ResultsStore
	summary store.SummaryStore
	client  *http.Client
	breaker *Breaker
	metrics *Metrics

	interval            time.Duration
	acceleratedInterval time.Duration
	acceleratedPeriod   time.Duration
	initialDelay        time.Duration
	pacing              time.Duration

	mu       sync.RWMutex
	services []Service

	running atomic.Bool
}

// New creates a Monitor from configuration. metrics may be nil.
func New(results store.ResultsStore, summary store.SummaryStore, cfg *config.HealthwatchConfig, metrics *Metrics) *Monitor {
	return &Monitor{
		results:             results,
		summary:             summary,
		client:              &http.Client{Timeout: cfg.ProbeTimeout()},
		breaker:             NewBreaker(DefaultCircuitConfig(), metrics),
		metrics:             metrics,
		interval:            cfg.MonitorInterval(),
		acceleratedInterval: cfg.AcceleratedInterval(),
		acceleratedPeriod:   cfg.AcceleratedPeriod(),
		initialDelay:        cfg.InitialDelay(),
		pacing:              cfg.ProbePacing(),
		services:            ServicesFromConfig(cfg),
	}
}

// SetServices replaces the monitored service set. Used when the config file
// changes under a watch.
func (m *Monitor) SetServices(services []Service) {
	m.mu.Lock()
	m.services = services
	m.mu.Unlock()
	log.Printf("Loaded health configurations for %d services", len(services))
}

// ServiceNames returns the names of the currently monitored services.
func (m *Monitor) ServiceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.services))
	for _, svc := range m.services {
		names = append(names, svc.Name)
	}
	return names
}

// Running reports whether the periodic monitoring loop is active.
func (m *Monitor) Running() bool {
	return m.running.Load()
}

// RunAll runs every probe of every service once, recording each result and
// then refreshing the per-service rollups.
func (m *Monitor) RunAll(ctx context.Context) []store.Result {
	m.mu.RLock()
	services := make([]Service, len(m.services))
	copy(services, m.services)
	m.mu.RUnlock()

	if m.metrics != nil {
		m.metrics.RunCount.Inc()
	}

	var all []store.Result
	for i := range services {
		svc := &services[i]
		var serviceResults []store.Result

		for _, probe := range svc.Probes {
			if ctx.Err() != nil {
				return all
			}

			result := m.runGated(ctx, svc, probe)

			recorded, err := m.results.RecordResult(result)
			if err != nil {
				log.Printf("Failed to save test result %s/%s: %v", result.ServiceName, result.TestName, err)
				recorded = result
			} else {
				log.Printf("Test result: %s/%s - %s", recorded.ServiceName, recorded.TestName, recorded.LastStatus)
			}

			serviceResults = append(serviceResults, *recorded)
			all = append(all, *recorded)

			// Pace probes to avoid overwhelming services.
			if !sleepCtx(ctx, m.pacing) {
				return all
			}
		}

		if err := m.rollupService(svc.Name, serviceResults); err != nil {
			log.Printf("Failed to update service health for %s: %v", svc.Name, err)
		}
	}
	return all
}

// runGated wraps runProbe with the circuit breaker: a service with an open
// circuit fails fast as NA without touching the network.
func (m *Monitor) runGated(ctx context.Context, svc *Service, probe Probe) *store.Result {
	if !m.breaker.Allow(svc.Name) {
		msg := "circuit open for service"
		result, _ := store.NewResult(svc.Name, probe.Name, model.StatusNA, &msg, nil)
		return result
	}

	result := m.runProbe(ctx, svc, probe)

	switch result.LastStatus {
	case model.StatusOK:
		m.breaker.RecordSuccess(svc.Name)
	case model.StatusError:
		m.breaker.RecordFailure(svc.Name)
	}

	if m.metrics != nil {
		m.metrics.ProbeCount.WithLabelValues(svc.Name, probe.Name, result.LastStatus.String()).Inc()
		if result.DurationMS != nil {
			m.metrics.ProbeDuration.WithLabelValues(svc.Name).Observe(float64(*result.DurationMS) / 1000)
		}
	}
	return result
}

// rollupService recomputes the summary row for one service from the results
// of the current run: all probes passing is OK, some is DEGRADED, none is
// DOWN. last_successful_check only advances on a fully passing run.
func (m *Monitor) rollupService(serviceName string, results []store.Result) error {
	if m.summary == nil || len(results) == 0 {
		return nil
	}

	passing := 0
	for _, r := range results {
		if r.LastStatus == model.StatusOK {
			passing++
		}
	}

	status := model.ServiceDown
	switch {
	case passing == len(results):
		status = model.ServiceOK
	case passing > 0:
		status = model.ServiceDegraded
	}

	summary := &store.ServiceSummary{
		ServiceName:  serviceName,
		Status:       status,
		TotalTests:   len(results),
		PassingTests: passing,
	}
	if status == model.ServiceOK {
		now := time.Now().UTC()
		summary.LastSuccessfulCheck = &now
	}

	return m.summary.UpsertServiceHealth(summary)
}

// Start runs the periodic monitoring loop until ctx is cancelled. After the
// initial delay the loop runs at the accelerated interval for the accelerated
// period, then settles into the normal interval.
func (m *Monitor) Start(ctx context.Context) {
	if !m.running.CompareAndSwap(false, true) {
		log.Println("Health monitoring is already running")
		return
	}
	defer m.running.Store(false)

	if m.initialDelay > 0 {
		log.Printf("Waiting %s before first health check", m.initialDelay)
		if !sleepCtx(ctx, m.initialDelay) {
			return
		}
	}

	log.Println("Starting accelerated initial health checks")
	start := time.Now()

	for {
		m.RunAll(ctx)

		next := m.interval
		if time.Since(start) < m.acceleratedPeriod {
			next = m.acceleratedInterval
			log.Printf("Next health check in %s (accelerated mode)", next)
		} else {
			log.Printf("Next health check in %s (normal mode)", next)
		}

		if !sleepCtx(ctx, next) {
			log.Println("Health monitoring stopped")
			return
		}
	}
}

// TriggerRun starts an asynchronous one-off probe run.
func (m *Monitor) TriggerRun() {
	go m.RunAll(context.Background())
}

// sleepCtx sleeps for d or until ctx is done, reporting whether the full
// duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
