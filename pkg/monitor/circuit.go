package monitor

import (
	"sync"
	"time"
)

type circuitState int

const (
	circuitClosed circuitState = iota
	circuitOpen
	circuitHalfOpen
)

// CircuitConfig tunes the per-service circuit breaker.
type CircuitConfig struct {
	// FailureThreshold is the number of consecutive failures before opening
	FailureThreshold int
	// OpenTimeout is the base time the circuit stays open before a retry
	OpenTimeout time.Duration
	// SuccessThreshold is the number of half-open successes needed to close
	SuccessThreshold int
	// BackoffFactor scales the open timeout on repeated open cycles
	BackoffFactor float64
}

// DefaultCircuitConfig matches the defaults used for unrecognized services.
func DefaultCircuitConfig() CircuitConfig {
	return CircuitConfig{
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		SuccessThreshold: 2,
		BackoffFactor:    1.0,
	}
}

type serviceCircuit struct {
	state                circuitState
	failureCount         int
	consecutiveSuccesses int
	retryCount           int
	openedAt             time.Time
}

// Breaker tracks a circuit per service. While a circuit is open, probes for
// that service are skipped and fail fast.
type Breaker struct {
	mu       sync.Mutex
	config   CircuitConfig
	circuits map[string]*serviceCircuit
	metrics  *Metrics
	now      func() time.Time
}

// NewBreaker creates a Breaker. metrics may be nil.
func NewBreaker(config CircuitConfig, metrics *Metrics) *Breaker {
	return &Breaker{
		config:   config,
		circuits: make(map[string]*serviceCircuit),
		metrics:  metrics,
		now:      time.Now,
	}
}

func (b *Breaker) circuit(service string) *serviceCircuit {
	c, ok := b.circuits[service]
	if !ok {
		c = &serviceCircuit{}
		b.circuits[service] = c
	}
	return c
}

// Allow reports whether a probe against the service may run now. An open
// circuit whose backoff window has elapsed moves to half-open and lets one
// attempt through.
func (b *Breaker) Allow(service string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(service)
	if c.state != circuitOpen {
		return true
	}

	// Progressive backoff: each retry cycle stretches the open window,
	// capped at 5x.
	multiplier := 1 + float64(c.retryCount)*b.config.BackoffFactor
	if multiplier > 5 {
		multiplier = 5
	}
	window := time.Duration(float64(b.config.OpenTimeout) * multiplier)

	if b.now().Sub(c.openedAt) > window {
		c.state = circuitHalfOpen
		c.retryCount++
		return true
	}
	return false
}

// RecordSuccess counts a successful probe. In half-open state, enough
// consecutive successes close the circuit; in closed state the failure count
// decays instead of resetting outright.
func (b *Breaker) RecordSuccess(service string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(service)
	switch c.state {
	case circuitClosed:
		if c.failureCount > 0 {
			c.failureCount--
		}
	case circuitHalfOpen:
		c.consecutiveSuccesses++
		if c.consecutiveSuccesses >= b.config.SuccessThreshold {
			c.state = circuitClosed
			c.consecutiveSuccesses = 0
			c.failureCount = 0
			c.retryCount = 0
			b.setGauge(service, 0)
		}
	}
}

// RecordFailure counts a failed probe and opens the circuit once the failure
// threshold is reached. A failure in half-open state reopens immediately.
func (b *Breaker) RecordFailure(service string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(service)
	switch c.state {
	case circuitClosed:
		c.failureCount++
		if c.failureCount >= b.config.FailureThreshold {
			c.state = circuitOpen
			c.openedAt = b.now()
			b.setGauge(service, 1)
		}
	case circuitHalfOpen:
		c.state = circuitOpen
		c.openedAt = b.now()
		c.consecutiveSuccesses = 0
		b.setGauge(service, 1)
	}
}

// Open reports whether the service's circuit is currently open.
func (b *Breaker) Open(service string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.circuit(service).state == circuitOpen
}

func (b *Breaker) setGauge(service string, v float64) {
	if b.metrics != nil {
		b.metrics.CircuitState.WithLabelValues(service).Set(v)
	}
}
