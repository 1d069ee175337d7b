package monitor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/doodlesbykumbi/healthwatch/pkg/config"
	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

// Probe is a single named test against a service endpoint.
type Probe struct {
	Name           string
	Method         string
	Path           string
	ExpectedStatus []int
}

// Service is a monitored service with its probes.
type Service struct {
	Name    string
	BaseURL string
	Probes  []Probe
}

// defaultProbe is the probe every service gets regardless of configuration.
var defaultProbe = Probe{
	Name:           "health_check",
	Method:         http.MethodGet,
	Path:           "/health",
	ExpectedStatus: []int{http.StatusOK},
}

// ServicesFromConfig builds the monitored service set from configuration,
// prepending the default health_check probe to each service.
func ServicesFromConfig(cfg *config.HealthwatchConfig) []Service {
	services := make([]Service, 0, len(cfg.Services))
	for _, svc := range cfg.Services {
		probes := []Probe{defaultProbe}
		for _, p := range svc.Probes {
			method := strings.ToUpper(p.Method)
			if method == "" {
				method = http.MethodGet
			}
			expected := p.ExpectedStatus
			if len(expected) == 0 {
				expected = []int{http.StatusOK}
			}
			probes = append(probes, Probe{
				Name:           p.Name,
				Method:         method,
				Path:           p.Path,
				ExpectedStatus: expected,
			})
		}
		services = append(services, Service{
			Name:    svc.Name,
			BaseURL: strings.TrimSuffix(svc.BaseURL, "/"),
			Probes:  probes,
		})
	}
	return services
}

// runProbe executes one probe and returns the result to record. It never
// returns an error: every failure mode maps onto a Result status.
func (m *Monitor) runProbe(ctx context.Context, svc *Service, probe Probe) *store.Result {
	if svc == nil {
		msg := "service not configured"
		result, _ := store.NewResult("unknown", probe.Name, model.StatusNA, &msg, intPtr(0))
		return result
	}

	if probe.Method != http.MethodGet && probe.Method != http.MethodPost {
		msg := fmt.Sprintf("unsupported method: %s", probe.Method)
		result, _ := store.NewResult(svc.Name, probe.Name, model.StatusError, &msg, intPtr(0))
		return result
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, probe.Method, svc.BaseURL+probe.Path, nil)
	if err != nil {
		return m.failedResult(svc.Name, probe.Name, err.Error(), start)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return m.failedResult(svc.Name, probe.Name, err.Error(), start)
	}
	defer func() { _ = resp.Body.Close() }()

	durationMS := int(time.Since(start).Milliseconds())
	for _, expected := range probe.ExpectedStatus {
		if resp.StatusCode == expected {
			result, _ := store.NewResult(svc.Name, probe.Name, model.StatusOK, nil, &durationMS)
			return result
		}
	}

	msg := fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
	result, _ := store.NewResult(svc.Name, probe.Name, model.StatusError, &msg, &durationMS)
	return result
}

func (m *Monitor) failedResult(serviceName, testName, message string, start time.Time) *store.Result {
	durationMS := int(time.Since(start).Milliseconds())
	result, _ := store.NewResult(serviceName, testName, model.StatusError, &message, &durationMS)
	return result
}

func intPtr(i int) *int {
	return &i
}
