package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/healthwatch/pkg/config"
	"github.com/doodlesbykumbi/healthwatch/pkg/model"
)

func probeMonitor() *Monitor {
	return &Monitor{
		client:  &http.Client{Timeout: 2 * time.Second},
		breaker: NewBreaker(DefaultCircuitConfig(), nil),
	}
}

func TestServicesFromConfig(t *testing.T) {
	cfg := &config.HealthwatchConfig{
		Services: []config.ServiceConfig{
			{
				Name:    "billing",
				BaseURL: "http://billing.internal/",
				Probes: []config.ProbeConfig{
					{Name: "invoices", Method: "post", Path: "/invoices/ping", ExpectedStatus: []int{201}},
					{Name: "ledger", Path: "/ledger"},
				},
			},
			{Name: "search", BaseURL: "http://search.internal"},
		},
	}

	services := ServicesFromConfig(cfg)
	require.Len(t, services, 2)

	billing := services[0]
	assert.Equal(t, "http://billing.internal", billing.BaseURL)
	require.Len(t, billing.Probes, 3)

	// every service gets the default health_check probe first
	assert.Equal(t, "health_check", billing.Probes[0].Name)
	assert.Equal(t, http.MethodGet, billing.Probes[0].Method)
	assert.Equal(t, []int{http.StatusOK}, billing.Probes[0].ExpectedStatus)

	assert.Equal(t, http.MethodPost, billing.Probes[1].Method)
	assert.Equal(t, []int{201}, billing.Probes[1].ExpectedStatus)

	// method and expected status fall back to GET / 200
	assert.Equal(t, http.MethodGet, billing.Probes[2].Method)
	assert.Equal(t, []int{http.StatusOK}, billing.Probes[2].ExpectedStatus)

	require.Len(t, services[1].Probes, 1)
}

func TestRunProbe(t *testing.T) {
	m := probeMonitor()
	ctx := context.Background()

	t.Run("passing probe", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		svc := &Service{Name: "billing", BaseURL: ts.URL}
		result := m.runProbe(ctx, svc, defaultProbe)

		assert.Equal(t, model.StatusOK, result.LastStatus)
		assert.Nil(t, result.ErrorMessage)
		require.NotNil(t, result.DurationMS)
	})

	t.Run("unexpected status code", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		svc := &Service{Name: "billing", BaseURL: ts.URL}
		result := m.runProbe(ctx, svc, defaultProbe)

		assert.Equal(t, model.StatusError, result.LastStatus)
		require.NotNil(t, result.ErrorMessage)
		assert.Equal(t, "unexpected status code: 500", *result.ErrorMessage)
	})

	t.Run("alternate expected status", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer ts.Close()

		svc := &Service{Name: "billing", BaseURL: ts.URL}
		probe := Probe{Name: "enqueue", Method: http.MethodPost, Path: "/jobs", ExpectedStatus: []int{202}}
		result := m.runProbe(ctx, svc, probe)

		assert.Equal(t, model.StatusOK, result.LastStatus)
	})

	t.Run("unsupported method", func(t *testing.T) {
		svc := &Service{Name: "billing", BaseURL: "http://billing.internal"}
		probe := Probe{Name: "cleanup", Method: http.MethodDelete, Path: "/cleanup", ExpectedStatus: []int{200}}
		result := m.runProbe(ctx, svc, probe)

		assert.Equal(t, model.StatusError, result.LastStatus)
		require.NotNil(t, result.ErrorMessage)
		assert.Equal(t, "unsupported method: DELETE", *result.ErrorMessage)
	})

	t.Run("unreachable service", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		ts.Close()

		svc := &Service{Name: "billing", BaseURL: ts.URL}
		result := m.runProbe(ctx, svc, defaultProbe)

		assert.Equal(t, model.StatusError, result.LastStatus)
		assert.NotNil(t, result.ErrorMessage)
	})

	t.Run("missing service", func(t *testing.T) {
		result := m.runProbe(ctx, nil, defaultProbe)

		assert.Equal(t, model.StatusNA, result.LastStatus)
		assert.Equal(t, "unknown", result.ServiceName)
	})
}
