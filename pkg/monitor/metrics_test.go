package monitor

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterAndServe(t *testing.T) {
	metrics := NewMetrics()
	require.NoError(t, metrics.Register())

	metrics.ProbeCount.WithLabelValues("billing", "health_check", "OK").Inc()
	metrics.ProbeDuration.WithLabelValues("billing").Observe(0.012)
	metrics.CircuitState.WithLabelValues("billing").Set(1)
	metrics.RunCount.Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `healthwatch_probes_total{service="billing",status="OK",test="health_check"} 1`)
	assert.Contains(t, body, `healthwatch_circuit_state{service="billing"} 1`)
	assert.Contains(t, body, "healthwatch_runs_total 1")
	assert.Contains(t, body, "healthwatch_probe_duration_seconds_bucket")
}
