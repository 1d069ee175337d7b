package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

func TestHandleListServices(t *testing.T) {
	now := time.Now().UTC()
	summaryStore := NewMockSummaryStore()
	summaryStore.On("ListServiceHealth").Return([]store.ServiceSummary{
		{ServiceName: "billing", Status: model.ServiceOK, TotalTests: 2, PassingTests: 2, UpdatedAt: now},
		{ServiceName: "search", Status: model.ServiceDegraded, TotalTests: 3, PassingTests: 1, UpdatedAt: now},
	}, nil)

	handler := handleListServices(summaryStore)

	req := httptest.NewRequest("GET", "/health/services", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ServiceHealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Services, 2)
	assert.Equal(t, model.ServiceDegraded, resp.Services[1].Status)
	summaryStore.AssertExpectations(t)
}

func TestHandleServiceTests(t *testing.T) {
	t.Run("returns results for a known service", func(t *testing.T) {
		resultsStore := NewMockResultsStore()
		resultsStore.On("ListByService", "billing").Return([]store.Result{
			{ServiceName: "billing", TestName: "health_check", LastStatus: model.StatusOK},
		}, nil)

		handler := handleServiceTests(resultsStore)

		req := httptest.NewRequest("GET", "/health/services/billing/tests", nil)
		req = mux.SetURLVars(req, map[string]string{"service": "billing"})
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp ServiceTestsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "billing", resp.ServiceName)
		assert.Equal(t, 1, resp.Total)
		resultsStore.AssertExpectations(t)
	})

	t.Run("404s for an unknown service", func(t *testing.T) {
		resultsStore := NewMockResultsStore()
		resultsStore.On("ListByService", "ghost").Return([]store.Result{}, nil)

		handler := handleServiceTests(resultsStore)

		req := httptest.NewRequest("GET", "/health/services/ghost/tests", nil)
		req = mux.SetURLVars(req, map[string]string{"service": "ghost"})
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resultsStore.AssertExpectations(t)
	})
}
