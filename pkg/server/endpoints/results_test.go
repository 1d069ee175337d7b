package endpoints

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

func strPtr(s string) *string { return &s }
func numPtr(n int) *int       { return &n }

func TestHandleListResults(t *testing.T) {
	t.Run("lists results with defaults", func(t *testing.T) {
		resultsStore := NewMockResultsStore()
		resultsStore.On("ListResults", "", 100, 0).Return([]store.Result{
			{ServiceName: "billing", TestName: "health_check", LastStatus: model.StatusOK},
		}, 1, nil)

		handler := handleListResults(resultsStore, 1000)

		req := httptest.NewRequest("GET", "/health/tests", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp TestResultsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Total)
		require.Len(t, resp.Results, 1)
		assert.Equal(t, "billing", resp.Results[0].ServiceName)
		resultsStore.AssertExpectations(t)
	})

	t.Run("filters by service and paginates", func(t *testing.T) {
		resultsStore := NewMockResultsStore()
		resultsStore.On("ListResults", "billing", 10, 20).Return([]store.Result{}, 42, nil)

		handler := handleListResults(resultsStore, 1000)

		req := httptest.NewRequest("GET", "/health/tests?service=billing&limit=10&offset=20", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		resultsStore.AssertExpectations(t)
	})

	t.Run("caps limit at the configured maximum", func(t *testing.T) {
		resultsStore := NewMockResultsStore()
		resultsStore.On("ListResults", "", 1000, 0).Return([]store.Result{}, 0, nil)

		handler := handleListResults(resultsStore, 1000)

		req := httptest.NewRequest("GET", "/health/tests?limit=99999", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		resultsStore.AssertExpectations(t)
	})

	t.Run("rejects non-numeric limit", func(t *testing.T) {
		handler := handleListResults(NewMockResultsStore(), 1000)

		req := httptest.NewRequest("GET", "/health/tests?limit=lots", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects negative offset", func(t *testing.T) {
		handler := handleListResults(NewMockResultsStore(), 1000)

		req := httptest.NewRequest("GET", "/health/tests?offset=-1", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestHandleListRecent(t *testing.T) {
	t.Run("requires since parameter", func(t *testing.T) {
		handler := handleListRecent(NewMockResultsStore())

		req := httptest.NewRequest("GET", "/health/tests/recent", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects malformed since", func(t *testing.T) {
		handler := handleListRecent(NewMockResultsStore())

		req := httptest.NewRequest("GET", "/health/tests/recent?since=yesterday", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("lists results updated since the timestamp", func(t *testing.T) {
		since := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		resultsStore := NewMockResultsStore()
		resultsStore.On("ListRecentlyUpdated", since).Return([]store.Result{
			{ServiceName: "billing", TestName: "health_check", LastStatus: model.StatusOK},
			{ServiceName: "search", TestName: "health_check", LastStatus: model.StatusError},
		}, nil)

		handler := handleListRecent(resultsStore)

		req := httptest.NewRequest("GET", "/health/tests/recent?since=2026-08-01T12:00:00Z", nil)
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp TestResultsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Total)
		resultsStore.AssertExpectations(t)
	})
}

func TestHandleRecordResult(t *testing.T) {
	t.Run("records a valid result", func(t *testing.T) {
		resultsStore := NewMockResultsStore()
		resultsStore.On("RecordResult", mock.MatchedBy(func(r *store.Result) bool {
			return r.ServiceName == "billing" && r.TestName == "health_check" && r.LastStatus == model.StatusOK
		})).Return(&store.Result{
			ServiceName: "billing",
			TestName:    "health_check",
			LastStatus:  model.StatusOK,
			DurationMS:  numPtr(12),
			UpdatedAt:   time.Now().UTC(),
			CreatedAt:   time.Now().UTC(),
		}, nil)

		handler := handleRecordResult(resultsStore)

		body := `{"service_name":"billing","test_name":"health_check","last_status":"OK","duration_ms":12}`
		req := httptest.NewRequest("POST", "/health/tests", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var recorded store.Result
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recorded))
		assert.Equal(t, model.StatusOK, recorded.LastStatus)
		resultsStore.AssertExpectations(t)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		handler := handleRecordResult(NewMockResultsStore())

		req := httptest.NewRequest("POST", "/health/tests", strings.NewReader(`{"service_name":`))
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		handler := handleRecordResult(NewMockResultsStore())

		body := `{"service_name":"billing","test_name":"health_check","last_status":"MAYBE"}`
		req := httptest.NewRequest("POST", "/health/tests", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects oversized service name", func(t *testing.T) {
		handler := handleRecordResult(NewMockResultsStore())

		body := `{"service_name":"` + strings.Repeat("x", store.MaxServiceNameLen+1) +
			`","test_name":"health_check","last_status":"OK"}`
		req := httptest.NewRequest("POST", "/health/tests", strings.NewReader(body))
		w := httptest.NewRecorder()
		handler(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	later := now.Add(5 * time.Minute)

	results := []store.Result{
		{ServiceName: "billing", TestName: "health_check", LastStatus: model.StatusOK, UpdatedAt: now},
		{ServiceName: "billing", TestName: "invoices", LastStatus: model.StatusError, ErrorMessage: strPtr("timeout"), UpdatedAt: later},
		{ServiceName: "search", TestName: "health_check", LastStatus: model.StatusOK, UpdatedAt: now},
	}

	dashboard := buildDashboard(results)

	require.Len(t, dashboard.Services, 2)

	billing := dashboard.Services[0]
	assert.Equal(t, "billing", billing.Name)
	assert.Equal(t, "ERROR", billing.Status)
	require.Len(t, billing.Tests, 2)
	require.NotNil(t, billing.LastUpdated)
	assert.Equal(t, later, *billing.LastUpdated)

	search := dashboard.Services[1]
	assert.Equal(t, "OK", search.Status)

	require.NotNil(t, dashboard.LastUpdated)
	assert.Equal(t, later, *dashboard.LastUpdated)
}

func TestBuildDashboardEmpty(t *testing.T) {
	dashboard := buildDashboard(nil)
	assert.Empty(t, dashboard.Services)
	assert.Nil(t, dashboard.LastUpdated)
}
