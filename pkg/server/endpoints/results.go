package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/doodlesbykumbi/healthwatch/pkg/model"
	"github.com/doodlesbykumbi/healthwatch/pkg/server"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

// TestResultsResponse is the response from GET /health/tests
type TestResultsResponse struct {
	Results []store.Result `json:"results"`
	Total   int            `json:"total"`
}

// RecordResultRequest is the body of POST /health/tests
type RecordResultRequest struct {
	ServiceName  string  `json:"service_name"`
	TestName     string  `json:"test_name"`
	LastStatus   string  `json:"last_status"`
	ErrorMessage *string `json:"error_message"`
	DurationMS   *int    `json:"duration_ms"`
}

// DashboardTest is one test inside a dashboard service entry
type DashboardTest struct {
	Name       string       `json:"name"`
	Status     model.Status `json:"status"`
	Error      *string      `json:"error"`
	DurationMS *int         `json:"duration_ms"`
	UpdatedAt  time.Time    `json:"updated_at"`
}

// DashboardService is the per-service grouping in the dashboard response
type DashboardService struct {
	Name        string          `json:"name"`
	Status      string          `json:"status"`
	Tests       []DashboardTest `json:"tests"`
	LastUpdated *time.Time      `json:"last_updated"`
}

// DashboardResponse is the response from GET /health/dashboard
type DashboardResponse struct {
	Services    []DashboardService `json:"services"`
	LastUpdated *time.Time         `json:"last_updated"`
}

// RegisterResultsEndpoints registers the test result endpoints
func RegisterResultsEndpoints(s *server.Server) {
	resultsStore := s.ResultsStore
	limitMax := s.Config.APIResultListLimitMax

	// GET /health/tests - list current results (no auth required)
	s.Router.HandleFunc("/health/tests", handleListResults(resultsStore, limitMax)).Methods("GET")

	// GET /health/tests/recent - results updated since a timestamp
	s.Router.HandleFunc("/health/tests/recent", handleListRecent(resultsStore)).Methods("GET")

	// POST /health/tests - submit a result (write token required if configured)
	s.Router.Handle("/health/tests", protect(s, handleRecordResult(resultsStore))).Methods("POST")

	// GET /health/dashboard - current results grouped by service
	s.Router.HandleFunc("/health/dashboard", handleDashboard(resultsStore, limitMax)).Methods("GET")
}

func handleListResults(resultsStore store.ResultsStore, limitMax int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		service := r.URL.Query().Get("service")

		limit := 100
		if val := r.URL.Query().Get("limit"); val != "" {
			parsed, err := strconv.Atoi(val)
			if err != nil || parsed < 1 {
				respondWithError(w, http.StatusUnprocessableEntity, "limit must be a positive integer")
				return
			}
			limit = parsed
		}
		if limit > limitMax {
			limit = limitMax
		}

		offset := 0
		if val := r.URL.Query().Get("offset"); val != "" {
			parsed, err := strconv.Atoi(val)
			if err != nil || parsed < 0 {
				respondWithError(w, http.StatusUnprocessableEntity, "offset must be a non-negative integer")
				return
			}
			offset = parsed
		}

		results, total, err := resultsStore.ListResults(service, limit, offset)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list test results")
			return
		}

		respondWithJSON(w, http.StatusOK, TestResultsResponse{Results: results, Total: total})
	}
}

func handleListRecent(resultsStore store.ResultsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sinceParam := r.URL.Query().Get("since")
		if sinceParam == "" {
			respondWithError(w, http.StatusUnprocessableEntity, "since query parameter is required")
			return
		}

		since, err := time.Parse(time.RFC3339, sinceParam)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "since must be an RFC3339 timestamp")
			return
		}

		results, err := resultsStore.ListRecentlyUpdated(since)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list test results")
			return
		}

		respondWithJSON(w, http.StatusOK, TestResultsResponse{Results: results, Total: len(results)})
	}
}

func handleRecordResult(resultsStore store.ResultsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RecordResultRequest
		if err := decodeJSON(r, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "malformed request body")
			return
		}

		status, err := model.StatusString(req.LastStatus)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, "last_status must be one of OK, ERROR, NA")
			return
		}

		result, err := store.NewResult(req.ServiceName, req.TestName, status, req.ErrorMessage, req.DurationMS)
		if err != nil {
			respondWithError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		recorded, err := resultsStore.RecordResult(result)
		if err != nil {
			if errors.Is(err, store.ErrInvalidResult) {
				respondWithError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			respondWithError(w, http.StatusInternalServerError, "failed to record test result")
			return
		}

		respondWithJSON(w, http.StatusCreated, recorded)
	}
}

func handleDashboard(resultsStore store.ResultsStore, limitMax int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, _, err := resultsStore.ListResults("", limitMax, 0)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list test results")
			return
		}

		respondWithJSON(w, http.StatusOK, buildDashboard(results))
	}
}

// buildDashboard groups the current results by service. A service with any
// failing test is marked ERROR; last_updated tracks the newest result.
func buildDashboard(results []store.Result) DashboardResponse {
	index := make(map[string]int)
	var services []DashboardService

	for _, result := range results {
		i, ok := index[result.ServiceName]
		if !ok {
			i = len(services)
			index[result.ServiceName] = i
			services = append(services, DashboardService{
				Name:   result.ServiceName,
				Status: "OK",
			})
		}

		updatedAt := result.UpdatedAt
		services[i].Tests = append(services[i].Tests, DashboardTest{
			Name:       result.TestName,
			Status:     result.LastStatus,
			Error:      result.ErrorMessage,
			DurationMS: result.DurationMS,
			UpdatedAt:  updatedAt,
		})

		if result.LastStatus == model.StatusError {
			services[i].Status = "ERROR"
		}
		if services[i].LastUpdated == nil || updatedAt.After(*services[i].LastUpdated) {
			services[i].LastUpdated = &updatedAt
		}
	}

	response := DashboardResponse{Services: services}
	for i := range services {
		if lu := services[i].LastUpdated; lu != nil {
			if response.LastUpdated == nil || lu.After(*response.LastUpdated) {
				response.LastUpdated = lu
			}
		}
	}
	return response
}
