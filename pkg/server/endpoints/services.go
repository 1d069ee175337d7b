package endpoints

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/doodlesbykumbi/healthwatch/pkg/server"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

// ServiceHealthResponse is the response from GET /health/services
type ServiceHealthResponse struct {
	Services []store.ServiceSummary `json:"services"`
	Total    int                    `json:"total"`
}

// ServiceTestsResponse is the response from GET /health/services/{service}/tests
type ServiceTestsResponse struct {
	ServiceName string         `json:"service_name"`
	Results     []store.Result `json:"results"`
	Total       int            `json:"total"`
}

// RegisterServicesEndpoints registers the per-service endpoints
func RegisterServicesEndpoints(s *server.Server) {
	// GET /health/services - per-service rollups
	s.Router.HandleFunc("/health/services", handleListServices(s.SummaryStore)).Methods("GET")

	// GET /health/services/{service}/tests - current results for one service
	s.Router.HandleFunc("/health/services/{service}/tests", handleServiceTests(s.ResultsStore)).Methods("GET")
}

func handleListServices(summaryStore store.SummaryStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		summaries, err := summaryStore.ListServiceHealth()
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list service health")
			return
		}
		respondWithJSON(w, http.StatusOK, ServiceHealthResponse{Services: summaries, Total: len(summaries)})
	}
}

func handleServiceTests(resultsStore store.ResultsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		serviceName := mux.Vars(r)["service"]

		results, err := resultsStore.ListByService(serviceName)
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "failed to list test results")
			return
		}
		if len(results) == 0 {
			respondWithError(w, http.StatusNotFound, "no results for service")
			return
		}

		respondWithJSON(w, http.StatusOK, ServiceTestsResponse{
			ServiceName: serviceName,
			Results:     results,
			Total:       len(results),
		})
	}
}
