package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/healthwatch/pkg/server"
)

// MonitoringStatusResponse is the response from GET /health/status
type MonitoringStatusResponse struct {
	Running           bool     `json:"running"`
	ServicesMonitored []string `json:"services_monitored"`
}

// RegisterMonitorEndpoints registers the monitor control endpoints
func RegisterMonitorEndpoints(s *server.Server) {
	mon := s.Monitor

	// POST /health/run-tests - trigger an async probe run
	s.Router.Handle("/health/run-tests", protect(s, func(w http.ResponseWriter, r *http.Request) {
		if mon == nil {
			respondWithError(w, http.StatusServiceUnavailable, "health service not available")
			return
		}
		mon.TriggerRun()
		respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Tests started"})
	})).Methods("POST")

	// GET /health/status - monitoring loop status
	s.Router.HandleFunc("/health/status", func(w http.ResponseWriter, r *http.Request) {
		if mon == nil {
			respondWithError(w, http.StatusServiceUnavailable, "health service not available")
			return
		}
		respondWithJSON(w, http.StatusOK, MonitoringStatusResponse{
			Running:           mon.Running(),
			ServicesMonitored: mon.ServiceNames(),
		})
	}).Methods("GET")
}
