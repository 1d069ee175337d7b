package endpoints

import (
	"net/http"
	"os"
	"time"

	"github.com/doodlesbykumbi/healthwatch/pkg/monitor"
	"github.com/doodlesbykumbi/healthwatch/pkg/server"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
)

// StatusResponse is the response from GET /health
type StatusResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// ComponentStatus is one component in the detailed health response
type ComponentStatus struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Running *bool  `json:"running,omitempty"`
}

// DetailResponse is the response from GET /health/detail
type DetailResponse struct {
	Status     string                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Version    string                     `json:"version"`
	Components map[string]ComponentStatus `json:"components"`
}

// RegisterStatusEndpoints registers the liveness and detail endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET /health - basic liveness (no auth required)
	s.Router.HandleFunc("/health", handleStatus()).Methods("GET")

	// GET /health/detail - component statuses including the database
	s.Router.HandleFunc("/health/detail", handleDetail(s.HealthStore, s.Monitor)).Methods("GET")
}

func version() string {
	if v := os.Getenv("HEALTHWATCH_VERSION_DISPLAY"); v != "" {
		return v
	}
	return "1.0.0"
}

func handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{
			Status:    "OK",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Version:   version(),
		})
	}
}

func handleDetail(healthStore store.HealthStore, mon *monitor.Monitor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]ComponentStatus{
			"api": {Status: "OK"},
		}

		overall := "OK"
		dbStatus := ComponentStatus{Status: "OK"}
		if err := healthStore.CheckConnectivity(); err != nil {
			dbStatus = ComponentStatus{Status: "ERROR", Error: err.Error()}
			overall = "ERROR"
		}
		components["database"] = dbStatus

		monitoring := ComponentStatus{Status: "DOWN"}
		if mon != nil {
			running := mon.Running()
			monitoring.Running = &running
			if running {
				monitoring.Status = "OK"
			}
		}
		components["health_monitoring"] = monitoring

		code := http.StatusOK
		if overall != "OK" {
			code = http.StatusServiceUnavailable
		}
		respondWithJSON(w, code, DetailResponse{
			Status:     overall,
			Timestamp:  time.Now().UTC().Format(time.RFC3339),
			Version:    version(),
			Components: components,
		})
	}
}
