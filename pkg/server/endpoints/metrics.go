package endpoints

import (
	"github.com/doodlesbykumbi/healthwatch/pkg/server"
)

// RegisterMetricsEndpoint registers the Prometheus scrape endpoint
func RegisterMetricsEndpoint(s *server.Server) {
	if s.Metrics == nil {
		return
	}
	s.Router.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
}
