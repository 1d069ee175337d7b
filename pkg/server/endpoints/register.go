package endpoints

import (
	"net/http"

	"github.com/doodlesbykumbi/healthwatch/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterResultsEndpoints(srv)
	RegisterMonitorEndpoints(srv)
	RegisterServicesEndpoints(srv)
	RegisterMetricsEndpoint(srv)
}

// protect wraps a handler with the write-token middleware when one is
// configured; otherwise the handler is served as-is.
func protect(srv *server.Server, handler http.HandlerFunc) http.Handler {
	if srv.TokenAuth == nil {
		return handler
	}
	return srv.TokenAuth.Middleware(handler)
}
