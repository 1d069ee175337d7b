package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	gormdb "gorm.io/gorm"

	"github.com/doodlesbykumbi/healthwatch/pkg/config"
	"github.com/doodlesbykumbi/healthwatch/pkg/monitor"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/middleware"
	"github.com/doodlesbykumbi/healthwatch/pkg/server/store"
	storegorm "github.com/doodlesbykumbi/healthwatch/pkg/server/store/gorm"
)

// Server wires the router, the stores and the monitor together.
type Server struct {
	Router  *mux.Router
	DB      *gormdb.DB
	Config  *config.HealthwatchConfig
	Monitor *monitor.Monitor
	Metrics *monitor.Metrics

	ResultsStore store.ResultsStore
	SummaryStore store.SummaryStore
	HealthStore  store.HealthStore

	// TokenAuth protects write endpoints. nil disables authentication.
	TokenAuth *middleware.TokenAuthenticator

	srv *http.Server
}

// NewServer creates a Server backed by the given database connection.
func NewServer(
	db *gormdb.DB,
	cfg *config.HealthwatchConfig,
	mon *monitor.Monitor,
	metrics *monitor.Metrics,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	var tokenAuth *middleware.TokenAuthenticator
	if cfg.WriteTokenKey != "" {
		tokenAuth = middleware.NewTokenAuthenticator([]byte(cfg.WriteTokenKey))
	}

	return &Server{
		Router:       router,
		DB:           db,
		Config:       cfg,
		Monitor:      mon,
		Metrics:      metrics,
		ResultsStore: storegorm.NewResultsStore(db),
		SummaryStore: storegorm.NewSummaryStore(db),
		HealthStore:  storegorm.NewHealthStore(db),
		TokenAuth:    tokenAuth,
		srv:          srv,
	}
}

// Start begins serving HTTP requests and blocks until the server stops.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
