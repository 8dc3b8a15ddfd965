package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/gitbridge/pkg/httputil"
	"github.com/platinummonkey/gitbridge/pkg/observability"
)

// Server represents our API server
type Server struct {
	router     *mux.Router
	resolver   Resolver
	reconciler Reconciler
	aggregator Aggregator
	logger     *observability.Logger
	metrics    *observability.Metrics
}

// NewServer creates a new API server wiring the resolver, the role
// reconciler, and the year aggregator behind the inbound routes.
func NewServer(resolver Resolver, reconciler Reconciler, aggregator Aggregator, logger *observability.Logger, metrics *observability.Metrics) *Server {
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	s := &Server{
		router:     mux.NewRouter(),
		resolver:   resolver,
		reconciler: reconciler,
		aggregator: aggregator,
		logger:     logger,
		metrics:    metrics,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.Use(httputil.RequestIDMiddleware)
	s.router.Use(httputil.RecoveryMiddleware(s.logger))
	s.router.Use(httputil.LoggingMiddleware(s.logger))
	if s.metrics != nil {
		s.router.Use(httputil.MetricsMiddleware(s.metrics))
	}

	s.router.HandleFunc("/roles/grant", s.grantRole).Methods("POST")
	s.router.HandleFunc("/created/{kind}/{year}", s.listCreated).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
