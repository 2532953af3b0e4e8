// Package server exposes the supervisor's state over HTTP: health, the
// managed container table and Prometheus metrics.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/me/depstart/pkg/model"
)

// Version is reported by the health and discovery endpoints.
const Version = "0.1.0"

// StatusSource is the read-only view of the supervisor the server reports on.
type StatusSource interface {
	Status() []model.ContainerStatus
	ContainerStatus(name string) (model.ContainerStatus, bool)
	LastSweep() (time.Time, int64)
}

// Server is the depstart status API server.
type Server struct {
	router       chi.Router
	logger       *slog.Logger
	source       StatusSource
	pollInterval time.Duration
	metrics      http.Handler // optional; nil disables /metrics
	startTime    time.Time
	now          func() time.Time
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithClock replaces time.Now for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

// New creates a new Server with all routes registered. pollInterval is used
// to decide when the supervisor's last sweep is stale.
func New(source StatusSource, pollInterval time.Duration, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		router:       chi.NewRouter(),
		logger:       logger.With("component", "server"),
		source:       source,
		pollInterval: pollInterval,
		startTime:    time.Now(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s.logger))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", s.handleDiscovery)
		r.Get("/health", s.handleHealth)
		r.Route("/containers", func(r chi.Router) {
			r.Get("/", s.handleListContainers)
			r.Get("/{name}", s.handleGetContainer)
		})
	})
}
