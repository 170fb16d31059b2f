package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lifehub/lifehub/internal/metrics"
	"github.com/lifehub/lifehub/internal/tracker"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	tracker  *tracker.Tracker
	log      *slog.Logger
	apiKey   string
	metrics  *metrics.Manager
	gatherer prometheus.Gatherer
	mcp      http.Handler
	now      func() time.Time
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request metrics into m and serves g on /metrics.
func WithMetrics(m *metrics.Manager, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

// WithMCP mounts an MCP transport handler at /mcp, behind the API key.
func WithMCP(h http.Handler) Option {
	return func(s *Server) { s.mcp = h }
}

// WithClock replaces the clock used when a request omits its date.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a new Server with all routes configured.
func New(t *tracker.Tracker, apiKey string, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		tracker: t,
		log:     log,
		apiKey:  apiKey,
		now:     time.Now,
		router:  chi.NewRouter(),
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

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Reads are open; the listener (tsnet or localhost) gates access.
		r.Get("/profile", s.handleProfile)
		r.Get("/levels", s.handleLevels)
		r.Get("/logs", s.handleLogs)
		r.Get("/stats", s.handleStats)
		r.Get("/templates", s.handleTemplates)

		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/sessions", s.handleLogSession)
			r.Post("/grace", s.handleActivateGrace)
			r.Post("/measurements", s.handleAddMeasurement)
			r.Get("/backups/{doc}", s.handleGetBackup)
			r.Put("/backups/{doc}", s.handlePutBackup)
		})
	})

	if s.mcp != nil {
		s.router.With(APIKeyAuth(s.apiKey)).Handle("/mcp", s.mcp)
	}

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}
