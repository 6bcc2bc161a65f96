// Package api provides HTTP REST API handlers for the council service.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/council-mode/council/internal/core"
	"github.com/council-mode/council/internal/council"
)

// Deliberator runs the council pipeline. *council.Engine implements it.
type Deliberator interface {
	Deliberate(ctx context.Context, req council.DeliberateRequest) (*council.DeliberateOutcome, error)
}

// Server provides HTTP REST API endpoints for council deliberations.
type Server struct {
	router  chi.Router
	engine  Deliberator
	store   core.DeliberationStore
	quota   core.QuotaService
	logger  *slog.Logger
	origins []string
	metrics http.Handler
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithAllowedOrigins restricts CORS origins.
func WithAllowedOrigins(origins []string) ServerOption {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithQuotaService lets the server resolve daily usage for trigger context.
func WithQuotaService(q core.QuotaService) ServerOption {
	return func(s *Server) {
		s.quota = q
	}
}

// WithMetricsHandler exposes a Prometheus scrape endpoint at /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer creates a new API server.
func NewServer(engine Deliberator, store core.DeliberationStore, opts ...ServerOption) *Server {
	s := &Server{
		engine:  engine,
		store:   store,
		logger:  slog.Default(),
		origins: []string{"*"},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.router = s.setupRouter()
	return s
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRouter configures Chi router with all routes and middleware.
func (s *Server) setupRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))
	r.Use(s.loggingMiddleware)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/deliberations", func(r chi.Router) {
			r.Get("/", s.handleListDeliberations)
			r.Post("/", s.handleCreateDeliberation)

			r.Route("/{deliberationID}", func(r chi.Router) {
				r.Get("/", s.handleGetDeliberation)
				r.Get("/summary", s.handleGetSummary)
			})
		})
	})

	return r
}

// loggingMiddleware logs HTTP requests.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"bytes", ww.BytesWritten(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
