// Package http exposes the aggregation service over a chi-routed REST
// API. Input validation is the only client-visible error surface; the
// search endpoints otherwise always answer 200 with possibly-empty
// payloads.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/studyhub/resource-aggregator/internal/aggregator"
	"github.com/studyhub/resource-aggregator/internal/config"
	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
	"github.com/studyhub/resource-aggregator/internal/recommend"
)

// Collaborators are the optional outbound integration points. The import
// endpoint answers 503 until an importer is provided; a nil gate means no
// usage limit applies.
type Collaborators struct {
	Importer domain.ResourceImporter
	Gate     domain.UsageGate
}

// Server hosts the REST API.
type Server struct {
	cfg        config.ServerConfig
	aggregator *aggregator.Aggregator
	recommend  *recommend.Service
	registry   *provider.Registry
	collab     Collaborators
	validate   *validator.Validate
	logger     zerolog.Logger
	httpServer *http.Server
}

// New builds the server and its routes.
func New(
	cfg config.ServerConfig,
	metricsCfg config.MetricsConfig,
	agg *aggregator.Aggregator,
	rec *recommend.Service,
	registry *provider.Registry,
	collab Collaborators,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		cfg:        cfg,
		aggregator: agg,
		recommend:  rec,
		registry:   registry,
		collab:     collab,
		validate:   validator.New(),
		logger:     logger.With().Str("component", "http").Logger(),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(s.logger))
	r.Use(Recoverer(s.logger))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	r.Get("/healthz", s.handleHealth)
	if metricsCfg.Enabled {
		r.Handle(metricsCfg.Path, promhttp.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Get("/sources", s.handleListSources)
		r.Get("/resources/{source}/{id}", s.handleGetResource)
		r.Post("/resources/import", s.handleImportResource)
		r.Post("/recommendations", s.handleRecommendations)
		r.Post("/subjects/recommendations", s.handleSubjectRecommendations)
	})

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.cfg.Addr()).Msg("http server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
