// Command server runs the resource aggregation REST service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/studyhub/resource-aggregator/internal/aggregator"
	"github.com/studyhub/resource-aggregator/internal/config"
	"github.com/studyhub/resource-aggregator/internal/observability"
	"github.com/studyhub/resource-aggregator/internal/provider"
	"github.com/studyhub/resource-aggregator/internal/provider/archive"
	"github.com/studyhub/resource-aggregator/internal/provider/crossref"
	"github.com/studyhub/resource-aggregator/internal/provider/duckduckgo"
	"github.com/studyhub/resource-aggregator/internal/provider/googlebooks"
	"github.com/studyhub/resource-aggregator/internal/provider/libgen"
	"github.com/studyhub/resource-aggregator/internal/provider/medical"
	"github.com/studyhub/resource-aggregator/internal/provider/openalex"
	"github.com/studyhub/resource-aggregator/internal/provider/semanticscholar"
	"github.com/studyhub/resource-aggregator/internal/provider/youtube"
	"github.com/studyhub/resource-aggregator/internal/recommend"
	httpserver "github.com/studyhub/resource-aggregator/internal/server/http"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("loading configuration failed")
	}

	logger := observability.NewLogger(observability.LoggerConfig{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})
	metrics := observability.NewMetrics(nil)

	registry := buildRegistry(cfg, logger)

	agg := aggregator.New(aggregator.Config{
		CallTimeout: cfg.Aggregator.CallTimeout,
	}, registry, logger, metrics)

	matcher := recommend.NewMatcher(recommend.Catalog)
	recService := recommend.NewService(matcher, agg, logger)

	// No importer or usage gate ships in this binary; the import endpoint
	// answers 503 until a deployment provides them.
	server := httpserver.New(cfg.Server, cfg.Metrics, agg, recService, registry,
		httpserver.Collaborators{}, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("shutdown did not complete cleanly")
		}
	}
}

// buildRegistry constructs every provider from configuration and
// registers them in routing order.
func buildRegistry(cfg *config.Config, logger zerolog.Logger) *provider.Registry {
	p := cfg.Providers
	registry := provider.NewRegistry()

	registry.Register(openalex.New(openalex.Config{
		BaseURL:   p.OpenAlex.BaseURL,
		Email:     p.OpenAlex.Mailto,
		Timeout:   p.OpenAlex.Timeout,
		RateLimit: p.OpenAlex.RateLimit,
		BurstSize: p.OpenAlex.BurstSize,
		Enabled:   p.OpenAlex.Enabled,
	}))
	registry.Register(semanticscholar.New(semanticscholar.Config{
		BaseURL:   p.SemanticScholar.BaseURL,
		APIKey:    p.SemanticScholar.APIKey,
		Timeout:   p.SemanticScholar.Timeout,
		RateLimit: p.SemanticScholar.RateLimit,
		BurstSize: p.SemanticScholar.BurstSize,
		Enabled:   p.SemanticScholar.Enabled,
	}))
	registry.Register(crossref.New(crossref.Config{
		BaseURL:   p.Crossref.BaseURL,
		Mailto:    p.Crossref.Mailto,
		Timeout:   p.Crossref.Timeout,
		RateLimit: p.Crossref.RateLimit,
		BurstSize: p.Crossref.BurstSize,
		Enabled:   p.Crossref.Enabled,
	}))
	registry.Register(youtube.New(youtube.Config{
		BaseURL:   p.YouTube.BaseURL,
		APIKey:    p.YouTube.APIKey,
		Timeout:   p.YouTube.Timeout,
		RateLimit: p.YouTube.RateLimit,
		BurstSize: p.YouTube.BurstSize,
		Enabled:   p.YouTube.Enabled,
	}))
	registry.Register(googlebooks.New(googlebooks.Config{
		BaseURL:   p.GoogleBooks.BaseURL,
		APIKey:    p.GoogleBooks.APIKey,
		Timeout:   p.GoogleBooks.Timeout,
		RateLimit: p.GoogleBooks.RateLimit,
		BurstSize: p.GoogleBooks.BurstSize,
		Enabled:   p.GoogleBooks.Enabled,
	}))
	registry.Register(archive.New(archive.Config{
		BaseURL:   p.Archive.BaseURL,
		Timeout:   p.Archive.Timeout,
		RateLimit: p.Archive.RateLimit,
		BurstSize: p.Archive.BurstSize,
		Enabled:   p.Archive.Enabled,
	}))
	registry.Register(libgen.New(libgen.Config{
		Mirrors:   p.LibGen.Mirrors,
		Timeout:   p.LibGen.Timeout,
		RateLimit: p.LibGen.RateLimit,
		BurstSize: p.LibGen.BurstSize,
		Enabled:   p.LibGen.Enabled,
	}))
	registry.Register(duckduckgo.New(duckduckgo.Config{
		BaseURL:   p.DuckDuckGo.BaseURL,
		Timeout:   p.DuckDuckGo.Timeout,
		RateLimit: p.DuckDuckGo.RateLimit,
		BurstSize: p.DuckDuckGo.BurstSize,
		Enabled:   p.DuckDuckGo.Enabled,
	}))
	registry.Register(medical.New(medical.Config{
		NCBIAPIKey:     p.MedBooks.APIKey,
		SpanishMirrors: p.MedBooks.Mirrors,
		Timeout:        p.MedBooks.Timeout,
		RateLimit:      p.MedBooks.RateLimit,
		BurstSize:      p.MedBooks.BurstSize,
		Enabled:        p.MedBooks.Enabled,
	}, logger))

	return registry
}
