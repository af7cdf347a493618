// Package medical provides a composite medical-literature provider that
// fans a query out to PubMed Central, the NCBI Bookshelf, the OpenStax
// catalog and a scraped Spanish-language medical book site, then merges
// the sub-results into one provider response.
//
// The fan-out mirrors the top-level aggregation: each sub-source runs in
// its own goroutine under the shared context, a failed sub-source
// contributes nothing, and sub-results are interleaved in fixed
// sub-source order so the merged page is deterministic.
package medical

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

const (
	// DefaultRateLimit bounds combined traffic to NCBI, which allows 3
	// requests per second without an API key.
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// perSubSource is how many results each sub-source is asked for.
	perSubSource = 10

	sourceName = "Medical Library"
)

// subSource is the internal contract each constituent source implements.
type subSource interface {
	name() string
	search(ctx context.Context, query string, offset, limit int) ([]*domain.Resource, int, error)
	getByID(ctx context.Context, id string) (*domain.Resource, error)
}

// Config holds configuration for the composite medical provider.
type Config struct {
	// EUtilsBaseURL is the NCBI E-utilities base URL. Defaults to
	// DefaultEUtilsBaseURL.
	EUtilsBaseURL string

	// NCBIAPIKey is an optional NCBI API key for higher rate limits.
	NCBIAPIKey string

	// OpenStaxBaseURL is the OpenStax base URL. Defaults to
	// DefaultOpenStaxBaseURL.
	OpenStaxBaseURL string

	// SpanishMirrors is the mirror list for the scraped Spanish site.
	// Defaults to DefaultSpanishMirrors.
	SpanishMirrors []string

	// Timeout is the request timeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

func (c *Config) applyDefaults() {
	if c.EUtilsBaseURL == "" {
		c.EUtilsBaseURL = DefaultEUtilsBaseURL
	}
	if c.OpenStaxBaseURL == "" {
		c.OpenStaxBaseURL = DefaultOpenStaxBaseURL
	}
	if len(c.SpanishMirrors) == 0 {
		c.SpanishMirrors = DefaultSpanishMirrors
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}
	if c.BurstSize == 0 {
		c.BurstSize = DefaultBurstSize
	}
}

// Client implements the provider.Provider interface over the four
// medical sub-sources.
type Client struct {
	config  Config
	sources []subSource
	logger  zerolog.Logger
}

var _ provider.Provider = (*Client)(nil)

// New creates the composite medical provider with the given
// configuration.
func New(cfg Config, logger zerolog.Logger) *Client {
	cfg.applyDefaults()

	ncbiClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:      "medical-ncbi",
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
	})
	webClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:       "medical-web",
		Timeout:    cfg.Timeout,
		RateLimit:  cfg.RateLimit,
		BurstSize:  cfg.BurstSize,
		MaxRetries: -1,
	})

	eutils := &eutilsClient{
		baseURL:    cfg.EUtilsBaseURL,
		apiKey:     cfg.NCBIAPIKey,
		httpClient: ncbiClient,
	}

	return &Client{
		config: cfg,
		sources: []subSource{
			&pmcSource{eutils: eutils},
			&bookshelfSource{eutils: eutils},
			&openstaxSource{baseURL: cfg.OpenStaxBaseURL, httpClient: webClient},
			&spanishSource{mirrors: provider.NewMirrorSet(cfg.SpanishMirrors), httpClient: webClient},
		},
		logger: logger.With().Str("provider", "medbooks").Logger(),
	}
}

// NewWithSources creates the composite over explicit sub-sources, useful
// for testing.
func NewWithSources(cfg Config, logger zerolog.Logger, sources ...subSource) *Client {
	cfg.applyDefaults()
	return &Client{
		config:  cfg,
		sources: sources,
		logger:  logger.With().Str("provider", "medbooks").Logger(),
	}
}

// Search fans the query out to every sub-source and merges the results.
// A sub-source that fails or panics contributes nothing; its error is
// logged, never propagated.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()

	type subResult struct {
		items []*domain.Resource
		total int
	}

	results := make([]subResult, len(c.sources))
	var wg sync.WaitGroup
	for i, src := range c.sources {
		wg.Add(1)
		go func(i int, src subSource) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error().
						Str("sub_source", src.name()).
						Interface("panic", r).
						Msg("medical sub-source panicked")
				}
			}()

			items, total, err := src.search(ctx, q.Query, 0, perSubSource)
			if err != nil {
				c.logger.Warn().
					Err(err).
					Str("sub_source", src.name()).
					Msg("medical sub-source failed")
				return
			}
			results[i] = subResult{items: items, total: total}
		}(i, src)
	}
	wg.Wait()

	var merged []*domain.Resource
	total := 0
	for _, r := range results {
		merged = append(merged, r.items...)
		total += r.total
	}

	if merged == nil {
		merged = []*domain.Resource{}
	}

	return &provider.SearchResult{
		Items:   merged,
		Total:   total,
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceMedBooks,
	}, nil
}

// GetByID dispatches on the sub-source prefix the composite stamps onto
// external ids ("pmc:", "bookshelf:", "openstax:", "es:").
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	for _, src := range c.sources {
		prefix := subSourcePrefix(src)
		if rest, ok := cutPrefix(id, prefix); ok {
			return src.getByID(ctx, rest)
		}
	}
	return nil, domain.NewNotFoundError("resource", id)
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceMedBooks
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// subSourcePrefix maps a sub-source to its external id prefix.
func subSourcePrefix(src subSource) string {
	switch src.name() {
	case "spanish":
		return "es:"
	default:
		return src.name() + ":"
	}
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return "", false
}
