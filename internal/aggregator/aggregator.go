// Package aggregator implements the federated search core: category
// routing, concurrent scatter-gather dispatch with per-source failure
// isolation, and the merge/dedup/rank stage.
package aggregator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/observability"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

const (
	// DefaultCallTimeout bounds each provider call within an aggregate
	// search.
	DefaultCallTimeout = 12 * time.Second

	// DefaultRecommendationLimit caps a recommendation response.
	DefaultRecommendationLimit = 10
)

// Config holds aggregator configuration.
type Config struct {
	// CallTimeout bounds each provider call. Defaults to
	// DefaultCallTimeout.
	CallTimeout time.Duration
}

// Aggregator orchestrates searches across the registered providers. It
// is safe for concurrent use.
type Aggregator struct {
	registry    *provider.Registry
	callTimeout time.Duration
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

// New creates an aggregator over the given registry.
func New(cfg Config, registry *provider.Registry, logger zerolog.Logger, metrics *observability.Metrics) *Aggregator {
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	return &Aggregator{
		registry:    registry,
		callTimeout: cfg.CallTimeout,
		logger:      logger.With().Str("component", "aggregator").Logger(),
		metrics:     metrics,
	}
}

// Search dispatches a query to exactly one source. Unknown sources and
// provider failures resolve to the empty-result contract, never an
// error: the single-source path must not leak a different shape than
// the multi-source path would for the same failure.
func (a *Aggregator) Search(ctx context.Context, q provider.SearchQuery, source domain.SourceID) *provider.SearchResult {
	p := a.registry.Get(source)
	if p == nil || !p.IsEnabled() {
		a.logger.Debug().Str("source", string(source)).Msg("search on unknown or disabled source")
		return provider.EmptyResult(source, q)
	}
	return a.dispatch(ctx, p, q)
}

// SearchMultiple dispatches a query to the given sources concurrently
// and merges the results. Unknown sources are skipped; a failed source
// contributes an empty result with a zero total.
func (a *Aggregator) SearchMultiple(ctx context.Context, q provider.SearchQuery, sources []domain.SourceID) *AggregatedResult {
	return a.scatterGather(ctx, q, a.registry.Resolve(sources))
}

// SearchAll resolves a category to its source list and searches them
// all. Unknown categories fall back to the "all" route.
func (a *Aggregator) SearchAll(ctx context.Context, q provider.SearchQuery, category Category) *AggregatedResult {
	if a.metrics != nil {
		a.metrics.AggregateSearches.WithLabelValues(string(category)).Inc()
	}
	return a.SearchMultiple(ctx, q, RouteCategory(category))
}

// GetByID retrieves one resource from one source. It returns
// domain.ErrNotFound (wrapped) for unknown sources, unknown ids and
// upstream failures alike.
func (a *Aggregator) GetByID(ctx context.Context, source domain.SourceID, id string) (*domain.Resource, error) {
	p := a.registry.Get(source)
	if p == nil || !p.IsEnabled() {
		return nil, domain.NewNotFoundError("resource", string(source)+":"+id)
	}

	ctx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	res, err := p.GetByID(ctx, id)
	if err != nil {
		a.logger.Warn().Err(err).
			Str("source", string(source)).
			Str("id", id).
			Msg("lookup failed")
		return nil, domain.NewNotFoundError("resource", string(source)+":"+id)
	}
	return res, nil
}

// RecommendationOptions tunes Recommendations.
type RecommendationOptions struct {
	// Category selects the route searched. Defaults to "all".
	Category Category

	// Limit caps the returned list. Defaults to
	// DefaultRecommendationLimit.
	Limit int

	// OpenAccess overrides the open-access filter, which defaults to
	// true for recommendations.
	OpenAccess *bool
}

// Recommendations builds an OR-joined query from the given topics, runs
// it through the multi-source path and returns the top ranked items.
// Empty topics short-circuit to an empty list without dispatching.
func (a *Aggregator) Recommendations(ctx context.Context, topics []string, opts RecommendationOptions) []*domain.Resource {
	cleaned := topics[:0:0]
	for _, t := range topics {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return []*domain.Resource{}
	}

	if opts.Category == "" {
		opts.Category = CategoryAll
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultRecommendationLimit
	}
	openAccess := true
	if opts.OpenAccess != nil {
		openAccess = *opts.OpenAccess
	}

	q := provider.SearchQuery{
		Query:   strings.Join(cleaned, " OR "),
		Filters: provider.Filters{OpenAccess: &openAccess},
	}

	result := a.SearchAll(ctx, q, opts.Category)
	if len(result.Results) > opts.Limit {
		return result.Results[:opts.Limit]
	}
	return result.Results
}

// scatterGather dispatches to every provider concurrently and merges
// once all calls have settled. Results are collected by dispatch
// position, not completion order, so the merge input order (and with it
// the dedup tie-break) is deterministic.
func (a *Aggregator) scatterGather(ctx context.Context, q provider.SearchQuery, providers []provider.Provider) *AggregatedResult {
	results := make([]*provider.SearchResult, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			results[i] = a.dispatch(ctx, p, q)
		}(i, p)
	}
	wg.Wait()

	merged, dropped := Merge(results)
	if a.metrics != nil && dropped > 0 {
		a.metrics.DedupDropped.Add(float64(dropped))
	}
	return merged
}

// dispatch runs one provider search under the per-call timeout,
// converting every failure mode (error, panic, timeout) into the
// provider's canonical empty result. This is the boundary that makes
// the "always returns a result" guarantee hold.
func (a *Aggregator) dispatch(ctx context.Context, p provider.Provider, q provider.SearchQuery) (result *provider.SearchResult) {
	source := p.Source()
	start := time.Now()
	if a.metrics != nil {
		a.metrics.InFlight.Inc()
	}

	outcome := "ok"
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error().
				Str("source", string(source)).
				Interface("panic", r).
				Msg("provider panicked")
			outcome = "error"
			result = provider.EmptyResult(source, q)
		}
		if a.metrics != nil {
			a.metrics.InFlight.Dec()
			a.metrics.SearchesTotal.WithLabelValues(string(source), outcome).Inc()
			a.metrics.SearchDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, a.callTimeout)
	defer cancel()

	res, err := p.Search(callCtx, q)
	if err != nil {
		a.logger.Warn().Err(err).
			Str("source", string(source)).
			Str("query", q.Query).
			Dur("elapsed", time.Since(start)).
			Msg("provider search failed")
		outcome = "error"
		return provider.EmptyResult(source, q)
	}
	if res == nil {
		outcome = "empty"
		return provider.EmptyResult(source, q)
	}
	if len(res.Items) == 0 {
		outcome = "empty"
	}
	return res
}
