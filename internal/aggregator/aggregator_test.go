package aggregator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

// stubProvider is a configurable provider for orchestrator tests.
type stubProvider struct {
	source  domain.SourceID
	enabled bool

	searchFunc func(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error)

	searchCalls atomic.Int32
}

func (s *stubProvider) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	s.searchCalls.Add(1)
	if s.searchFunc != nil {
		return s.searchFunc(ctx, q)
	}
	return provider.EmptyResult(s.source, q), nil
}

func (s *stubProvider) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	return nil, domain.NewNotFoundError("resource", id)
}

func (s *stubProvider) Source() domain.SourceID { return s.source }
func (s *stubProvider) Name() string            { return string(s.source) }
func (s *stubProvider) IsEnabled() bool         { return s.enabled }

func itemsFor(source domain.SourceID, ids ...string) func(context.Context, provider.SearchQuery) (*provider.SearchResult, error) {
	return func(_ context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
		q = q.Normalize()
		items := make([]*domain.Resource, 0, len(ids))
		for _, id := range ids {
			items = append(items, &domain.Resource{ExternalID: id, Source: source, Title: id})
		}
		return &provider.SearchResult{
			Items: items, Total: len(items), Page: q.Page, PerPage: q.PerPage, Source: source,
		}, nil
	}
}

func newTestAggregator(t *testing.T, timeout time.Duration, providers ...*stubProvider) *Aggregator {
	t.Helper()
	registry := provider.NewRegistry()
	for _, p := range providers {
		registry.Register(p)
	}
	return New(Config{CallTimeout: timeout}, registry, zerolog.Nop(), nil)
}

func TestAggregator_Search(t *testing.T) {
	t.Run("unknown source resolves to empty result", func(t *testing.T) {
		agg := newTestAggregator(t, time.Second)

		result := agg.Search(context.Background(), provider.SearchQuery{Query: "x"}, domain.SourceID("bogus"))

		require.NotNil(t, result)
		assert.Empty(t, result.Items)
		assert.Zero(t, result.Total)
	})

	t.Run("provider error converts to empty result", func(t *testing.T) {
		p := &stubProvider{source: domain.SourceCrossref, enabled: true,
			searchFunc: func(context.Context, provider.SearchQuery) (*provider.SearchResult, error) {
				return nil, errors.New("upstream down")
			}}
		agg := newTestAggregator(t, time.Second, p)

		result := agg.Search(context.Background(), provider.SearchQuery{Query: "x"}, domain.SourceCrossref)

		assert.Empty(t, result.Items)
		assert.Equal(t, domain.SourceCrossref, result.Source)
	})

	t.Run("disabled provider resolves to empty result", func(t *testing.T) {
		p := &stubProvider{source: domain.SourceCrossref, enabled: false,
			searchFunc: itemsFor(domain.SourceCrossref, "a")}
		agg := newTestAggregator(t, time.Second, p)

		result := agg.Search(context.Background(), provider.SearchQuery{Query: "x"}, domain.SourceCrossref)

		assert.Empty(t, result.Items)
		assert.Zero(t, p.searchCalls.Load())
	})
}

func TestAggregator_SearchMultiple(t *testing.T) {
	t.Run("one failing provider does not affect the others", func(t *testing.T) {
		healthy := &stubProvider{source: domain.SourceOpenAlex, enabled: true,
			searchFunc: itemsFor(domain.SourceOpenAlex, "a", "b")}
		broken := &stubProvider{source: domain.SourceCrossref, enabled: true,
			searchFunc: func(context.Context, provider.SearchQuery) (*provider.SearchResult, error) {
				return nil, errors.New("boom")
			}}
		agg := newTestAggregator(t, time.Second, healthy, broken)

		result := agg.SearchMultiple(context.Background(), provider.SearchQuery{Query: "x"},
			[]domain.SourceID{domain.SourceOpenAlex, domain.SourceCrossref})

		require.Len(t, result.Results, 2)
		assert.Equal(t, "a", result.Results[0].ExternalID)
		assert.Equal(t, "b", result.Results[1].ExternalID)
		assert.Equal(t, 2, result.TotalBySource[domain.SourceOpenAlex])
		assert.Equal(t, 0, result.TotalBySource[domain.SourceCrossref])
	})

	t.Run("a panicking provider is isolated", func(t *testing.T) {
		healthy := &stubProvider{source: domain.SourceOpenAlex, enabled: true,
			searchFunc: itemsFor(domain.SourceOpenAlex, "a")}
		panicky := &stubProvider{source: domain.SourceLibGen, enabled: true,
			searchFunc: func(context.Context, provider.SearchQuery) (*provider.SearchResult, error) {
				panic("mirror parser exploded")
			}}
		agg := newTestAggregator(t, time.Second, healthy, panicky)

		result := agg.SearchMultiple(context.Background(), provider.SearchQuery{Query: "x"},
			[]domain.SourceID{domain.SourceOpenAlex, domain.SourceLibGen})

		require.Len(t, result.Results, 1)
		assert.Equal(t, 0, result.TotalBySource[domain.SourceLibGen])
	})

	t.Run("dispatch order decides the dedup winner", func(t *testing.T) {
		shared := "10.1/shared"
		first := &stubProvider{source: domain.SourceOpenAlex, enabled: true,
			searchFunc: func(_ context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
				q = q.Normalize()
				return &provider.SearchResult{
					Items: []*domain.Resource{{ExternalID: "W1", Source: domain.SourceOpenAlex, DOI: shared}},
					Total: 1, Page: q.Page, PerPage: q.PerPage, Source: domain.SourceOpenAlex,
				}, nil
			}}
		second := &stubProvider{source: domain.SourceCrossref, enabled: true,
			searchFunc: func(_ context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
				q = q.Normalize()
				return &provider.SearchResult{
					Items: []*domain.Resource{{ExternalID: "C1", Source: domain.SourceCrossref, DOI: shared}},
					Total: 1, Page: q.Page, PerPage: q.PerPage, Source: domain.SourceCrossref,
				}, nil
			}}
		agg := newTestAggregator(t, time.Second, first, second)

		for i := 0; i < 10; i++ {
			result := agg.SearchMultiple(context.Background(), provider.SearchQuery{Query: "x"},
				[]domain.SourceID{domain.SourceOpenAlex, domain.SourceCrossref})
			require.Len(t, result.Results, 1)
			assert.Equal(t, domain.SourceOpenAlex, result.Results[0].Source)
		}
	})
}

func TestAggregator_SearchAll(t *testing.T) {
	t.Run("videos category timeout yields empty aggregate", func(t *testing.T) {
		slow := &stubProvider{source: domain.SourceYouTube, enabled: true,
			searchFunc: func(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
				select {
				case <-ctx.Done():
					return nil, ctx.Err()
				case <-time.After(5 * time.Second):
					return provider.EmptyResult(domain.SourceYouTube, q), nil
				}
			}}
		agg := newTestAggregator(t, 50*time.Millisecond, slow)

		start := time.Now()
		result := agg.SearchAll(context.Background(), provider.SearchQuery{Query: "x"}, CategoryVideos)

		assert.Less(t, time.Since(start), time.Second)
		assert.Empty(t, result.Results)
		assert.Equal(t, map[domain.SourceID]int{domain.SourceYouTube: 0}, result.TotalBySource)
	})

	t.Run("unknown category falls back to all route", func(t *testing.T) {
		p := &stubProvider{source: domain.SourceOpenAlex, enabled: true,
			searchFunc: itemsFor(domain.SourceOpenAlex, "a")}
		agg := newTestAggregator(t, time.Second, p)

		result := agg.SearchAll(context.Background(), provider.SearchQuery{Query: "x"}, Category("mystery"))

		assert.Len(t, result.Results, 1)
	})
}

func TestAggregator_Recommendations(t *testing.T) {
	t.Run("empty topics short-circuit without dispatch", func(t *testing.T) {
		p := &stubProvider{source: domain.SourceOpenAlex, enabled: true}
		agg := newTestAggregator(t, time.Second, p)

		items := agg.Recommendations(context.Background(), []string{"", "  "}, RecommendationOptions{})

		assert.Empty(t, items)
		assert.Zero(t, p.searchCalls.Load())
	})

	t.Run("or-joins topics and defaults open access to true", func(t *testing.T) {
		var gotQuery provider.SearchQuery
		p := &stubProvider{source: domain.SourceOpenAlex, enabled: true,
			searchFunc: func(_ context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
				gotQuery = q
				return itemsFor(domain.SourceOpenAlex, "a")(context.Background(), q)
			}}
		agg := newTestAggregator(t, time.Second, p)

		agg.Recommendations(context.Background(), []string{"anatomy", "physiology"}, RecommendationOptions{})

		assert.Equal(t, "anatomy OR physiology", gotQuery.Query)
		require.NotNil(t, gotQuery.Filters.OpenAccess)
		assert.True(t, *gotQuery.Filters.OpenAccess)
	})

	t.Run("caps results at the limit", func(t *testing.T) {
		p := &stubProvider{source: domain.SourceOpenAlex, enabled: true,
			searchFunc: itemsFor(domain.SourceOpenAlex, "a", "b", "c", "d", "e")}
		agg := newTestAggregator(t, time.Second, p)

		items := agg.Recommendations(context.Background(), []string{"topic"}, RecommendationOptions{Limit: 3})

		assert.Len(t, items, 3)
	})
}

func TestRouteCategory(t *testing.T) {
	assert.Equal(t, []domain.SourceID{domain.SourceYouTube}, RouteCategory(CategoryVideos))
	assert.Equal(t, RouteCategory(CategoryAll), RouteCategory(Category("unknown")))
	assert.NotEmpty(t, RouteCategory(CategoryMedical))
}
