package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/resource-aggregator/internal/domain"
)

// mockProvider is a configurable Provider for registry and contract
// tests.
type mockProvider struct {
	source  domain.SourceID
	name    string
	enabled bool

	searchFunc  func(ctx context.Context, q SearchQuery) (*SearchResult, error)
	getByIDFunc func(ctx context.Context, id string) (*domain.Resource, error)
}

func (m *mockProvider) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, q)
	}
	return EmptyResult(m.source, q), nil
}

func (m *mockProvider) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, domain.NewNotFoundError("resource", id)
}

func (m *mockProvider) Source() domain.SourceID { return m.source }
func (m *mockProvider) Name() string            { return m.name }
func (m *mockProvider) IsEnabled() bool         { return m.enabled }

func TestRegistry_Register(t *testing.T) {
	t.Run("get returns registered provider", func(t *testing.T) {
		registry := NewRegistry()
		p := &mockProvider{source: domain.SourceOpenAlex, name: "OpenAlex", enabled: true}

		registry.Register(p)

		got := registry.Get(domain.SourceOpenAlex)
		require.NotNil(t, got)
		assert.Equal(t, p, got)
	})

	t.Run("get returns nil for unknown source", func(t *testing.T) {
		registry := NewRegistry()
		assert.Nil(t, registry.Get(domain.SourceCrossref))
	})

	t.Run("re-registration replaces but keeps position", func(t *testing.T) {
		registry := NewRegistry()
		first := &mockProvider{source: domain.SourceOpenAlex, name: "first", enabled: true}
		second := &mockProvider{source: domain.SourceCrossref, name: "second", enabled: true}
		replacement := &mockProvider{source: domain.SourceOpenAlex, name: "replacement", enabled: true}

		registry.Register(first)
		registry.Register(second)
		registry.Register(replacement)

		all := registry.All()
		require.Len(t, all, 2)
		assert.Equal(t, "replacement", all[0].Name())
		assert.Equal(t, "second", all[1].Name())
	})
}

func TestRegistry_Resolve(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&mockProvider{source: domain.SourceOpenAlex, name: "OpenAlex", enabled: true})
	registry.Register(&mockProvider{source: domain.SourceCrossref, name: "Crossref", enabled: true})
	registry.Register(&mockProvider{source: domain.SourceYouTube, name: "YouTube", enabled: false})

	t.Run("preserves requested order", func(t *testing.T) {
		providers := registry.Resolve([]domain.SourceID{
			domain.SourceCrossref,
			domain.SourceOpenAlex,
		})

		require.Len(t, providers, 2)
		assert.Equal(t, domain.SourceCrossref, providers[0].Source())
		assert.Equal(t, domain.SourceOpenAlex, providers[1].Source())
	})

	t.Run("skips unknown and disabled sources", func(t *testing.T) {
		providers := registry.Resolve([]domain.SourceID{
			domain.SourceOpenAlex,
			domain.SourceYouTube,
			domain.SourceID("nonsense"),
		})

		require.Len(t, providers, 1)
		assert.Equal(t, domain.SourceOpenAlex, providers[0].Source())
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, registry.Resolve(nil))
	})
}
