// Package provider defines the contract every external source client
// implements, along with the shared HTTP plumbing (rate limiting, retries,
// circuit breaking, mirror rotation) the clients are built on.
//
// Each source (OpenAlex, Crossref, Internet Archive, ...) implements the
// Provider interface in its own subpackage, allowing the aggregator to
// search many sources concurrently through a unified API:
//
//	p := openalex.New(cfg)
//	result, err := p.Search(ctx, provider.SearchQuery{Query: "anatomy"})
package provider

import (
	"context"

	"github.com/studyhub/resource-aggregator/internal/domain"
)

// Pagination defaults applied by SearchQuery.Normalize.
const (
	DefaultPage    = 1
	DefaultPerPage = 25
)

// SortOrder selects how a source orders its results. Sources that cannot
// honor an order ignore it.
type SortOrder string

// Supported sort orders.
const (
	SortRelevance SortOrder = "relevance"
	SortDate      SortOrder = "date"
	SortCitations SortOrder = "citations"
)

// Filters narrows a search. All fields are optional; providers apply the
// ones their upstream supports and ignore the rest.
type Filters struct {
	// Type restricts results to one canonical resource type.
	Type domain.ResourceType

	// Year restricts to an exact publication year. YearFrom/YearTo give a
	// range; Year takes precedence when both are set.
	Year     int
	YearFrom int
	YearTo   int

	// OpenAccess, when non-nil, restricts to open (true) or closed (false)
	// resources. Nil applies no filter.
	OpenAccess *bool

	// Language is an ISO 639-1 code.
	Language string

	// Topics further scopes the query on sources with topic facets.
	Topics []string
}

// SearchQuery carries the caller's query, filters and pagination.
type SearchQuery struct {
	Query   string
	Filters Filters
	Page    int
	PerPage int
	Sort    SortOrder
}

// Normalize returns a copy with pagination defaults filled in. Page and
// PerPage are validated as positive integers at the HTTP boundary; this
// only substitutes defaults for absent values.
func (q SearchQuery) Normalize() SearchQuery {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	return q
}

// Offset converts the abstract (page, perPage) pair into a zero-based
// offset for offset+limit upstreams.
func (q SearchQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// ClampPerPage bounds a per-page value to a source's documented maximum.
// The clamp is silent: callers asking for more than the source can serve
// get the maximum, not an error.
func ClampPerPage(perPage, max int) int {
	if perPage <= 0 {
		return DefaultPerPage
	}
	if max > 0 && perPage > max {
		return max
	}
	return perPage
}

// SearchResult contains one provider's results for a query.
type SearchResult struct {
	// Items holds the normalized resources, in the source's own order.
	Items []*domain.Resource `json:"items"`

	// Total is the source's reported total for the query. It may be an
	// estimate, or simply len(Items) when the source has no count API.
	Total int `json:"total"`

	Page    int `json:"page"`
	PerPage int `json:"per_page"`

	// Source identifies which provider produced this result.
	Source domain.SourceID `json:"source"`
}

// EmptyResult returns the canonical degraded result for a failed or empty
// search. Every failure path in the system resolves to this shape.
func EmptyResult(source domain.SourceID, q SearchQuery) *SearchResult {
	q = q.Normalize()
	return &SearchResult{
		Items:   []*domain.Resource{},
		Total:   0,
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  source,
	}
}

// Provider is the interface every source client implements.
//
// Search returns the source's matches normalized into canonical resources.
// Implementations return errors for transport and parse failures; the
// aggregator converts those to the empty-result contract so callers never
// observe them. Implementations must respect context cancellation and
// apply their own rate limiting.
//
// GetByID retrieves one resource by its source-scoped identifier. It
// returns domain.ErrNotFound (wrapped) when the id is unknown; sources
// without a lookup API return ErrNotFound unconditionally.
type Provider interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	GetByID(ctx context.Context, id string) (*domain.Resource, error)

	// Source returns the identifier used for routing, dedup attribution
	// and totals.
	Source() domain.SourceID

	// Name returns a human-readable name for logging and display.
	Name() string

	// IsEnabled reports whether the provider may be dispatched to. A
	// provider may be disabled by configuration or a missing API key.
	IsEnabled() bool
}
