package semanticscholar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

const (
	// DefaultBaseURL is the default Semantic Scholar Graph API base URL.
	DefaultBaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultRateLimit is the default rate limit without an API key.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// MaxPerPage is the maximum page size the search endpoint accepts.
	MaxPerPage = 100

	// maxAuthors caps the author list on normalized resources.
	maxAuthors = 10

	// searchFields lists the fields requested on search and lookup.
	searchFields = "paperId,title,abstract,year,publicationDate,venue,url,publicationTypes,fieldsOfStudy,journal,authors,citationCount,referenceCount,isOpenAccess,openAccessPdf,externalIds"

	sourceName = "Semantic Scholar"
)

// typeTable maps Semantic Scholar publication types into the canonical
// taxonomy. Unknown types default to paper.
var typeTable = map[string]domain.ResourceType{
	"JournalArticle": domain.TypePaper,
	"Review":         domain.TypePaper,
	"Book":           domain.TypeBook,
	"BookSection":    domain.TypeBookChapter,
	"Conference":     domain.TypeConference,
	"Dataset":        domain.TypeDataset,
	"Study":          domain.TypePaper,
	"Editorial":      domain.TypeArticle,
	"News":           domain.TypeArticle,
}

// Config holds configuration for the Semantic Scholar client.
type Config struct {
	// BaseURL is the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is the optional Semantic Scholar API key for higher limits.
	APIKey string

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
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
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

// Client implements the provider.Provider interface for Semantic Scholar.
type Client struct {
	config     Config
	httpClient *provider.HTTPClient
}

var _ provider.Provider = (*Client)(nil)

// New creates a new Semantic Scholar client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:         "semanticscholar",
		Timeout:      cfg.Timeout,
		RateLimit:    cfg.RateLimit,
		BurstSize:    cfg.BurstSize,
		APIKey:       cfg.APIKey,
		APIKeyHeader: "x-api-key",
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client, useful
// for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *provider.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries Semantic Scholar for papers matching the given query.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()

	u, err := url.Parse(c.config.BaseURL + "/paper/search")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	perPage := provider.ClampPerPage(q.PerPage, MaxPerPage)

	query := u.Query()
	query.Set("query", q.Query)
	query.Set("fields", searchFields)
	query.Set("limit", strconv.Itoa(perPage))
	if offset := (q.Page - 1) * perPage; offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if year := yearFilter(q.Filters); year != "" {
		query.Set("year", year)
	}
	if q.Filters.OpenAccess != nil && *q.Filters.OpenAccess {
		// The API exposes open access only as a positive filter.
		query.Set("openAccessPdf", "")
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	items := make([]*domain.Resource, 0, len(searchResp.Data))
	for i := range searchResp.Data {
		items = append(items, paperToResource(&searchResp.Data[i]))
	}

	return &provider.SearchResult{
		Items:   items,
		Total:   searchResp.Total,
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceSemanticScholar,
	}, nil
}

// GetByID retrieves a paper by Semantic Scholar ID or DOI.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	u, err := url.Parse(c.config.BaseURL + "/paper/" + url.PathEscape(id))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	query := u.Query()
	query.Set("fields", searchFields)
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NewNotFoundError("resource", id)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, string(body), nil)
	}

	var paper PaperResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&paper); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return paperToResource(&paper), nil
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceSemanticScholar
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// yearFilter renders the year filters in the API's "year" syntax:
// an exact year, "from-", "-to" or "from-to".
func yearFilter(f provider.Filters) string {
	switch {
	case f.Year > 0:
		return strconv.Itoa(f.Year)
	case f.YearFrom > 0 && f.YearTo > 0:
		return fmt.Sprintf("%d-%d", f.YearFrom, f.YearTo)
	case f.YearFrom > 0:
		return fmt.Sprintf("%d-", f.YearFrom)
	case f.YearTo > 0:
		return fmt.Sprintf("-%d", f.YearTo)
	}
	return ""
}

// paperToResource converts a Semantic Scholar paper to a canonical
// resource.
func paperToResource(p *PaperResult) *domain.Resource {
	authors := make([]string, 0, len(p.Authors))
	for _, a := range p.Authors {
		if a.Name != "" {
			authors = append(authors, a.Name)
		}
	}

	var journal string
	if p.Journal != nil {
		journal = p.Journal.Name
	}

	var doi string
	if p.ExternalIDs != nil {
		doi = strings.ToLower(strings.TrimSpace(p.ExternalIDs.DOI))
	}

	var pdfURL string
	if p.OpenAccessPDF != nil {
		pdfURL = p.OpenAccessPDF.URL
	}

	rtype := domain.TypePaper
	for _, nativeType := range p.PublicationTypes {
		if t, ok := typeTable[nativeType]; ok {
			rtype = t
			break
		}
	}

	res := &domain.Resource{
		ExternalID:      p.PaperID,
		Source:          domain.SourceSemanticScholar,
		Title:           p.Title,
		Authors:         domain.CapAuthors(authors, maxAuthors),
		Abstract:        p.Abstract,
		PublicationDate: p.PublicationDate,
		PublicationYear: p.Year,
		Type:            rtype,
		URL:             p.URL,
		PDFURL:          pdfURL,
		IsOpenAccess:    p.IsOpenAccess,
		DOI:             doi,
		Journal:         journal,
		Venue:           p.Venue,
		Topics:          p.FieldsOfStudy,
		CitationCount:   p.CitationCount,
		ReferenceCount:  p.ReferenceCount,
	}
	res.Normalize()
	return res
}
