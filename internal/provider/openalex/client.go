package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

const (
	// DefaultBaseURL is the default OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultRateLimit is the default rate limit for requests per second.
	// The polite pool (with email) allows higher rates.
	DefaultRateLimit = 10.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 10

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// MaxPerPage is the maximum page size the OpenAlex API accepts.
	MaxPerPage = 200

	// maxAuthors caps the author list on normalized resources.
	maxAuthors = 10

	// doiPrefix is the URL prefix that OpenAlex uses for DOIs.
	doiPrefix = "https://doi.org/"

	// openAlexIDPrefix is the URL prefix for OpenAlex IDs.
	openAlexIDPrefix = "https://openalex.org/"
)

// typeTable maps OpenAlex work types into the canonical taxonomy.
// Unknown types default to paper.
var typeTable = map[string]domain.ResourceType{
	"article":             domain.TypePaper,
	"journal-article":     domain.TypePaper,
	"book":                domain.TypeBook,
	"book-chapter":        domain.TypeBookChapter,
	"dissertation":        domain.TypeThesis,
	"preprint":            domain.TypePreprint,
	"dataset":             domain.TypeDataset,
	"report":              domain.TypeReport,
	"standard":            domain.TypeStandard,
	"reference-entry":     domain.TypeReference,
	"proceedings-article": domain.TypeConference,
}

// Config holds configuration for the OpenAlex client.
type Config struct {
	// BaseURL is the OpenAlex API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Email is the contact email for the polite pool. Providing an email
	// grants access to higher rate limits.
	Email string

	// Timeout is the request timeout. Defaults to DefaultTimeout.
	Timeout time.Duration

	// RateLimit is the maximum requests per second.
	RateLimit float64

	// BurstSize is the maximum burst of requests allowed.
	BurstSize int

	// Enabled indicates whether this source is enabled for searches.
	Enabled bool
}

// applyDefaults sets default values for unset configuration fields.
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

// Client implements the provider.Provider interface for OpenAlex.
type Client struct {
	config     Config
	httpClient *provider.HTTPClient
}

// Ensure Client implements the Provider interface.
var _ provider.Provider = (*Client)(nil)

// New creates a new OpenAlex client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:      "openalex",
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		UserAgent: "StudyHub-ResourceAggregator/1.0 (mailto:" + cfg.Email + ")",
	})

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a new OpenAlex client with a custom HTTP
// client. This is useful for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *provider.HTTPClient) *Client {
	cfg.applyDefaults()

	return &Client{
		config:     cfg,
		httpClient: httpClient,
	}
}

// Search queries OpenAlex for works matching the given query.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()

	searchURL, err := c.buildSearchURL(q)
	if err != nil {
		return nil, fmt.Errorf("building search URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
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
		return nil, domain.NewExternalAPIError("OpenAlex", resp.StatusCode, string(body), nil)
	}

	// Limit body to 10MB to prevent resource exhaustion.
	var searchResp SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	items := make([]*domain.Resource, 0, len(searchResp.Results))
	for i := range searchResp.Results {
		items = append(items, c.workToResource(&searchResp.Results[i]))
	}

	return &provider.SearchResult{
		Items:   items,
		Total:   searchResp.Meta.Count,
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceOpenAlex,
	}, nil
}

// GetByID retrieves a specific work by its OpenAlex ID or DOI.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	fetchURL, err := c.buildGetByIDURL(id)
	if err != nil {
		return nil, fmt.Errorf("building fetch URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
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
		return nil, domain.NewExternalAPIError("OpenAlex", resp.StatusCode, string(body), nil)
	}

	var work Work
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&work); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.workToResource(&work), nil
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceOpenAlex
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return "OpenAlex"
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildSearchURL constructs the search API URL with query parameters.
func (c *Client) buildSearchURL(q provider.SearchQuery) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	baseURL.Path = "/works"

	query := url.Values{}
	if q.Query != "" {
		query.Set("search", q.Query)
	}

	filters := c.buildFilters(q.Filters)
	if len(filters) > 0 {
		query.Set("filter", strings.Join(filters, ","))
	}

	perPage := provider.ClampPerPage(q.PerPage, MaxPerPage)
	query.Set("per_page", strconv.Itoa(perPage))
	if q.Page > 1 {
		query.Set("page", strconv.Itoa(q.Page))
	}

	switch q.Sort {
	case provider.SortDate:
		query.Set("sort", "publication_date:desc")
	case provider.SortCitations:
		query.Set("sort", "cited_by_count:desc")
	}

	// mailto grants access to the polite pool.
	if c.config.Email != "" {
		query.Set("mailto", c.config.Email)
	}

	baseURL.RawQuery = query.Encode()
	return baseURL.String(), nil
}

// buildFilters constructs the filter query string components.
func (c *Client) buildFilters(f provider.Filters) []string {
	var filters []string

	switch {
	case f.Year > 0:
		filters = append(filters, fmt.Sprintf("publication_year:%d", f.Year))
	case f.YearFrom > 0 && f.YearTo > 0:
		filters = append(filters, fmt.Sprintf("publication_year:%d-%d", f.YearFrom, f.YearTo))
	case f.YearFrom > 0:
		filters = append(filters, fmt.Sprintf("from_publication_date:%d-01-01", f.YearFrom))
	case f.YearTo > 0:
		filters = append(filters, fmt.Sprintf("to_publication_date:%d-12-31", f.YearTo))
	}

	if f.OpenAccess != nil {
		filters = append(filters, fmt.Sprintf("is_oa:%t", *f.OpenAccess))
	}

	if f.Language != "" {
		filters = append(filters, "language:"+f.Language)
	}

	if f.Type != "" {
		if native, ok := filterTypeTable[f.Type]; ok {
			filters = append(filters, "type:"+native)
		}
	}

	return filters
}

// filterTypeTable maps canonical types back to OpenAlex filter values for
// outgoing type filters. Canonical types OpenAlex has no equivalent for
// are simply not filterable on this source.
var filterTypeTable = map[domain.ResourceType]string{
	domain.TypePaper:       "article",
	domain.TypeBook:        "book",
	domain.TypeBookChapter: "book-chapter",
	domain.TypeThesis:      "dissertation",
	domain.TypePreprint:    "preprint",
	domain.TypeDataset:     "dataset",
	domain.TypeReport:      "report",
	domain.TypeConference:  "proceedings-article",
}

// buildGetByIDURL constructs the URL for fetching a work by ID.
// OpenAlex accepts OpenAlex IDs, DOIs, and a few other identifier forms.
func (c *Client) buildGetByIDURL(id string) (string, error) {
	baseURL, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	var workID string
	switch {
	case strings.HasPrefix(id, openAlexIDPrefix):
		workID = strings.TrimPrefix(id, openAlexIDPrefix)
	case strings.HasPrefix(id, "W"):
		workID = id
	case strings.HasPrefix(id, doiPrefix):
		workID = id
	case strings.HasPrefix(id, "10."):
		workID = doiPrefix + id
	case strings.HasPrefix(id, "doi:"):
		workID = doiPrefix + strings.TrimPrefix(id, "doi:")
	default:
		workID = id
	}

	// OpenAlex expects the DOI as-is in the path and handles URL decoding
	// on their side.
	baseURL.Path = "/works/" + workID

	if c.config.Email != "" {
		query := url.Values{}
		query.Set("mailto", c.config.Email)
		baseURL.RawQuery = query.Encode()
	}

	return baseURL.String(), nil
}

// workToResource converts an OpenAlex work to a canonical resource.
func (c *Client) workToResource(work *Work) *domain.Resource {
	title := work.DisplayName
	if title == "" {
		title = work.Title
	}

	authors := make([]string, 0, len(work.Authorships))
	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName != "" {
			authors = append(authors, authorship.Author.DisplayName)
		}
	}

	var journal, venue string
	if work.PrimaryLocation != nil && work.PrimaryLocation.Source != nil {
		journal = work.PrimaryLocation.Source.DisplayName
		venue = journal
	}

	var isOpenAccess bool
	var pdfURL string
	if work.OpenAccess != nil {
		isOpenAccess = work.OpenAccess.IsOA
		pdfURL = work.OpenAccess.OAURL
	}
	var license, pageURL string
	if work.PrimaryLocation != nil {
		if pdfURL == "" {
			pdfURL = work.PrimaryLocation.PDFURL
		}
		license = work.PrimaryLocation.License
		pageURL = work.PrimaryLocation.LandingPage
	}
	if pageURL == "" {
		if work.DOI != "" {
			pageURL = work.DOI
		} else {
			pageURL = work.ID
		}
	}

	topics := make([]string, 0, len(work.Topics))
	for _, t := range work.Topics {
		topics = append(topics, t.DisplayName)
	}
	keywords := make([]string, 0, len(work.Keywords))
	for _, k := range work.Keywords {
		keywords = append(keywords, k.DisplayName)
	}

	rtype, ok := typeTable[work.Type]
	if !ok {
		rtype = domain.TypePaper
	}

	res := &domain.Resource{
		ExternalID:      normalizeOpenAlexID(work.ID),
		Source:          domain.SourceOpenAlex,
		Title:           title,
		Authors:         domain.CapAuthors(authors, maxAuthors),
		Abstract:        reconstructAbstract(work.AbstractInvertedIndex),
		PublicationDate: work.PublicationDate,
		PublicationYear: work.PublicationYear,
		Type:            rtype,
		URL:             pageURL,
		PDFURL:          pdfURL,
		IsOpenAccess:    isOpenAccess,
		License:         license,
		DOI:             normalizeDOI(work.DOI),
		Journal:         journal,
		Venue:           venue,
		Topics:          topics,
		Keywords:        keywords,
		CitationCount:   work.CitedByCount,
		ReferenceCount:  len(work.ReferencedWorks),
	}
	res.Normalize()
	return res
}

// normalizeDOI strips URL prefixes from DOIs and returns lowercase.
func normalizeDOI(doi string) string {
	if doi == "" {
		return ""
	}
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, doiPrefix)
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(strings.TrimSpace(doi))
}

// normalizeOpenAlexID extracts the short ID from full OpenAlex URLs.
func normalizeOpenAlexID(id string) string {
	return strings.TrimSpace(strings.TrimPrefix(id, openAlexIDPrefix))
}

// reconstructAbstract rebuilds the abstract text from OpenAlex's inverted
// index format, which maps each word to the list of positions it occupies.
// The index is flattened to (position, word) pairs, stable-sorted by
// position, and joined with single spaces. An absent index yields the
// empty string, never a placeholder.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	// Guard against malicious payloads with excessive position entries.
	const maxAbstractWords = 100_000
	totalPairs := 0
	for _, positions := range invertedIndex {
		totalPairs += len(positions)
	}
	if totalPairs > maxAbstractWords {
		return ""
	}

	pairs := make([]posWord, 0, totalPairs)
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	var builder strings.Builder
	builder.Grow(totalPairs * 7)
	for i, pair := range pairs {
		if i > 0 {
			builder.WriteByte(' ')
		}
		builder.WriteString(pair.word)
	}

	return builder.String()
}
