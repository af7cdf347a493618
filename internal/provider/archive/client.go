package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

const (
	// DefaultBaseURL is the default Internet Archive base URL.
	DefaultBaseURL = "https://archive.org"

	// DefaultRateLimit is the default rate limit.
	DefaultRateLimit = 3.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 3

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// MaxPerPage is the maximum rows value requested per search.
	MaxPerPage = 200

	sourceName = "Internet Archive"
)

// searchFields lists the document fields requested from advancedsearch.
var searchFields = []string{
	"identifier", "title", "creator", "description",
	"date", "year", "mediatype", "subject", "licenseurl",
}

// mediaTypeTable maps Internet Archive media types into the canonical
// taxonomy. Unknown media types default to other.
var mediaTypeTable = map[string]domain.ResourceType{
	"texts":     domain.TypeBook,
	"movies":    domain.TypeVideo,
	"education": domain.TypeVideo,
	"audio":     domain.TypeCourse,
}

// mediaTypeFilter maps canonical types back to an advancedsearch
// mediatype clause.
var mediaTypeFilter = map[domain.ResourceType]string{
	domain.TypeBook:   "texts",
	domain.TypeVideo:  "movies",
	domain.TypeCourse: "audio",
}

// Config holds configuration for the Internet Archive client.
type Config struct {
	// BaseURL is the site base URL. Defaults to DefaultBaseURL.
	BaseURL string

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

// Client implements the provider.Provider interface for the Internet
// Archive.
type Client struct {
	config     Config
	httpClient *provider.HTTPClient
}

var _ provider.Provider = (*Client)(nil)

// New creates a new Internet Archive client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:      "archive",
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
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

// Search queries the Internet Archive for items matching the given query.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()

	u, err := url.Parse(c.config.BaseURL + "/advancedsearch.php")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	query := u.Query()
	query.Set("q", buildQuery(q))
	for _, field := range searchFields {
		query.Add("fl[]", field)
	}
	query.Set("rows", strconv.Itoa(provider.ClampPerPage(q.PerPage, MaxPerPage)))
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("output", "json")
	if q.Sort == provider.SortDate {
		query.Set("sort[]", "date desc")
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

	items := make([]*domain.Resource, 0, len(searchResp.Response.Docs))
	for i := range searchResp.Response.Docs {
		items = append(items, c.docToResource(&searchResp.Response.Docs[i]))
	}

	return &provider.SearchResult{
		Items:   items,
		Total:   searchResp.Response.NumFound,
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceArchive,
	}, nil
}

// GetByID retrieves an item by its archive identifier.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	reqURL := c.config.BaseURL + "/metadata/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
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

	var metaResp MetadataResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&metaResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	// The metadata endpoint returns an empty object for unknown ids.
	if metaResp.Metadata.Identifier == "" {
		return nil, domain.NewNotFoundError("resource", id)
	}

	return c.docToResource(&metaResp.Metadata), nil
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceArchive
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildQuery renders the query plus supported filters into Lucene
// syntax.
func buildQuery(q provider.SearchQuery) string {
	expr := q.Query
	if mt, ok := mediaTypeFilter[q.Filters.Type]; ok {
		expr += " AND mediatype:" + mt
	}
	switch {
	case q.Filters.Year > 0:
		expr += fmt.Sprintf(" AND year:%d", q.Filters.Year)
	case q.Filters.YearFrom > 0 || q.Filters.YearTo > 0:
		from, to := "*", "*"
		if q.Filters.YearFrom > 0 {
			from = strconv.Itoa(q.Filters.YearFrom)
		}
		if q.Filters.YearTo > 0 {
			to = strconv.Itoa(q.Filters.YearTo)
		}
		expr += fmt.Sprintf(" AND year:[%s TO %s]", from, to)
	}
	return expr
}

// docToResource converts an archive document to a canonical resource.
// Everything on the Internet Archive is freely accessible.
func (c *Client) docToResource(d *Doc) *domain.Resource {
	rtype := domain.TypeOther
	if t, ok := mediaTypeTable[d.MediaType]; ok {
		rtype = t
	}

	res := &domain.Resource{
		ExternalID:      d.Identifier,
		Source:          domain.SourceArchive,
		Title:           d.Title.First(),
		Authors:         d.Creator,
		Abstract:        d.Description.First(),
		PublicationDate: d.Date,
		PublicationYear: int(d.Year),
		Type:            rtype,
		URL:             c.config.BaseURL + "/details/" + url.PathEscape(d.Identifier),
		ThumbnailURL:    c.config.BaseURL + "/services/img/" + url.PathEscape(d.Identifier),
		IsOpenAccess:    true,
		License:         d.Licenseurl,
		Topics:          d.Subject,
	}
	res.Normalize()
	return res
}
