package googlebooks

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
	// DefaultBaseURL is the default Google Books API base URL.
	DefaultBaseURL = "https://www.googleapis.com/books/v1"

	// DefaultRateLimit is the default rate limit for unauthenticated use.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// MaxPerPage is the maximum maxResults value the volumes endpoint
	// accepts.
	MaxPerPage = 40

	sourceName = "Google Books"
)

// Config holds configuration for the Google Books client.
type Config struct {
	// BaseURL is the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is an optional API key for higher quota.
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

// Client implements the provider.Provider interface for Google Books.
type Client struct {
	config     Config
	httpClient *provider.HTTPClient
}

var _ provider.Provider = (*Client)(nil)

// New creates a new Google Books client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:      "googlebooks",
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

// Search queries Google Books for volumes matching the given query.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()

	u, err := url.Parse(c.config.BaseURL + "/volumes")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	perPage := provider.ClampPerPage(q.PerPage, MaxPerPage)

	query := u.Query()
	query.Set("q", q.Query)
	query.Set("maxResults", strconv.Itoa(perPage))
	if offset := (q.Page - 1) * perPage; offset > 0 {
		query.Set("startIndex", strconv.Itoa(offset))
	}
	if q.Filters.OpenAccess != nil && *q.Filters.OpenAccess {
		query.Set("filter", "free-ebooks")
	}
	if q.Filters.Language != "" {
		query.Set("langRestrict", q.Filters.Language)
	}
	if q.Sort == provider.SortDate {
		query.Set("orderBy", "newest")
	}
	if c.config.APIKey != "" {
		query.Set("key", c.config.APIKey)
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

	items := make([]*domain.Resource, 0, len(searchResp.Items))
	for i := range searchResp.Items {
		items = append(items, volumeToResource(&searchResp.Items[i]))
	}

	return &provider.SearchResult{
		Items:   items,
		Total:   searchResp.TotalItems,
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceGoogleBooks,
	}, nil
}

// GetByID retrieves a volume by its Google Books volume id.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	reqURL := c.config.BaseURL + "/volumes/" + url.PathEscape(id)
	if c.config.APIKey != "" {
		reqURL += "?key=" + url.QueryEscape(c.config.APIKey)
	}

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

	var volume Volume
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&volume); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return volumeToResource(&volume), nil
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceGoogleBooks
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// volumeToResource converts a Google Books volume to a canonical
// resource. Everything from this source is a book.
func volumeToResource(v *Volume) *domain.Resource {
	info := v.VolumeInfo

	title := info.Title
	if info.Subtitle != "" {
		title = title + ": " + info.Subtitle
	}

	pageURL := info.CanonicalVolumeLink
	if pageURL == "" {
		pageURL = info.InfoLink
	}
	if pageURL == "" {
		pageURL = info.PreviewLink
	}

	var thumbnail string
	if info.ImageLinks != nil {
		thumbnail = info.ImageLinks.Thumbnail
		if thumbnail == "" {
			thumbnail = info.ImageLinks.SmallThumbnail
		}
	}

	var pdfURL string
	open := false
	if v.AccessInfo != nil {
		open = v.AccessInfo.AccessViewStatus == "FULL_PUBLIC_DOMAIN"
		if v.AccessInfo.PDF != nil && v.AccessInfo.PDF.IsAvailable {
			pdfURL = v.AccessInfo.PDF.DownloadLink
		}
	}
	if !open && v.SaleInfo != nil && v.SaleInfo.Saleability == "FREE" {
		open = true
	}

	res := &domain.Resource{
		ExternalID:      v.ID,
		Source:          domain.SourceGoogleBooks,
		Title:           title,
		Authors:         info.Authors,
		Abstract:        info.Description,
		PublicationDate: info.PublishedDate,
		Type:            domain.TypeBook,
		URL:             pageURL,
		PDFURL:          pdfURL,
		ThumbnailURL:    thumbnail,
		IsOpenAccess:    open,
		Publisher:       info.Publisher,
		Topics:          info.Categories,
	}
	res.Normalize()
	return res
}
