package youtube

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
	// DefaultBaseURL is the default YouTube Data API base URL.
	DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// DefaultRateLimit is conservative: search calls cost 100 quota units.
	DefaultRateLimit = 2.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 2

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// MaxPerPage is the maximum maxResults value the API accepts.
	MaxPerPage = 50

	watchURLPrefix = "https://www.youtube.com/watch?v="

	sourceName = "YouTube"
)

// Config holds configuration for the YouTube client.
type Config struct {
	// BaseURL is the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// APIKey is the required YouTube Data API key. The provider is
	// disabled when it is empty.
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

// Client implements the provider.Provider interface for YouTube.
type Client struct {
	config     Config
	httpClient *provider.HTTPClient
}

var _ provider.Provider = (*Client)(nil)

// New creates a new YouTube client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:      "youtube",
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

// Search queries YouTube for videos matching the given query.
//
// The API paginates with opaque tokens, not offsets, so only the first
// page is reachable through the offset contract; requests for later
// pages return empty.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()

	if q.Page > 1 {
		return provider.EmptyResult(domain.SourceYouTube, q), nil
	}

	u, err := url.Parse(c.config.BaseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	query := u.Query()
	query.Set("part", "snippet")
	query.Set("q", q.Query)
	query.Set("type", "video")
	query.Set("maxResults", strconv.Itoa(provider.ClampPerPage(q.PerPage, MaxPerPage)))
	query.Set("key", c.config.APIKey)
	if q.Sort == provider.SortDate {
		query.Set("order", "date")
	}
	if q.Filters.Language != "" {
		query.Set("relevanceLanguage", q.Filters.Language)
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
		item := &searchResp.Items[i]
		if item.ID.VideoID == "" {
			continue
		}
		items = append(items, snippetToResource(item.ID.VideoID, &item.Snippet))
	}

	return &provider.SearchResult{
		Items:   items,
		Total:   searchResp.PageInfo.TotalResults,
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceYouTube,
	}, nil
}

// GetByID retrieves a video by its YouTube video id.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	u, err := url.Parse(c.config.BaseURL + "/videos")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	query := u.Query()
	query.Set("part", "snippet")
	query.Set("id", id)
	query.Set("key", c.config.APIKey)
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

	var videosResp VideosResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&videosResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if len(videosResp.Items) == 0 {
		return nil, domain.NewNotFoundError("resource", id)
	}

	item := &videosResp.Items[0]
	return snippetToResource(item.ID, &item.Snippet), nil
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceYouTube
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled. The provider needs
// an API key to function.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled && c.config.APIKey != ""
}

// snippetToResource converts a video snippet to a canonical resource.
// Every video is treated as freely watchable.
func snippetToResource(videoID string, s *Snippet) *domain.Resource {
	var authors []string
	if s.ChannelTitle != "" {
		authors = []string{s.ChannelTitle}
	}

	res := &domain.Resource{
		ExternalID:      videoID,
		Source:          domain.SourceYouTube,
		Title:           s.Title,
		Authors:         authors,
		Abstract:        s.Description,
		PublicationDate: publishedDate(s.PublishedAt),
		Type:            domain.TypeVideo,
		URL:             watchURLPrefix + videoID,
		ThumbnailURL:    bestThumbnail(s.Thumbnails),
		IsOpenAccess:    true,
	}
	res.Normalize()
	return res
}

// publishedDate trims the RFC 3339 publishedAt timestamp to a date.
func publishedDate(publishedAt string) string {
	if len(publishedAt) >= 10 {
		return publishedAt[:10]
	}
	return publishedAt
}

// bestThumbnail picks the largest available rendition.
func bestThumbnail(t Thumbnails) string {
	switch {
	case t.High != nil:
		return t.High.URL
	case t.Medium != nil:
		return t.Medium.URL
	case t.Default != nil:
		return t.Default.URL
	}
	return ""
}
