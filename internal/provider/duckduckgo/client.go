// Package duckduckgo provides a web search fallback backed by the
// DuckDuckGo HTML endpoint.
//
// There is no official API; the client fetches the no-JavaScript HTML
// results page and walks the parsed tree for result links and snippets.
// Results are generic web pages, so they map to the catch-all resource
// type and are never marked open access.
package duckduckgo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

const (
	// DefaultBaseURL is the no-JavaScript HTML search endpoint.
	DefaultBaseURL = "https://html.duckduckgo.com/html/"

	// DefaultRateLimit is kept low to avoid the bot interstitial.
	DefaultRateLimit = 0.5

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 10 * time.Second

	// MaxPerPage caps how many scraped results a single search returns.
	MaxPerPage = 30

	sourceName = "DuckDuckGo"
)

// Config holds configuration for the DuckDuckGo client.
type Config struct {
	// BaseURL is the HTML endpoint URL. Defaults to DefaultBaseURL.
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

// Client implements the provider.Provider interface for DuckDuckGo.
type Client struct {
	config     Config
	httpClient *provider.HTTPClient
}

var _ provider.Provider = (*Client)(nil)

// New creates a new DuckDuckGo client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:      "duckduckgo",
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		// The endpoint serves a bot interstitial on retries.
		MaxRetries: -1,
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

// Search scrapes DuckDuckGo results for the given query. The endpoint
// has no pagination the offset contract can reach, so pages beyond the
// first return empty.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()

	if q.Page > 1 {
		return provider.EmptyResult(domain.SourceDuckDuckGo, q), nil
	}

	u, err := url.Parse(c.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	query := u.Query()
	query.Set("q", q.Query)
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

	items, err := parseResultsPage(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("parsing results page: %w", err)
	}

	if max := provider.ClampPerPage(q.PerPage, MaxPerPage); len(items) > max {
		items = items[:max]
	}

	return &provider.SearchResult{
		Items:   items,
		Total:   len(items),
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceDuckDuckGo,
	}, nil
}

// GetByID is not supported: web search results have no stable ids.
func (c *Client) GetByID(_ context.Context, id string) (*domain.Resource, error) {
	return nil, domain.NewNotFoundError("resource", id)
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceDuckDuckGo
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// parseResultsPage walks the parsed HTML for result anchors
// (class "result__a") and their snippets (class "result__snippet").
func parseResultsPage(body io.Reader) ([]*domain.Resource, error) {
	root, err := html.Parse(body)
	if err != nil {
		return nil, err
	}

	var items []*domain.Resource
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "result") {
			if res := parseResult(n); res != nil {
				items = append(items, res)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return items, nil
}

// parseResult extracts one resource from a result container node.
func parseResult(n *html.Node) *domain.Resource {
	var title, href, snippet string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch {
			case n.Data == "a" && hasClass(n, "result__a"):
				title = strings.TrimSpace(textContent(n))
				href = attr(n, "href")
			case hasClass(n, "result__snippet"):
				snippet = strings.TrimSpace(textContent(n))
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	target := resolveRedirect(href)
	if title == "" || target == "" {
		return nil
	}

	res := &domain.Resource{
		ExternalID: target,
		Source:     domain.SourceDuckDuckGo,
		Title:      title,
		Abstract:   snippet,
		Type:       domain.TypeOther,
		URL:        target,
	}
	res.Normalize()
	return res
}

// resolveRedirect unwraps DuckDuckGo's click-tracking redirect, which
// carries the real URL in the uddg parameter.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}

// hasClass reports whether a node's class attribute contains the given
// class name.
func hasClass(n *html.Node, class string) bool {
	for _, name := range strings.Fields(attr(n, "class")) {
		if name == class {
			return true
		}
	}
	return false
}

// attr returns the value of the named attribute, or empty.
func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// textContent concatenates the text nodes beneath n.
func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
