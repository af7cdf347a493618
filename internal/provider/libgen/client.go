// Package libgen provides a client for Library Genesis mirrors.
//
// Library Genesis has no API; results are scraped from the search page
// HTML. Mirrors come and go, so the client rotates through a mirror list
// on failure: a request that fails advances the rotation and returns the
// error, and the next request tries the following mirror.
package libgen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

const (
	// DefaultRateLimit is kept low; these are volunteer-run mirrors.
	DefaultRateLimit = 1.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 1

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// PageSize is the fixed number of results per search page. The
	// mirrors ignore other values.
	PageSize = 25

	sourceName = "Library Genesis"
)

// DefaultMirrors lists the mirror base URLs tried in rotation order.
var DefaultMirrors = []string{
	"https://libgen.is",
	"https://libgen.rs",
	"https://libgen.st",
}

// Config holds configuration for the Library Genesis client.
type Config struct {
	// Mirrors is the ordered mirror list. Defaults to DefaultMirrors.
	Mirrors []string

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
	if len(c.Mirrors) == 0 {
		c.Mirrors = DefaultMirrors
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

// Client implements the provider.Provider interface for Library Genesis.
type Client struct {
	config     Config
	mirrors    *provider.MirrorSet
	httpClient *provider.HTTPClient
}

var _ provider.Provider = (*Client)(nil)

// New creates a new Library Genesis client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:      "libgen",
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		BurstSize: cfg.BurstSize,
		// A dead mirror should rotate, not retry.
		MaxRetries: -1,
	})

	return &Client{
		config:     cfg,
		mirrors:    provider.NewMirrorSet(cfg.Mirrors),
		httpClient: httpClient,
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client, useful
// for testing with mock servers.
func NewWithHTTPClient(cfg Config, httpClient *provider.HTTPClient) *Client {
	cfg.applyDefaults()
	return &Client{
		config:     cfg,
		mirrors:    provider.NewMirrorSet(cfg.Mirrors),
		httpClient: httpClient,
	}
}

// Search queries the current mirror for books matching the given query.
// On failure the mirror rotation advances before the error is returned.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()
	mirror := c.mirrors.Current()

	u, err := url.Parse(mirror + "/search.php")
	if err != nil {
		c.mirrors.Advance()
		return nil, fmt.Errorf("invalid mirror URL %q: %w", mirror, err)
	}

	query := u.Query()
	query.Set("req", q.Query)
	query.Set("res", strconv.Itoa(PageSize))
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("view", "simple")
	query.Set("column", "def")
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.mirrors.Advance()
		return nil, fmt.Errorf("mirror %s: %w", mirror, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.mirrors.Advance()
		return nil, domain.NewExternalAPIError(sourceName, resp.StatusCode, "mirror "+mirror, nil)
	}

	items, err := c.parseSearchPage(mirror, io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		c.mirrors.Advance()
		return nil, fmt.Errorf("parsing mirror %s response: %w", mirror, err)
	}

	return &provider.SearchResult{
		Items: items,
		// The mirrors report no reliable total; a full page implies more.
		Total:   (q.Page-1)*PageSize + len(items),
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceLibGen,
	}, nil
}

// GetByID is not supported: the mirrors expose no stable item API, only
// search pages.
func (c *Client) GetByID(_ context.Context, id string) (*domain.Resource, error) {
	return nil, domain.NewNotFoundError("resource", id)
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceLibGen
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// parseSearchPage scrapes the results table from the search page HTML.
//
// The layout is a table with class "c": a header row followed by one row
// per book with columns id, authors, title, publisher, year, pages,
// language, size, extension and mirror links. The title cell links to
// book/index.php?md5=<hash>.
func (c *Client) parseSearchPage(mirror string, body io.Reader) ([]*domain.Resource, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	var items []*domain.Resource
	doc.Find("table.c tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return
		}
		cells := row.Find("td")
		if cells.Length() < 9 {
			return
		}

		id := strings.TrimSpace(cells.Eq(0).Text())
		titleCell := cells.Eq(2).Find("a").First()
		title := strings.TrimSpace(titleCell.Text())
		href, _ := titleCell.Attr("href")

		if title == "" && id == "" {
			return
		}

		pageURL := href
		if pageURL != "" && !strings.HasPrefix(pageURL, "http") {
			pageURL = mirror + "/" + strings.TrimPrefix(pageURL, "/")
		}

		res := &domain.Resource{
			ExternalID:      id,
			Source:          domain.SourceLibGen,
			Title:           title,
			Authors:         parseAuthors(cells.Eq(1)),
			PublicationDate: strings.TrimSpace(cells.Eq(4).Text()),
			Type:            domain.TypeBook,
			URL:             pageURL,
			IsOpenAccess:    true,
			Publisher:       strings.TrimSpace(cells.Eq(3).Text()),
		}
		res.Normalize()
		items = append(items, res)
	})

	return items, nil
}

// parseAuthors splits the author cell. Authors appear as individual
// links, or as a comma-separated string on some mirrors.
func parseAuthors(cell *goquery.Selection) []string {
	var authors []string
	cell.Find("a").Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			authors = append(authors, name)
		}
	})
	if len(authors) > 0 {
		return authors
	}
	for _, name := range strings.Split(cell.Text(), ",") {
		if name = strings.TrimSpace(name); name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
