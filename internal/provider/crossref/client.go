package crossref

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

const (
	// DefaultBaseURL is the default Crossref REST API base URL.
	DefaultBaseURL = "https://api.crossref.org"

	// DefaultRateLimit follows Crossref's polite-pool guidance.
	DefaultRateLimit = 5.0

	// DefaultBurstSize is the default burst size for rate limiting.
	DefaultBurstSize = 5

	// DefaultTimeout is the default request timeout.
	DefaultTimeout = 15 * time.Second

	// MaxPerPage is the maximum rows value the works endpoint accepts.
	MaxPerPage = 100

	// maxAuthors caps the author list on normalized resources.
	maxAuthors = 10

	sourceName = "Crossref"
)

// typeTable maps Crossref work types into the canonical taxonomy.
// Unknown types default to paper.
var typeTable = map[string]domain.ResourceType{
	"journal-article":     domain.TypePaper,
	"book":                domain.TypeBook,
	"monograph":           domain.TypeBook,
	"edited-book":         domain.TypeBook,
	"book-chapter":        domain.TypeBookChapter,
	"book-section":        domain.TypeBookChapter,
	"dissertation":        domain.TypeThesis,
	"proceedings-article": domain.TypeConference,
	"posted-content":      domain.TypePreprint,
	"dataset":             domain.TypeDataset,
	"report":              domain.TypeReport,
	"standard":            domain.TypeStandard,
	"reference-entry":     domain.TypeReference,
	"reference-book":      domain.TypeReference,
}

// filterTypeTable maps canonical types back to the Crossref filter value.
var filterTypeTable = map[domain.ResourceType]string{
	domain.TypePaper:       "journal-article",
	domain.TypeBook:        "book",
	domain.TypeBookChapter: "book-chapter",
	domain.TypeThesis:      "dissertation",
	domain.TypeConference:  "proceedings-article",
	domain.TypePreprint:    "posted-content",
	domain.TypeDataset:     "dataset",
	domain.TypeReport:      "report",
	domain.TypeStandard:    "standard",
	domain.TypeReference:   "reference-entry",
}

// jatsTagRe strips the JATS XML markup Crossref embeds in abstracts.
var jatsTagRe = regexp.MustCompile(`<[^>]+>`)

// Config holds configuration for the Crossref client.
type Config struct {
	// BaseURL is the API base URL. Defaults to DefaultBaseURL.
	BaseURL string

	// Mailto is the contact address appended to requests; setting it
	// routes requests to Crossref's polite pool.
	Mailto string

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

// Client implements the provider.Provider interface for Crossref.
type Client struct {
	config     Config
	httpClient *provider.HTTPClient
}

var _ provider.Provider = (*Client)(nil)

// New creates a new Crossref client with the given configuration.
func New(cfg Config) *Client {
	cfg.applyDefaults()

	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Name:      "crossref",
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

// Search queries Crossref for works matching the given query.
func (c *Client) Search(ctx context.Context, q provider.SearchQuery) (*provider.SearchResult, error) {
	q = q.Normalize()

	u, err := url.Parse(c.config.BaseURL + "/works")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	perPage := provider.ClampPerPage(q.PerPage, MaxPerPage)

	query := u.Query()
	query.Set("query", q.Query)
	query.Set("rows", strconv.Itoa(perPage))
	if offset := (q.Page - 1) * perPage; offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if filter := buildFilter(q.Filters); filter != "" {
		query.Set("filter", filter)
	}
	switch q.Sort {
	case provider.SortDate:
		query.Set("sort", "published")
		query.Set("order", "desc")
	case provider.SortCitations:
		query.Set("sort", "is-referenced-by-count")
		query.Set("order", "desc")
	}
	if c.config.Mailto != "" {
		query.Set("mailto", c.config.Mailto)
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

	items := make([]*domain.Resource, 0, len(searchResp.Message.Items))
	for i := range searchResp.Message.Items {
		items = append(items, workToResource(&searchResp.Message.Items[i]))
	}

	return &provider.SearchResult{
		Items:   items,
		Total:   searchResp.Message.TotalResults,
		Page:    q.Page,
		PerPage: q.PerPage,
		Source:  domain.SourceCrossref,
	}, nil
}

// GetByID retrieves a work by DOI.
func (c *Client) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	doi := normalizeDOI(id)
	if doi == "" {
		return nil, domain.NewNotFoundError("resource", id)
	}

	reqURL := c.config.BaseURL + "/works/" + url.PathEscape(doi)
	if c.config.Mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.config.Mailto)
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

	var workResp WorkResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&workResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return workToResource(&workResp.Message), nil
}

// Source returns the source identifier.
func (c *Client) Source() domain.SourceID {
	return domain.SourceCrossref
}

// Name returns the human-readable name for this source.
func (c *Client) Name() string {
	return sourceName
}

// IsEnabled returns whether this source is enabled.
func (c *Client) IsEnabled() bool {
	return c.config.Enabled
}

// buildFilter renders the supported filters into Crossref's comma-joined
// filter syntax.
func buildFilter(f provider.Filters) string {
	var parts []string
	if f.Type != "" {
		if ct, ok := filterTypeTable[f.Type]; ok {
			parts = append(parts, "type:"+ct)
		}
	}
	switch {
	case f.Year > 0:
		parts = append(parts,
			fmt.Sprintf("from-pub-date:%d-01-01", f.Year),
			fmt.Sprintf("until-pub-date:%d-12-31", f.Year))
	default:
		if f.YearFrom > 0 {
			parts = append(parts, fmt.Sprintf("from-pub-date:%d-01-01", f.YearFrom))
		}
		if f.YearTo > 0 {
			parts = append(parts, fmt.Sprintf("until-pub-date:%d-12-31", f.YearTo))
		}
	}
	if f.OpenAccess != nil && *f.OpenAccess {
		// Crossref has no open-access flag; a CC license is the closest
		// queryable signal.
		parts = append(parts, "has-license:true")
	}
	return strings.Join(parts, ",")
}

// workToResource converts a Crossref work to a canonical resource.
func workToResource(w *Work) *domain.Resource {
	authors := make([]string, 0, len(w.Author))
	for _, a := range w.Author {
		authors = append(authors, authorName(a))
	}

	var title string
	if len(w.Title) > 0 {
		title = w.Title[0]
	}

	var journal string
	if len(w.ContainerTitle) > 0 {
		journal = w.ContainerTitle[0]
	}

	rtype := domain.TypePaper
	if t, ok := typeTable[w.Type]; ok {
		rtype = t
	}

	var license string
	if len(w.License) > 0 {
		license = w.License[0].URL
	}

	var pdfURL string
	for _, link := range w.Link {
		if link.ContentType == "application/pdf" {
			pdfURL = link.URL
			break
		}
	}

	doi := strings.ToLower(strings.TrimSpace(w.DOI))
	pageURL := w.URL
	if pageURL == "" && doi != "" {
		pageURL = "https://doi.org/" + doi
	}

	date, year := issuedDate(w.Issued)

	res := &domain.Resource{
		ExternalID:      doi,
		Source:          domain.SourceCrossref,
		Title:           title,
		Authors:         domain.CapAuthors(authors, maxAuthors),
		Abstract:        cleanAbstract(w.Abstract),
		PublicationDate: date,
		PublicationYear: year,
		Type:            rtype,
		URL:             pageURL,
		PDFURL:          pdfURL,
		IsOpenAccess:    isCreativeCommons(license),
		License:         license,
		DOI:             doi,
		Journal:         journal,
		Publisher:       w.Publisher,
		Topics:          w.Subject,
		CitationCount:   w.ReferencedBy,
		ReferenceCount:  w.ReferencesCount,
	}
	res.Normalize()
	return res
}

// authorName joins given and family names, falling back to the literal
// name field used for organizations.
func authorName(a Author) string {
	switch {
	case a.Given != "" && a.Family != "":
		return a.Given + " " + a.Family
	case a.Family != "":
		return a.Family
	case a.Given != "":
		return a.Given
	default:
		return a.Name
	}
}

// issuedDate flattens Crossref's date-parts into a partial date string
// and a year.
func issuedDate(d DateParts) (string, int) {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 {
		return "", 0
	}
	parts := d.DateParts[0]
	year := parts[0]
	switch len(parts) {
	case 1:
		return strconv.Itoa(year), year
	case 2:
		return fmt.Sprintf("%04d-%02d", year, parts[1]), year
	default:
		return fmt.Sprintf("%04d-%02d-%02d", year, parts[1], parts[2]), year
	}
}

// cleanAbstract strips the JATS markup Crossref embeds in abstracts.
func cleanAbstract(abstract string) string {
	if abstract == "" {
		return ""
	}
	return strings.TrimSpace(jatsTagRe.ReplaceAllString(abstract, " "))
}

// isCreativeCommons reports whether a license URL points at a Creative
// Commons license, the signal used to mark a work open access.
func isCreativeCommons(licenseURL string) bool {
	return strings.Contains(strings.ToLower(licenseURL), "creativecommons.org")
}

// normalizeDOI strips DOI URL prefixes and the doi: scheme.
func normalizeDOI(id string) string {
	id = strings.TrimSpace(id)
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi:"} {
		id = strings.TrimPrefix(id, prefix)
	}
	id = strings.ToLower(id)
	if !strings.HasPrefix(id, "10.") {
		return ""
	}
	return id
}
