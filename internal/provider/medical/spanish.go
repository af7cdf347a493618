package medical

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

// DefaultSpanishMirrors lists the mirrors of the scraped Spanish-language
// medical book site, tried in rotation order.
var DefaultSpanishMirrors = []string{
	"https://booksmedicos.org",
	"https://booksmedicos.me",
}

// spanishSource scrapes a Spanish-language medical book site. The site
// is a WordPress install: search is /?s=<query> and results are article
// elements with a linked title, a cover image and an excerpt. Mirrors
// rotate on failure the same way the book mirror source does.
type spanishSource struct {
	mirrors    *provider.MirrorSet
	httpClient *provider.HTTPClient
}

func (s *spanishSource) name() string { return "spanish" }

func (s *spanishSource) search(ctx context.Context, query string, offset, limit int) ([]*domain.Resource, int, error) {
	mirror := s.mirrors.Current()

	u, err := url.Parse(mirror + "/")
	if err != nil {
		s.mirrors.Advance()
		return nil, 0, fmt.Errorf("invalid mirror URL %q: %w", mirror, err)
	}
	q := u.Query()
	q.Set("s", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.mirrors.Advance()
		return nil, 0, fmt.Errorf("mirror %s: %w", mirror, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.mirrors.Advance()
		return nil, 0, domain.NewExternalAPIError("medical book site", resp.StatusCode, "mirror "+mirror, nil)
	}

	items, err := parseSpanishResults(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		s.mirrors.Advance()
		return nil, 0, fmt.Errorf("parsing mirror %s response: %w", mirror, err)
	}

	total := len(items)
	if offset >= total {
		return nil, total, nil
	}
	items = items[offset:]
	if len(items) > limit {
		items = items[:limit]
	}
	return items, total, nil
}

// getByID is unsupported; the site has no stable item identifiers.
func (s *spanishSource) getByID(_ context.Context, id string) (*domain.Resource, error) {
	return nil, domain.NewNotFoundError("resource", id)
}

func parseSpanishResults(body io.Reader) ([]*domain.Resource, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, err
	}

	var items []*domain.Resource
	doc.Find("article").Each(func(_ int, article *goquery.Selection) {
		link := article.Find("h2 a, h1 a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return
		}

		thumb, _ := article.Find("img").First().Attr("src")
		excerpt := strings.TrimSpace(article.Find("p").First().Text())

		res := &domain.Resource{
			ExternalID:   "es:" + href,
			Source:       domain.SourceMedBooks,
			Title:        title,
			Abstract:     excerpt,
			Type:         domain.TypeBook,
			URL:          href,
			ThumbnailURL: thumb,
			IsOpenAccess: true,
		}
		res.Normalize()
		items = append(items, res)
	})

	return items, nil
}
