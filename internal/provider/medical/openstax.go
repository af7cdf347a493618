package medical

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

// DefaultOpenStaxBaseURL is the OpenStax CMS base URL.
const DefaultOpenStaxBaseURL = "https://openstax.org"

// openstaxCatalog is the catalog endpoint response.
type openstaxCatalog struct {
	Books []openstaxBook `json:"books"`
}

type openstaxBook struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Description string           `json:"description"`
	CoverURL    string           `json:"cover_url"`
	PublishDate string           `json:"publish_date"`
	Subjects    []string         `json:"subjects"`
	Authors     []openstaxAuthor `json:"authors"`
}

type openstaxAuthor struct {
	Value struct {
		Name string `json:"name"`
	} `json:"value"`
}

// openstaxSource serves OpenStax textbooks. The catalog is one static
// JSON document, so search is a client-side substring match over title,
// description and subjects. Every OpenStax book is openly licensed.
type openstaxSource struct {
	baseURL    string
	httpClient *provider.HTTPClient
}

func (s *openstaxSource) name() string { return "openstax" }

func (s *openstaxSource) search(ctx context.Context, query string, offset, limit int) ([]*domain.Resource, int, error) {
	books, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, 0, err
	}

	var matched []*domain.Resource
	needle := strings.ToLower(query)
	for i := range books {
		if bookMatches(&books[i], needle) {
			matched = append(matched, s.bookToResource(&books[i]))
		}
	}

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func (s *openstaxSource) getByID(ctx context.Context, id string) (*domain.Resource, error) {
	books, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	for i := range books {
		if books[i].Slug == id {
			return s.bookToResource(&books[i]), nil
		}
	}
	return nil, domain.NewNotFoundError("resource", id)
}

func (s *openstaxSource) fetchCatalog(ctx context.Context) ([]openstaxBook, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/apps/cms/api/books", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return nil, domain.NewExternalAPIError("OpenStax", resp.StatusCode, string(body), nil)
	}

	var catalog openstaxCatalog
	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return catalog.Books, nil
}

func bookMatches(b *openstaxBook, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(b.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(b.Description), needle) {
		return true
	}
	for _, subject := range b.Subjects {
		if strings.Contains(strings.ToLower(subject), needle) {
			return true
		}
	}
	return false
}

func (s *openstaxSource) bookToResource(b *openstaxBook) *domain.Resource {
	authors := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		if a.Value.Name != "" {
			authors = append(authors, a.Value.Name)
		}
	}

	res := &domain.Resource{
		ExternalID:      "openstax:" + b.Slug,
		Source:          domain.SourceMedBooks,
		Title:           b.Title,
		Authors:         authors,
		Abstract:        b.Description,
		PublicationDate: b.PublishDate,
		Type:            domain.TypeBook,
		URL:             s.baseURL + "/details/books/" + b.Slug,
		ThumbnailURL:    b.CoverURL,
		IsOpenAccess:    true,
		Publisher:       "OpenStax",
		Topics:          b.Subjects,
	}
	res.Normalize()
	return res
}
