package medical

import (
	"context"

	"github.com/studyhub/resource-aggregator/internal/domain"
)

// bookshelfSource searches the NCBI Bookshelf, a free archive of
// biomedical books and reports, through E-utilities.
type bookshelfSource struct {
	eutils *eutilsClient
}

func (s *bookshelfSource) name() string { return "bookshelf" }

func (s *bookshelfSource) search(ctx context.Context, query string, offset, limit int) ([]*domain.Resource, int, error) {
	docs, total, err := s.eutils.search(ctx, "books", query, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*domain.Resource, 0, len(docs))
	for i := range docs {
		items = append(items, bookshelfDocToResource(&docs[i]))
	}
	return items, total, nil
}

func (s *bookshelfSource) getByID(ctx context.Context, id string) (*domain.Resource, error) {
	docs, err := s.eutils.esummary(ctx, "books", []string{id})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 || bookshelfTitle(&docs[0]) == "" {
		return nil, domain.NewNotFoundError("resource", id)
	}
	return bookshelfDocToResource(&docs[0]), nil
}

// bookshelfTitle prefers the book title; chapter records carry it in
// booktitle with the chapter in title.
func bookshelfTitle(d *esummaryDoc) string {
	if d.BookTitle != "" {
		return d.BookTitle
	}
	return d.Title
}

func bookshelfDocToResource(d *esummaryDoc) *domain.Resource {
	res := &domain.Resource{
		ExternalID:      "bookshelf:" + d.UID,
		Source:          domain.SourceMedBooks,
		Title:           bookshelfTitle(d),
		Authors:         d.authorNames(),
		PublicationDate: d.PubDate,
		Type:            domain.TypeBook,
		URL:             "https://www.ncbi.nlm.nih.gov/books/" + d.UID + "/",
		IsOpenAccess:    true,
		Publisher:       d.PublisherName,
	}
	res.Normalize()
	return res
}
