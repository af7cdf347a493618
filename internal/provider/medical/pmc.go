package medical

import (
	"context"

	"github.com/studyhub/resource-aggregator/internal/domain"
)

// pmcSource searches PubMed Central, the open full-text archive, through
// E-utilities. Everything in PMC has free full text.
type pmcSource struct {
	eutils *eutilsClient
}

func (s *pmcSource) name() string { return "pmc" }

func (s *pmcSource) search(ctx context.Context, query string, offset, limit int) ([]*domain.Resource, int, error) {
	docs, total, err := s.eutils.search(ctx, "pmc", query, offset, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]*domain.Resource, 0, len(docs))
	for i := range docs {
		items = append(items, pmcDocToResource(&docs[i]))
	}
	return items, total, nil
}

func (s *pmcSource) getByID(ctx context.Context, id string) (*domain.Resource, error) {
	docs, err := s.eutils.esummary(ctx, "pmc", []string{id})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 || docs[0].Title == "" {
		return nil, domain.NewNotFoundError("resource", id)
	}
	return pmcDocToResource(&docs[0]), nil
}

func pmcDocToResource(d *esummaryDoc) *domain.Resource {
	res := &domain.Resource{
		ExternalID:      "pmc:" + d.UID,
		Source:          domain.SourceMedBooks,
		Title:           d.Title,
		Authors:         d.authorNames(),
		PublicationDate: d.PubDate,
		Type:            domain.TypePaper,
		URL:             "https://www.ncbi.nlm.nih.gov/pmc/articles/PMC" + d.UID + "/",
		IsOpenAccess:    true,
		DOI:             d.doi(),
		Journal:         d.FullJournalName,
	}
	res.Normalize()
	return res
}
