package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResource_DedupKey(t *testing.T) {
	tests := []struct {
		name     string
		resource Resource
		want     string
	}{
		{
			name: "doi wins over url and external id",
			resource: Resource{
				ExternalID: "W123",
				Source:     SourceOpenAlex,
				DOI:        "10.1038/nature12373",
				URL:        "https://example.com/paper",
			},
			want: "doi:10.1038/nature12373",
		},
		{
			name: "doi is lowercased",
			resource: Resource{
				DOI: "10.1000/ABC",
			},
			want: "doi:10.1000/abc",
		},
		{
			name: "url when doi absent",
			resource: Resource{
				ExternalID: "W123",
				Source:     SourceOpenAlex,
				URL:        "https://example.com/paper",
			},
			want: "url:https://example.com/paper",
		},
		{
			name: "source-scoped external id as last resort",
			resource: Resource{
				ExternalID: "abc123",
				Source:     SourceYouTube,
			},
			want: "youtube:abc123",
		},
		{
			name: "whitespace-only doi falls through to url",
			resource: Resource{
				DOI: "   ",
				URL: "https://example.com/x",
			},
			want: "url:https://example.com/x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resource.DedupKey())
		})
	}
}

func TestResource_Normalize(t *testing.T) {
	t.Run("fills required defaults", func(t *testing.T) {
		r := Resource{Source: SourceCrossref, ExternalID: "x"}
		r.Normalize()

		assert.Equal(t, DefaultTitle, r.Title)
		assert.Equal(t, []string{DefaultAuthor}, r.Authors)
		assert.Equal(t, TypeOther, r.Type)
	})

	t.Run("keeps populated fields", func(t *testing.T) {
		r := Resource{
			Title:   "Gray's Anatomy",
			Authors: []string{"Henry Gray"},
			Type:    TypeBook,
		}
		r.Normalize()

		assert.Equal(t, "Gray's Anatomy", r.Title)
		assert.Equal(t, []string{"Henry Gray"}, r.Authors)
		assert.Equal(t, TypeBook, r.Type)
	})

	t.Run("caps topics and keywords", func(t *testing.T) {
		r := Resource{
			Topics:   []string{"a", "b", "c", "d", "e", "f", "g"},
			Keywords: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"},
		}
		r.Normalize()

		assert.Len(t, r.Topics, MaxTopics)
		assert.Len(t, r.Keywords, MaxKeywords)
	})

	t.Run("derives year from partial date", func(t *testing.T) {
		r := Resource{PublicationDate: "2019-03"}
		r.Normalize()
		assert.Equal(t, 2019, r.PublicationYear)
	})

	t.Run("keeps explicit year", func(t *testing.T) {
		r := Resource{PublicationDate: "2019-03", PublicationYear: 2018}
		r.Normalize()
		assert.Equal(t, 2018, r.PublicationYear)
	})
}

func TestYearFromDate(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2021", 2021},
		{"2021-06", 2021},
		{"2021-06-15", 2021},
		{"2021 Mar 15", 2021},
		{"", 0},
		{"21", 0},
		{"n.d.", 0},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, YearFromDate(tt.date))
		})
	}
}

func TestCapAuthors(t *testing.T) {
	authors := []string{"a", "b", "c"}

	assert.Equal(t, []string{"a", "b"}, CapAuthors(authors, 2))
	assert.Equal(t, authors, CapAuthors(authors, 5))
	assert.Equal(t, authors, CapAuthors(authors, 0))
}
