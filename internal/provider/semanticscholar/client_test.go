package semanticscholar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

func newTestClient(serverURL string) *Client {
	cfg := Config{
		BaseURL:   serverURL,
		Timeout:   5 * time.Second,
		RateLimit: 100,
		BurstSize: 100,
		Enabled:   true,
	}
	httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
		Timeout: cfg.Timeout, RateLimit: cfg.RateLimit, BurstSize: cfg.BurstSize,
	})
	return NewWithHTTPClient(cfg, httpClient)
}

func samplePaper() PaperResult {
	return PaperResult{
		PaperID:          "649def34f8be52c8b66281af98ae884c09aef38b",
		Title:            "Attention Is All You Need",
		Abstract:         "The dominant sequence transduction models.",
		Year:             2017,
		PublicationDate:  "2017-06-12",
		Venue:            "NeurIPS",
		URL:              "https://www.semanticscholar.org/paper/649def",
		PublicationTypes: []string{"JournalArticle", "Conference"},
		FieldsOfStudy:    []string{"Computer Science"},
		Journal:          &Journal{Name: "ArXiv"},
		Authors:          []Author{{Name: "Ashish Vaswani"}, {Name: "Noam Shazeer"}},
		CitationCount:    90000,
		ReferenceCount:   42,
		IsOpenAccess:     true,
		OpenAccessPDF:    &OpenAccessPDF{URL: "https://arxiv.org/pdf/1706.03762.pdf"},
		ExternalIDs:      &ExternalIDs{DOI: "10.48550/ARXIV.1706.03762"},
	}
}

func TestClient_Search(t *testing.T) {
	t.Run("maps papers to canonical resources", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/paper/search", r.URL.Path)
			assert.Equal(t, "transformers", r.URL.Query().Get("query"))
			assert.NotEmpty(t, r.URL.Query().Get("fields"))
			assert.Equal(t, "25", r.URL.Query().Get("limit"))
			require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{
				Total: 1,
				Data:  []PaperResult{samplePaper()},
			}))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Search(context.Background(), provider.SearchQuery{Query: "transformers"})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Total)
		require.Len(t, result.Items, 1)

		item := result.Items[0]
		assert.Equal(t, "649def34f8be52c8b66281af98ae884c09aef38b", item.ExternalID)
		assert.Equal(t, domain.SourceSemanticScholar, item.Source)
		assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, item.Authors)
		assert.Equal(t, "10.48550/arxiv.1706.03762", item.DOI)
		assert.Equal(t, domain.TypePaper, item.Type, "first known publication type wins")
		assert.Equal(t, "ArXiv", item.Journal)
		assert.Equal(t, "NeurIPS", item.Venue)
		assert.Equal(t, "https://arxiv.org/pdf/1706.03762.pdf", item.PDFURL)
		assert.True(t, item.IsOpenAccess)
		assert.Equal(t, 2017, item.PublicationYear)
		assert.Equal(t, 90000, item.CitationCount)
	})

	t.Run("sends the api key header when configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))
			require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{}))
		}))
		defer server.Close()

		httpClient := provider.NewHTTPClient(provider.HTTPClientConfig{
			RateLimit: 100, BurstSize: 100,
			APIKey: "secret-key", APIKeyHeader: "x-api-key",
		})
		client := NewWithHTTPClient(Config{BaseURL: server.URL, Enabled: true}, httpClient)

		_, err := client.Search(context.Background(), provider.SearchQuery{Query: "x"})
		require.NoError(t, err)
	})

	t.Run("clamps per page to the api maximum", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "100", r.URL.Query().Get("limit"))
			require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{}))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.Search(context.Background(), provider.SearchQuery{Query: "x", PerPage: 500})
		require.NoError(t, err)
	})
}

func TestClient_GetByID(t *testing.T) {
	t.Run("returns the mapped paper", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Path, "/paper/649def")
			require.NoError(t, json.NewEncoder(w).Encode(samplePaper()))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		res, err := client.GetByID(context.Background(), "649def")
		require.NoError(t, err)
		assert.Equal(t, "Attention Is All You Need", res.Title)
	})

	t.Run("404 maps to not found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.GetByID(context.Background(), "missing")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestYearFilter(t *testing.T) {
	tests := []struct {
		name    string
		filters provider.Filters
		want    string
	}{
		{"exact year", provider.Filters{Year: 2021}, "2021"},
		{"range", provider.Filters{YearFrom: 2019, YearTo: 2021}, "2019-2021"},
		{"from only", provider.Filters{YearFrom: 2019}, "2019-"},
		{"to only", provider.Filters{YearTo: 2021}, "-2021"},
		{"none", provider.Filters{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, yearFilter(tt.filters))
		})
	}
}
