package crossref

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
		Mailto:    "test@example.com",
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

func sampleWork() Work {
	return Work{
		DOI:            "10.1002/TEST.123",
		Type:           "journal-article",
		Title:          []string{"Deep Learning for Cell Imaging"},
		ContainerTitle: []string{"Nature Methods"},
		Publisher:      "Wiley",
		URL:            "https://example.com/work",
		Abstract:       "<jats:p>An <jats:italic>important</jats:italic> result.</jats:p>",
		Author: []Author{
			{Given: "Ada", Family: "Lovelace"},
			{Name: "The Imaging Consortium"},
		},
		Issued:          DateParts{DateParts: [][]int{{2022, 3, 14}}},
		Subject:         []string{"Cell Biology"},
		License:         []License{{URL: "http://creativecommons.org/licenses/by/4.0/"}},
		Link:            []Link{{URL: "https://example.com/work.pdf", ContentType: "application/pdf"}},
		ReferencedBy:    42,
		ReferencesCount: 18,
	}
}

func TestClient_Search(t *testing.T) {
	t.Run("maps works to canonical resources", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/works", r.URL.Path)
			assert.Equal(t, "cells", r.URL.Query().Get("query"))
			require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{
				Status:  "ok",
				Message: Message{TotalResults: 1, Items: []Work{sampleWork()}},
			}))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Search(context.Background(), provider.SearchQuery{Query: "cells"})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Total)
		require.Len(t, result.Items, 1)

		item := result.Items[0]
		assert.Equal(t, "10.1002/test.123", item.DOI)
		assert.Equal(t, "10.1002/test.123", item.ExternalID)
		assert.Equal(t, "Deep Learning for Cell Imaging", item.Title)
		assert.Equal(t, []string{"Ada Lovelace", "The Imaging Consortium"}, item.Authors)
		assert.Equal(t, domain.TypePaper, item.Type)
		assert.Equal(t, "Nature Methods", item.Journal)
		assert.Equal(t, "2022-03-14", item.PublicationDate)
		assert.Equal(t, 2022, item.PublicationYear)
		assert.Equal(t, "https://example.com/work.pdf", item.PDFURL)
		assert.True(t, item.IsOpenAccess, "creative commons license marks open access")
		assert.Equal(t, "An  important  result.", item.Abstract)
		assert.Equal(t, 42, item.CitationCount)
	})

	t.Run("open access filter adds license filter", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Contains(t, r.URL.Query().Get("filter"), "has-license:true")
			require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{}))
		}))
		defer server.Close()

		open := true
		client := newTestClient(server.URL)
		_, err := client.Search(context.Background(), provider.SearchQuery{
			Query:   "x",
			Filters: provider.Filters{OpenAccess: &open},
		})
		require.NoError(t, err)
	})
}

func TestClient_GetByID(t *testing.T) {
	t.Run("strips doi url prefix", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewEncoder(w).Encode(WorkResponse{
				Status:  "ok",
				Message: sampleWork(),
			}))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		res, err := client.GetByID(context.Background(), "https://doi.org/10.1002/TEST.123")
		require.NoError(t, err)
		assert.Equal(t, "10.1002/test.123", res.DOI)
	})

	t.Run("non-doi id is not found without a request", func(t *testing.T) {
		client := newTestClient("http://127.0.0.1:0")
		_, err := client.GetByID(context.Background(), "not-a-doi")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestIssuedDate(t *testing.T) {
	tests := []struct {
		name     string
		parts    [][]int
		wantDate string
		wantYear int
	}{
		{"full date", [][]int{{2021, 6, 5}}, "2021-06-05", 2021},
		{"year and month", [][]int{{2021, 6}}, "2021-06", 2021},
		{"year only", [][]int{{2021}}, "2021", 2021},
		{"empty", nil, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, year := issuedDate(DateParts{DateParts: tt.parts})
			assert.Equal(t, tt.wantDate, date)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestIsCreativeCommons(t *testing.T) {
	assert.True(t, isCreativeCommons("http://creativecommons.org/licenses/by/4.0/"))
	assert.True(t, isCreativeCommons("https://CreativeCommons.org/licenses/by-nc/2.0"))
	assert.False(t, isCreativeCommons("https://www.elsevier.com/tdm/userlicense/1.0/"))
	assert.False(t, isCreativeCommons(""))
}
