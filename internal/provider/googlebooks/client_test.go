package googlebooks

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

func sampleVolume() Volume {
	return Volume{
		ID: "zyTCAlFPjgYC",
		VolumeInfo: VolumeInfo{
			Title:         "The Google Story",
			Subtitle:      "Inside the Hottest Business",
			Authors:       []string{"David A. Vise", "Mark Malseed"},
			Publisher:     "Random House",
			PublishedDate: "2005-11-15",
			Description:   "The definitive account.",
			Categories:    []string{"Business & Economics"},
			ImageLinks:    &ImageLinks{Thumbnail: "https://books.google.com/thumb.jpg"},
			InfoLink:      "https://books.google.com/books?id=zyTCAlFPjgYC",
		},
		AccessInfo: &AccessInfo{
			AccessViewStatus: "FULL_PUBLIC_DOMAIN",
			PDF:              &FormatInfo{IsAvailable: true, DownloadLink: "https://books.google.com/download.pdf"},
		},
	}
}

func TestClient_Search(t *testing.T) {
	t.Run("maps volumes to book resources", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/volumes", r.URL.Path)
			assert.Equal(t, "google", r.URL.Query().Get("q"))
			require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{
				TotalItems: 1,
				Items:      []Volume{sampleVolume()},
			}))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		result, err := client.Search(context.Background(), provider.SearchQuery{Query: "google"})
		require.NoError(t, err)

		assert.Equal(t, 1, result.Total)
		require.Len(t, result.Items, 1)

		item := result.Items[0]
		assert.Equal(t, "zyTCAlFPjgYC", item.ExternalID)
		assert.Equal(t, "The Google Story: Inside the Hottest Business", item.Title)
		assert.Equal(t, []string{"David A. Vise", "Mark Malseed"}, item.Authors)
		assert.Equal(t, domain.TypeBook, item.Type)
		assert.Equal(t, "Random House", item.Publisher)
		assert.Equal(t, "https://books.google.com/books?id=zyTCAlFPjgYC", item.URL)
		assert.Equal(t, "https://books.google.com/download.pdf", item.PDFURL)
		assert.Equal(t, "https://books.google.com/thumb.jpg", item.ThumbnailURL)
		assert.True(t, item.IsOpenAccess, "public domain marks open access")
		assert.Equal(t, 2005, item.PublicationYear)
	})

	t.Run("open access filter requests free ebooks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "free-ebooks", r.URL.Query().Get("filter"))
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

	t.Run("clamps per page to the api maximum", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "40", r.URL.Query().Get("maxResults"))
			require.NoError(t, json.NewEncoder(w).Encode(SearchResponse{}))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		_, err := client.Search(context.Background(), provider.SearchQuery{Query: "x", PerPage: 200})
		require.NoError(t, err)
	})
}

func TestClient_GetByID(t *testing.T) {
	t.Run("returns the mapped volume", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/volumes/zyTCAlFPjgYC", r.URL.Path)
			require.NoError(t, json.NewEncoder(w).Encode(sampleVolume()))
		}))
		defer server.Close()

		client := newTestClient(server.URL)
		res, err := client.GetByID(context.Background(), "zyTCAlFPjgYC")
		require.NoError(t, err)
		assert.Equal(t, domain.TypeBook, res.Type)
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

func TestVolumeToResource_OpenAccess(t *testing.T) {
	t.Run("free saleability marks open access", func(t *testing.T) {
		v := sampleVolume()
		v.AccessInfo = &AccessInfo{AccessViewStatus: "SAMPLE"}
		v.SaleInfo = &SaleInfo{Saleability: "FREE"}
		assert.True(t, volumeToResource(&v).IsOpenAccess)
	})

	t.Run("paid sample volume is closed", func(t *testing.T) {
		v := sampleVolume()
		v.AccessInfo = &AccessInfo{AccessViewStatus: "SAMPLE"}
		v.SaleInfo = &SaleInfo{Saleability: "FOR_SALE"}
		assert.False(t, volumeToResource(&v).IsOpenAccess)
	})
}
