package medical

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

// DefaultEUtilsBaseURL is the NCBI E-utilities base URL, shared by the
// PMC and Bookshelf sub-sources.
const DefaultEUtilsBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// esearchResponse is the envelope of an esearch call.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

// esummaryDoc is one record from an esummary call. The two databases
// share the fields used here.
type esummaryDoc struct {
	UID             string      `json:"uid"`
	Title           string      `json:"title"`
	BookTitle       string      `json:"booktitle"`
	Authors         []docAuthor `json:"authors"`
	PubDate         string      `json:"pubdate"`
	FullJournalName string      `json:"fulljournalname"`
	PublisherName   string      `json:"publishername"`
	ArticleIDs      []articleID `json:"articleids"`
}

type docAuthor struct {
	Name string `json:"name"`
}

type articleID struct {
	IDType string `json:"idtype"`
	Value  string `json:"value"`
}

func (d *esummaryDoc) doi() string {
	for _, id := range d.ArticleIDs {
		if id.IDType == "doi" {
			return strings.ToLower(strings.TrimSpace(id.Value))
		}
	}
	return ""
}

func (d *esummaryDoc) authorNames() []string {
	names := make([]string, 0, len(d.Authors))
	for _, a := range d.Authors {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return names
}

// eutilsClient wraps the two-step esearch/esummary flow shared by the
// NCBI-backed sub-sources.
type eutilsClient struct {
	baseURL    string
	apiKey     string
	httpClient *provider.HTTPClient
}

// search runs esearch then esummary against the given database and
// returns the summary documents plus the total match count.
func (c *eutilsClient) search(ctx context.Context, db, term string, retstart, retmax int) ([]esummaryDoc, int, error) {
	ids, total, err := c.esearch(ctx, db, term, retstart, retmax)
	if err != nil {
		return nil, 0, err
	}
	if len(ids) == 0 {
		return nil, total, nil
	}

	docs, err := c.esummary(ctx, db, ids)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (c *eutilsClient) esearch(ctx context.Context, db, term string, retstart, retmax int) ([]string, int, error) {
	u, err := url.Parse(c.baseURL + "/esearch.fcgi")
	if err != nil {
		return nil, 0, fmt.Errorf("invalid base URL: %w", err)
	}

	query := u.Query()
	query.Set("db", db)
	query.Set("term", term)
	query.Set("retmode", "json")
	query.Set("retstart", strconv.Itoa(retstart))
	query.Set("retmax", strconv.Itoa(retmax))
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	u.RawQuery = query.Encode()

	var resp esearchResponse
	if err := c.getJSON(ctx, u.String(), &resp); err != nil {
		return nil, 0, err
	}

	total, _ := strconv.Atoi(resp.Result.Count)
	return resp.Result.IDList, total, nil
}

// esummary fetches summaries for the given uids. The result object keys
// records by uid, so it decodes through raw messages.
func (c *eutilsClient) esummary(ctx context.Context, db string, ids []string) ([]esummaryDoc, error) {
	u, err := url.Parse(c.baseURL + "/esummary.fcgi")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	query := u.Query()
	query.Set("db", db)
	query.Set("id", strings.Join(ids, ","))
	query.Set("retmode", "json")
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}
	u.RawQuery = query.Encode()

	var envelope struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := c.getJSON(ctx, u.String(), &envelope); err != nil {
		return nil, err
	}

	var uids []string
	if raw, ok := envelope.Result["uids"]; ok {
		if err := json.Unmarshal(raw, &uids); err != nil {
			return nil, fmt.Errorf("decoding uids: %w", err)
		}
	}

	docs := make([]esummaryDoc, 0, len(uids))
	for _, uid := range uids {
		raw, ok := envelope.Result[uid]
		if !ok {
			continue
		}
		var doc esummaryDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		if doc.UID == "" {
			doc.UID = uid
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *eutilsClient) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return domain.NewExternalAPIError("NCBI E-utilities", resp.StatusCode, string(body), nil)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 10<<20)).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
