// Package semanticscholar provides a client for the Semantic Scholar
// Graph API.
//
// API Documentation: https://api.semanticscholar.org/api-docs/
package semanticscholar

// SearchResponse represents the response from the paper search endpoint.
type SearchResponse struct {
	// Total is the total number of papers matching the query.
	Total int `json:"total"`

	// Offset is the current offset in the result set.
	Offset int `json:"offset"`

	// Next is the offset for the next page of results; 0 means no more.
	Next int `json:"next"`

	// Data contains the papers returned by the search.
	Data []PaperResult `json:"data"`
}

// PaperResult represents a single paper in the API response.
type PaperResult struct {
	PaperID          string         `json:"paperId"`
	Title            string         `json:"title"`
	Abstract         string         `json:"abstract"`
	Year             int            `json:"year"`
	PublicationDate  string         `json:"publicationDate"`
	Venue            string         `json:"venue"`
	URL              string         `json:"url"`
	PublicationTypes []string       `json:"publicationTypes"`
	FieldsOfStudy    []string       `json:"fieldsOfStudy"`
	Journal          *Journal       `json:"journal,omitempty"`
	Authors          []Author       `json:"authors"`
	CitationCount    int            `json:"citationCount"`
	ReferenceCount   int            `json:"referenceCount"`
	IsOpenAccess     bool           `json:"isOpenAccess"`
	OpenAccessPDF    *OpenAccessPDF `json:"openAccessPdf,omitempty"`
	ExternalIDs      *ExternalIDs   `json:"externalIds,omitempty"`
}

// ExternalIDs contains external identifiers for a paper.
type ExternalIDs struct {
	DOI           string `json:"DOI,omitempty"`
	ArXiv         string `json:"ArXiv,omitempty"`
	PubMed        string `json:"PubMed,omitempty"`
	PubMedCentral string `json:"PubMedCentral,omitempty"`
}

// Journal contains journal-specific information.
type Journal struct {
	Name   string `json:"name,omitempty"`
	Volume string `json:"volume,omitempty"`
	Pages  string `json:"pages,omitempty"`
}

// Author represents a paper author.
type Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// OpenAccessPDF contains information about an open access PDF.
type OpenAccessPDF struct {
	URL    string `json:"url,omitempty"`
	Status string `json:"status,omitempty"`
}
