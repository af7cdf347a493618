// Package crossref provides a client for the Crossref REST API.
//
// Crossref is the DOI registration agency for scholarly publishing; its
// works endpoint covers journal articles, books, chapters and proceedings.
//
// API Documentation: https://api.crossref.org/swagger-ui/index.html
package crossref

// SearchResponse is the envelope around every Crossref API response.
type SearchResponse struct {
	Status      string  `json:"status"`
	MessageType string  `json:"message-type"`
	Message     Message `json:"message"`
}

// Message holds the search payload: total count and the matched works.
type Message struct {
	TotalResults int    `json:"total-results"`
	Items        []Work `json:"items"`
}

// WorkResponse is the envelope for a single-work lookup.
type WorkResponse struct {
	Status      string `json:"status"`
	MessageType string `json:"message-type"`
	Message     Work   `json:"message"`
}

// Work represents one registered work. Titles and container titles are
// arrays in the API; only the first entry is meaningful.
type Work struct {
	DOI             string    `json:"DOI"`
	Type            string    `json:"type"`
	Title           []string  `json:"title"`
	ContainerTitle  []string  `json:"container-title"`
	Publisher       string    `json:"publisher"`
	URL             string    `json:"URL"`
	Abstract        string    `json:"abstract"`
	Author          []Author  `json:"author"`
	Issued          DateParts `json:"issued"`
	Subject         []string  `json:"subject"`
	License         []License `json:"license"`
	Link            []Link    `json:"link"`
	ReferencedBy    int       `json:"is-referenced-by-count"`
	ReferencesCount int       `json:"references-count"`
}

// Author is a work contributor.
type Author struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"`
}

// DateParts is Crossref's nested date encoding: [[year, month, day]] with
// trailing parts optional.
type DateParts struct {
	DateParts [][]int `json:"date-parts"`
}

// License describes a license attached to a work.
type License struct {
	URL            string `json:"URL"`
	ContentVersion string `json:"content-version"`
}

// Link is a full-text link attached to a work.
type Link struct {
	URL         string `json:"URL"`
	ContentType string `json:"content-type"`
}
