// Package domain defines the canonical resource model shared by every
// provider and by the aggregation pipeline.
//
// Each external source (OpenAlex, Crossref, Internet Archive, ...) returns
// records in its own schema; providers normalize them into Resource values
// before anything downstream sees them. Resources are created fresh per
// request and never mutated after a provider returns them - the aggregator
// only reorders, filters and copies.
package domain

import "strings"

// SourceID identifies a provider. It is an extensible string rather than a
// closed enum so resources imported from unknown or manual sources remain
// representable.
type SourceID string

// Known source identifiers.
const (
	SourceOpenAlex        SourceID = "openalex"
	SourceSemanticScholar SourceID = "semanticscholar"
	SourceCrossref        SourceID = "crossref"
	SourceYouTube         SourceID = "youtube"
	SourceGoogleBooks     SourceID = "googlebooks"
	SourceArchive         SourceID = "archive"
	SourceLibGen          SourceID = "libgen"
	SourceDuckDuckGo      SourceID = "duckduckgo"
	SourceMedBooks        SourceID = "medbooks"
)

// KnownSources lists every registered source identifier.
var KnownSources = []SourceID{
	SourceOpenAlex,
	SourceSemanticScholar,
	SourceCrossref,
	SourceYouTube,
	SourceGoogleBooks,
	SourceArchive,
	SourceLibGen,
	SourceDuckDuckGo,
	SourceMedBooks,
}

// ResourceType is the canonical taxonomy every provider maps its native
// type vocabulary into. Providers use fixed lookup tables with a required
// default, so Type is never empty on a returned resource.
type ResourceType string

// Canonical resource types.
const (
	TypePaper       ResourceType = "paper"
	TypeBook        ResourceType = "book"
	TypeBookChapter ResourceType = "book_chapter"
	TypeArticle     ResourceType = "article"
	TypeThesis      ResourceType = "thesis"
	TypeConference  ResourceType = "conference"
	TypePreprint    ResourceType = "preprint"
	TypeDataset     ResourceType = "dataset"
	TypeCourse      ResourceType = "course"
	TypeVideo       ResourceType = "video"
	TypeManual      ResourceType = "manual"
	TypeNotes       ResourceType = "notes"
	TypeReport      ResourceType = "report"
	TypeStandard    ResourceType = "standard"
	TypeReference   ResourceType = "reference"
	TypeOther       ResourceType = "other"
)

// Field limits applied during normalization.
const (
	// MaxTopics caps the topics list on a canonical resource.
	MaxTopics = 5

	// MaxKeywords caps the keywords list on a canonical resource.
	MaxKeywords = 10

	// DefaultTitle is the placeholder used when an upstream record has no
	// usable title.
	DefaultTitle = "Untitled resource"

	// DefaultAuthor is the placeholder author used when an upstream record
	// lists none.
	DefaultAuthor = "Unknown"
)

// Resource is the canonical, source-agnostic representation of one piece
// of academic or educational content.
type Resource struct {
	// ExternalID is the identifier assigned by the source. It is unique
	// only within Source; cross-source identity is decided by DedupKey.
	ExternalID string `json:"external_id"`

	// Source identifies the provider that produced this resource.
	Source SourceID `json:"source"`

	Title string `json:"title"`

	// Authors is in citation order, capped per provider.
	Authors []string `json:"authors"`

	Abstract string `json:"abstract,omitempty"`

	// PublicationDate allows partial dates: YYYY, YYYY-MM or YYYY-MM-DD.
	PublicationDate string `json:"publication_date,omitempty"`

	// PublicationYear is derived from PublicationDate when present.
	PublicationYear int `json:"publication_year,omitempty"`

	Type ResourceType `json:"type"`

	URL          string `json:"url,omitempty"`
	PDFURL       string `json:"pdf_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	// IsOpenAccess is always resolved by the provider from source-specific
	// signals; it is never left unset.
	IsOpenAccess bool `json:"is_open_access"`

	License        string   `json:"license,omitempty"`
	DOI            string   `json:"doi,omitempty"`
	Journal        string   `json:"journal,omitempty"`
	Publisher      string   `json:"publisher,omitempty"`
	Venue          string   `json:"venue,omitempty"`
	Topics         []string `json:"topics,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
	CitationCount  int      `json:"citation_count,omitempty"`
	ReferenceCount int      `json:"reference_count,omitempty"`
}

// DedupKey returns the key used to decide whether two resources from
// different sources represent the same content. Priority: DOI, then URL,
// then source-scoped external id.
//
// Two genuinely different resources that share a generic landing-page URL
// (possible for some scraped sources) collapse under this scheme. That
// matches the documented tie-break behavior and is not guarded against.
func (r *Resource) DedupKey() string {
	if doi := strings.TrimSpace(r.DOI); doi != "" {
		return "doi:" + strings.ToLower(doi)
	}
	if u := strings.TrimSpace(r.URL); u != "" {
		return "url:" + u
	}
	return string(r.Source) + ":" + r.ExternalID
}

// Normalize fills required fields that an upstream record left empty so a
// partially populated payload never breaks the canonical contract, and
// applies the topics/keywords caps. Providers call it once before
// returning a resource; nothing mutates the resource afterwards.
func (r *Resource) Normalize() {
	if strings.TrimSpace(r.Title) == "" {
		r.Title = DefaultTitle
	}
	if len(r.Authors) == 0 {
		r.Authors = []string{DefaultAuthor}
	}
	if r.Type == "" {
		r.Type = TypeOther
	}
	if len(r.Topics) > MaxTopics {
		r.Topics = r.Topics[:MaxTopics]
	}
	if len(r.Keywords) > MaxKeywords {
		r.Keywords = r.Keywords[:MaxKeywords]
	}
	if r.PublicationYear == 0 && r.PublicationDate != "" {
		r.PublicationYear = YearFromDate(r.PublicationDate)
	}
}

// YearFromDate extracts the year from a partial date string (YYYY,
// YYYY-MM or YYYY-MM-DD). Returns 0 when the prefix is not a year.
func YearFromDate(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for _, c := range date[:4] {
		if c < '0' || c > '9' {
			return 0
		}
		year = year*10 + int(c-'0')
	}
	return year
}

// CapAuthors truncates an author list to the provider's cap, preserving
// citation order.
func CapAuthors(authors []string, max int) []string {
	if max > 0 && len(authors) > max {
		return authors[:max]
	}
	return authors
}
