// Package googlebooks provides a client for the Google Books volumes API.
//
// API Documentation: https://developers.google.com/books/docs/v1/using
package googlebooks

// SearchResponse represents the response from the volumes search endpoint.
type SearchResponse struct {
	Kind       string   `json:"kind"`
	TotalItems int      `json:"totalItems"`
	Items      []Volume `json:"items"`
}

// Volume represents a single book volume.
type Volume struct {
	ID         string      `json:"id"`
	VolumeInfo VolumeInfo  `json:"volumeInfo"`
	AccessInfo *AccessInfo `json:"accessInfo,omitempty"`
	SaleInfo   *SaleInfo   `json:"saleInfo,omitempty"`
}

// VolumeInfo holds the bibliographic metadata for a volume.
type VolumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []IndustryIdentifier `json:"industryIdentifiers"`
	Categories          []string             `json:"categories"`
	Language            string               `json:"language"`
	ImageLinks          *ImageLinks          `json:"imageLinks,omitempty"`
	CanonicalVolumeLink string               `json:"canonicalVolumeLink"`
	InfoLink            string               `json:"infoLink"`
	PreviewLink         string               `json:"previewLink"`
}

// IndustryIdentifier is an ISBN or other industry identifier.
type IndustryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

// ImageLinks holds cover image URLs.
type ImageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// AccessInfo describes how the volume's content can be accessed.
type AccessInfo struct {
	AccessViewStatus string      `json:"accessViewStatus"`
	WebReaderLink    string      `json:"webReaderLink"`
	PDF              *FormatInfo `json:"pdf,omitempty"`
	Epub             *FormatInfo `json:"epub,omitempty"`
}

// FormatInfo describes one downloadable format.
type FormatInfo struct {
	IsAvailable  bool   `json:"isAvailable"`
	DownloadLink string `json:"downloadLink"`
}

// SaleInfo describes the volume's sale status.
type SaleInfo struct {
	Saleability string `json:"saleability"`
	IsEbook     bool   `json:"isEbook"`
}
