// Package youtube provides a client for the YouTube Data API v3.
//
// Only the search and videos endpoints are used; every result maps to a
// video resource.
//
// API Documentation: https://developers.google.com/youtube/v3/docs
package youtube

// SearchResponse represents the response from the search endpoint.
type SearchResponse struct {
	NextPageToken string       `json:"nextPageToken"`
	PageInfo      PageInfo     `json:"pageInfo"`
	Items         []SearchItem `json:"items"`
}

// PageInfo carries the API's pagination counters.
type PageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

// SearchItem is a single search result.
type SearchItem struct {
	ID      VideoID `json:"id"`
	Snippet Snippet `json:"snippet"`
}

// VideoID wraps the video identifier in search responses.
type VideoID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

// VideosResponse represents the response from the videos endpoint.
type VideosResponse struct {
	Items []VideoItem `json:"items"`
}

// VideoItem is a single video in a videos lookup.
type VideoItem struct {
	ID      string  `json:"id"`
	Snippet Snippet `json:"snippet"`
}

// Snippet holds the video metadata shared by both endpoints.
type Snippet struct {
	PublishedAt  string     `json:"publishedAt"`
	ChannelTitle string     `json:"channelTitle"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Thumbnails   Thumbnails `json:"thumbnails"`
}

// Thumbnails lists the available thumbnail renditions.
type Thumbnails struct {
	Default *Thumbnail `json:"default,omitempty"`
	Medium  *Thumbnail `json:"medium,omitempty"`
	High    *Thumbnail `json:"high,omitempty"`
}

// Thumbnail is one thumbnail rendition.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
