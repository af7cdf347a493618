// Package archive provides a client for the Internet Archive.
//
// Search goes through the advancedsearch endpoint; item lookup uses the
// metadata endpoint. Several document fields arrive as either a string
// or an array of strings depending on the item, so they decode through
// StringList.
//
// API Documentation: https://archive.org/developers/
package archive

import "encoding/json"

// SearchResponse represents the advancedsearch response envelope.
type SearchResponse struct {
	Response ResponseBody `json:"response"`
}

// ResponseBody holds the result count and the matched documents.
type ResponseBody struct {
	NumFound int   `json:"numFound"`
	Start    int   `json:"start"`
	Docs     []Doc `json:"docs"`
}

// Doc is a single search document.
type Doc struct {
	Identifier  string     `json:"identifier"`
	Title       StringList `json:"title"`
	Creator     StringList `json:"creator"`
	Description StringList `json:"description"`
	Date        string     `json:"date"`
	Year        FlexInt    `json:"year"`
	MediaType   string     `json:"mediatype"`
	Subject     StringList `json:"subject"`
	Licenseurl  string     `json:"licenseurl"`
}

// MetadataResponse represents the metadata endpoint response.
type MetadataResponse struct {
	Metadata Doc `json:"metadata"`
}

// StringList decodes a JSON value that may be a string or an array of
// strings.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*s = nil
		} else {
			*s = []string{single}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// First returns the first entry, or empty.
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// FlexInt decodes a JSON value that may be a number or a numeric string.
type FlexInt int

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = FlexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	var parsed int
	for _, c := range s {
		if c < '0' || c > '9' {
			parsed = 0
			break
		}
		parsed = parsed*10 + int(c-'0')
	}
	*f = FlexInt(parsed)
	return nil
}
