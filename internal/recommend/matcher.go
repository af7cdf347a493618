// Package recommend maps free-text subject names onto a curated
// career/category catalog and fetches study resources for the match.
//
// Matching is diacritic-insensitive so "Kinesiología" and "kinesiologia"
// resolve identically, and substring containment runs both ways to
// tolerate abbreviations.
package recommend

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Match is the outcome of matching one subject name against the
// catalog.
type Match struct {
	// Career is the matched career name, empty when nothing matched.
	Career string

	// Category is the matched category, nil when the match was only at
	// career level or nothing matched.
	Category *SubjectCategory

	// Categories holds the categories resources are fetched from: the
	// single matched category, or all of a matched career's categories.
	Categories []SubjectCategory

	// MatchedKeywords are the keywords that hit, in declaration order.
	MatchedKeywords []string
}

// Matcher matches subject names against a catalog.
type Matcher struct {
	catalog []Career
}

// NewMatcher creates a matcher over the given catalog. Pass Catalog for
// the curated default.
func NewMatcher(catalog []Career) *Matcher {
	return &Matcher{catalog: catalog}
}

// MatchSubject finds the best catalog entry for a subject name.
// Category-level matches are tried first across every career; a
// career-level match is the fallback. The strictly highest keyword
// count wins and ties keep the earliest declared candidate. A nil
// return means nothing matched.
func (m *Matcher) MatchSubject(subject string) *Match {
	needle := NormalizeSubject(subject)
	if needle == "" {
		return nil
	}

	// Category level first.
	var bestCareer *Career
	var bestCategory *SubjectCategory
	bestCount := 0
	var bestKeywords []string
	for ci := range m.catalog {
		career := &m.catalog[ci]
		for gi := range career.Categories {
			category := &career.Categories[gi]
			count, matched := countMatches(needle, category.Keywords)
			if count > bestCount {
				bestCount = count
				bestCareer = career
				bestCategory = category
				bestKeywords = matched
			}
		}
	}
	if bestCategory != nil {
		return &Match{
			Career:          bestCareer.Name,
			Category:        bestCategory,
			Categories:      []SubjectCategory{*bestCategory},
			MatchedKeywords: bestKeywords,
		}
	}

	// Career level fallback.
	for ci := range m.catalog {
		career := &m.catalog[ci]
		count, matched := countMatches(needle, career.Keywords)
		if count > bestCount {
			bestCount = count
			bestCareer = career
			bestKeywords = matched
		}
	}
	if bestCareer == nil {
		return nil
	}
	return &Match{
		Career:          bestCareer.Name,
		Categories:      append([]SubjectCategory(nil), bestCareer.Categories...),
		MatchedKeywords: bestKeywords,
	}
}

// countMatches counts keywords contained in the subject or containing
// it, returning the hits in declaration order.
func countMatches(subject string, keywords []string) (int, []string) {
	var matched []string
	for _, kw := range keywords {
		normalized := NormalizeSubject(kw)
		if normalized == "" {
			continue
		}
		if strings.Contains(subject, normalized) || strings.Contains(normalized, subject) {
			matched = append(matched, kw)
		}
	}
	return len(matched), matched
}

// diacriticStripper lowercases comparisons by removing combining marks
// after NFD decomposition.
var diacriticStripper = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeSubject lowercases, trims and strips diacritics from a
// subject name for comparison.
func NormalizeSubject(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	stripped, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return stripped
}
