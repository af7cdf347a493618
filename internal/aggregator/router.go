package aggregator

import "github.com/studyhub/resource-aggregator/internal/domain"

// Category is a coarse user-facing grouping resolved to an ordered
// source list. Order matters: it is the dispatch order and the
// first-seen tie-break order in deduplication.
type Category string

// Supported categories.
const (
	CategoryAll     Category = "all"
	CategoryPapers  Category = "papers"
	CategoryBooks   Category = "books"
	CategoryVideos  Category = "videos"
	CategoryCourses Category = "courses"
	CategoryMedical Category = "medical"
)

// routes is the static category routing table, built once and never
// mutated; concurrent reads need no locking.
var routes = map[Category][]domain.SourceID{
	CategoryPapers: {
		domain.SourceOpenAlex,
		domain.SourceSemanticScholar,
		domain.SourceCrossref,
	},
	CategoryBooks: {
		domain.SourceArchive,
		domain.SourceGoogleBooks,
		domain.SourceLibGen,
		domain.SourceMedBooks,
	},
	CategoryVideos: {
		domain.SourceYouTube,
	},
	CategoryCourses: {
		domain.SourceArchive,
		domain.SourceDuckDuckGo,
	},
	CategoryMedical: {
		domain.SourceMedBooks,
		domain.SourceOpenAlex,
		domain.SourceSemanticScholar,
	},
	CategoryAll: {
		domain.SourceOpenAlex,
		domain.SourceGoogleBooks,
		domain.SourceYouTube,
		domain.SourceArchive,
		domain.SourceCrossref,
		domain.SourceMedBooks,
	},
}

// RouteCategory resolves a category to its ordered source list. Unknown
// categories fall back to the "all" route.
func RouteCategory(category Category) []domain.SourceID {
	if sources, ok := routes[category]; ok {
		return sources
	}
	return routes[CategoryAll]
}

// Categories returns the supported category names in a fixed order.
func Categories() []Category {
	return []Category{
		CategoryAll,
		CategoryPapers,
		CategoryBooks,
		CategoryVideos,
		CategoryCourses,
		CategoryMedical,
	}
}
