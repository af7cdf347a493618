package aggregator

import (
	"sort"

	"github.com/studyhub/resource-aggregator/internal/domain"
	"github.com/studyhub/resource-aggregator/internal/provider"
)

// AggregatedResult is the merged outcome of a multi-source search: one
// deduplicated, ranked list plus the per-source totals, failed sources
// included with a zero total.
type AggregatedResult struct {
	Results       []*domain.Resource      `json:"results"`
	TotalBySource map[domain.SourceID]int `json:"total_by_source"`
}

// Merge combines per-provider results into one aggregated result.
//
// Items are visited in provider-dispatch order, then in each provider's
// own item order. The first occurrence of a dedup key wins; later
// occurrences are dropped, so cross-source duplicates collapse to
// whichever source was dispatched first. The returned dropped count
// feeds the dedup metric.
//
// Ranking is the fixed heuristic 2x(has thumbnail) + 1x(has abstract),
// descending, stable on ties.
func Merge(results []*provider.SearchResult) (*AggregatedResult, int) {
	totals := make(map[domain.SourceID]int, len(results))
	seen := make(map[string]struct{})
	merged := []*domain.Resource{}
	dropped := 0

	for _, result := range results {
		if result == nil {
			continue
		}
		totals[result.Source] = result.Total
		for _, item := range result.Items {
			key := item.DedupKey()
			if _, dup := seen[key]; dup {
				dropped++
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, item)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return rankScore(merged[i]) > rankScore(merged[j])
	})

	return &AggregatedResult{
		Results:       merged,
		TotalBySource: totals,
	}, dropped
}

// rankScore is the relevance placeholder: records with a cover image
// and an abstract sort ahead of bare metadata.
func rankScore(r *domain.Resource) int {
	score := 0
	if r.ThumbnailURL != "" {
		score += 2
	}
	if r.Abstract != "" {
		score++
	}
	return score
}
