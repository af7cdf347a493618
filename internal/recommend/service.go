package recommend

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/studyhub/resource-aggregator/internal/aggregator"
	"github.com/studyhub/resource-aggregator/internal/domain"
)

// MaxRecommendations caps a subject recommendation response.
const MaxRecommendations = 10

// SubjectRecommendations is the response for one subject name. Career
// is empty and the slices are empty (not nil) when nothing matched.
type SubjectRecommendations struct {
	Career          string             `json:"career,omitempty"`
	Category        string             `json:"category,omitempty"`
	Recommendations []*domain.Resource `json:"recommendations"`
	MatchedKeywords []string           `json:"matched_keywords"`
}

// Service resolves subject names to resource recommendations through
// the catalog matcher and the aggregator.
type Service struct {
	matcher    *Matcher
	aggregator *aggregator.Aggregator
	logger     zerolog.Logger
}

// NewService creates a recommendation service.
func NewService(matcher *Matcher, agg *aggregator.Aggregator, logger zerolog.Logger) *Service {
	return &Service{
		matcher:    matcher,
		aggregator: agg,
		logger:     logger.With().Str("component", "recommend").Logger(),
	}
}

// ForSubject matches a subject name and fetches resources for the
// match. A category match fetches that category alone; a career match
// aggregates across the career's categories, deduplicated by external
// id. No match returns the empty shape, never an error.
func (s *Service) ForSubject(ctx context.Context, subject string) *SubjectRecommendations {
	match := s.matcher.MatchSubject(subject)
	if match == nil {
		return &SubjectRecommendations{
			Recommendations: []*domain.Resource{},
			MatchedKeywords: []string{},
		}
	}

	resp := &SubjectRecommendations{
		Career:          match.Career,
		Recommendations: []*domain.Resource{},
		MatchedKeywords: match.MatchedKeywords,
	}
	if match.Category != nil {
		resp.Category = match.Category.Name
	}

	seen := make(map[string]struct{})
	for _, category := range match.Categories {
		items := s.aggregator.Recommendations(ctx, category.Topics, aggregator.RecommendationOptions{
			Category: category.Route,
			Limit:    MaxRecommendations,
		})
		for _, item := range items {
			key := string(item.Source) + ":" + item.ExternalID
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			resp.Recommendations = append(resp.Recommendations, item)
			if len(resp.Recommendations) >= MaxRecommendations {
				return resp
			}
		}
	}

	s.logger.Debug().
		Str("subject", subject).
		Str("career", resp.Career).
		Str("category", resp.Category).
		Int("results", len(resp.Recommendations)).
		Msg("subject recommendations resolved")
	return resp
}
