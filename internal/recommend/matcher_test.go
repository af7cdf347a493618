package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub/resource-aggregator/internal/aggregator"
)

func testCatalog() []Career {
	return []Career{
		{
			Name:     "Medicina",
			Keywords: []string{"medicina", "salud"},
			Categories: []SubjectCategory{
				{
					Name:     "Anatomía",
					Keywords: []string{"anatomia", "anatomy"},
					Topics:   []string{"human anatomy"},
					Route:    aggregator.CategoryMedical,
				},
				{
					Name:     "Fisiología",
					Keywords: []string{"fisiologia"},
					Topics:   []string{"physiology"},
					Route:    aggregator.CategoryMedical,
				},
			},
		},
		{
			Name:     "Kinesiología",
			Keywords: []string{"kinesiologia", "rehabilitacion"},
			Categories: []SubjectCategory{
				{
					Name:     "Biomecánica",
					Keywords: []string{"biomecanica"},
					Topics:   []string{"biomechanics"},
					Route:    aggregator.CategoryPapers,
				},
			},
		},
	}
}

func TestNormalizeSubject(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kinesiología", "kinesiologia"},
		{"kinesiologia", "kinesiologia"},
		{"  ANATOMÍA  ", "anatomia"},
		{"Fisiología Humana", "fisiologia humana"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSubject(tt.in))
		})
	}
}

func TestMatcher_MatchSubject(t *testing.T) {
	matcher := NewMatcher(testCatalog())

	t.Run("accented and plain spellings match identically", func(t *testing.T) {
		accented := matcher.MatchSubject("Kinesiología")
		plain := matcher.MatchSubject("Kinesiologia")

		require.NotNil(t, accented)
		require.NotNil(t, plain)
		assert.Equal(t, accented.Career, plain.Career)
		assert.Equal(t, accented.MatchedKeywords, plain.MatchedKeywords)
		assert.Equal(t, "Kinesiología", accented.Career)
	})

	t.Run("category match wins over career match", func(t *testing.T) {
		match := matcher.MatchSubject("Anatomía Humana")

		require.NotNil(t, match)
		require.NotNil(t, match.Category)
		assert.Equal(t, "Anatomía", match.Category.Name)
		assert.Equal(t, "Medicina", match.Career)
		require.Len(t, match.Categories, 1)
	})

	t.Run("career-only match aggregates all its categories", func(t *testing.T) {
		match := matcher.MatchSubject("medicina general")

		require.NotNil(t, match)
		assert.Nil(t, match.Category)
		assert.Equal(t, "Medicina", match.Career)
		assert.Len(t, match.Categories, 2)
	})

	t.Run("abbreviated subject matches by reverse containment", func(t *testing.T) {
		// The subject is a substring of the keyword "biomecanica".
		match := matcher.MatchSubject("biomeca")

		require.NotNil(t, match)
		require.NotNil(t, match.Category)
		assert.Equal(t, "Biomecánica", match.Category.Name)
	})

	t.Run("no match returns nil", func(t *testing.T) {
		assert.Nil(t, matcher.MatchSubject("astrofisica cuantica"))
		assert.Nil(t, matcher.MatchSubject(""))
	})

	t.Run("ties keep declaration order", func(t *testing.T) {
		catalog := []Career{
			{Name: "First", Keywords: []string{"shared"}},
			{Name: "Second", Keywords: []string{"shared"}},
		}
		match := NewMatcher(catalog).MatchSubject("shared")

		require.NotNil(t, match)
		assert.Equal(t, "First", match.Career)
	})
}
