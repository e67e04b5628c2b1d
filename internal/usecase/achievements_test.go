package usecase

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/naka-gawa/github-recap/internal/domain"
)

func languages(n int) domain.LanguageBytes {
	out := domain.LanguageBytes{}
	for i := 0; i < n; i++ {
		out[fmt.Sprintf("lang-%d", i)] = float64(i + 1)
	}
	return out
}

func labels(list []domain.Achievement) []string {
	out := []string{}
	for _, a := range list {
		out = append(out, a.Label)
	}
	return out
}

func TestAchievements(t *testing.T) {
	testCases := []struct {
		name     string
		recap    domain.Recap
		expected []string
	}{
		{
			name: "one badge per track, highest tier wins",
			recap: domain.Recap{
				Totals:    domain.Totals{Commits: 6000, PullRequests: 1500, Overall: 12000},
				Calendar:  domain.Calendar{LongestStreak: 400},
				Languages: domain.Languages{WeightedBytes: languages(12)},
			},
			expected: []string{"Year Streak", "PR Expert", "10K Club", "Polyglot", "Commit Master"},
		},
		{
			name: "exact thresholds unlock their tier",
			recap: domain.Recap{
				Totals:    domain.Totals{Commits: 1000, PullRequests: 100, Overall: 5000},
				Calendar:  domain.Calendar{LongestStreak: 7},
				Languages: domain.Languages{WeightedBytes: languages(5)},
			},
			expected: []string{"Weekly Streak", "PR Contributor", "5K Club", "Multilingual", "Commit Expert"},
		},
		{
			name: "just below every threshold",
			recap: domain.Recap{
				Totals:    domain.Totals{Commits: 999, PullRequests: 99, Overall: 999},
				Calendar:  domain.Calendar{LongestStreak: 6},
				Languages: domain.Languages{WeightedBytes: languages(4)},
			},
			expected: []string{},
		},
		{
			name:     "mid tiers",
			recap:    domain.Recap{Totals: domain.Totals{PullRequests: 500}, Calendar: domain.Calendar{LongestStreak: 100}},
			expected: []string{"Century Streak", "PR Pro"},
		},
		{
			name:     "top tiers",
			recap:    domain.Recap{Totals: domain.Totals{PullRequests: 2000}, Calendar: domain.Calendar{LongestStreak: 30}},
			expected: []string{"Monthly Streak", "PR Master"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Achievements(&tc.recap)
			assert.Equal(t, tc.expected, labels(got))

			seen := map[domain.AchievementType]bool{}
			for _, a := range got {
				assert.False(t, seen[a.Type], "duplicate badge for track %s", a.Type)
				seen[a.Type] = true
			}
		})
	}
}

func TestFilterAchievementsAndLeading(t *testing.T) {
	recap := domain.Recap{
		Totals:    domain.Totals{Commits: 6000, PullRequests: 1500, Overall: 12000},
		Calendar:  domain.Calendar{LongestStreak: 400},
		Languages: domain.Languages{WeightedBytes: languages(12)},
	}
	all := Achievements(&recap)

	assert.Equal(t, []string{"PR Expert", "10K Club", "Commit Master"},
		labels(FilterAchievements(all, domain.AchievementContrib, domain.AchievementCommit, domain.AchievementPR)))
	assert.Equal(t, []string{"Year Streak"}, labels(FilterAchievements(all, domain.AchievementStreak)))
	assert.Len(t, Leading(all, 3), 3)
	assert.Len(t, Leading(all, 6), 5)
}
