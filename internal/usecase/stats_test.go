package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-recap/internal/domain"
)

func TestAdditionalStats(t *testing.T) {
	recap := domain.Recap{
		Totals: domain.Totals{Commits: 600, PullRequests: 300, Issues: 100, Overall: 1095},
		TopRepos: []domain.RepoActivity{
			{Repo: "octo/a"}, {Repo: "octo/b"}, {Repo: "octo/a"},
		},
		Calendar: domain.Calendar{Days: []domain.ContributionDay{
			{Date: "2025-01-30", Count: 5},
			{Date: "2025-01-31", Count: 5},
			{Date: "2025-02-01", Count: 1200},
			{Date: "2025-03-01", Count: 3},
		}},
	}

	got := AdditionalStats(&recap)
	assert.Equal(t, 2, got.TotalRepos)
	assert.Equal(t, "3.0", got.AvgPerDay)
	assert.Equal(t, "February 2025 (1,200 contributions)", got.MostActiveMonth)
	require.Len(t, got.Distribution, 3)
	assert.Equal(t, []string{"Commits", "Pull Requests", "Issues"},
		[]string{got.Distribution[0].Label, got.Distribution[1].Label, got.Distribution[2].Label})
	assert.Equal(t, 60.0, got.Distribution[0].Percent)
	assert.Equal(t, 30.0, got.Distribution[1].Percent)
	assert.Equal(t, 10.0, got.Distribution[2].Percent)
}

func TestMostActiveMonth(t *testing.T) {
	testCases := []struct {
		name     string
		days     []domain.ContributionDay
		expected string
	}{
		{name: "no days", expected: "—"},
		{
			name:     "tie keeps the earlier month",
			days:     []domain.ContributionDay{{Date: "2025-04-01", Count: 2}, {Date: "2025-05-01", Count: 2}},
			expected: "April 2025 (2 contributions)",
		},
		{
			name:     "dates too short are skipped",
			days:     []domain.ContributionDay{{Date: "", Count: 50}, {Date: "2025-12-24", Count: 1}},
			expected: "December 2025 (1 contributions)",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MostActiveMonth(tc.days))
		})
	}
}

func TestDistribution(t *testing.T) {
	t.Run("all zero yields zero percentages", func(t *testing.T) {
		for _, e := range Distribution(domain.Totals{}) {
			assert.Equal(t, 0.0, e.Percent)
		}
	})

	t.Run("percentages sum to 100 within rounding tolerance", func(t *testing.T) {
		inputs := []domain.Totals{
			{Commits: 1, PullRequests: 1, Issues: 1},
			{Commits: 2, PullRequests: 1, Issues: 0},
			{Commits: 7, PullRequests: 13, Issues: 29},
			{Commits: 1, PullRequests: 0, Issues: 0},
			{Commits: 9999, PullRequests: 1, Issues: 1},
			{Commits: 123, PullRequests: 456, Issues: 789},
		}
		for _, in := range inputs {
			sum := 0.0
			for _, e := range Distribution(in) {
				sum += e.Percent
			}
			assert.InDelta(t, 100.0, sum, 0.1+1e-9, "input %+v", in)
		}
	})
}
