package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/naka-gawa/github-recap/internal/domain"
)

// daysPerYear is deliberately fixed; partial and leap years are not adjusted.
const daysPerYear = 365

// AdditionalStats derives the aggregate figures shown next to the headline totals.
func AdditionalStats(r *domain.Recap) domain.DerivedStats {
	repos := make(map[string]struct{}, len(r.TopRepos))
	for _, repo := range r.TopRepos {
		repos[repo.Repo] = struct{}{}
	}

	return domain.DerivedStats{
		TotalRepos:      len(repos),
		AvgPerDay:       fmt.Sprintf("%.1f", round1(float64(r.Totals.Overall)/daysPerYear)),
		MostActiveMonth: MostActiveMonth(r.Calendar.Days),
		Distribution:    Distribution(r.Totals),
	}
}

// MostActiveMonth sums the days per YYYY-MM bucket and labels the largest one,
// e.g. "March 2025 (1,234 contributions)".
func MostActiveMonth(days []domain.ContributionDay) string {
	var order []string
	sums := make(map[string]int)
	for _, d := range days {
		if len(d.Date) < 7 {
			continue
		}
		month := d.Date[:7]
		if _, ok := sums[month]; !ok {
			order = append(order, month)
		}
		sums[month] += d.Count
	}
	if len(order) == 0 {
		return Placeholder
	}

	pairs := make([]Pair, 0, len(order))
	for _, m := range order {
		pairs = append(pairs, Pair{Key: m, Value: float64(sums[m])})
	}
	SortDesc(pairs)
	best := pairs[0].Key
	return fmt.Sprintf("%s (%s contributions)", monthLabel(best), FormatNumber(sums[best]))
}

func monthLabel(prefix string) string {
	year, month, ok := strings.Cut(prefix, "-")
	if !ok {
		return prefix
	}
	n, err := strconv.Atoi(month)
	if err != nil || n < 1 || n > 12 {
		return prefix
	}
	return time.Month(n).String() + " " + year
}

// Distribution splits commits, pull requests and issues into percentage shares.
// An all-zero input yields 0% everywhere.
func Distribution(t domain.Totals) []domain.DistributionEntry {
	entries := []domain.DistributionEntry{
		{Label: "Commits", Value: t.Commits},
		{Label: "Pull Requests", Value: t.PullRequests},
		{Label: "Issues", Value: t.Issues},
	}
	total := t.Commits + t.PullRequests + t.Issues
	if total <= 0 {
		return entries
	}
	for i := range entries {
		entries[i].Percent = round1(float64(entries[i].Value) / float64(total) * 100)
	}
	return entries
}
