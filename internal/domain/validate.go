package domain

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/multierr"
)

const dayLayout = "2006-01-02"

// Validate reports every invariant the recap violates as a single combined error.
// A nil result means the document is well-formed. Violations are reported in
// document order.
func (r *Recap) Validate() error {
	var err error
	nonNegative := func(field string, v int) {
		if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s must not be negative, got %d", field, v))
		}
	}

	nonNegative("totals.commits", r.Totals.Commits)
	nonNegative("totals.pull_requests", r.Totals.PullRequests)
	nonNegative("totals.issues", r.Totals.Issues)
	nonNegative("totals.reviews", r.Totals.Reviews)
	nonNegative("totals.overall", r.Totals.Overall)

	c := r.Calendar
	nonNegative("calendar.longest_streak", c.LongestStreak)
	nonNegative("calendar.most_productive_day.count", c.MostProductiveDay.Count)
	nonNegative("calendar.most_productive_iso_week.count", c.MostProductiveISOWeek.Count)
	var prev time.Time
	for i, d := range c.Days {
		nonNegative(fmt.Sprintf("calendar.days[%d].count", i), d.Count)
		t, perr := time.Parse(dayLayout, d.Date)
		if perr != nil {
			err = multierr.Append(err, fmt.Errorf("calendar.days[%d].date %q is not YYYY-MM-DD", i, d.Date))
			continue
		}
		if !prev.IsZero() && !t.After(prev) {
			err = multierr.Append(err, fmt.Errorf("calendar.days[%d] (%s) is out of chronological order", i, d.Date))
		}
		prev = t
	}

	for i, repo := range r.TopRepos {
		field := fmt.Sprintf("top_repos[%d].", i)
		nonNegative(field+"total_activity", repo.TotalActivity)
		nonNegative(field+"commit_count", repo.CommitCount)
		nonNegative(field+"pr_count", repo.PRCount)
		nonNegative(field+"issue_count", repo.IssueCount)
		nonNegative(field+"review_count", repo.ReviewCount)
	}

	p := r.PRStats
	nonNegative("pr_stats.opened", p.Opened)
	nonNegative("pr_stats.merged", p.Merged)
	if rate := p.MergeRate; rate != nil {
		if *rate < 0 || *rate > 1 {
			err = multierr.Append(err, fmt.Errorf("pr_stats.merge_rate must be within [0,1], got %g", *rate))
		}
		if p.Opened == 0 {
			err = multierr.Append(err, fmt.Errorf("pr_stats.merge_rate must be null when no PRs were opened, got %g", *rate))
		}
	}
	if big := p.BiggestPR; big != nil {
		nonNegative("pr_stats.biggest_pr.additions", big.Additions)
		nonNegative("pr_stats.biggest_pr.deletions", big.Deletions)
	}

	nonNegative("issue_stats.opened", r.IssueStats.Opened)
	nonNegative("issue_stats.closed", r.IssueStats.Closed)

	nonNegative("reviews.total", r.Reviews.Total)
	for i, repo := range r.Reviews.ByRepo {
		nonNegative(fmt.Sprintf("reviews.by_repo[%d].count", i), repo.Count)
	}

	langs := make([]string, 0, len(r.Languages.WeightedBytes))
	for lang := range r.Languages.WeightedBytes {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	for _, lang := range langs {
		if w := r.Languages.WeightedBytes[lang]; w < 0 {
			err = multierr.Append(err, fmt.Errorf("languages.weighted_bytes[%s] must not be negative, got %g", lang, w))
		}
	}

	if g := r.Growth; g != nil {
		nonNegative("growth.total_stars_gained", g.TotalStarsGained)
		nonNegative("growth.total_forks_gained", g.TotalForksGained)
		nonNegative("growth.total_stars_now", g.TotalStarsNow)
		nonNegative("growth.total_forks_now", g.TotalForksNow)
		for i, repo := range g.Repos {
			field := fmt.Sprintf("growth.repos[%d].", i)
			nonNegative(field+"stars_gained_in_year", repo.StarsGainedInYear)
			nonNegative(field+"forks_gained_in_year", repo.ForksGainedInYear)
			nonNegative(field+"stars_now", repo.StarsNow)
			nonNegative(field+"forks_now", repo.ForksNow)
		}
	}
	return err
}
