// Package domain contains the core data structures of a yearly recap and the
// values derived from it.
package domain

import "time"

// Recap is the pre-computed "year in review" document consumed by the renderer.
// It is produced elsewhere and treated as read-only here.
type Recap struct {
	Meta       Meta           `json:"meta"`
	Totals     Totals         `json:"totals"`
	Calendar   Calendar       `json:"calendar"`
	TopRepos   []RepoActivity `json:"top_repos"`
	PRStats    PRStats        `json:"pr_stats"`
	IssueStats IssueStats     `json:"issue_stats"`
	Reviews    Reviews        `json:"reviews"`
	Languages  Languages      `json:"languages"`
	// Growth is nil when growth metrics were skipped upstream.
	Growth *Growth `json:"growth,omitempty"`
}

// Meta identifies whose recap this is.
type Meta struct {
	User        string    `json:"user"`
	Year        int       `json:"year"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Totals holds the headline contribution counts.
type Totals struct {
	Commits      int `json:"commits"`
	PullRequests int `json:"pull_requests"`
	Issues       int `json:"issues"`
	Reviews      int `json:"reviews"`
	Overall      int `json:"overall"`
}

// ContributionDay is a single day of the contribution calendar.
type ContributionDay struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// ISOWeekCount is the contribution sum of one ISO week.
type ISOWeekCount struct {
	ISOWeek string `json:"iso_week"`
	Count   int    `json:"count"`
}

// Calendar holds the daily contribution series and the streak highlights.
type Calendar struct {
	LongestStreak         int               `json:"longest_streak"`
	MostProductiveDay     ContributionDay   `json:"most_productive_day"`
	MostProductiveISOWeek ISOWeekCount      `json:"most_productive_iso_week"`
	Days                  []ContributionDay `json:"days"`
}

// RepoActivity holds the activity counts for a single repository.
type RepoActivity struct {
	Repo          string `json:"repo"` // owner/name
	IsPrivate     bool   `json:"is_private"`
	TotalActivity int    `json:"total_activity"`
	CommitCount   int    `json:"commit_count"`
	PRCount       int    `json:"pr_count"`
	IssueCount    int    `json:"issue_count"`
	ReviewCount   int    `json:"review_count"`
}

// PullRequestRef points at a single pull request.
type PullRequestRef struct {
	Repo      string `json:"repo"`
	Number    int    `json:"number"`
	Title     string `json:"title,omitempty"`
	URL       string `json:"url,omitempty"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
}

// PRStats summarises the pull requests authored during the year.
type PRStats struct {
	Opened int `json:"opened"`
	Merged int `json:"merged"`
	// MergeRate is nil when no PRs were opened.
	MergeRate           *float64        `json:"merge_rate"`
	AvgTimeToMergeHours *float64        `json:"avg_time_to_merge_hours"`
	BiggestPR           *PullRequestRef `json:"biggest_pr"`
	TimeOfDayHistogram  map[string]int  `json:"time_of_day_histogram,omitempty"` // hour "00".."23"
}

// IssueStats summarises the issues authored during the year.
type IssueStats struct {
	Opened             int            `json:"opened"`
	Closed             int            `json:"closed"`
	TimeOfDayHistogram map[string]int `json:"time_of_day_histogram,omitempty"`
}

// RepoCount is a per-repository counter.
type RepoCount struct {
	Repo      string `json:"repo"`
	IsPrivate bool   `json:"is_private"`
	Count     int    `json:"count"`
}

// Reviews holds the review activity broken down by repository.
type Reviews struct {
	Total  int         `json:"total"`
	ByRepo []RepoCount `json:"by_repo"`
}

// LanguageBytes maps a language name to its byte weight.
type LanguageBytes map[string]float64

// Languages holds the weighted language breakdown.
type Languages struct {
	WeightedBytes LanguageBytes `json:"weighted_bytes"`
	Note          string        `json:"note,omitempty"`
}

// GrowthRepo is the star/fork growth of one owned repository.
type GrowthRepo struct {
	Repo              string `json:"repo"`
	IsPrivate         bool   `json:"is_private"`
	StarsGainedInYear int    `json:"stars_gained_in_year"`
	ForksGainedInYear int    `json:"forks_gained_in_year"`
	StarsNow          int    `json:"stars_now"`
	ForksNow          int    `json:"forks_now"`
}

// Growth holds star/fork growth across the user's own repositories.
type Growth struct {
	Year             int          `json:"year,omitempty"`
	TotalStarsGained int          `json:"total_stars_gained"`
	TotalForksGained int          `json:"total_forks_gained"`
	TotalStarsNow    int          `json:"total_stars_now"`
	TotalForksNow    int          `json:"total_forks_now"`
	Repos            []GrowthRepo `json:"repos"`
	Note             string       `json:"note,omitempty"`
}
