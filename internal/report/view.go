// Package report binds derived recap values to the named regions of the report
// pages and writes the pages out.
//
// Rendering is split in two: Render is pure and returns a View, an ordered list
// of slot bindings; View.Write is the only step that produces markup.
package report

import (
	"fmt"

	"github.com/naka-gawa/github-recap/internal/domain"
)

// Variant selects a page layout.
type Variant string

const (
	// Dashboard is the single scrollable page with every region in full detail.
	Dashboard Variant = "dashboard"
	// Story shows one card per screen with capped lists.
	Story Variant = "story"
)

// Document returns the file name the variant is served under.
func (v Variant) Document() string {
	if v == Story {
		return "report-story.html"
	}
	return "report.html"
}

// ParseVariant maps a variant name to a Variant.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case Dashboard, Story:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown report variant %q", s)
}

// Slot identifiers shared between the renderer and the page markup.
const (
	SlotUser            = "user"
	SlotYear            = "year"
	SlotGenerated       = "gen"
	SlotCommits         = "t_commits"
	SlotPRs             = "t_prs"
	SlotIssues          = "t_issues"
	SlotReviews         = "t_reviews"
	SlotReviews2        = "t_reviews2"
	SlotOverall         = "t_overall"
	SlotStreak          = "streak"
	SlotBestDay         = "best_day"
	SlotBestWeek        = "best_week"
	SlotHeatmap         = "heatmap"
	SlotTopRepos        = "top_repos"
	SlotPROpened        = "pr_opened"
	SlotPRMerged        = "pr_merged"
	SlotPRMergeRate     = "pr_merge_rate"
	SlotPRAvgMerge      = "pr_avg_merge"
	SlotBigPR           = "big_pr"
	SlotIssuesOpened    = "iss_opened"
	SlotIssuesClosed    = "iss_closed"
	SlotLanguages       = "langs"
	SlotReviewRepos     = "review_repos"
	SlotGrowth          = "growth"
	SlotStarsGained     = "stars_gained"
	SlotForksGained     = "forks_gained"
	SlotStarsNow        = "stars_now"
	SlotForksNow        = "forks_now"
	SlotGrowthRepos     = "growth_repos"
	SlotBadgesTotals    = "badges-01"
	SlotBadgesCalendar  = "badges-02"
	SlotBadgesPRs       = "badges-04"
	SlotBadgesLanguages = "badges-06"
	SlotTotalRepos      = "total_repos"
	SlotAvgPerDay       = "avg_per_day"
	SlotMostActiveMonth = "most_active_month"
	SlotDistribution    = "contribution_dist"
	SlotAchievements    = "achievements"
	SlotError           = "err"
)

// HeatmapCells is the fixed size of the heatmap grid: 53 weeks of 7 days.
const HeatmapCells = 53 * 7

// Row is one line of a list region.
type Row struct {
	Name  string
	Meta  string
	Icon  string // optional image path
	Title string // optional tooltip
}

// Cell is one heatmap square.
type Cell struct {
	Level int
	Title string // empty for padding cells
}

// Bar is one entry of the contribution distribution.
type Bar struct {
	Label   string
	Percent float64
	Meta    string
}

// Content is what a slot is bound to. Only the fields relevant to the slot are set.
type Content struct {
	Text        string
	Title       string
	Rows        []Row
	Cells       []Cell
	Badges      []domain.Achievement
	Bars        []Bar
	Note        string
	Placeholder string // explanatory message replacing the whole region
}

// Binding ties a slot to its content.
type Binding struct {
	Slot    string
	Content Content
}

// View is the rendered state of a report page.
type View struct {
	Variant  Variant
	Bindings []Binding
}

// Lookup returns the content bound to slot.
func (v View) Lookup(slot string) (Content, bool) {
	for _, b := range v.Bindings {
		if b.Slot == slot {
			return b.Content, true
		}
	}
	return Content{}, false
}

// Slot returns the content bound to slot, or empty content.
func (v View) Slot(slot string) Content {
	c, _ := v.Lookup(slot)
	return c
}

// Has reports whether slot is bound.
func (v View) Has(slot string) bool {
	_, ok := v.Lookup(slot)
	return ok
}

// Text returns the text bound to slot, or the placeholder when it is unbound.
func (v View) Text(slot string) string {
	if c, ok := v.Lookup(slot); ok && c.Text != "" {
		return c.Text
	}
	return "—"
}
