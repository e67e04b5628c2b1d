package report

import (
	"fmt"

	"github.com/naka-gawa/github-recap/internal/domain"
	"github.com/naka-gawa/github-recap/internal/usecase"
)

// GrowthSkippedMessage replaces the growth region when the recap carries no growth data.
const GrowthSkippedMessage = "Growth metrics were skipped or unavailable. Re-run without --skip-growth."

const generatedLayout = "2006-01-02 15:04:05"

// options holds what differs between the variants. Zero limits mean unlimited.
type options struct {
	repoLimit   int
	reviewLimit int
	growthLimit int
	langLimit   int
	langIcons   bool
	extras      bool // badges, additional stats, achievements summary
	achieveMax  int
}

func optionsFor(v Variant) options {
	if v == Story {
		return options{repoLimit: 10, reviewLimit: 8, growthLimit: 8, langLimit: 10, langIcons: true, extras: true, achieveMax: 6}
	}
	return options{reviewLimit: 8, growthLimit: 8, langLimit: 10}
}

var languageIcons = map[string]string{
	"Python":     "language-python",
	"JavaScript": "language-js",
	"TypeScript": "language-ts",
	"Go":         "language-go",
	"CSS":        "language-css",
	"HTML":       "language-html",
}

type builder struct {
	bindings []Binding
}

func (b *builder) bind(slot string, c Content) {
	b.bindings = append(b.bindings, Binding{Slot: slot, Content: c})
}

func (b *builder) text(slot, s string) {
	b.bind(slot, Content{Text: s})
}

func (b *builder) number(slot string, n int) {
	b.text(slot, usecase.FormatNumber(n))
}

// Render binds every region of the variant from the recap. It has no side effects.
func Render(recap *domain.Recap, variant Variant) View {
	opts := optionsFor(variant)
	b := &builder{}

	b.text(SlotUser, recap.Meta.User)
	if recap.Meta.Year != 0 {
		b.text(SlotYear, fmt.Sprint(recap.Meta.Year))
	}
	if !recap.Meta.GeneratedAt.IsZero() {
		b.text(SlotGenerated, recap.Meta.GeneratedAt.UTC().Format(generatedLayout)+" UTC")
	}

	bindTotals(b, recap)
	bindCalendar(b, recap)
	b.bind(SlotTopRepos, Content{Rows: repoRows(recap.TopRepos, opts.repoLimit)})
	bindPullRequests(b, recap)
	b.number(SlotIssuesOpened, recap.IssueStats.Opened)
	b.number(SlotIssuesClosed, recap.IssueStats.Closed)
	b.bind(SlotReviewRepos, Content{Rows: reviewRows(recap.Reviews.ByRepo, opts.reviewLimit)})
	b.bind(SlotLanguages, Content{
		Rows: languageRows(recap.Languages.WeightedBytes, opts.langLimit, opts.langIcons),
		Note: recap.Languages.Note,
	})
	bindGrowth(b, recap.Growth, opts.growthLimit)

	if opts.extras {
		bindExtras(b, recap, opts)
	}
	return View{Variant: variant, Bindings: b.bindings}
}

// Failure builds the view of a page whose recap could not be loaded.
func Failure(variant Variant, err error) View {
	return View{
		Variant:  variant,
		Bindings: []Binding{{Slot: SlotError, Content: Content{Text: err.Error()}}},
	}
}

func bindTotals(b *builder, r *domain.Recap) {
	b.number(SlotCommits, r.Totals.Commits)
	b.number(SlotPRs, r.Totals.PullRequests)
	b.number(SlotIssues, r.Totals.Issues)
	b.number(SlotReviews, r.Totals.Reviews)
	b.number(SlotReviews2, r.Totals.Reviews)
	b.number(SlotOverall, r.Totals.Overall)
}

func bindCalendar(b *builder, r *domain.Recap) {
	c := r.Calendar
	b.number(SlotStreak, c.LongestStreak)
	b.text(SlotBestDay, fmt.Sprintf("%s (%s)", c.MostProductiveDay.Date, usecase.FormatNumber(c.MostProductiveDay.Count)))
	b.text(SlotBestWeek, fmt.Sprintf("%s (%s)", c.MostProductiveISOWeek.ISOWeek, usecase.FormatNumber(c.MostProductiveISOWeek.Count)))
	b.bind(SlotHeatmap, Content{Cells: Heatmap(c.Days)})
}

// Heatmap lays the days out on exactly HeatmapCells cells, truncating longer
// series and padding shorter ones with empty cells.
func Heatmap(days []domain.ContributionDay) []Cell {
	cells := make([]Cell, HeatmapCells)
	for i := 0; i < len(days) && i < HeatmapCells; i++ {
		d := days[i]
		cells[i].Level = usecase.HeatmapLevel(d.Count)
		if d.Date != "" {
			cells[i].Title = fmt.Sprintf("%s: %d", d.Date, d.Count)
		}
	}
	return cells
}

func bindPullRequests(b *builder, r *domain.Recap) {
	p := r.PRStats
	b.number(SlotPROpened, p.Opened)
	b.number(SlotPRMerged, p.Merged)
	b.text(SlotPRMergeRate, usecase.MergeRate(p.MergeRate))
	b.text(SlotPRAvgMerge, usecase.OptionalHours(p.AvgTimeToMergeHours))

	if big := p.BiggestPR; big != nil {
		b.bind(SlotBigPR, Content{
			Text: fmt.Sprintf("%s#%d (+%s/-%s)", big.Repo, big.Number,
				usecase.FormatNumber(big.Additions), usecase.FormatNumber(big.Deletions)),
			Title: big.Title,
		})
	} else {
		b.text(SlotBigPR, usecase.Placeholder)
	}
}

func bindGrowth(b *builder, g *domain.Growth, limit int) {
	if g == nil {
		b.bind(SlotGrowth, Content{Placeholder: GrowthSkippedMessage})
		return
	}
	b.bind(SlotGrowth, Content{Note: g.Note})
	b.number(SlotStarsGained, g.TotalStarsGained)
	b.number(SlotForksGained, g.TotalForksGained)
	b.number(SlotStarsNow, g.TotalStarsNow)
	b.number(SlotForksNow, g.TotalForksNow)
	b.bind(SlotGrowthRepos, Content{Rows: growthRows(g.Repos, limit)})
}

func bindExtras(b *builder, r *domain.Recap, opts options) {
	insights := usecase.Derive(r)
	all := insights.Achievements

	b.bind(SlotBadgesTotals, Content{Badges: usecase.FilterAchievements(all,
		domain.AchievementContrib, domain.AchievementCommit, domain.AchievementPR)})
	b.bind(SlotBadgesCalendar, Content{Badges: usecase.FilterAchievements(all, domain.AchievementStreak)})
	b.bind(SlotBadgesPRs, Content{Badges: usecase.FilterAchievements(all, domain.AchievementPR)})
	b.bind(SlotBadgesLanguages, Content{Badges: usecase.FilterAchievements(all, domain.AchievementLang)})

	s := insights.Stats
	b.number(SlotTotalRepos, s.TotalRepos)
	b.text(SlotAvgPerDay, s.AvgPerDay)
	b.text(SlotMostActiveMonth, s.MostActiveMonth)

	bars := make([]Bar, 0, len(s.Distribution))
	for _, d := range s.Distribution {
		pct := usecase.FormatPercent(d.Percent)
		bars = append(bars, Bar{
			Label:   d.Label,
			Percent: d.Percent,
			Meta:    fmt.Sprintf("%s%% (%s)", pct, usecase.FormatNumber(d.Value)),
		})
	}
	b.bind(SlotDistribution, Content{Bars: bars})
	b.bind(SlotAchievements, Content{Badges: usecase.Leading(all, opts.achieveMax)})
}

func capped[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func repoName(name string, private bool) string {
	if private {
		return name + " (private)"
	}
	return name
}

func repoRows(repos []domain.RepoActivity, limit int) []Row {
	repos = capped(repos, limit)
	rows := make([]Row, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, Row{
			Name: repoName(r.Repo, r.IsPrivate),
			Meta: fmt.Sprintf("Activity %s | C %s PR %s I %s R %s",
				usecase.FormatNumber(r.TotalActivity), usecase.FormatNumber(r.CommitCount),
				usecase.FormatNumber(r.PRCount), usecase.FormatNumber(r.IssueCount),
				usecase.FormatNumber(r.ReviewCount)),
		})
	}
	return rows
}

func reviewRows(repos []domain.RepoCount, limit int) []Row {
	repos = capped(repos, limit)
	rows := make([]Row, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, Row{
			Name: repoName(r.Repo, r.IsPrivate),
			Meta: usecase.FormatNumber(r.Count) + " reviews",
		})
	}
	return rows
}

func growthRows(repos []domain.GrowthRepo, limit int) []Row {
	repos = capped(repos, limit)
	rows := make([]Row, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, Row{
			Name: repoName(r.Repo, r.IsPrivate),
			Meta: fmt.Sprintf("+★%s +⑂%s | now ★%s ⑂%s",
				usecase.FormatNumber(r.StarsGainedInYear), usecase.FormatNumber(r.ForksGainedInYear),
				usecase.FormatNumber(r.StarsNow), usecase.FormatNumber(r.ForksNow)),
		})
	}
	return rows
}

func languageRows(weights domain.LanguageBytes, limit int, icons bool) []Row {
	top := usecase.TopLanguages(weights, limit)
	rows := make([]Row, 0, len(top))
	for _, l := range top {
		row := Row{
			Name: l.Name,
			Meta: fmt.Sprintf("%s%% (%s)", usecase.FormatPercent(l.Percent), usecase.FormatWeight(l.Bytes)),
		}
		if icon, ok := languageIcons[l.Name]; icons && ok {
			row.Icon = "./assets/icons/" + icon + ".svg"
		}
		rows = append(rows, row)
	}
	return rows
}
