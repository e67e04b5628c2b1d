package usecase

import "github.com/naka-gawa/github-recap/internal/domain"

type tier struct {
	min   int
	label string
	value string
	icon  string
}

// track is one badge category. Tiers are ordered from the highest threshold down.
type track struct {
	kind   domain.AchievementType
	metric func(r *domain.Recap) int
	tiers  []tier
}

var tracks = []track{
	{
		kind:   domain.AchievementStreak,
		metric: func(r *domain.Recap) int { return r.Calendar.LongestStreak },
		tiers: []tier{
			{365, "Year Streak", "365+ days", "🔥"},
			{100, "Century Streak", "100+ days", "💯"},
			{30, "Monthly Streak", "30+ days", "📅"},
			{7, "Weekly Streak", "7+ days", "⭐"},
		},
	},
	{
		kind:   domain.AchievementPR,
		metric: func(r *domain.Recap) int { return r.Totals.PullRequests },
		tiers: []tier{
			{2000, "PR Master", "2000+ PRs", "🚀"},
			{1000, "PR Expert", "1000+ PRs", "💪"},
			{500, "PR Pro", "500+ PRs", "🎯"},
			{100, "PR Contributor", "100+ PRs", "✨"},
		},
	},
	{
		kind:   domain.AchievementContrib,
		metric: func(r *domain.Recap) int { return r.Totals.Overall },
		tiers: []tier{
			{10000, "10K Club", "10,000+ contributions", "🏆"},
			{5000, "5K Club", "5,000+ contributions", "🥇"},
			{1000, "1K Club", "1,000+ contributions", "🥈"},
		},
	},
	{
		kind:   domain.AchievementLang,
		metric: func(r *domain.Recap) int { return len(r.Languages.WeightedBytes) },
		tiers: []tier{
			{10, "Polyglot", "10+ languages", "🌍"},
			{5, "Multilingual", "5+ languages", "🗣️"},
		},
	},
	{
		kind:   domain.AchievementCommit,
		metric: func(r *domain.Recap) int { return r.Totals.Commits },
		tiers: []tier{
			{5000, "Commit Master", "5000+ commits", "💻"},
			{1000, "Commit Expert", "1000+ commits", "⌨️"},
		},
	},
}

// Achievements evaluates every track in a fixed order (streak, pr, contrib,
// lang, commit). Each track yields at most one badge: its highest tier met.
func Achievements(r *domain.Recap) []domain.Achievement {
	out := make([]domain.Achievement, 0, len(tracks))
	for _, t := range tracks {
		v := t.metric(r)
		for _, tr := range t.tiers {
			if v >= tr.min {
				out = append(out, domain.Achievement{Type: t.kind, Label: tr.label, Value: tr.value, Icon: tr.icon})
				break
			}
		}
	}
	return out
}

// FilterAchievements keeps the achievements of the given tracks, preserving order.
func FilterAchievements(all []domain.Achievement, kinds ...domain.AchievementType) []domain.Achievement {
	out := make([]domain.Achievement, 0, len(all))
	for _, a := range all {
		for _, k := range kinds {
			if a.Type == k {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

// Leading returns at most n achievements from the front of the list.
func Leading(all []domain.Achievement, n int) []domain.Achievement {
	if len(all) > n {
		return all[:n]
	}
	return all
}
