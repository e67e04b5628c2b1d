package domain

// AchievementType names an independent badge-eligibility track.
type AchievementType string

const (
	AchievementStreak  AchievementType = "streak"
	AchievementPR      AchievementType = "pr"
	AchievementContrib AchievementType = "contrib"
	AchievementLang    AchievementType = "lang"
	AchievementCommit  AchievementType = "commit"
)

// Achievement is a badge unlocked by a recap. It is recomputed on every render.
type Achievement struct {
	Type  AchievementType `json:"type"`
	Label string          `json:"label"`
	Value string          `json:"value"`
	Icon  string          `json:"icon"`
}

// DistributionEntry is one slice of the commits / pull requests / issues split.
type DistributionEntry struct {
	Label   string  `json:"label"`
	Value   int     `json:"value"`
	Percent float64 `json:"percent"` // rounded to one decimal
}

// DerivedStats bundles the aggregate figures computed from a recap.
type DerivedStats struct {
	TotalRepos      int                 `json:"total_repos"`
	AvgPerDay       string              `json:"avg_per_day"`
	MostActiveMonth string              `json:"most_active_month"`
	Distribution    []DistributionEntry `json:"distribution"`
}

// Insights is everything derived from a recap beyond the raw document.
type Insights struct {
	Achievements []Achievement `json:"achievements"`
	Stats        DerivedStats  `json:"stats"`
}
