package usecase

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/naka-gawa/github-recap/internal/domain"
)

// Pair is a key with a numeric value, ranked by SortDesc.
type Pair struct {
	Key   string
	Value float64
}

// SortDesc orders pairs by value, largest first. Ties keep their input order.
func SortDesc(pairs []Pair) {
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Value > pairs[j].Value
	})
}

// LanguageShare is one row of the language breakdown.
type LanguageShare struct {
	Name    string
	Bytes   float64
	Percent float64
}

// TopLanguages keeps the n heaviest languages. Percentages are relative to the
// sum of the retained languages, not to the grand total.
func TopLanguages(weights domain.LanguageBytes, n int) []LanguageShare {
	pairs := make([]Pair, 0, len(weights))
	for name, w := range weights {
		pairs = append(pairs, Pair{Key: name, Value: w})
	}
	// map iteration order is random; fix it before the stable sort
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	SortDesc(pairs)
	if len(pairs) > n {
		pairs = pairs[:n]
	}

	values := make(stats.Float64Data, 0, len(pairs))
	for _, p := range pairs {
		values = append(values, p.Value)
	}
	total, err := stats.Sum(values)
	if err != nil || total == 0 {
		total = 1
	}

	out := make([]LanguageShare, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, LanguageShare{
			Name:    p.Key,
			Bytes:   p.Value,
			Percent: p.Value / total * 100,
		})
	}
	return out
}
