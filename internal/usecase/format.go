// Package usecase contains the business logic of the application: the pure
// derivation of display values from a recap document.
package usecase

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown wherever a value is missing or undefined.
const Placeholder = "—"

var printer = message.NewPrinter(language.AmericanEnglish)

// FormatNumber renders an integer with en-US thousands separators.
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatWeight renders a numeric weight rounded to the nearest integer.
func FormatWeight(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// round1 rounds the exact stored value to one decimal place. Only values
// whose binary representation lies exactly halfway round away from zero, so
// 30.15 (stored as 30.1499...) gives 30.1 and 5.25 gives 5.3.
func round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if isTenthsTie(v) {
		return math.Copysign(math.Ceil(math.Abs(v)*10), v) / 10
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return 0
	}
	return r
}

// isTenthsTie reports whether v*10 has a fractional part of exactly one half.
func isTenthsTie(v float64) bool {
	x := new(big.Float).SetPrec(128).SetFloat64(v)
	x.Mul(x, big.NewFloat(10))
	x.Abs(x)
	whole, _ := x.Int(nil)
	frac := new(big.Float).SetPrec(128).Sub(x, new(big.Float).SetInt(whole))
	return frac.Cmp(big.NewFloat(0.5)) == 0
}

// FormatPercent renders a percentage with one decimal place.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f", round1(p))
}

// HoursToHuman renders a duration given in hours. Values under 48 hours stay
// in hours, longer ones are converted to days.
func HoursToHuman(h float64) string {
	if math.IsNaN(h) || math.IsInf(h, 0) || h <= 0 {
		return Placeholder
	}
	if h < 48 {
		return fmt.Sprintf("%.1fh", round1(h))
	}
	return fmt.Sprintf("%.1fd", round1(h/24))
}

// OptionalHours is HoursToHuman for a nullable value.
func OptionalHours(h *float64) string {
	if h == nil {
		return Placeholder
	}
	return HoursToHuman(*h)
}

// MergeRate renders a nullable [0,1] rate as a percentage.
func MergeRate(rate *float64) string {
	if rate == nil || math.IsNaN(*rate) {
		return Placeholder
	}
	return FormatPercent(*rate*100) + "%"
}

// HeatmapLevel buckets a daily contribution count into an intensity level 0..4.
// The breakpoints saturate quickly since most days have low counts.
func HeatmapLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count <= 1:
		return 1
	case count <= 3:
		return 2
	case count <= 6:
		return 3
	default:
		return 4
	}
}
