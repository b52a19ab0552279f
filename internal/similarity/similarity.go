// Package similarity scores how alike two names are on a 0-100 scale.
package similarity

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// levenshtein is a reusable case-sensitive metric; callers normalize first.
var levenshtein = newLevenshtein()

func newLevenshtein() *metrics.Levenshtein {
	m := metrics.NewLevenshtein()
	m.CaseSensitive = true
	m.InsertCost = 1
	m.DeleteCost = 1
	m.ReplaceCost = 1
	return m
}

// Range is an inclusive band of acceptable integer thresholds.
type Range struct {
	Min int
	Max int
}

// Threshold bands for the two fuzzy tools.
var (
	FinderRange = Range{Min: 60, Max: 95}
	PairRange   = Range{Min: 70, Max: 99}
)

// Contains reports whether threshold lies inside the range, endpoints included.
func (r Range) Contains(threshold int) bool {
	return threshold >= r.Min && threshold <= r.Max
}

// Ratio returns the normalized edit-distance similarity of a and b, scaled
// to 0-100. Two empty strings are identical.
func Ratio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, levenshtein) * 100
}

// TokenSortRatio sorts the whitespace-separated tokens of each string before
// comparing them, which makes word order irrelevant.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortTokens(a), sortTokens(b))
}

// Score returns the better of Ratio and TokenSortRatio.
func Score(a, b string) float64 {
	return max(Ratio(a, b), TokenSortRatio(a, b))
}

// Accept reports whether the score of a and b reaches threshold.
func Accept(a, b string, threshold int) (float64, bool) {
	s := Score(a, b)
	return s, s >= float64(threshold)
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
