package dedupe

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var innerArticlePattern = regexp.MustCompile(`(?i)\s+(?:and|&)\s+the\s+`)

var titleCaser = cases.Title(language.Und)

// SuggestCanonical picks the best display name among variants.
//
// Each name is scored: 10 points for containing no comma, a tenth of a point
// per character, 5 points for an inner "and the"/"& the" phrase, 3 points
// when the name is already title case and 2 points when it mixes upper and
// lower case letters. The highest score wins; on a tie the earlier name wins.
func SuggestCanonical(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}

	best := names[0]
	bestScore := canonicalScore(best)
	for _, n := range names[1:] {
		if s := canonicalScore(n); s > bestScore {
			best, bestScore = n, s
		}
	}
	return best
}

func canonicalScore(name string) float64 {
	var score float64
	if !strings.Contains(name, ",") {
		score += 10
	}
	score += float64(utf8.RuneCountInString(name)) / 10
	if innerArticlePattern.MatchString(name) {
		score += 5
	}
	if name != "" && titleCaser.String(name) == name {
		score += 3
	}
	if hasMixedCase(name) {
		score += 2
	}
	return score
}

func hasMixedCase(s string) bool {
	var upper, lower bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
		if upper && lower {
			return true
		}
	}
	return false
}
