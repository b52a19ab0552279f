// Package classify flags artist records whose names look like import
// artifacts rather than real artists.
package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Reason labels, in report order.
const (
	ReasonNumericOnly = "numeric only"
	ReasonTooShort    = "≤2 characters"
	ReasonDigitStart  = "starts with digit"
	ReasonAllCaps     = "long all-caps string"
	ReasonCategory    = "looks like a category/label"
)

// Rule pairs a label with the predicate that triggers it. Predicates see the
// raw name with surrounding whitespace trimmed.
type Rule struct {
	Label string
	Match func(name string) bool
}

var (
	allCapsPattern  = regexp.MustCompile(`[A-Z0-9]{12,}`)
	categoryPattern = regexp.MustCompile(`(?i)\b(?:albums?|collections?|playlists?|discs?|volumes?|tracks?|songs?|greatest\s+hits|best\s+of|anthology|box\s?set|rarities|singles?|b-sides?)\b|\bvol\.`)
)

// DefaultRules is the canonical evaluation and report order.
var DefaultRules = []Rule{
	{Label: ReasonNumericOnly, Match: isNumeric},
	{Label: ReasonTooShort, Match: func(name string) bool { return utf8.RuneCountInString(name) <= 2 }},
	{Label: ReasonDigitStart, Match: startsWithDigit},
	{Label: ReasonAllCaps, Match: allCapsPattern.MatchString},
	{Label: ReasonCategory, Match: categoryPattern.MatchString},
}

// DefaultWhitelist holds real artists whose names trip the rules.
var DefaultWhitelist = []string{
	"U2",
	"X",
	"M",
	"Om",
	"Oz",
	"UB40",
	"10cc",
	"2Pac",
	"311",
	"112",
	"702",
	"50 Cent",
	"2 Unlimited",
	"3 Doors Down",
	"4 Non Blondes",
	"808 State",
	"98 Degrees",
	"10,000 Maniacs",
	"5 Seconds of Summer",
	"Songs: Ohia",
}

func isNumeric(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func startsWithDigit(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return r != utf8.RuneError && unicode.IsDigit(r)
}

func whitelistKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
