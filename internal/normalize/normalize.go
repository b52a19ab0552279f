// Package normalize turns artist display names into comparison keys.
//
// Two normalizers live here and they are not interchangeable. Key is the
// coarse normalizer used for exact bucketing of duplicate artists. Fold is
// the punctuation-folding normalizer whose output feeds the fuzzy scorer.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxPasses bounds the fixed-point loop in Key. Every pass that changes its
// input either shortens it or removes its only comma, so real names settle
// in two or three passes.
const maxPasses = 8

// functionWords block the "Last, First" reorder when they open the part
// after the comma ("Simon, and Garfunkel", "Artist, feat. Someone").
var functionWords = map[string]bool{
	"the":   true,
	"and":   true,
	"&":     true,
	"feat":  true,
	"feat.": true,
	"ft":    true,
	"ft.":   true,
	"with":  true,
}

var (
	// parenFeatPattern matches "(feat. X)", "[ft X]" style attributions.
	parenFeatPattern = regexp.MustCompile(`\s*[(\[]\s*(?:feat|ft)\.?\s[^)\]]*[)\]]`)

	// trailingFeatPattern matches "feat. X" / "ft. X" through the end of the name.
	trailingFeatPattern = regexp.MustCompile(`\s+(?:feat|ft)\.(?:\s.*)?$`)

	leadingArticlePattern  = regexp.MustCompile(`^the\s+`)
	trailingArticlePattern = regexp.MustCompile(`,\s*the$`)

	// nonAlnumPattern matches anything that is not a letter, digit or space.
	nonAlnumPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// foldSeparators turns separator punctuation into word breaks before the
// remaining punctuation is dropped.
var foldSeparators = strings.NewReplacer(
	"/", " ",
	"-", " ",
	"–", " ",
	"—", " ",
	"&", " ",
	"+", " ",
)

// Key returns the coarse comparison key for an artist name. It is pure,
// total and idempotent: Key(Key(s)) == Key(s).
func Key(raw string) string {
	s := raw
	for range maxPasses {
		next := keyPass(s)
		if next == s {
			break
		}
		s = next
	}
	return s
}

func keyPass(s string) string {
	s = strings.TrimSpace(s)
	s = reorderLastFirst(s)
	s = strings.ToLower(norm.NFC.String(s))
	s = foldConjunctionsAndArticles(s)
	s = parenFeatPattern.ReplaceAllString(s, "")
	s = trailingFeatPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// reorderLastFirst rewrites "Last, First" as "First Last". Only names with
// exactly one comma and two non-empty parts qualify. A bare trailing "The"
// is an inverted article and is moved to the front.
func reorderLastFirst(s string) string {
	if strings.Count(s, ",") != 1 {
		return s
	}
	first, second, _ := strings.Cut(s, ",")
	first = strings.TrimSpace(first)
	second = strings.TrimSpace(second)
	if first == "" || second == "" {
		return s
	}
	if strings.EqualFold(second, "the") {
		return second + " " + first
	}
	lead := strings.ToLower(strings.Fields(second)[0])
	if functionWords[lead] {
		return s
	}
	return second + " " + first
}

// foldConjunctionsAndArticles replaces a standalone inner "and" with "&" and
// drops every standalone "the" except a final one, so "The The" keeps a name.
func foldConjunctionsAndArticles(s string) string {
	tokens := strings.Fields(s)
	out := tokens[:0]
	for i, tok := range tokens {
		last := i == len(tokens)-1
		switch {
		case tok == "the" && !last:
			continue
		case tok == "and" && i > 0 && !last:
			out = append(out, "&")
		default:
			out = append(out, tok)
		}
	}
	return strings.Join(out, " ")
}

// Fold returns the punctuation-folded form of an artist name, used as the
// input to fuzzy scoring. "The X" and "X, The" collapse to "x", accents are
// stripped, separator punctuation becomes spaces and every other
// non-alphanumeric character is removed.
func Fold(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = stripAccents(s)
	s = trailingArticlePattern.ReplaceAllString(s, "")
	s = leadingArticlePattern.ReplaceAllString(s, "")
	s = foldSeparators.Replace(s)
	s = nonAlnumPattern.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// Compact returns Fold with all spaces removed. Two names with equal compact
// forms differ only in punctuation or spacing ("AC/DC", "AC-DC", "ACDC").
func Compact(raw string) string {
	return strings.ReplaceAll(Fold(raw), " ", "")
}

// stripAccents removes combining marks after canonical decomposition.
func stripAccents(s string) string {
	for _, r := range s {
		if r > unicode.MaxASCII {
			t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
			out, _, err := transform.String(t, s)
			if err != nil {
				return s
			}
			return out
		}
	}
	return s
}
