package dedupe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/normalize"
	"github.com/sydlexius/crate/internal/similarity"
)

// Pair is two artists whose folded names score at or above a threshold.
type Pair struct {
	A      catalog.Artist `json:"a"`
	B      catalog.Artist `json:"b"`
	Score  float64        `json:"score"`
	Reason string         `json:"reason"`
}

// FindPairs compares every artist with every later artist and returns all
// pairs scoring at least threshold, highest score first. Unlike
// FindDuplicates an artist may appear in several pairs.
func FindPairs(artists []catalog.Artist, threshold int) ([]Pair, error) {
	if len(artists) == 0 {
		return nil, catalog.Configurationf("no artists to compare")
	}
	if !similarity.PairRange.Contains(threshold) {
		return nil, catalog.Configurationf("pair threshold %d outside %d-%d",
			threshold, similarity.PairRange.Min, similarity.PairRange.Max)
	}

	artists = uniqueByID(artists)
	forms := make([]folded, len(artists))
	for i, a := range artists {
		forms[i] = folded{artist: a, fold: normalize.Fold(a.Name), compact: normalize.Compact(a.Name)}
	}

	var pairs []Pair
	for i := range forms {
		for j := i + 1; j < len(forms); j++ {
			s := pairScore(forms[i], forms[j])
			if s < float64(threshold) {
				continue
			}
			pairs = append(pairs, Pair{
				A:      forms[i].artist,
				B:      forms[j].artist,
				Score:  s,
				Reason: Explain(forms[i].artist.Name, forms[j].artist.Name),
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Score > pairs[j].Score
	})
	return pairs, nil
}

// Explain describes why two names were considered the same artist.
func Explain(a, b string) string {
	if strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
		return "identical apart from case or spacing"
	}

	if normalize.Key(a) == normalize.Key(b) {
		switch {
		case strings.Contains(a, ",") != strings.Contains(b, ","):
			return `"Last, First" ordering`
		case hasArticle(a) != hasArticle(b):
			return `leading "The" differs`
		case strings.Contains(strings.ToLower(a+b), "feat") || strings.Contains(strings.ToLower(a+b), "ft."):
			return "featured artist credit differs"
		default:
			return "same name after normalization"
		}
	}

	if ca := normalize.Compact(a); ca != "" && ca == normalize.Compact(b) {
		return "differ only in accents or punctuation"
	}
	return fmt.Sprintf("similar spelling (%.0f%%)", similarity.Score(normalize.Fold(a), normalize.Fold(b)))
}

func hasArticle(name string) bool {
	l := strings.ToLower(strings.TrimSpace(name))
	return strings.HasPrefix(l, "the ") || strings.HasSuffix(l, ", the")
}
