// Package dedupe finds artist records that are likely the same artist.
package dedupe

import (
	"sort"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/normalize"
	"github.com/sydlexius/crate/internal/similarity"
)

// ExactScore is the score of a group built from identical coarse keys.
const ExactScore = 100.0

// Group is a set of artists that appear to be duplicates. Members keep
// discovery order and there are always at least two of them.
type Group struct {
	CanonicalName string           `json:"canonical_name"`
	Members       []catalog.Artist `json:"members"`
	Score         float64          `json:"similarity_score"`
	Exact         bool             `json:"exact"`
}

// TotalTracks sums the track counts of all members.
func (g Group) TotalTracks() int {
	n := 0
	for _, a := range g.Members {
		n += a.TrackCount
	}
	return n
}

// TotalAlbums sums the album counts of all members.
func (g Group) TotalAlbums() int {
	n := 0
	for _, a := range g.Members {
		n += a.AlbumCount
	}
	return n
}

// Names returns the member display names in order.
func (g Group) Names() []string {
	names := make([]string, len(g.Members))
	for i, a := range g.Members {
		names[i] = a.Name
	}
	return names
}

// FindDuplicates partitions artists into duplicate groups.
//
// Records sharing a coarse key form exact groups first. The rest go through a
// single greedy pass in input order: each unconsumed record seeds a group and
// pulls in every later unconsumed record whose folded name scores at least
// threshold against the seed. Later records are compared with the seed only,
// never with members the seed already pulled in, so matching is not
// transitive. No artist id ends up in more than one group.
func FindDuplicates(artists []catalog.Artist, threshold int) ([]Group, error) {
	if len(artists) == 0 {
		return nil, catalog.Configurationf("no artists to compare")
	}
	if !similarity.FinderRange.Contains(threshold) {
		return nil, catalog.Configurationf("threshold %d outside %d-%d",
			threshold, similarity.FinderRange.Min, similarity.FinderRange.Max)
	}
	return findDuplicates(uniqueByID(artists), threshold), nil
}

func findDuplicates(artists []catalog.Artist, threshold int) []Group {
	consumed := make(map[string]bool, len(artists))
	groups := exactGroups(artists, consumed)

	var remaining []catalog.Artist
	for _, a := range artists {
		if !consumed[a.ID] {
			remaining = append(remaining, a)
		}
	}
	groups = append(groups, fuzzyGroups(remaining, threshold, consumed)...)

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalTracks() > groups[j].TotalTracks()
	})
	return groups
}

// exactGroups buckets artists by coarse key. Buckets keep the order in which
// their key was first seen.
func exactGroups(artists []catalog.Artist, consumed map[string]bool) []Group {
	buckets := make(map[string][]catalog.Artist)
	var order []string
	for _, a := range artists {
		k := normalize.Key(a.Name)
		if _, ok := buckets[k]; !ok {
			order = append(order, k)
		}
		buckets[k] = append(buckets[k], a)
	}

	var groups []Group
	for _, k := range order {
		members := buckets[k]
		if len(members) < 2 {
			continue
		}
		for _, a := range members {
			consumed[a.ID] = true
		}
		g := Group{Members: members, Score: ExactScore, Exact: true}
		g.CanonicalName = SuggestCanonical(g.Names())
		groups = append(groups, g)
	}
	return groups
}

type folded struct {
	artist  catalog.Artist
	fold    string
	compact string
}

func fuzzyGroups(remaining []catalog.Artist, threshold int, consumed map[string]bool) []Group {
	forms := make([]folded, len(remaining))
	for i, a := range remaining {
		f := normalize.Fold(a.Name)
		forms[i] = folded{artist: a, fold: f, compact: normalize.Compact(a.Name)}
	}

	var groups []Group
	for i, seed := range forms {
		if consumed[seed.artist.ID] {
			continue
		}
		consumed[seed.artist.ID] = true
		members := []catalog.Artist{seed.artist}
		var scores []float64

		for _, other := range forms[i+1:] {
			if consumed[other.artist.ID] {
				continue
			}
			s := pairScore(seed, other)
			if s >= float64(threshold) {
				members = append(members, other.artist)
				scores = append(scores, s)
				consumed[other.artist.ID] = true
			}
		}

		if len(members) < 2 {
			continue
		}
		g := Group{Members: members, Score: mean(scores)}
		g.CanonicalName = SuggestCanonical(g.Names())
		groups = append(groups, g)
	}
	return groups
}

// pairScore scores two folded names. Names that differ only in punctuation
// or spacing score 100. Names that fold to nothing never match.
func pairScore(a, b folded) float64 {
	if a.fold == "" || b.fold == "" {
		return 0
	}
	if a.compact == b.compact {
		return ExactScore
	}
	return similarity.Score(a.fold, b.fold)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return ExactScore
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// uniqueByID drops repeated ids, keeping the first occurrence.
func uniqueByID(artists []catalog.Artist) []catalog.Artist {
	seen := make(map[string]bool, len(artists))
	out := make([]catalog.Artist, 0, len(artists))
	for _, a := range artists {
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		out = append(out, a)
	}
	return out
}
