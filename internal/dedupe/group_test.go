package dedupe

import (
	"errors"
	"testing"

	"github.com/sydlexius/crate/internal/catalog"
)

func artists(names ...string) []catalog.Artist {
	out := make([]catalog.Artist, len(names))
	for i, n := range names {
		out[i] = catalog.Artist{ID: string(rune('a' + i)), Name: n, TrackCount: 1}
	}
	return out
}

func TestFindDuplicates_TokenReorder(t *testing.T) {
	groups, err := FindDuplicates(artists("Alice In Chains", "Chains Alice In", "Pink Floyd"), 80)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if len(g.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(g.Members))
	}
	for _, m := range g.Members {
		if m.Name == "Pink Floyd" {
			t.Error("Pink Floyd should not be grouped")
		}
	}
	if g.Exact {
		t.Error("token reorder group should come from the fuzzy pass")
	}
}

func TestFindDuplicates_PunctuationVariants(t *testing.T) {
	groups, err := FindDuplicates(artists("AC/DC", "AC-DC", "ACDC"), 80)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].Score != 100.0 {
		t.Errorf("Score = %v, want 100", groups[0].Score)
	}
	if len(groups[0].Members) != 3 {
		t.Errorf("got %d members, want 3", len(groups[0].Members))
	}
	if groups[0].CanonicalName != "AC/DC" {
		t.Errorf("CanonicalName = %q, want AC/DC", groups[0].CanonicalName)
	}
}

func TestFindDuplicates_ExactBucket(t *testing.T) {
	groups, err := FindDuplicates(artists("Beatles, The", "Radiohead", "The Beatles"), 80)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if !g.Exact || g.Score != ExactScore {
		t.Errorf("exact group: Exact=%v Score=%v", g.Exact, g.Score)
	}
	if g.CanonicalName != "The Beatles" {
		t.Errorf("CanonicalName = %q, want The Beatles", g.CanonicalName)
	}
}

func TestFindDuplicates_GreedyNotTransitive(t *testing.T) {
	// a~b and b~c score 80, a~c scores 60.
	a, b, c := "abcdefghij", "abcdefghzz", "abcdefzzzz"

	groups, err := FindDuplicates(artists(a, b, c), 75)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Members) != 2 {
		t.Fatalf("seed a: got %+v, want one group of two", groups)
	}
	for _, m := range groups[0].Members {
		if m.Name == c {
			t.Errorf("%q joined through another member", c)
		}
	}

	groups, err = FindDuplicates(artists(b, a, c), 75)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Members) != 3 {
		t.Fatalf("seed b: got %+v, want one group of three", groups)
	}
}

func TestFindDuplicates_Partition(t *testing.T) {
	in := artists(
		"The Beatles", "Beatles, The", "Beatles",
		"AC/DC", "ACDC", "AC-DC",
		"Alice In Chains", "Chains Alice In", "Alice in Chains",
		"Pink Floyd", "Pink Floyd.", "Pinkfloyd",
		"Simon & Garfunkel", "Simon and Garfunkel",
	)
	groups, err := FindDuplicates(in, 60)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	seen := map[string]bool{}
	for _, g := range groups {
		if len(g.Members) < 2 {
			t.Errorf("group %q has %d members", g.CanonicalName, len(g.Members))
		}
		if g.Score < 0 || g.Score > 100 {
			t.Errorf("group %q score %v out of range", g.CanonicalName, g.Score)
		}
		for _, m := range g.Members {
			if seen[m.ID] {
				t.Errorf("artist %s (%q) in two groups", m.ID, m.Name)
			}
			seen[m.ID] = true
		}
	}
}

func TestFindDuplicates_SortedByTracks(t *testing.T) {
	in := []catalog.Artist{
		{ID: "1", Name: "Small Band", TrackCount: 1},
		{ID: "2", Name: "Small  Band", TrackCount: 1},
		{ID: "3", Name: "Big Band", TrackCount: 40},
		{ID: "4", Name: "big band", TrackCount: 2},
	}
	groups, err := FindDuplicates(in, 80)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].TotalTracks() != 42 || groups[1].TotalTracks() != 2 {
		t.Errorf("order: %d then %d tracks", groups[0].TotalTracks(), groups[1].TotalTracks())
	}
}

func TestFindDuplicates_DuplicateIDs(t *testing.T) {
	in := []catalog.Artist{
		{ID: "1", Name: "Portishead"},
		{ID: "1", Name: "Portishead"},
	}
	groups, err := FindDuplicates(in, 80)
	if err != nil {
		t.Fatalf("FindDuplicates: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("got %d groups for a single repeated record, want 0", len(groups))
	}
}

func TestFindDuplicates_Configuration(t *testing.T) {
	tests := []struct {
		name      string
		artists   []catalog.Artist
		threshold int
		wantErr   bool
	}{
		{"empty input", nil, 80, true},
		{"below range", artists("A", "B"), 59, true},
		{"above range", artists("A", "B"), 96, true},
		{"lower endpoint", artists("A", "B"), 60, false},
		{"upper endpoint", artists("A", "B"), 95, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FindDuplicates(tt.artists, tt.threshold)
			if tt.wantErr {
				if !errors.Is(err, catalog.ErrConfiguration) {
					t.Errorf("err = %v, want ErrConfiguration", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
