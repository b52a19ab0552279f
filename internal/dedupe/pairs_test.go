package dedupe

import (
	"errors"
	"testing"

	"github.com/sydlexius/crate/internal/catalog"
)

func TestFindPairs(t *testing.T) {
	pairs, err := FindPairs(artists("Alice In Chains", "Pink Floyd", "Chains Alice In", "AC/DC", "ACDC"), 85)
	if err != nil {
		t.Fatalf("FindPairs: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("got %d pairs, want 2: %+v", len(pairs), pairs)
	}
	for _, p := range pairs {
		if p.Score != 100 {
			t.Errorf("pair %q/%q score %v, want 100", p.A.Name, p.B.Name, p.Score)
		}
		if p.Reason == "" {
			t.Errorf("pair %q/%q has no reason", p.A.Name, p.B.Name)
		}
	}
}

func TestFindPairs_ArtistInSeveralPairs(t *testing.T) {
	pairs, err := FindPairs(artists("AC/DC", "ACDC", "AC-DC"), 90)
	if err != nil {
		t.Fatalf("FindPairs: %v", err)
	}
	if len(pairs) != 3 {
		t.Errorf("got %d pairs, want 3", len(pairs))
	}
}

func TestFindPairs_Threshold(t *testing.T) {
	for _, th := range []int{69, 100} {
		if _, err := FindPairs(artists("A", "B"), th); !errors.Is(err, catalog.ErrConfiguration) {
			t.Errorf("threshold %d: err = %v, want ErrConfiguration", th, err)
		}
	}
	for _, th := range []int{70, 99} {
		if _, err := FindPairs(artists("A", "B"), th); err != nil {
			t.Errorf("threshold %d: unexpected error %v", th, err)
		}
	}
}

func TestExplain(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"Radiohead", "radiohead", "identical apart from case or spacing"},
		{"Beatles, The", "The Beatles", `"Last, First" ordering`},
		{"The Beatles", "Beatles", `leading "The" differs`},
		{"AC/DC", "ACDC", "differ only in accents or punctuation"},
		{"Beyoncé", "Beyonce", "differ only in accents or punctuation"},
	}
	for _, tt := range tests {
		if got := Explain(tt.a, tt.b); got != tt.want {
			t.Errorf("Explain(%q, %q) = %q, want %q", tt.a, tt.b, got, tt.want)
		}
	}
}
