package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/recommend"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

type fakeRecs struct {
	tracks map[string][]string
	err    error
	limits []int
}

func (f *fakeRecs) TopTracks(_ context.Context, artist string, limit int) ([]recommend.Track, error) {
	f.limits = append(f.limits, limit)
	if f.err != nil {
		return nil, f.err
	}
	var out []recommend.Track
	for i, name := range f.tracks[artist] {
		out = append(out, recommend.Track{ID: fmt.Sprintf("%s-%d", artist, i), Name: name})
	}
	return out, nil
}

type fakeLibrary struct {
	// tracks maps "artist|title" to an item id.
	tracks  map[string]string
	created map[string][]string
}

func (f *fakeLibrary) FindTrack(_ context.Context, artist, title string) (*catalog.Track, error) {
	id, ok := f.tracks[artist+"|"+title]
	if !ok {
		return nil, fmt.Errorf("track %q: %w", title, catalog.ErrNotFound)
	}
	return &catalog.Track{ID: id, Name: title}, nil
}

func (f *fakeLibrary) CreatePlaylist(_ context.Context, name string, ids []string) (string, error) {
	if f.created == nil {
		f.created = map[string][]string{}
	}
	f.created[name] = ids
	return "pl-1", nil
}

func TestSplitArtists(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Muse", []string{"Muse"}},
		{"Muse, Queen & Blur", []string{"Muse", "Queen", "Blur"}},
		{"Simon and Garfunkel", []string{"Simon", "Garfunkel"}},
		{" , ,", nil},
	}
	for _, tt := range tests {
		if got := SplitArtists(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitArtists(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStyleName(t *testing.T) {
	artists := []string{"Muse", "Queen"}
	tests := []struct {
		style Style
		want  string
	}{
		{StyleSlaps, "Why Muse & Queen Slaps"},
		{StyleBangers, "Certified Muse & Queen Bangers"},
		{StyleExperience, "The Muse & Queen Experience"},
	}
	for _, tt := range tests {
		if got := tt.style.Name(artists); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.style, got, tt.want)
		}
	}
}

func TestParseStyle(t *testing.T) {
	if s, err := ParseStyle(""); err != nil || s != StyleSlaps {
		t.Errorf("ParseStyle(\"\") = %q, %v", s, err)
	}
	if s, err := ParseStyle("Bangers"); err != nil || s != StyleBangers {
		t.Errorf("ParseStyle(Bangers) = %q, %v", s, err)
	}
	if _, err := ParseStyle("vibes"); !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("ParseStyle(vibes) err = %v, want ErrConfiguration", err)
	}
}

func TestGeneratorPreview(t *testing.T) {
	recs := &fakeRecs{tracks: map[string][]string{
		"Muse":  {"Uprising", "Hysteria", "Starlight"},
		"Queen": {"Bohemian Rhapsody", "Under Pressure"},
	}}
	lib := &fakeLibrary{tracks: map[string]string{
		"Muse|Hysteria":           "t1",
		"Muse|Starlight":          "t2",
		"Queen|Bohemian Rhapsody": "t3",
		"Queen|Under Pressure":    "t4",
	}}
	g := NewGenerator(recs, lib, testLogger())

	p, err := g.Preview(context.Background(), "Muse & Queen", StyleExperience, 3)
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if p.Name != "The Muse & Queen Experience" {
		t.Errorf("Name = %q", p.Name)
	}
	if got := p.ItemIDs(); !reflect.DeepEqual(got, []string{"t1", "t2", "t3"}) {
		t.Errorf("ItemIDs = %v", got)
	}
	if recs.limits[0] != 9 {
		t.Errorf("requested %d recommendations, want 9", recs.limits[0])
	}

	id, err := g.Save(context.Background(), p)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if id != "pl-1" || len(lib.created["The Muse & Queen Experience"]) != 3 {
		t.Errorf("Save id=%q created=%v", id, lib.created)
	}
}

func TestGeneratorPreview_NoMatches(t *testing.T) {
	g := NewGenerator(&fakeRecs{tracks: map[string][]string{"Muse": {"Uprising"}}}, &fakeLibrary{}, testLogger())
	_, err := g.Preview(context.Background(), "Muse", StyleSlaps, 5)
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGeneratorPreview_RecommendationError(t *testing.T) {
	g := NewGenerator(&fakeRecs{err: catalog.ErrUnavailable}, &fakeLibrary{}, testLogger())
	_, err := g.Preview(context.Background(), "Muse", StyleSlaps, 5)
	if !errors.Is(err, catalog.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestGeneratorPreview_BadInput(t *testing.T) {
	g := NewGenerator(&fakeRecs{}, &fakeLibrary{}, testLogger())
	if _, err := g.Preview(context.Background(), " & ", StyleSlaps, 5); !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("empty artists: err = %v", err)
	}
	if _, err := g.Preview(context.Background(), "Muse", StyleSlaps, 0); !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("zero count: err = %v", err)
	}
	if _, err := g.Preview(context.Background(), "Muse", StyleSlaps, MaxTrackCount+1); !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("count over max: err = %v", err)
	}
	if _, err := g.Save(context.Background(), nil); !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("nil preview: err = %v", err)
	}
}
