package playlist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/recommend"
)

// Style selects the naming pattern of a generated playlist.
type Style string

// Playlist styles.
const (
	StyleSlaps      Style = "slaps"
	StyleBangers    Style = "bangers"
	StyleExperience Style = "experience"
)

// ParseStyle validates a style name. The empty string selects StyleSlaps.
func ParseStyle(s string) (Style, error) {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case "", StyleSlaps:
		return StyleSlaps, nil
	case StyleBangers:
		return StyleBangers, nil
	case StyleExperience:
		return StyleExperience, nil
	default:
		return "", catalog.Configurationf("unknown playlist style %q", s)
	}
}

// Name builds the playlist title for the given artists.
func (s Style) Name(artists []string) string {
	joined := strings.Join(artists, " & ")
	switch s {
	case StyleExperience:
		return "The " + joined + " Experience"
	case StyleBangers:
		return "Certified " + joined + " Bangers"
	default:
		return "Why " + joined + " Slaps"
	}
}

var artistSeparators = strings.NewReplacer(" and ", ",", " & ", ",")

// SplitArtists splits free-form input such as "Muse, Queen & Blur" into
// artist names.
func SplitArtists(input string) []string {
	var names []string
	for _, part := range strings.Split(artistSeparators.Replace(input), ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// MatchedTrack is a recommended track found in the library.
type MatchedTrack struct {
	ItemID string `json:"item_id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// Preview is a generated playlist that has not been saved yet.
type Preview struct {
	Name    string         `json:"name"`
	Artists []string       `json:"artists"`
	Tracks  []MatchedTrack `json:"tracks"`
}

// ItemIDs returns the library item ids in playlist order.
func (p *Preview) ItemIDs() []string {
	ids := make([]string, len(p.Tracks))
	for i, t := range p.Tracks {
		ids[i] = t.ItemID
	}
	return ids
}

// LibraryTracks is the part of the catalog the generator needs.
type LibraryTracks interface {
	catalog.TrackFinder
	catalog.PlaylistCreator
}

// Generator builds playlists from recommended tracks that exist in the library.
type Generator struct {
	recs    recommend.Service
	library LibraryTracks
	logger  *slog.Logger
}

// NewGenerator creates a Generator.
func NewGenerator(recs recommend.Service, library LibraryTracks, logger *slog.Logger) *Generator {
	return &Generator{
		recs:    recs,
		library: library,
		logger:  logger.With(slog.String("component", "playlist-generator")),
	}
}

// Track count bounds for a generated playlist.
const (
	DefaultTrackCount = 20
	MaxTrackCount     = 50
)

// candidateFactor widens the recommendation request since many recommended
// tracks are not in the library.
const candidateFactor = 3

// Preview matches up to count recommended tracks across the artists named in
// input, walking artists in order until count tracks are found.
func (g *Generator) Preview(ctx context.Context, input string, style Style, count int) (*Preview, error) {
	if count <= 0 || count > MaxTrackCount {
		return nil, catalog.Configurationf("track count must be between 1 and %d, got %d", MaxTrackCount, count)
	}
	artists := SplitArtists(input)
	if len(artists) == 0 {
		return nil, catalog.Configurationf("no artist names in %q", input)
	}

	p := &Preview{Name: style.Name(artists), Artists: artists}
	seen := make(map[string]bool)

	for _, artist := range artists {
		if len(p.Tracks) >= count {
			break
		}
		recs, err := g.recs.TopTracks(ctx, artist, count*candidateFactor)
		if err != nil {
			return nil, fmt.Errorf("recommendations for %s: %w", artist, err)
		}
		for _, rec := range recs {
			if len(p.Tracks) >= count {
				break
			}
			track, err := g.library.FindTrack(ctx, artist, rec.Name)
			if errors.Is(err, catalog.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("finding %s - %s: %w", artist, rec.Name, err)
			}
			if seen[track.ID] {
				continue
			}
			seen[track.ID] = true
			p.Tracks = append(p.Tracks, MatchedTrack{ItemID: track.ID, Name: rec.Name, Artist: artist})
		}
		g.logger.Debug("matched recommendations",
			slog.String("artist", artist),
			slog.Int("matched_so_far", len(p.Tracks)))
	}

	if len(p.Tracks) == 0 {
		return nil, fmt.Errorf("no recommended tracks for %s found in the library: %w",
			strings.Join(artists, ", "), catalog.ErrNotFound)
	}
	return p, nil
}

// Save creates the previewed playlist and returns its id.
func (g *Generator) Save(ctx context.Context, p *Preview) (string, error) {
	if p == nil || len(p.Tracks) == 0 {
		return "", catalog.Configurationf("no playlist preview to save")
	}
	id, err := g.library.CreatePlaylist(ctx, p.Name, p.ItemIDs())
	if err != nil {
		return "", fmt.Errorf("creating playlist %q: %w", p.Name, err)
	}
	g.logger.Info("playlist created",
		slog.String("playlist_id", id),
		slog.String("name", p.Name),
		slog.Int("tracks", len(p.Tracks)))
	return id, nil
}
