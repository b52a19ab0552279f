// Package playlist finds auto-imported album playlists and builds new
// playlists from recommended tracks.
package playlist

import (
	"fmt"
	"strings"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/similarity"
)

// Separator splits "Artist - Album" playlist names.
const Separator = " - "

// Acceptance thresholds for MatchAlbum.
const (
	AlbumNameThreshold   = 85
	AlbumArtistThreshold = 75
)

// MatchAlbum reports whether a playlist named "Artist - Album" corresponds to
// an album in the library. The name is split on the first separator and the
// first album whose name and album artist both score high enough wins. The
// returned string describes the album for display.
func MatchAlbum(name string, albums []catalog.Album) (string, bool) {
	artistPart, albumPart, ok := strings.Cut(name, Separator)
	if !ok {
		return "", false
	}
	artistPart = strings.ToLower(strings.TrimSpace(artistPart))
	albumPart = strings.ToLower(strings.TrimSpace(albumPart))

	for _, a := range albums {
		nameScore := similarity.TokenSortRatio(strings.ToLower(strings.TrimSpace(a.Name)), albumPart)
		if nameScore < AlbumNameThreshold {
			continue
		}
		artistScore := similarity.TokenSortRatio(strings.ToLower(strings.TrimSpace(a.AlbumArtist)), artistPart)
		if artistScore < AlbumArtistThreshold {
			continue
		}
		return fmt.Sprintf("%s (by %s)", a.Name, a.AlbumArtist), true
	}
	return "", false
}

// Candidate is a playlist proposed for deletion.
type Candidate struct {
	Playlist catalog.Playlist `json:"playlist"`
	// MatchedAlbum is empty for unconfirmed candidates.
	MatchedAlbum string `json:"matched_album,omitempty"`
	Selected     bool   `json:"selected"`
}

// ScanResult partitions album-style playlists by whether a matching album
// was found. Confirmed candidates are pre-selected; unconfirmed ones never are.
type ScanResult struct {
	Confirmed   []Candidate `json:"confirmed"`
	Unconfirmed []Candidate `json:"unconfirmed"`
}

// Candidates returns confirmed then unconfirmed candidates.
func (r ScanResult) Candidates() []Candidate {
	out := make([]Candidate, 0, len(r.Confirmed)+len(r.Unconfirmed))
	out = append(out, r.Confirmed...)
	return append(out, r.Unconfirmed...)
}

// FileBacked returns the candidates that were imported from a playlist file
// and will come back on the next library scan unless the file is removed.
func (r ScanResult) FileBacked() []Candidate {
	var out []Candidate
	for _, c := range r.Candidates() {
		if c.Playlist.FromFile() {
			out = append(out, c)
		}
	}
	return out
}

// Scan classifies every playlist whose name contains Separator. Playlists
// without it are left out entirely.
func Scan(playlists []catalog.Playlist, albums []catalog.Album) ScanResult {
	var res ScanResult
	for _, p := range playlists {
		if !strings.Contains(p.Name, Separator) {
			continue
		}
		if match, ok := MatchAlbum(p.Name, albums); ok {
			res.Confirmed = append(res.Confirmed, Candidate{Playlist: p, MatchedAlbum: match, Selected: true})
			continue
		}
		res.Unconfirmed = append(res.Unconfirmed, Candidate{Playlist: p})
	}
	return res
}
