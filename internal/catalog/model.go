// Package catalog describes the media-server records the cleanup engine
// reads and the mutations it requests. The concrete client lives in
// catalog/jellyfin.
package catalog

import (
	"context"
	"strings"
)

// Artist is an artist record as reported by the media server. ID is the
// identity; Name is mutable through RenameArtist.
type Artist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SortName   string `json:"sort_name,omitempty"`
	AlbumCount int    `json:"album_count"`
	TrackCount int    `json:"track_count"`
}

// Track is an audio item used while merging two artists.
type Track struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ArtistID string `json:"artist_id"`
}

// Playlist is a playlist record. SourcePath is set when the playlist was
// imported from an .m3u/.m3u8 file on disk; such playlists come back on the
// next library scan unless the file is removed too.
type Playlist struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TrackCount int    `json:"track_count"`
	SourcePath string `json:"source_path,omitempty"`
}

// FromFile reports whether the playlist was imported from a playlist file.
func (p Playlist) FromFile() bool {
	return p.SourcePath != ""
}

// Album is a read-only album record.
type Album struct {
	Name        string `json:"name"`
	AlbumArtist string `json:"album_artist"`
}

// Service is the media-server API consumed by the cleanup engine.
type Service interface {
	ListArtists(ctx context.Context) ([]Artist, error)
	ListAlbums(ctx context.Context) ([]Album, error)
	ListPlaylists(ctx context.Context) ([]Playlist, error)
	ListTracksForArtist(ctx context.Context, artistID string) ([]Track, error)

	RenameArtist(ctx context.Context, artistID, name string) error
	ReassignTrackArtist(ctx context.Context, trackID, artistName string) error
	DeleteItem(ctx context.Context, id string) error
}

// TrackFinder locates a track by artist and title. It returns an error
// wrapping ErrNotFound when no track matches.
type TrackFinder interface {
	FindTrack(ctx context.Context, artistName, trackName string) (*Track, error)
}

// PlaylistCreator creates a playlist from item ids and returns its id.
type PlaylistCreator interface {
	CreatePlaylist(ctx context.Context, name string, itemIDs []string) (string, error)
}

// Rescanner asks the media server to rescan its libraries.
type Rescanner interface {
	TriggerLibraryScan(ctx context.Context) error
}

// TrackKey is the case-folded, trimmed form used to compare track names.
func TrackKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
