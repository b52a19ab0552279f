// Package catalogtest provides an in-memory catalog for tests.
package catalogtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sydlexius/crate/internal/catalog"
)

// Memory is an in-memory catalog.Service. Set Fail["op:id"] to make a call
// fail, e.g. Fail["delete:a1"].
type Memory struct {
	mu        sync.Mutex
	Artists   []catalog.Artist
	Albums    []catalog.Album
	Playlists []catalog.Playlist
	// Tracks maps an artist id to its tracks.
	Tracks map[string][]catalog.Track
	Fail   map[string]error

	Renamed    map[string]string
	Reassigned map[string]string
	Deleted    []string
	Created    map[string][]string
	Rescans    int
}

var (
	_ catalog.Service         = (*Memory)(nil)
	_ catalog.TrackFinder     = (*Memory)(nil)
	_ catalog.PlaylistCreator = (*Memory)(nil)
	_ catalog.Rescanner       = (*Memory)(nil)
)

func (m *Memory) fail(op, id string) error {
	if err, ok := m.Fail[op+":"+id]; ok {
		return err
	}
	return m.Fail[op+":*"]
}

// ListArtists returns a copy of Artists.
func (m *Memory) ListArtists(_ context.Context) ([]catalog.Artist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("list", "artists"); err != nil {
		return nil, err
	}
	return append([]catalog.Artist(nil), m.Artists...), nil
}

// ListAlbums returns a copy of Albums.
func (m *Memory) ListAlbums(_ context.Context) ([]catalog.Album, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("list", "albums"); err != nil {
		return nil, err
	}
	return append([]catalog.Album(nil), m.Albums...), nil
}

// ListPlaylists returns a copy of Playlists.
func (m *Memory) ListPlaylists(_ context.Context) ([]catalog.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("list", "playlists"); err != nil {
		return nil, err
	}
	return append([]catalog.Playlist(nil), m.Playlists...), nil
}

// ListTracksForArtist returns the tracks filed under artistID.
func (m *Memory) ListTracksForArtist(_ context.Context, artistID string) ([]catalog.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("tracks", artistID); err != nil {
		return nil, err
	}
	return append([]catalog.Track(nil), m.Tracks[artistID]...), nil
}

// RenameArtist renames the artist in place.
func (m *Memory) RenameArtist(_ context.Context, artistID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("rename", artistID); err != nil {
		return err
	}
	for i := range m.Artists {
		if m.Artists[i].ID == artistID {
			m.Artists[i].Name = name
			if m.Renamed == nil {
				m.Renamed = map[string]string{}
			}
			m.Renamed[artistID] = name
			return nil
		}
	}
	return fmt.Errorf("artist %s: %w", artistID, catalog.ErrNotFound)
}

// ReassignTrackArtist records the new artist name for a track.
func (m *Memory) ReassignTrackArtist(_ context.Context, trackID, artistName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("reassign", trackID); err != nil {
		return err
	}
	if m.Reassigned == nil {
		m.Reassigned = map[string]string{}
	}
	m.Reassigned[trackID] = artistName
	return nil
}

// DeleteItem removes an artist or playlist with the id and records the call.
func (m *Memory) DeleteItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("delete", id); err != nil {
		return err
	}
	m.Deleted = append(m.Deleted, id)
	for i, a := range m.Artists {
		if a.ID == id {
			m.Artists = append(m.Artists[:i], m.Artists[i+1:]...)
			break
		}
	}
	for i, p := range m.Playlists {
		if p.ID == id {
			m.Playlists = append(m.Playlists[:i], m.Playlists[i+1:]...)
			break
		}
	}
	return nil
}

// FindTrack looks for a track with the title under an artist with the name.
func (m *Memory) FindTrack(_ context.Context, artistName, trackName string) (*catalog.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Artists {
		if !strings.EqualFold(a.Name, artistName) {
			continue
		}
		for _, t := range m.Tracks[a.ID] {
			if catalog.TrackKey(t.Name) == catalog.TrackKey(trackName) {
				found := t
				return &found, nil
			}
		}
	}
	return nil, fmt.Errorf("track %q by %q: %w", trackName, artistName, catalog.ErrNotFound)
}

// CreatePlaylist records the playlist and returns "pl-<n>".
func (m *Memory) CreatePlaylist(_ context.Context, name string, itemIDs []string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("create", name); err != nil {
		return "", err
	}
	if m.Created == nil {
		m.Created = map[string][]string{}
	}
	m.Created[name] = itemIDs
	return fmt.Sprintf("pl-%d", len(m.Created)), nil
}

// TriggerLibraryScan counts rescans.
func (m *Memory) TriggerLibraryScan(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("rescan", "*"); err != nil {
		return err
	}
	m.Rescans++
	return nil
}

// DeletedIDs returns a copy of the deleted ids.
func (m *Memory) DeletedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}
