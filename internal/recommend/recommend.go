// Package recommend defines the track recommendation collaborator used to
// seed generated playlists.
package recommend

import "context"

// Track is a recommended track, ranked by popularity.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Album       string `json:"album"`
	Popularity  int    `json:"popularity"`
	ReleaseYear int    `json:"release_year,omitempty"`
}

// Service returns the most popular tracks for an artist, most popular first.
// An unknown artist yields an empty slice, not an error.
type Service interface {
	TopTracks(ctx context.Context, artist string, limit int) ([]Track, error)
}

// Artist is an artist as known to a recommendation service.
type Artist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Followers int    `json:"followers"`
}
