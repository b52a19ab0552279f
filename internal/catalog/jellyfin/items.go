package jellyfin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/similarity"
)

// pageSize is the number of items requested per /Items page.
const pageSize = 500

// trackArtistThreshold is the token-sort score an item's artist must reach
// against the requested artist in FindTrack.
const trackArtistThreshold = 85

// listItems pages through /Items for one item type.
func (c *Client) listItems(ctx context.Context, itemType string, extra url.Values) ([]Item, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return nil, err
	}

	var all []Item
	for start := 0; ; start += pageSize {
		q := url.Values{}
		for k, v := range extra {
			q[k] = v
		}
		q.Set("IncludeItemTypes", itemType)
		q.Set("Recursive", "true")
		q.Set("UserId", userID)
		q.Set("StartIndex", strconv.Itoa(start))
		q.Set("Limit", strconv.Itoa(pageSize))

		var resp ItemsResponse
		if err := c.get(ctx, "/Items", q, &resp); err != nil {
			return nil, fmt.Errorf("listing %s items: %w", itemType, err)
		}
		all = append(all, resp.Items...)
		if len(resp.Items) < pageSize || len(all) >= resp.TotalRecordCount {
			return all, nil
		}
	}
}

// ListArtists returns every music artist.
func (c *Client) ListArtists(ctx context.Context) ([]catalog.Artist, error) {
	items, err := c.listItems(ctx, "MusicArtist", url.Values{"Fields": {"ChildCount,SortName"}})
	if err != nil {
		return nil, err
	}
	artists := make([]catalog.Artist, 0, len(items))
	for _, it := range items {
		albums := it.AlbumCount
		if albums == 0 {
			albums = it.ChildCount
		}
		artists = append(artists, catalog.Artist{
			ID:         it.ID,
			Name:       it.Name,
			SortName:   it.SortName,
			AlbumCount: albums,
			TrackCount: it.SongCount,
		})
	}
	c.logger.Debug("listed artists", "count", len(artists))
	return artists, nil
}

// ListAlbums returns every music album.
func (c *Client) ListAlbums(ctx context.Context) ([]catalog.Album, error) {
	items, err := c.listItems(ctx, "MusicAlbum", url.Values{"Fields": {"AlbumArtist"}})
	if err != nil {
		return nil, err
	}
	albums := make([]catalog.Album, 0, len(items))
	for _, it := range items {
		albums = append(albums, catalog.Album{Name: it.Name, AlbumArtist: it.AlbumArtist})
	}
	return albums, nil
}

// ListPlaylists returns every playlist. Playlists whose path is an
// .m3u/.m3u8 file carry it as SourcePath.
func (c *Client) ListPlaylists(ctx context.Context) ([]catalog.Playlist, error) {
	items, err := c.listItems(ctx, "Playlist", url.Values{"Fields": {"Path,ChildCount"}})
	if err != nil {
		return nil, err
	}
	playlists := make([]catalog.Playlist, 0, len(items))
	for _, it := range items {
		p := catalog.Playlist{ID: it.ID, Name: it.Name, TrackCount: it.ChildCount}
		if IsPlaylistFile(it.Path) {
			p.SourcePath = it.Path
		}
		playlists = append(playlists, p)
	}
	return playlists, nil
}

// IsPlaylistFile reports whether p names an .m3u or .m3u8 file.
func IsPlaylistFile(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".m3u", ".m3u8":
		return true
	}
	return false
}

// ListTracksForArtist returns the audio items credited to an artist.
func (c *Client) ListTracksForArtist(ctx context.Context, artistID string) ([]catalog.Track, error) {
	items, err := c.listItems(ctx, "Audio", url.Values{"ArtistIds": {artistID}})
	if err != nil {
		return nil, err
	}
	tracks := make([]catalog.Track, 0, len(items))
	for _, it := range items {
		tracks = append(tracks, catalog.Track{ID: it.ID, Name: it.Name, ArtistID: artistID})
	}
	return tracks, nil
}

// getItemDTO fetches the full item so that an update posts every field back
// unchanged except the ones being edited.
func (c *Client) getItemDTO(ctx context.Context, id string) (map[string]any, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return nil, err
	}
	var dto map[string]any
	p := fmt.Sprintf("/Users/%s/Items/%s", url.PathEscape(userID), url.PathEscape(id))
	if err := c.get(ctx, p, nil, &dto); err != nil {
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	return dto, nil
}

func (c *Client) updateItem(ctx context.Context, id string, dto map[string]any) error {
	p := "/Items/" + url.PathEscape(id)
	if err := c.send(ctx, http.MethodPost, p, nil, dto, nil); err != nil {
		return fmt.Errorf("updating item %s: %w", id, err)
	}
	return nil
}

// RenameArtist sets the artist's name and forced sort name.
func (c *Client) RenameArtist(ctx context.Context, artistID, name string) error {
	dto, err := c.getItemDTO(ctx, artistID)
	if err != nil {
		return err
	}
	dto["Name"] = name
	dto["ForcedSortName"] = name
	if err := c.updateItem(ctx, artistID, dto); err != nil {
		return err
	}
	c.logger.Info("artist renamed", "artist_id", artistID, "name", name)
	return nil
}

// ReassignTrackArtist credits a track to artistName alone.
func (c *Client) ReassignTrackArtist(ctx context.Context, trackID, artistName string) error {
	dto, err := c.getItemDTO(ctx, trackID)
	if err != nil {
		return err
	}
	dto["Artists"] = []string{artistName}
	dto["ArtistItems"] = []map[string]string{{"Name": artistName}}
	return c.updateItem(ctx, trackID, dto)
}

// DeleteItem removes an item from the server.
func (c *Client) DeleteItem(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, "/Items/"+url.PathEscape(id), nil, nil, nil); err != nil {
		return fmt.Errorf("deleting item %s: %w", id, err)
	}
	return nil
}

// FindTrack searches audio items by title and keeps those whose artist
// matches artistName. Among several matches the shortest track wins.
func (c *Client) FindTrack(ctx context.Context, artistName, trackName string) (*catalog.Track, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return nil, err
	}
	q := url.Values{
		"SearchTerm":       {trackName},
		"IncludeItemTypes": {"Audio"},
		"Recursive":        {"true"},
		"Fields":           {"Artist,Album,SortName"},
		"UserId":           {userID},
		"Limit":            {"50"},
	}
	var resp ItemsResponse
	if err := c.get(ctx, "/Items", q, &resp); err != nil {
		return nil, fmt.Errorf("searching tracks: %w", err)
	}

	var candidates []Item
	for _, it := range resp.Items {
		itemArtist := strings.Join(it.Artists, " ")
		if itemArtist == "" {
			itemArtist = it.AlbumArtist
		}
		if artistMatches(itemArtist, artistName) {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("track %q by %q: %w", trackName, artistName, catalog.ErrNotFound)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RunTimeTicks < candidates[j].RunTimeTicks
	})
	best := candidates[0]
	return &catalog.Track{ID: best.ID, Name: best.Name}, nil
}

func artistMatches(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return a == b || similarity.TokenSortRatio(a, b) >= trackArtistThreshold
}

// CreatePlaylist creates a playlist owned by the client's user.
func (c *Client) CreatePlaylist(ctx context.Context, name string, itemIDs []string) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}
	q := url.Values{
		"Name":   {name},
		"Ids":    {strings.Join(itemIDs, ",")},
		"UserId": {userID},
	}
	var created playlistCreated
	if err := c.send(ctx, http.MethodPost, "/Playlists", q, nil, &created); err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("creating playlist: server returned no playlist id: %w", catalog.ErrRejected)
	}
	return created.ID, nil
}
