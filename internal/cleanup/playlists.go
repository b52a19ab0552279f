package cleanup

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/event"
	"github.com/sydlexius/crate/internal/playlist"
	"github.com/sydlexius/crate/internal/session"
)

// PlaylistDeleteResult reports a playlist deletion. SourcePaths lists the
// playlist files behind deleted playlists; the server re-imports them on the
// next library scan unless they are removed as well.
type PlaylistDeleteResult struct {
	batch.Result
	SourcePaths []string `json:"source_paths"`
}

// GeneratedPlaylist is a previewed playlist waiting to be saved.
type GeneratedPlaylist = Scan[*playlist.Preview]

// ScanPlaylists finds album-style playlists and checks them against the
// album list.
func (s *Service) ScanPlaylists(ctx context.Context) (*Scan[playlist.ScanResult], error) {
	playlists, err := s.catalog.ListPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing playlists: %w", err)
	}
	albums, err := s.catalog.ListAlbums(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing albums: %w", err)
	}
	res := playlist.Scan(playlists, albums)
	if res.Confirmed == nil {
		res.Confirmed = []playlist.Candidate{}
	}
	if res.Unconfirmed == nil {
		res.Unconfirmed = []playlist.Candidate{}
	}

	sess := s.sessions.Create(session.KindPlaylists, res)
	s.logger.Info("playlist scan complete",
		slog.Int("playlists", len(playlists)),
		slog.Int("confirmed", len(res.Confirmed)),
		slog.Int("unconfirmed", len(res.Unconfirmed)))
	s.bus.Publish(event.New(event.ScanPlaylists, "session_id", sess.ID,
		"confirmed", len(res.Confirmed), "unconfirmed", len(res.Unconfirmed)))
	return newScan(sess, res), nil
}

// DeletePlaylists deletes candidates from a playlist scan and discards the
// session. A nil ids deletes the pre-selected (confirmed) candidates.
func (s *Service) DeletePlaylists(ctx context.Context, sessionID string, ids []string) (*PlaylistDeleteResult, error) {
	sess, err := s.sessions.Get(sessionID, session.KindPlaylists)
	if err != nil {
		return nil, err
	}
	scan, err := session.Payload[playlist.ScanResult](sess)
	if err != nil {
		return nil, err
	}

	var selected []playlist.Candidate
	if ids == nil {
		for _, c := range scan.Candidates() {
			if c.Selected {
				selected = append(selected, c)
			}
		}
	} else {
		selected, err = selectByID(scan.Candidates(), ids, func(c playlist.Candidate) string { return c.Playlist.ID })
		if err != nil {
			return nil, err
		}
	}
	if len(selected) == 0 {
		return nil, catalog.Configurationf("no playlists selected")
	}
	s.sessions.Delete(sess.ID)

	res := batch.Run(ctx, s.opts.Concurrency, selected,
		func(c playlist.Candidate) (string, string) {
			return c.Playlist.ID, fmt.Sprintf("delete playlist %q", c.Playlist.Name)
		},
		func(ctx context.Context, c playlist.Candidate) error {
			return s.catalog.DeleteItem(ctx, c.Playlist.ID)
		})

	failed := make(map[string]bool, len(res.Errors))
	for _, e := range res.Errors {
		failed[e.ID] = true
	}
	out := &PlaylistDeleteResult{Result: res, SourcePaths: []string{}}
	for _, c := range selected {
		if c.Playlist.FromFile() && !failed[c.Playlist.ID] {
			out.SourcePaths = append(out.SourcePaths, c.Playlist.SourcePath)
		}
	}

	logResult(s.logger, "playlists deleted", res)
	s.bus.Publish(event.New(event.ItemsDeleted, "kind", "playlist", "deleted", res.Succeeded, "failed", res.Failed()))
	return out, nil
}

// PreviewPlaylist builds a playlist from recommendations and keeps it in a
// session until it is saved.
func (s *Service) PreviewPlaylist(ctx context.Context, artists, style string, count int) (*GeneratedPlaylist, error) {
	if s.generator == nil {
		return nil, catalog.Configurationf("recommendation service is not configured")
	}
	st, err := playlist.ParseStyle(style)
	if err != nil {
		return nil, err
	}
	p, err := s.generator.Preview(ctx, artists, st, count)
	if err != nil {
		return nil, err
	}
	sess := s.sessions.Create(session.KindGenerated, p)
	return newScan(sess, p), nil
}

// SavePlaylist creates the playlist previewed in sessionID and returns its id.
func (s *Service) SavePlaylist(ctx context.Context, sessionID string) (string, error) {
	if s.generator == nil {
		return "", catalog.Configurationf("recommendation service is not configured")
	}
	sess, err := s.sessions.Get(sessionID, session.KindGenerated)
	if err != nil {
		return "", err
	}
	p, err := session.Payload[*playlist.Preview](sess)
	if err != nil {
		return "", err
	}
	id, err := s.generator.Save(ctx, p)
	if err != nil {
		return "", err
	}
	s.sessions.Delete(sess.ID)
	s.bus.Publish(event.New(event.PlaylistSaved, "playlist_id", id, "name", p.Name, "tracks", len(p.Tracks)))
	return id, nil
}
