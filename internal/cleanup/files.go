package cleanup

import (
	"context"
	"fmt"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/event"
)

// RemoteStatus describes the remote account used for file cleanup.
type RemoteStatus struct {
	User     string `json:"user"`
	Root     string `json:"root"`
	Writable bool   `json:"writable"`
}

// PlaylistFiles is the result of listing playlist files on the server.
type PlaylistFiles struct {
	RemoteStatus
	Files []string `json:"files"`
}

func (s *Service) fileService() error {
	if s.files == nil {
		return catalog.Configurationf("remote file access is not configured")
	}
	return nil
}

// ListPlaylistFiles lists .m3u/.m3u8 files under the music path.
func (s *Service) ListPlaylistFiles(ctx context.Context) (*PlaylistFiles, error) {
	if err := s.fileService(); err != nil {
		return nil, err
	}
	user, err := s.files.WhoAmI(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking remote user: %w", err)
	}
	writable, err := s.files.CanWrite(ctx, s.files.Root())
	if err != nil {
		return nil, fmt.Errorf("checking write access: %w", err)
	}
	files, err := s.files.FindPlaylistFiles(ctx)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []string{}
	}
	return &PlaylistFiles{
		RemoteStatus: RemoteStatus{User: user, Root: s.files.Root(), Writable: writable},
		Files:        files,
	}, nil
}

// DeletePlaylistFiles removes playlist files. A library rescan is needed
// before the server forgets the playlists they defined.
func (s *Service) DeletePlaylistFiles(ctx context.Context, paths []string) (batch.Result, error) {
	if err := s.fileService(); err != nil {
		return batch.Result{}, err
	}
	if len(paths) == 0 {
		return batch.Result{}, catalog.Configurationf("no files selected")
	}
	res := s.files.DeleteFiles(ctx, paths)
	logResult(s.logger, "playlist files deleted", res)
	s.bus.Publish(event.New(event.FilesDeleted, "deleted", res.Succeeded, "failed", res.Failed()))
	return res, nil
}
