// Package remote lists and deletes playlist files on the media server host
// over SSH.
package remote

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
)

// FileService manages playlist files on the remote host.
type FileService interface {
	FindPlaylistFiles(ctx context.Context) ([]string, error)
	DeleteFiles(ctx context.Context, paths []string) batch.Result
	WhoAmI(ctx context.Context) (string, error)
	CanWrite(ctx context.Context, path string) (bool, error)
	Root() string
	Close() error
}

// Runner executes a shell command on the remote host.
type Runner interface {
	Run(ctx context.Context, cmd string) (stdout, stderr string, err error)
	Close() error
}

// Files implements FileService with shell commands issued through a Runner.
// Every path it deletes must be a playlist file below root.
type Files struct {
	runner Runner
	root   string
	logger *slog.Logger
}

var _ FileService = (*Files)(nil)

// NewFiles creates a FileService rooted at the music library path.
func NewFiles(runner Runner, root string, logger *slog.Logger) (*Files, error) {
	root = path.Clean("/" + strings.TrimSpace(root))
	if root == "/" {
		return nil, catalog.Configurationf("remote music path must be a directory below /")
	}
	return &Files{
		runner: runner,
		root:   root,
		logger: logger.With(slog.String("component", "remote-files")),
	}, nil
}

// Root returns the music library path.
func (f *Files) Root() string { return f.root }

// Close closes the underlying connection.
func (f *Files) Close() error { return f.runner.Close() }

// FindPlaylistFiles returns the sorted absolute paths of every .m3u and
// .m3u8 file below the music path.
func (f *Files) FindPlaylistFiles(ctx context.Context) ([]string, error) {
	cmd := fmt.Sprintf(`find %s -type f \( -iname '*.m3u' -o -iname '*.m3u8' \)`, Quote(f.root))
	stdout, stderr, err := f.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("finding playlist files: %w: %s", err, strings.TrimSpace(stderr))
	}

	var files []string
	for _, line := range strings.Split(stdout, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	sort.Strings(files)
	f.logger.Debug("playlist files found", slog.Int("count", len(files)))
	return files, nil
}

// DeleteFiles removes each path, in order, continuing past failures.
func (f *Files) DeleteFiles(ctx context.Context, paths []string) batch.Result {
	res := batch.Run(ctx, 1, paths,
		func(p string) (string, string) { return p, "delete " + p },
		func(ctx context.Context, p string) error {
			if err := f.checkDeletable(p); err != nil {
				return err
			}
			_, stderr, err := f.runner.Run(ctx, "rm -f -- "+Quote(p))
			if err != nil {
				if msg := strings.TrimSpace(stderr); msg != "" {
					return fmt.Errorf("%w: %s", err, msg)
				}
				return err
			}
			return nil
		})
	f.logger.Info("playlist files deleted",
		slog.Int("deleted", res.Succeeded),
		slog.Int("failed", res.Failed()))
	return res
}

// checkDeletable refuses anything that is not a playlist file below root.
func (f *Files) checkDeletable(p string) error {
	clean := path.Clean(p)
	if !path.IsAbs(clean) || !strings.HasPrefix(clean, f.root+"/") {
		return fmt.Errorf("%s is outside %s: %w", p, f.root, catalog.ErrPermissionDenied)
	}
	switch strings.ToLower(path.Ext(clean)) {
	case ".m3u", ".m3u8":
		return nil
	}
	return fmt.Errorf("%s is not a playlist file: %w", p, catalog.ErrPermissionDenied)
}

// WhoAmI returns the remote user name.
func (f *Files) WhoAmI(ctx context.Context) (string, error) {
	stdout, _, err := f.runner.Run(ctx, "whoami")
	if err != nil {
		return "", fmt.Errorf("whoami: %w", err)
	}
	return strings.TrimSpace(stdout), nil
}

// CanWrite reports whether the remote user can write to the directory
// containing p.
func (f *Files) CanWrite(ctx context.Context, p string) (bool, error) {
	stdout, _, err := f.runner.Run(ctx, fmt.Sprintf("test -w %s && echo yes || echo no", Quote(path.Dir(p))))
	if err != nil {
		return false, fmt.Errorf("checking write access: %w", err)
	}
	return strings.TrimSpace(stdout) == "yes", nil
}

// Quote single-quotes s for a POSIX shell.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
