package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/catalog/catalogtest"
	"github.com/sydlexius/crate/internal/config"
	"github.com/sydlexius/crate/internal/remote"
)

const testConfig = `
logging:
  level: error
  format: text
classify:
  whitelist:
    - "4Hero"
`

func testCatalog() *catalogtest.Memory {
	return &catalogtest.Memory{
		Artists: []catalog.Artist{
			{ID: "a1", Name: "The Beatles", TrackCount: 10},
			{ID: "a2", Name: "Beatles", TrackCount: 1},
			{ID: "j1", Name: "01"},
		},
		Albums: []catalog.Album{
			{Name: "Abbey Road", AlbumArtist: "The Beatles"},
		},
		Playlists: []catalog.Playlist{
			{ID: "p1", Name: "The Beatles - Abbey Road", TrackCount: 17, SourcePath: "/music/abbey.m3u"},
			{ID: "p2", Name: "Road Trip"},
		},
		Tracks: map[string][]catalog.Track{
			"a1": {{ID: "t1", Name: "Yesterday"}},
			"a2": {{ID: "t2", Name: "Yesterday"}, {ID: "t3", Name: "Help!"}},
		},
	}
}

type fakeFiles struct {
	files   []string
	deleted []string
}

func (f *fakeFiles) Root() string { return "/music" }
func (f *fakeFiles) Close() error { return nil }
func (f *fakeFiles) FindPlaylistFiles(context.Context) ([]string, error) {
	return f.files, nil
}
func (f *fakeFiles) DeleteFiles(_ context.Context, paths []string) batch.Result {
	f.deleted = append(f.deleted, paths...)
	return batch.Result{Succeeded: len(paths)}
}
func (f *fakeFiles) WhoAmI(context.Context) (string, error)          { return "jellyfin", nil }
func (f *fakeFiles) CanWrite(context.Context, string) (bool, error) { return true, nil }

var _ remote.FileService = (*fakeFiles)(nil)

// runCLI executes the root command against cat and returns stdout.
func runCLI(t *testing.T, cat *catalogtest.Memory, files *fakeFiles, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "crate.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o600); err != nil {
		t.Fatal(err)
	}

	var configFlag string
	var jsonFlag bool
	cc := newCommandContext(&configFlag, &jsonFlag)
	cc.newCatalog = func(*config.Config, *slog.Logger) (libraryCatalog, error) {
		return cat, nil
	}
	cc.dialRemote = func(context.Context, *config.Config, string, *slog.Logger) (remote.FileService, error) {
		if files == nil {
			return nil, errors.New("no remote")
		}
		return files, nil
	}

	cmd := buildRootCommand(cc, &configFlag, &jsonFlag)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", path}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestDuplicatesCommand_Table(t *testing.T) {
	out, err := runCLI(t, testCatalog(), nil, "duplicates")
	if err != nil {
		t.Fatalf("duplicates: %v", err)
	}
	if !strings.Contains(out, "The Beatles [a1, 10 tracks]") || !strings.Contains(out, "Beatles [a2, 1 tracks]") {
		t.Errorf("output missing group members:\n%s", out)
	}
}

func TestDuplicatesCommand_RenameJSON(t *testing.T) {
	cat := testCatalog()
	out, err := runCLI(t, cat, nil, "--json", "duplicates", "--rename")
	if err != nil {
		t.Fatalf("duplicates --rename: %v", err)
	}

	var got struct {
		Scan struct {
			SessionID string            `json:"session_id"`
			Results   []json.RawMessage `json:"results"`
		} `json:"scan"`
		Renames []batch.Result `json:"renames"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if got.Scan.SessionID == "" || len(got.Scan.Results) != 1 {
		t.Errorf("scan = %+v", got.Scan)
	}
	if len(got.Renames) != 1 || got.Renames[0].Succeeded != 1 {
		t.Errorf("renames = %+v", got.Renames)
	}
	if cat.Renamed["a2"] != "The Beatles" {
		t.Errorf("renamed = %v", cat.Renamed)
	}
}

func TestDuplicatesCommand_RenameAndMergeExclusive(t *testing.T) {
	if _, err := runCLI(t, testCatalog(), nil, "duplicates", "--rename", "--merge"); err == nil {
		t.Fatal("expected error for --rename with --merge")
	}
}

func TestMergeCommand(t *testing.T) {
	cat := testCatalog()
	out, err := runCLI(t, cat, nil, "merge", "--group", "0")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(out, "crate rescan") {
		t.Errorf("expected rescan advice:\n%s", out)
	}
	deleted := strings.Join(cat.DeletedIDs(), ",")
	if !strings.Contains(deleted, "t2") || !strings.Contains(deleted, "a2") {
		t.Errorf("deleted = %s, want duplicate track t2 and loser a2", deleted)
	}
	if cat.Reassigned["t3"] != "The Beatles" {
		t.Errorf("reassigned = %v", cat.Reassigned)
	}
}

func TestMergeCommand_BadGroup(t *testing.T) {
	_, err := runCLI(t, testCatalog(), nil, "merge", "--group", "5")
	if !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("err = %v, want configuration error", err)
	}
}

func TestPairsCommand(t *testing.T) {
	out, err := runCLI(t, testCatalog(), nil, "pairs")
	if err != nil {
		t.Fatalf("pairs: %v", err)
	}
	if !strings.Contains(out, "Beatles") {
		t.Errorf("output:\n%s", out)
	}
}

func TestJunkCommand_Delete(t *testing.T) {
	cat := testCatalog()
	out, err := runCLI(t, cat, nil, "junk", "--delete")
	if err != nil {
		t.Fatalf("junk: %v", err)
	}
	if !strings.Contains(out, "Deleted 1 artists, 0 failed.") {
		t.Errorf("output:\n%s", out)
	}
	if ids := cat.DeletedIDs(); len(ids) != 1 || ids[0] != "j1" {
		t.Errorf("deleted = %v", ids)
	}
}

func TestJunkCommand_ScanOnly(t *testing.T) {
	cat := testCatalog()
	out, err := runCLI(t, cat, nil, "junk")
	if err != nil {
		t.Fatalf("junk: %v", err)
	}
	if !strings.Contains(out, "j1") {
		t.Errorf("output:\n%s", out)
	}
	if len(cat.DeletedIDs()) != 0 {
		t.Error("scan deleted artists")
	}
}

func TestPlaylistsCommand_DeleteReportsSourcePaths(t *testing.T) {
	cat := testCatalog()
	out, err := runCLI(t, cat, nil, "playlists", "--delete")
	if err != nil {
		t.Fatalf("playlists: %v", err)
	}
	if !strings.Contains(out, "/music/abbey.m3u") {
		t.Errorf("expected source path in output:\n%s", out)
	}
	if ids := cat.DeletedIDs(); len(ids) != 1 || ids[0] != "p1" {
		t.Errorf("deleted = %v", ids)
	}
}

func TestGenerateCommand_NoSpotify(t *testing.T) {
	_, err := runCLI(t, testCatalog(), nil, "generate", "Muse")
	if !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("err = %v, want configuration error", err)
	}
}

func TestRemotePlaylistsCommand_NotConfigured(t *testing.T) {
	_, err := runCLI(t, testCatalog(), &fakeFiles{}, "remote-playlists")
	if !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("err = %v, want configuration error", err)
	}
}

func TestRemotePlaylistsCommand_DeleteAll(t *testing.T) {
	t.Setenv("CR_SSH_HOST", "media.local")
	t.Setenv("CR_SSH_USER", "jellyfin")
	t.Setenv("CR_MUSIC_PATH", "/music")

	cat := testCatalog()
	files := &fakeFiles{files: []string{"/music/a.m3u", "/music/b.m3u8"}}
	out, err := runCLI(t, cat, files, "--json", "remote-playlists", "--delete-all", "--rescan")
	if err != nil {
		t.Fatalf("remote-playlists: %v", err)
	}

	var got struct {
		Listing struct {
			User  string   `json:"user"`
			Files []string `json:"files"`
		} `json:"listing"`
		Deleted       batch.Result `json:"deleted"`
		RescanStarted bool         `json:"rescan_started"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if got.Listing.User != "jellyfin" || len(got.Listing.Files) != 2 {
		t.Errorf("listing = %+v", got.Listing)
	}
	if got.Deleted.Succeeded != 2 || len(files.deleted) != 2 {
		t.Errorf("deleted = %+v, files = %v", got.Deleted, files.deleted)
	}
	if !got.RescanStarted || cat.Rescans != 1 {
		t.Errorf("rescan_started = %v, rescans = %d", got.RescanStarted, cat.Rescans)
	}
}

func TestRescanCommand(t *testing.T) {
	cat := testCatalog()
	out, err := runCLI(t, cat, nil, "rescan")
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if cat.Rescans != 1 || !strings.Contains(out, "Library rescan started.") {
		t.Errorf("rescans = %d, output %q", cat.Rescans, out)
	}
}

func TestClassifyCommand(t *testing.T) {
	out, err := runCLI(t, nil, nil, "--json", "classify", "01", "U2", "4Hero")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var got []struct {
		Name        string   `json:"name"`
		Whitelisted bool     `json:"whitelisted"`
		Reasons     []string `json:"reasons"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d verdicts", len(got))
	}
	if len(got[0].Reasons) == 0 {
		t.Errorf("01 should be flagged: %+v", got[0])
	}
	if !got[1].Whitelisted || len(got[1].Reasons) != 0 {
		t.Errorf("U2 = %+v", got[1])
	}
	if !got[2].Whitelisted {
		t.Errorf("configured whitelist entry not honored: %+v", got[2])
	}
}

func TestVersionCommand_SkipsConfig(t *testing.T) {
	cmd := newRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "bad.yaml"), "version"})
	t.Setenv("CR_PORT", "not-a-port")
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "crate dev") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestConfigErrorSurfaces(t *testing.T) {
	t.Setenv("CR_PORT", "not-a-port")
	_, err := runCLI(t, testCatalog(), nil, "rescan")
	if !errors.Is(err, catalog.ErrConfiguration) {
		t.Errorf("err = %v, want configuration error", err)
	}
}
