package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sydlexius/crate/internal/cleanup"
	"github.com/sydlexius/crate/internal/playlist"
)

func newPlaylistsCommand(ctx *commandContext) *cobra.Command {
	var del bool
	var ids []string

	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "Find playlists that duplicate an album",
		Long: "Find playlists named like \"Artist - Album\". Confirmed playlists match an\n" +
			"album in the library and are deleted by --delete; unconfirmed ones are\n" +
			"only deleted when named with --id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				scan, err := a.cleanup.ScanPlaylists(cmd.Context())
				if err != nil {
					return err
				}
				out := playlistsOutput{Scan: scan}
				if del {
					res, err := a.cleanup.DeletePlaylists(cmd.Context(), scan.SessionID, ids)
					if err != nil {
						return err
					}
					out.Deleted = res
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				printCandidates(cmd, scan.Results)
				if out.Deleted != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d playlists, %d failed.\n", out.Deleted.Succeeded, out.Deleted.Failed())
					printItemErrors(cmd, out.Deleted.Errors)
					if len(out.Deleted.SourcePaths) > 0 {
						fmt.Fprintln(cmd.OutOrStdout(), "These playlists came from files and return on the next library scan unless the files are removed:")
						for _, p := range out.Deleted.SourcePaths {
							fmt.Fprintln(cmd.OutOrStdout(), "  "+p)
						}
						fmt.Fprintln(cmd.OutOrStdout(), "Remove them with `crate remote-playlists --delete PATH` and run `crate rescan`.")
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&del, "delete", false, "Delete the confirmed playlists")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Delete these playlist ids instead (repeatable)")
	return cmd
}

type playlistsOutput struct {
	Scan    *cleanup.Scan[playlist.ScanResult] `json:"scan"`
	Deleted *cleanup.PlaylistDeleteResult      `json:"deleted,omitempty"`
}

func printCandidates(cmd *cobra.Command, res playlist.ScanResult) {
	candidates := res.Candidates()
	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No album-style playlists found.")
		return
	}
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		album := c.MatchedAlbum
		if album == "" {
			album = "-"
		}
		rows = append(rows, []string{
			c.Playlist.ID,
			c.Playlist.Name,
			album,
			fmt.Sprint(c.Playlist.TrackCount),
			yesNo(c.Playlist.FromFile()),
			yesNo(c.Selected),
		})
	}
	printTable(cmd, []string{"ID", "Playlist", "Album", "Tracks", "File", "Selected"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft})
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var style string
	var count int
	var save bool

	cmd := &cobra.Command{
		Use:   "generate ARTIST...",
		Short: "Build a playlist from an artist's popular tracks",
		Long: "Build a playlist from recommendations for one or more artists, keeping\n" +
			"only tracks that exist in the library. Styles: slaps, bangers,\n" +
			"experience. Requires Spotify credentials.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				preview, err := a.cleanup.PreviewPlaylist(cmd.Context(), strings.Join(args, ","), style, count)
				if err != nil {
					return err
				}
				out := generateOutput{Preview: preview}
				if save {
					id, err := a.cleanup.SavePlaylist(cmd.Context(), preview.SessionID)
					if err != nil {
						return err
					}
					out.PlaylistID = id
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				p := preview.Results
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%d tracks)\n", p.Name, len(p.Tracks))
				rows := make([][]string, 0, len(p.Tracks))
				for i, t := range p.Tracks {
					rows = append(rows, []string{fmt.Sprint(i + 1), t.Artist, t.Name})
				}
				printTable(cmd, []string{"#", "Artist", "Track"}, rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft})
				if out.PlaylistID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "Saved as playlist %s.\n", out.PlaylistID)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&style, "style", "s", string(playlist.StyleSlaps), "Playlist style: slaps, bangers or experience")
	cmd.Flags().IntVarP(&count, "count", "n", playlist.DefaultTrackCount, fmt.Sprintf("Number of tracks (1-%d)", playlist.MaxTrackCount))
	cmd.Flags().BoolVar(&save, "save", false, "Create the playlist on the media server")
	return cmd
}

type generateOutput struct {
	Preview    *cleanup.GeneratedPlaylist `json:"preview"`
	PlaylistID string                     `json:"playlist_id,omitempty"`
}
