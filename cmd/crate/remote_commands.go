package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/cleanup"
)

func newRemotePlaylistsCommand(ctx *commandContext) *cobra.Command {
	var paths []string
	var deleteAll, askPassword, rescan bool

	cmd := &cobra.Command{
		Use:   "remote-playlists",
		Short: "List or delete .m3u playlist files on the media server host",
		Long: "Connect to the media server host over SSH and list playlist files under\n" +
			"the music path. --delete removes the named files, --delete-all removes\n" +
			"every file found. The media server only forgets the playlists after a\n" +
			"library rescan; pass --rescan to start one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(paths) > 0 && deleteAll {
				return catalog.Configurationf("--delete and --delete-all cannot be combined")
			}
			password, err := promptPassword(cmd, askPassword)
			if err != nil {
				return err
			}
			return ctx.withApp(func(a *app) error {
				if err := ctx.connectRemote(cmd.Context(), a, password); err != nil {
					return err
				}
				listing, err := a.cleanup.ListPlaylistFiles(cmd.Context())
				if err != nil {
					return err
				}
				out := remoteOutput{Listing: listing}

				targets := paths
				if deleteAll {
					targets = listing.Files
				}
				if len(targets) > 0 {
					res, err := a.cleanup.DeletePlaylistFiles(cmd.Context(), targets)
					if err != nil {
						return err
					}
					out.Deleted = &res
				}
				if rescan && out.Deleted != nil && out.Deleted.Succeeded > 0 {
					if err := a.cleanup.Rescan(cmd.Context()); err != nil {
						return err
					}
					out.RescanStarted = true
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				printRemote(cmd, out)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&paths, "delete", nil, "Delete this playlist file (repeatable)")
	cmd.Flags().BoolVar(&deleteAll, "delete-all", false, "Delete every playlist file found")
	cmd.Flags().BoolVar(&askPassword, "ask-password", false, "Prompt for the SSH password")
	cmd.Flags().BoolVar(&rescan, "rescan", false, "Start a library rescan after deleting")
	return cmd
}

type remoteOutput struct {
	Listing       *cleanup.PlaylistFiles `json:"listing"`
	Deleted       *batch.Result          `json:"deleted,omitempty"`
	RescanStarted bool                   `json:"rescan_started"`
}

func printRemote(cmd *cobra.Command, out remoteOutput) {
	w := cmd.OutOrStdout()
	l := out.Listing
	fmt.Fprintf(w, "Connected as %s; %s is writable: %s\n", l.User, l.Root, yesNo(l.Writable))
	if len(l.Files) == 0 {
		fmt.Fprintln(w, "No playlist files found.")
	} else {
		rows := make([][]string, 0, len(l.Files))
		for _, f := range l.Files {
			rows = append(rows, []string{f})
		}
		printTable(cmd, []string{"Playlist file"}, rows, nil)
	}
	if out.Deleted == nil {
		return
	}
	fmt.Fprintf(w, "Deleted %d files, %d failed.\n", out.Deleted.Succeeded, out.Deleted.Failed())
	printItemErrors(cmd, out.Deleted.Errors)
	if out.RescanStarted {
		fmt.Fprintln(w, "Library rescan started.")
	} else if out.Deleted.Succeeded > 0 {
		fmt.Fprintln(w, "Run `crate rescan` so the media server drops the deleted playlists.")
	}
}

func newRescanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rescan",
		Short: "Ask the media server to rescan its libraries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if err := a.cleanup.Rescan(cmd.Context()); err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"status": "started"})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Library rescan started.")
				return nil
			})
		},
	}
}
