package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/classify"
	"github.com/sydlexius/crate/internal/cleanup"
)

func newJunkCommand(ctx *commandContext) *cobra.Command {
	var del bool
	var ids []string

	cmd := &cobra.Command{
		Use:   "junk",
		Short: "Find artist records that are not real artists",
		Long: "Find artist records whose names look like catalog numbers, labels or\n" +
			"other junk. With --delete every flagged artist is deleted, or only the\n" +
			"ones named with --id.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				scan, err := a.cleanup.ScanJunk(cmd.Context())
				if err != nil {
					return err
				}
				out := junkOutput{Scan: scan}
				if del && len(scan.Results) > 0 {
					selected := ids
					if len(selected) == 0 {
						for _, r := range scan.Results {
							selected = append(selected, r.Artist.ID)
						}
					}
					res, err := a.cleanup.DeleteJunk(cmd.Context(), scan.SessionID, selected)
					if err != nil {
						return err
					}
					out.Deleted = &res
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				printJunk(cmd, scan.Results)
				if out.Deleted != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d artists, %d failed.\n", out.Deleted.Succeeded, out.Deleted.Failed())
					printItemErrors(cmd, out.Deleted.Errors)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&del, "delete", false, "Delete the flagged artists")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "Only delete these artist ids (repeatable)")
	return cmd
}

type junkOutput struct {
	Scan    *cleanup.Scan[[]classify.Result] `json:"scan"`
	Deleted *batch.Result                    `json:"deleted,omitempty"`
}

func printJunk(cmd *cobra.Command, results []classify.Result) {
	if len(results) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No junk artists found.")
		return
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{r.Artist.ID, r.Artist.Name, fmt.Sprint(r.Artist.TrackCount), strings.Join(r.Reasons, ", ")})
	}
	printTable(cmd, []string{"ID", "Name", "Tracks", "Reasons"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "classify NAME...",
		Short: "Show which junk rules an artist name trips",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			whitelist, err := classify.LoadWhitelist(cfg.Classify.WhitelistFile)
			if err != nil {
				return err
			}
			engine := classify.NewEngine(append(whitelist, cfg.Classify.Whitelist...)...)

			type verdict struct {
				Name        string   `json:"name"`
				Whitelisted bool     `json:"whitelisted"`
				Reasons     []string `json:"reasons"`
			}
			verdicts := make([]verdict, 0, len(args))
			for _, name := range args {
				reasons := engine.Classify(name)
				if reasons == nil {
					reasons = []string{}
				}
				verdicts = append(verdicts, verdict{Name: name, Whitelisted: engine.Whitelisted(name), Reasons: reasons})
			}

			if ctx.jsonOutput() {
				return writeJSON(cmd, verdicts)
			}
			rows := make([][]string, 0, len(verdicts))
			for _, v := range verdicts {
				reasons := strings.Join(v.Reasons, ", ")
				if reasons == "" {
					reasons = "-"
				}
				rows = append(rows, []string{v.Name, yesNo(v.Whitelisted), reasons})
			}
			printTable(cmd, []string{"Name", "Whitelisted", "Reasons"}, rows, nil)
			return nil
		},
	}
}
