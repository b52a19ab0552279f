package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sydlexius/crate/internal/batch"
	"github.com/sydlexius/crate/internal/catalog"
	"github.com/sydlexius/crate/internal/cleanup"
	"github.com/sydlexius/crate/internal/dedupe"
	"github.com/sydlexius/crate/internal/logging"
)

// withApp runs fn against a freshly wired app that logs to stderr.
func (c *commandContext) withApp(fn func(a *app) error) error {
	a, err := c.newApp(logging.ConsoleStderr)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func newDuplicatesCommand(ctx *commandContext) *cobra.Command {
	var threshold int
	var rename, merge bool

	cmd := &cobra.Command{
		Use:   "duplicates",
		Short: "Find groups of artist records that look like the same artist",
		Long: "Find groups of artist records that look like the same artist.\n\n" +
			"--rename gives every member the group's canonical name. --merge folds\n" +
			"every group into the member with the most tracks.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				scan, err := a.cleanup.ScanDuplicates(cmd.Context(), threshold)
				if err != nil {
					return err
				}

				out := duplicatesOutput{Scan: scan}
				for _, g := range scan.Results {
					switch {
					case rename:
						res, err := a.cleanup.ApplyRename(cmd.Context(), scan.SessionID, g.Index, "")
						if err != nil {
							return err
						}
						out.Renames = append(out.Renames, res)
					case merge:
						res, err := a.cleanup.MergeGroup(cmd.Context(), scan.SessionID, g.Index, "")
						if err != nil {
							return err
						}
						out.Merges = append(out.Merges, res)
					}
				}

				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				printGroups(cmd, scan.Results)
				printRenames(cmd, out.Renames)
				printMerges(cmd, out.Merges)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Similarity threshold 60-95 (default from config)")
	cmd.Flags().BoolVar(&rename, "rename", false, "Rename every group to its canonical name")
	cmd.Flags().BoolVar(&merge, "merge", false, "Merge every group into its largest member")
	cmd.MarkFlagsMutuallyExclusive("rename", "merge")
	return cmd
}

type duplicatesOutput struct {
	Scan    *cleanup.Scan[[]cleanup.DuplicateGroup] `json:"scan"`
	Renames []batch.Result                          `json:"renames,omitempty"`
	Merges  []*cleanup.MergeResult                  `json:"merges,omitempty"`
}

func newMergeCommand(ctx *commandContext) *cobra.Command {
	var threshold, group int
	var winner string

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge one duplicate group into a single artist",
		Long: "Scan for duplicates and merge the numbered group. Tracks the winner\n" +
			"already has are deleted from the losers, the rest are moved to the\n" +
			"winner and the losing artist records are deleted. Run a library rescan\n" +
			"afterwards.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				scan, err := a.cleanup.ScanDuplicates(cmd.Context(), threshold)
				if err != nil {
					return err
				}
				if group < 0 || group >= len(scan.Results) {
					return catalog.Configurationf("group %d does not exist; the scan found %d groups", group, len(scan.Results))
				}
				res, err := a.cleanup.MergeGroup(cmd.Context(), scan.SessionID, group, winner)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, res)
				}
				printMerges(cmd, []*cleanup.MergeResult{res})
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Similarity threshold 60-95 (default from config)")
	cmd.Flags().IntVarP(&group, "group", "g", 0, "Group number from `crate duplicates`")
	cmd.Flags().StringVarP(&winner, "winner", "w", "", "Artist id to keep (default: member with most tracks)")
	return cmd
}

func newPairsCommand(ctx *commandContext) *cobra.Command {
	var threshold int
	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "List every pair of similar artist names with the reason they match",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				scan, err := a.cleanup.ScanPairs(cmd.Context(), threshold)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, scan)
				}
				printPairs(cmd, scan.Results)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Similarity threshold 70-99 (default from config)")
	return cmd
}

func printGroups(cmd *cobra.Command, groups []cleanup.DuplicateGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No duplicate artists found.")
		return
	}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		members := make([]string, len(g.Members))
		for i, m := range g.Members {
			members[i] = fmt.Sprintf("%s [%s, %d tracks]", m.Name, m.ID, m.TrackCount)
		}
		rows = append(rows, []string{
			strconv.Itoa(g.Index),
			g.CanonicalName,
			strings.Join(members, "\n"),
			fmt.Sprintf("%.0f", g.Score),
			strconv.Itoa(g.TotalTracks()),
		})
	}
	printTable(cmd, []string{"#", "Canonical", "Members", "Score", "Tracks"}, rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight})
}

func printPairs(cmd *cobra.Command, pairs []dedupe.Pair) {
	if len(pairs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No similar pairs found.")
		return
	}
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{p.A.Name, p.B.Name, fmt.Sprintf("%.0f", p.Score), p.Reason})
	}
	printTable(cmd, []string{"Artist", "Artist", "Score", "Reason"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft})
}

func printRenames(cmd *cobra.Command, results []batch.Result) {
	if len(results) == 0 {
		return
	}
	var total batch.Result
	for _, r := range results {
		total.Append(r)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %d artists, %d failed.\n", total.Succeeded, total.Failed())
	printItemErrors(cmd, total.Errors)
}

func printMerges(cmd *cobra.Command, results []*cleanup.MergeResult) {
	if len(results) == 0 {
		return
	}
	rows := [][]string{}
	var errs []batch.ItemError
	for _, res := range results {
		for _, rep := range res.Reports {
			rows = append(rows, []string{
				rep.Winner.Name,
				fmt.Sprintf("%s [%s]", rep.Loser.Name, rep.Loser.ID),
				strconv.Itoa(rep.DeletedDuplicates),
				strconv.Itoa(rep.Reassigned),
				yesNo(rep.LoserDeleted),
			})
			errs = append(errs, rep.Errors...)
		}
	}
	printTable(cmd, []string{"Kept", "Merged", "Duplicates deleted", "Tracks moved", "Artist deleted"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft})
	printItemErrors(cmd, errs)
	fmt.Fprintln(cmd.OutOrStdout(), "Run `crate rescan` so the media server picks up the changes.")
}

func printItemErrors(cmd *cobra.Command, errs []batch.ItemError) {
	for _, e := range errs {
		fmt.Fprintf(cmd.ErrOrStderr(), "  failed: %s\n", e.Error())
	}
}
