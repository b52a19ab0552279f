package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sydlexius/crate/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "crate %s (commit %s, built %s, %s)\n",
				version.Version, version.Commit, version.Date, runtime.Version())
		},
	}
}
