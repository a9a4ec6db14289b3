package main

import (
	"fmt"

	"github.com/pscheid92/notecanvas/internal/platform/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Fprintf(cmd.OutOrStdout(), "notecanvas %s (commit %s, built %s, %s)\n",
			info.Version, info.Commit, info.BuildTime, info.GoVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
