package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codewithboateng/minepack/internal/ir"
)

// Set at build time via -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "minepack %s (report schema %s)\n", color.New(color.FgGreen, color.Bold).Sprint(Version), ir.Version)
		if GitCommit != "" {
			fmt.Fprintf(out, "  commit: %s\n", GitCommit)
		}
		if BuildDate != "" {
			fmt.Fprintf(out, "  built:  %s\n", BuildDate)
		}
	},
}

func versionString() string { return Version }
