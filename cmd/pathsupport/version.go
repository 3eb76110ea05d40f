package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pathsupport version %s\n", version)
			fmt.Fprintf(out, "  Build time: %s\n", buildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", gitCommit)
		},
	}
}
