package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chunkctl version %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Build time: %s\n", BuildTime)
			fmt.Fprintf(cmd.OutOrStdout(), "Git commit: %s\n", GitCommit)
		},
	}
}
