// chunkctl is the command line front-end for the document chunking
// engine. It reads already-extracted document text (and optionally a
// JSON file of detected visual elements) from local files, runs the
// chunking pipeline, and writes the resulting chunks as JSON.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set by build process)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	root := &cobra.Command{
		Use:   "chunkctl",
		Short: "Partition extracted document text into retrieval-ready chunks",
		Long: `chunkctl splits extracted document text into bounded, overlapping
chunks enriched with visual context, ready for embedding and retrieval.

Input is plain text that has already been extracted from a document.
Visual elements detected during extraction can be supplied as a JSON
file and are associated with the chunks they belong to.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(chunkCmd())
	root.AddCommand(configCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
