package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "rowz",
		Short: "Declarative row transformations",
		Long: `rowz applies a configured transformation pipeline to rows.

A pipeline is a list of passes. Each pass splits, deletes, appends and
reindexes entries of a row. Pipelines are described in JSON, YAML or
msgpack files and validated before anything is applied.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(describeCmd)
}
