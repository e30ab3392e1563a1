package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information - will be set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "gobatis",
		Short: "gobatis mapping configuration tooling",
		Long: `gobatis maps object-graph operations onto parameterized SQL statements.
This tool validates and inspects mapper configurations without touching a database.`,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
