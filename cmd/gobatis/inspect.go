package main

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dengquanbo/gobatis/internal/loader"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <config>",
	Short: "Show everything registered by a configuration",
	Long: `Load a configuration file and print the statements, result maps and
cache namespaces it registers, grouped by kind.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := buildLogger()
		if err != nil {
			return err
		}
		defer logger.Sync()

		reg, err := loader.LoadConfig(args[0], logger)
		if err != nil {
			return err
		}

		heading := color.New(color.FgCyan, color.Bold)

		statements := reg.StatementIDs()
		sort.Strings(statements)
		heading.Printf("Statements (%d)\n", len(statements))
		for _, id := range statements {
			stmt, ok := reg.Statement(id)
			if !ok {
				continue
			}
			cached := ""
			if stmt.UseCache && stmt.Cache != nil {
				cached = color.GreenString(" [cached]")
			}
			fmt.Printf("  %s  %s%s\n", stmt.CommandType, id, cached)
		}

		resultMaps := reg.ResultMapIDs()
		sort.Strings(resultMaps)
		heading.Printf("\nResult maps (%d)\n", len(resultMaps))
		for _, id := range resultMaps {
			rm, ok := reg.ResultMap(id)
			if !ok {
				continue
			}
			fmt.Printf("  %s  (%d mappings)\n", id, len(rm.ResultMappings))
		}

		namespaces := reg.CacheNamespaces()
		sort.Strings(namespaces)
		heading.Printf("\nCaches (%d)\n", len(namespaces))
		for _, ns := range namespaces {
			fmt.Printf("  %s\n", ns)
		}

		return nil
	},
}
