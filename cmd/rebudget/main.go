/*
main.go - Application entry point

PURPOSE:
  The rebudget CLI. Two subcommands:

    rebudget serve    Run the HTTP API server
    rebudget project  Offline batch projection: budget + rates +
                      transfers files in, audit CSV out

CONFIGURATION:
  serve reads an optional YAML config (see config package); every value
  can be overridden with REBUDGET_-prefixed environment variables.

EXAMPLES:
  rebudget serve --config ./rebudget.yaml
  rebudget project --budget budget.csv --rates rates.json --transfers queue.json
*/
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rebudget",
	Short: "Grant rebudgeting calculator",
	Long:  "Plan budget transfers between grant line items with automatic F&A surcharge routing.",
}

func main() {
	rootCmd.AddCommand(serveCmd, projectCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
