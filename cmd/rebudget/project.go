package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/grantdesk/rebudget/budget"
	"github.com/grantdesk/rebudget/engine"
)

var (
	flagBudget       string
	flagEncumbrances string
	flagRates        string
	flagTransfers    string
	flagFinalOut     string
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project a transfer batch offline and print the audit trail",
	Long: "Reads a budget snapshot, a rate document, and an ordered transfer batch, " +
		"applies the batch all-or-nothing, and writes the audit CSV to stdout.",
	RunE: runProject,
}

func init() {
	projectCmd.Flags().StringVarP(&flagBudget, "budget", "b", "", "Budget snapshot file (.json or .csv)")
	projectCmd.Flags().StringVarP(&flagRates, "rates", "r", "", "Rate policy document (.json)")
	projectCmd.Flags().StringVarP(&flagTransfers, "transfers", "t", "", "Ordered transfer batch (.json)")
	projectCmd.Flags().StringVarP(&flagEncumbrances, "encumbrances", "e", "", "Independent encumbrance snapshot (optional)")
	projectCmd.Flags().StringVarP(&flagFinalOut, "final", "f", "", "Also write the final budget CSV to this path")
	projectCmd.MarkFlagRequired("budget")
	projectCmd.MarkFlagRequired("rates")
	projectCmd.MarkFlagRequired("transfers")
}

func runProject(cmd *cobra.Command, args []string) error {
	items, err := readSnapshot(flagBudget)
	if err != nil {
		return err
	}

	encumbrances := items
	if flagEncumbrances != "" {
		if encumbrances, err = readSnapshot(flagEncumbrances); err != nil {
			return err
		}
	}

	ratesFile, err := os.Open(flagRates)
	if err != nil {
		return err
	}
	defer ratesFile.Close()
	policy, err := budget.ParseRateDocument(ratesFile)
	if err != nil {
		return err
	}

	transfersFile, err := os.Open(flagTransfers)
	if err != nil {
		return err
	}
	defer transfersFile.Close()
	requests, err := budget.ParseTransfersJSON(transfersFile)
	if err != nil {
		return err
	}

	result, err := engine.Project(policy, items, encumbrances, requests)
	if err != nil {
		return fmt.Errorf("projection rejected: %w", err)
	}

	log.Infof("applied %d transfers, total %s conserved",
		len(result.Log), engine.FormatCents(result.Final.TotalCurrent()))

	if err := budget.WriteAuditCSV(os.Stdout, result.Log); err != nil {
		return err
	}

	if flagFinalOut != "" {
		out, err := os.Create(flagFinalOut)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := budget.WriteBudgetCSV(out, result.Final); err != nil {
			return err
		}
	}
	return nil
}

func readSnapshot(path string) (engine.LineItems, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return budget.ParseSnapshotCSV(f)
	}
	return budget.ParseSnapshotJSON(f)
}
