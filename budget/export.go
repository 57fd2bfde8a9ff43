/*
export.go - Tabular output for audit trails and budgets

PURPOSE:
  Serializes projection results for download. Amounts are rendered
  through the engine codec so exported files round-trip exactly.
*/
package budget

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/grantdesk/rebudget/engine"
)

// WriteAuditCSV writes the mapping log in application order.
func WriteAuditCSV(w io.Writer, log []engine.MappingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "source_out", "direct_to_dest", "indirect_added", "eligible", "mode"}); err != nil {
		return err
	}
	for _, row := range log {
		record := []string{
			string(row.From),
			string(row.To),
			engine.FormatCents(row.SourceOut),
			engine.FormatCents(row.DirectToDest),
			engine.FormatCents(row.IndirectAdded),
			strconv.FormatBool(row.Eligible),
			string(row.Mode),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteBudgetCSV writes a budget snapshot, one row per line item.
func WriteBudgetCSV(w io.Writer, items engine.LineItems) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"account", "description", "current", "proposed", "encumbered", "change"}); err != nil {
		return err
	}
	for _, li := range items {
		record := []string{
			string(li.Account),
			li.Description,
			engine.FormatCents(li.Current),
			engine.FormatCents(li.Proposed),
			engine.FormatCents(li.Encumbered),
			engine.FormatCents(li.Change),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
