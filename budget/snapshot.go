/*
Package budget provides the domain glue around the rebudgeting engine.

PURPOSE:
  Everything between uploaded documents and the pure engine lives here:
  snapshot ingestion (JSON and CSV), rate-document normalization across
  historical schema variants, the pending transfer queue, personnel cost
  planning, and audit/export formatting.

INGESTION CONTRACT:
  Uploaded documents are messy: amounts arrive as numbers or decorated
  strings, columns are named inconsistently, aggregate rows appear mid
  sheet. This package normalizes all of that into canonical
  engine.LineItems; the engine itself never chases fallbacks.

SEE ALSO:
  - rates.go: Rate-policy document normalization
  - queue.go: Pending transfer queue
  - personnel.go: Personnel cost projection and burn schedule
  - export.go: CSV output
*/
package budget

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/grantdesk/rebudget/engine"
)

// =============================================================================
// FLEXIBLE AMOUNTS - Numbers or decorated strings, cents either way
// =============================================================================

// flexCents unmarshals a JSON number or decimal string into integer
// cents via the engine codec.
type flexCents int64

func (f *flexCents) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexCents(engine.ParseCents(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexCents(engine.CentsFromFloat(n))
		return nil
	}
	if string(data) == "null" {
		*f = 0
		return nil
	}
	return fmt.Errorf("amount %s is neither a number nor a decimal string", data)
}

// =============================================================================
// JSON SNAPSHOT
// =============================================================================

// snapshotRowJSON accepts the field names seen across uploaded budget
// documents. Account and description carry a couple of aliases each.
type snapshotRowJSON struct {
	Account     string `json:"account"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Name        string `json:"name"`

	Current    *flexCents `json:"current"`
	Proposed   *flexCents `json:"proposed"`
	Encumbered *flexCents `json:"encumbrance"`
}

type snapshotDocJSON struct {
	LineItems []snapshotRowJSON `json:"line_items"`
}

// ParseSnapshotJSON reads a budget snapshot from JSON: either a bare
// array of rows or an object with a line_items field. Proposed defaults
// to the current budget when omitted.
func ParseSnapshotJSON(r io.Reader) (engine.LineItems, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var rows []snapshotRowJSON
	if err := json.Unmarshal(raw, &rows); err != nil {
		var doc snapshotDocJSON
		if err2 := json.Unmarshal(raw, &doc); err2 != nil {
			return nil, fmt.Errorf("snapshot is neither a row array nor a document: %w", err)
		}
		rows = doc.LineItems
	}

	items := make(engine.LineItems, 0, len(rows))
	for _, row := range rows {
		account := row.Account
		if account == "" {
			account = row.Code
		}
		if account == "" {
			log.Warn("skipping snapshot row with no account id")
			continue
		}
		description := row.Description
		if description == "" {
			description = row.Name
		}

		li := engine.LineItem{
			Account:     engine.AccountID(account),
			Description: description,
		}
		if row.Current != nil {
			li.Current = int64(*row.Current)
		}
		if row.Proposed != nil {
			li.Proposed = int64(*row.Proposed)
		} else {
			li.Proposed = li.Current
		}
		if row.Encumbered != nil {
			li.Encumbered = int64(*row.Encumbered)
		}
		li.Change = li.Proposed - li.Current
		items = append(items, li)
	}

	if err := rejectDuplicates(items); err != nil {
		return nil, err
	}
	return items, nil
}

// =============================================================================
// CSV SNAPSHOT
// =============================================================================

// csvHeaderAliases maps the column spellings seen in real exports onto
// canonical fields.
var csvHeaderAliases = map[string]string{
	"account":         "account",
	"account id":      "account",
	"account code":    "account",
	"code":            "account",
	"description":     "description",
	"title":           "description",
	"category":        "description",
	"current":         "current",
	"current budget":  "current",
	"budget":          "current",
	"proposed":        "proposed",
	"proposed budget": "proposed",
	"revised":         "proposed",
	"encumbrance":     "encumbrance",
	"encumbered":      "encumbrance",
	"committed":       "encumbrance",
}

// ParseSnapshotCSV reads a budget snapshot from CSV with a header row.
// Unknown columns are ignored; rows with no account id are skipped.
func ParseSnapshotCSV(r io.Reader) (engine.LineItems, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		if canon, ok := csvHeaderAliases[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, taken := cols[canon]; !taken {
				cols[canon] = i
			}
		}
	}
	if _, ok := cols["account"]; !ok {
		return nil, fmt.Errorf("CSV has no recognizable account column (header: %v)", header)
	}
	if _, ok := cols["current"]; !ok {
		return nil, fmt.Errorf("CSV has no recognizable current-budget column (header: %v)", header)
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var items engine.LineItems
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}

		account := field(record, "account")
		if account == "" {
			continue
		}

		li := engine.LineItem{
			Account:     engine.AccountID(account),
			Description: field(record, "description"),
			Current:     engine.ParseCents(field(record, "current")),
			Encumbered:  engine.ParseCents(field(record, "encumbrance")),
		}
		if proposed := field(record, "proposed"); proposed != "" {
			li.Proposed = engine.ParseCents(proposed)
		} else {
			li.Proposed = li.Current
		}
		li.Change = li.Proposed - li.Current
		items = append(items, li)
	}

	if err := rejectDuplicates(items); err != nil {
		return nil, err
	}
	return items, nil
}

// rejectDuplicates fails ingestion when a non-SUMMARY account id appears
// twice; downstream lookups assume uniqueness.
func rejectDuplicates(items engine.LineItems) error {
	seen := make(map[engine.AccountID]bool, len(items))
	for _, li := range items {
		if li.Account == engine.SummaryAccount {
			continue
		}
		if seen[li.Account] {
			return fmt.Errorf("duplicate account %s in snapshot", li.Account)
		}
		seen[li.Account] = true
	}
	return nil
}
