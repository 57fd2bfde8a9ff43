/*
Package engine provides the core rebudgeting calculation engine.

PURPOSE:
  This package contains the pure types and algorithms for grant budget
  rebudgeting: moving money between chart-of-accounts line items while
  automatically routing indirect-cost (F&A) surcharges and preserving
  the budget total.

KEY CONCEPTS IN THIS FILE (types.go):
  - LineItem: One chart-of-accounts row with baseline and working amounts
  - LineItems: A budget snapshot (ordered collection of line items)
  - TransferRequest: One user-requested reallocation
  - MappingRow: The audit record produced by one applied transfer

DESIGN PRINCIPLES:
  1. Integer cents: All arithmetic is int64 cents; decimals appear only
     at the parse/format boundary and in the single rate-rounding step
  2. Immutability: Engine calls never mutate their inputs; they clone
     and return new snapshots
  3. Conservation: The sum of non-SUMMARY current budgets is invariant
     across every transfer
  4. Purity: No I/O, no clocks, no goroutines; same inputs, same outputs

USAGE:
  impact, err := engine.ComputeImpact(policy, "7200", 1000000, engine.ModeDirectToDest)
  next, row, err := engine.ApplyTransfer(policy, items, items, "6000", "7200", 1000000, engine.ModeDirectToDest)

SEE ALSO:
  - money.go: Cents codec (decimal string <-> integer cents)
  - policy.go: Eligibility and rate resolution
  - impact.go: The three-way transfer split
  - ledger.go: Applying a transfer to a snapshot
  - projection.go: Folding an ordered batch of transfers
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// ACCOUNTS
// =============================================================================

// AccountID identifies one chart-of-accounts entry within a snapshot.
type AccountID string

const (
	// SummaryAccount is the reserved aggregate row. It is carried through
	// snapshots for display but excluded from all arithmetic, lookups, and
	// conservation totals.
	SummaryAccount AccountID = "SUMMARY"

	// DefaultIndirectAccount is the fallback destination for automatic
	// F&A surcharges when the rate document does not designate one.
	DefaultIndirectAccount AccountID = "F&A"
)

// =============================================================================
// LINE ITEM - One chart-of-accounts row
// =============================================================================

// LineItem is one budget row. Current is the immutable baseline; Proposed
// is the working amount that transfers move; Change is always derived as
// Proposed - Current. All amounts are integer cents.
type LineItem struct {
	Account     AccountID
	Description string
	Current     int64
	Proposed    int64
	Encumbered  int64
	Change      int64
}

// ChangeRatio returns Change as a fraction of the baseline, or zero when
// the baseline is zero (e.g., an auto-created indirect line).
func (li LineItem) ChangeRatio() decimal.Decimal {
	if li.Current == 0 {
		return decimal.Zero
	}
	return decimal.New(li.Change, -2).Div(decimal.New(li.Current, -2))
}

// =============================================================================
// LINE ITEMS - A budget snapshot
// =============================================================================

// LineItems is an ordered budget snapshot. Order is preserved through
// transfers so output rows line up with the uploaded document.
type LineItems []LineItem

// Clone returns an independent copy. LineItem is a value type, so a slice
// copy is a deep copy.
func (ls LineItems) Clone() LineItems {
	out := make(LineItems, len(ls))
	copy(out, ls)
	return out
}

// Find returns the index of the non-SUMMARY row for account, or -1.
// The SUMMARY row is invisible to transfer arithmetic.
func (ls LineItems) Find(account AccountID) int {
	for i, li := range ls {
		if li.Account == SummaryAccount {
			continue
		}
		if li.Account == account {
			return i
		}
	}
	return -1
}

// Accounts lists the non-SUMMARY account ids in snapshot order.
func (ls LineItems) Accounts() []AccountID {
	var out []AccountID
	for _, li := range ls {
		if li.Account == SummaryAccount {
			continue
		}
		out = append(out, li.Account)
	}
	return out
}

// TotalCurrent sums the baseline budgets of all non-SUMMARY rows.
// This total is the conserved quantity.
func (ls LineItems) TotalCurrent() int64 {
	var total int64
	for _, li := range ls {
		if li.Account == SummaryAccount {
			continue
		}
		total += li.Current
	}
	return total
}

// TotalProposed sums the working budgets of all non-SUMMARY rows.
func (ls LineItems) TotalProposed() int64 {
	var total int64
	for _, li := range ls {
		if li.Account == SummaryAccount {
			continue
		}
		total += li.Proposed
	}
	return total
}

// EncumbranceFor looks up the encumbered amount for account. Missing
// accounts encumber nothing. Used against the independent encumbrance
// snapshot, never the working copy.
func (ls LineItems) EncumbranceFor(account AccountID) int64 {
	if i := ls.Find(account); i >= 0 {
		return ls[i].Encumbered
	}
	return 0
}

// recomputeChange rederives every row's Change from Proposed - Current.
func (ls LineItems) recomputeChange() {
	for i := range ls {
		ls[i].Change = ls[i].Proposed - ls[i].Current
	}
}

// =============================================================================
// TRANSFER REQUEST - One queued reallocation
// =============================================================================

// TransferRequest is one user-requested reallocation. Immutable once
// queued; an ordered slice of these is the unit of work for Project.
type TransferRequest struct {
	ID          string
	From        AccountID
	To          AccountID
	AmountCents int64
	Mode        TransferMode
}

// =============================================================================
// MAPPING ROW - Audit record of one applied transfer
// =============================================================================

// MappingRow records the computed outcome of one applied transfer.
// Exactly one row is produced per applied request, in application order;
// together they form the audit trail.
type MappingRow struct {
	From          AccountID
	To            AccountID
	SourceOut     int64
	DirectToDest  int64
	IndirectAdded int64
	Eligible      bool
	Mode          TransferMode
}
