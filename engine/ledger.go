/*
ledger.go - Applying a transfer to a budget snapshot

PURPOSE:
  Takes one validated transfer, applies the computed split to a working
  copy of the line items, and proves the conservation invariant still
  holds. The input snapshot is never mutated; failure is automatically
  non-destructive.

VALIDATION SEQUENCE (fail-fast, in order):
  1. Neither endpoint may be the indirect-cost account
  2. Both endpoints must exist in the working line items
  3. Source must differ from destination
  4. The source may not fall below its encumbered amount
  5. The source may not go negative

THE CONSERVATION CHECK:
  The sum of non-SUMMARY current budgets must be identical before and
  after every application. Transfers only touch Proposed, so this check
  is a safety net against arithmetic defects, not a business rule.

ENCUMBRANCES:
  Encumbrance amounts come from an independent read-only snapshot, not
  the working copy. An account absent from that snapshot encumbers
  nothing.

SEE ALSO:
  - impact.go: Computes the split applied here
  - projection.go: Folds this over an ordered batch
*/
package engine

// ApplyTransfer validates and applies one transfer to a clone of working,
// returning the new snapshot and its audit row. working is never mutated.
func ApplyTransfer(
	policy *RatePolicy,
	working LineItems,
	encumbrances LineItems,
	from, to AccountID,
	amountCents int64,
	mode TransferMode,
) (LineItems, MappingRow, error) {
	indirect := policy.Indirect()

	// 1. The indirect line is credited automatically, never transferred.
	if from == indirect {
		return nil, MappingRow{}, &ForbiddenIndirectTransferError{Account: from}
	}
	if to == indirect {
		return nil, MappingRow{}, &ForbiddenIndirectTransferError{Account: to}
	}

	// 2. Both endpoints must exist.
	srcIdx := working.Find(from)
	if srcIdx < 0 {
		return nil, MappingRow{}, &UnknownAccountError{Account: from, Suggestion: closestAccount(from, working.Accounts())}
	}
	dstIdx := working.Find(to)
	if dstIdx < 0 {
		return nil, MappingRow{}, &UnknownAccountError{Account: to, Suggestion: closestAccount(to, working.Accounts())}
	}

	// 3. Self-transfers are meaningless.
	if from == to {
		return nil, MappingRow{}, ErrIdenticalAccounts
	}

	impact, err := ComputeImpact(policy, to, amountCents, mode)
	if err != nil {
		return nil, MappingRow{}, err
	}

	resulting := working[srcIdx].Proposed - impact.SourceOut

	// 4. Committed funds are untouchable. Only meaningful when the
	// account actually carries an encumbrance; a plain overdraw with
	// nothing encumbered is a negative-balance failure instead.
	if enc := encumbrances.EncumbranceFor(from); enc > 0 && resulting < enc {
		return nil, MappingRow{}, &EncumbranceBreachError{Account: from, Encumbered: enc, Resulting: resulting}
	}

	// 5. No overdrafts.
	if resulting < 0 {
		return nil, MappingRow{}, &NegativeBalanceError{Account: from, Resulting: resulting}
	}

	totalBefore := working.TotalCurrent()

	next := working.Clone()
	next[srcIdx].Proposed -= impact.SourceOut
	next[dstIdx].Proposed += impact.DirectToDest

	if impact.IndirectAdded != 0 {
		idx := next.Find(indirect)
		if idx < 0 {
			// First surcharge ever routed: materialize the indirect line
			// with a zero baseline so conservation is unaffected.
			next = append(next, LineItem{
				Account:     indirect,
				Description: "Indirect Costs (F&A)",
			})
			idx = len(next) - 1
		}
		next[idx].Proposed += impact.IndirectAdded
	}

	next.recomputeChange()

	if totalAfter := next.TotalCurrent(); totalAfter != totalBefore {
		return nil, MappingRow{}, &ReconciliationError{TotalBefore: totalBefore, TotalAfter: totalAfter}
	}

	row := MappingRow{
		From:          from,
		To:            to,
		SourceOut:     impact.SourceOut,
		DirectToDest:  impact.DirectToDest,
		IndirectAdded: impact.IndirectAdded,
		Eligible:      impact.Eligible,
		Mode:          mode,
	}
	return next, row, nil
}
