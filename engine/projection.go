/*
projection.go - Folding an ordered batch of transfers

PURPOSE:
  Applies a queue of transfer requests left-to-right, each step operating
  on the output of the previous one. Requests are NOT independent: a
  transfer's validity depends on the cumulative effect of everything
  before it, which is why the fold cannot be parallelized or reordered.

ALL-OR-NOTHING:
  If any request fails, the whole projection fails at that point and
  nothing is committed; the returned BatchError names the offending
  request so the caller can drop it and retry the remainder. This
  matches the conservation guarantee: a projection either produces a
  fully reconciled budget or no budget at all.

SEE ALSO:
  - ledger.go: The per-step application
*/
package engine

// ProjectionResult is the outcome of a successful batch projection.
type ProjectionResult struct {
	// Final is the budget after every request has been applied.
	Final LineItems

	// Log holds one MappingRow per request, in submission order.
	Log []MappingRow
}

// Project folds ApplyTransfer over requests in order against a clone of
// baseline. On any failure the error is a *BatchError wrapping the
// underlying cause; baseline is never mutated either way.
func Project(
	policy *RatePolicy,
	baseline LineItems,
	encumbrances LineItems,
	requests []TransferRequest,
) (*ProjectionResult, error) {
	working := baseline.Clone()
	log := make([]MappingRow, 0, len(requests))

	for i, req := range requests {
		next, row, err := ApplyTransfer(policy, working, encumbrances, req.From, req.To, req.AmountCents, req.Mode)
		if err != nil {
			return nil, &BatchError{Position: i, RequestID: req.ID, Err: err}
		}
		working = next
		log = append(log, row)
	}

	return &ProjectionResult{Final: working, Log: log}, nil
}
