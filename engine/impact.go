/*
impact.go - The three-way transfer split

PURPOSE:
  Given a requested amount, a transfer mode, and the resolved
  eligibility/rate, computes how much leaves the source, how much lands
  at the destination, and how much is routed to the indirect-cost line.

THE TWO MODES:
  budget_total:
    The amount is the TOTAL debited from the source. For an eligible
    destination at rate r, the direct portion is amount / (1 + r),
    rounded once; the indirect portion is the exact remainder. Source
    out is pinned to the requested amount.

  direct_to_dest:
    The amount is what the destination should RECEIVE. For an eligible
    destination, the surcharge is amount * r, rounded once; source out
    is the sum. Direct-to-destination is pinned to the requested amount.

ROUNDING:
  Exactly one rounding step per computation, half away from zero, at the
  single division or multiplication. Rounding is never accumulated
  across operations, so audit rows always sum exactly.

SEE ALSO:
  - policy.go: Eligibility and rate resolution
  - ledger.go: Applies the computed split to a snapshot
*/
package engine

import "github.com/shopspring/decimal"

// =============================================================================
// TRANSFER MODE
// =============================================================================

// TransferMode selects how the requested amount is interpreted.
type TransferMode string

const (
	// ModeBudgetTotal: the amount is the total to debit from the source.
	ModeBudgetTotal TransferMode = "budget_total"

	// ModeDirectToDest: the amount is what the destination receives.
	ModeDirectToDest TransferMode = "direct_to_dest"
)

// =============================================================================
// IMPACT - Computed three-way split
// =============================================================================

// Impact is the computed split for one transfer. Always satisfies
// SourceOut == DirectToDest + IndirectAdded.
type Impact struct {
	SourceOut     int64
	DirectToDest  int64
	IndirectAdded int64
	Eligible      bool
}

// ComputeImpact resolves eligibility for the destination and computes the
// three-way split for amountCents under mode. amountCents must be a
// positive integer number of cents.
func ComputeImpact(policy *RatePolicy, dest AccountID, amountCents int64, mode TransferMode) (Impact, error) {
	if amountCents <= 0 {
		return Impact{}, &InvalidAmountError{AmountCents: amountCents}
	}

	eligible := policy.IsEligible(dest)
	rate := policy.RateFor(dest)
	amount := decimal.NewFromInt(amountCents)

	switch mode {
	case ModeBudgetTotal:
		if !eligible {
			return Impact{SourceOut: amountCents, DirectToDest: amountCents}, nil
		}
		// direct = amount / (1 + r), one rounding step; indirect is the
		// exact remainder so the split always sums to the request.
		direct := amount.Div(decimal.NewFromInt(1).Add(rate)).Round(0).IntPart()
		return Impact{
			SourceOut:     amountCents,
			DirectToDest:  direct,
			IndirectAdded: amountCents - direct,
			Eligible:      true,
		}, nil

	case ModeDirectToDest:
		if !eligible {
			return Impact{SourceOut: amountCents, DirectToDest: amountCents}, nil
		}
		indirect := amount.Mul(rate).Round(0).IntPart()
		return Impact{
			SourceOut:     amountCents + indirect,
			DirectToDest:  amountCents,
			IndirectAdded: indirect,
			Eligible:      true,
		}, nil

	default:
		return Impact{}, ErrUnknownMode
	}
}
