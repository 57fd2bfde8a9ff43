/*
policy.go - Eligibility and rate resolution

PURPOSE:
  Answers two questions for a transfer destination: does the F&A
  surcharge apply, and at what rate? The resolver is pure and depends
  only on the rate policy in effect; fallback-chasing across uploaded
  document variants happens in the budget package, never here.

RULES:
  - The designated indirect-cost account is never eligible for its own
    surcharge, regardless of document content
  - An account is eligible iff it appears in the MTDC-eligible set
  - A nil policy makes everything ineligible

SEE ALSO:
  - impact.go: Consumes the resolved rate
  - budget/rates.go: Normalizes uploaded documents into RatePolicy
*/
package engine

import "github.com/shopspring/decimal"

// RatePolicy is the fully-resolved indirect-cost policy in effect for a
// projection. Read-only once constructed.
type RatePolicy struct {
	// Rate is the F&A rate as a fraction (e.g., 0.276 for 27.6%).
	Rate decimal.Decimal

	// IndirectAccount receives automatic surcharges. Empty means the
	// well-known default.
	IndirectAccount AccountID

	// Eligible is the set of MTDC-eligible account ids.
	Eligible map[AccountID]bool
}

// NewRatePolicy builds a policy from a fraction rate and an eligible set.
// An empty indirect account falls back to DefaultIndirectAccount.
func NewRatePolicy(rate decimal.Decimal, indirect AccountID, eligible []AccountID) *RatePolicy {
	set := make(map[AccountID]bool, len(eligible))
	for _, a := range eligible {
		set[a] = true
	}
	return &RatePolicy{Rate: rate, IndirectAccount: indirect, Eligible: set}
}

// Indirect returns the designated indirect-cost account, applying the
// well-known fallback when the document left it unspecified.
func (p *RatePolicy) Indirect() AccountID {
	if p == nil || p.IndirectAccount == "" {
		return DefaultIndirectAccount
	}
	return p.IndirectAccount
}

// IsEligible reports whether the F&A surcharge applies to account.
// The indirect account itself is never eligible.
func (p *RatePolicy) IsEligible(account AccountID) bool {
	if p == nil {
		return false
	}
	if account == p.Indirect() {
		return false
	}
	return p.Eligible[account]
}

// RateFor returns the configured rate when account is eligible, else zero.
func (p *RatePolicy) RateFor(account AccountID) decimal.Decimal {
	if !p.IsEligible(account) {
		return decimal.Zero
	}
	return p.Rate
}
