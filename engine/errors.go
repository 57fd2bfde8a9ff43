/*
errors.go - Centralized error types for the rebudgeting engine

PURPOSE:
  All engine error types in one place for consistency and
  discoverability. Callers branch with errors.Is against the sentinels;
  the structured types carry the context needed for messages.

ERROR CATEGORIES:
  1. Request errors - Bad amounts, bad accounts, forbidden routes
  2. Balance errors - Encumbrance and overdraw violations
  3. Defects - Conservation violations (never a user error)

USAGE:
  _, _, err := engine.ApplyTransfer(...)
  if errors.Is(err, engine.ErrUnknownAccount) {
      var uae *engine.UnknownAccountError
      errors.As(err, &uae)
      fmt.Println(uae.Suggestion)
  }
*/
package engine

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when a requested amount is not a
	// positive integer number of cents.
	ErrInvalidAmount = errors.New("invalid transfer amount")

	// ErrUnknownMode is returned for a transfer mode other than
	// budget_total or direct_to_dest.
	ErrUnknownMode = errors.New("unknown transfer mode")

	// ErrForbiddenIndirectTransfer is returned when a transfer names the
	// indirect-cost account as source or destination. That line may only
	// be credited automatically.
	ErrForbiddenIndirectTransfer = errors.New("direct transfer touching the indirect-cost account")

	// ErrUnknownAccount is returned when source or destination is not in
	// the working line items.
	ErrUnknownAccount = errors.New("unknown account")

	// ErrIdenticalAccounts is returned when source equals destination.
	ErrIdenticalAccounts = errors.New("source and destination are the same account")

	// ErrEncumbranceBreach is returned when the post-transfer source
	// balance would dip below already-committed funds.
	ErrEncumbranceBreach = errors.New("transfer would dip below encumbered funds")

	// ErrNegativeBalance is returned when the post-transfer source
	// balance would go negative.
	ErrNegativeBalance = errors.New("transfer would overdraw the source account")

	// ErrReconciliationFailure indicates the conservation safety net
	// fired. This is a defect, not a user error.
	ErrReconciliationFailure = errors.New("budget total changed during transfer")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAmountError reports a non-positive requested amount.
type InvalidAmountError struct {
	AmountCents int64
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid transfer amount %s: must be a positive amount", FormatCents(e.AmountCents))
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// ForbiddenIndirectTransferError names the offending account.
type ForbiddenIndirectTransferError struct {
	Account AccountID
}

func (e *ForbiddenIndirectTransferError) Error() string {
	return fmt.Sprintf("account %s is the indirect-cost line and cannot be transferred directly", e.Account)
}

func (e *ForbiddenIndirectTransferError) Unwrap() error { return ErrForbiddenIndirectTransfer }

// UnknownAccountError carries a nearest-match suggestion so callers can
// surface "did you mean" hints for typos in uploaded documents.
type UnknownAccountError struct {
	Account    AccountID
	Suggestion AccountID
}

func (e *UnknownAccountError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("account %s not found in budget (closest match: %s)", e.Account, e.Suggestion)
	}
	return fmt.Sprintf("account %s not found in budget", e.Account)
}

func (e *UnknownAccountError) Unwrap() error { return ErrUnknownAccount }

// EncumbranceBreachError reports how far the transfer would cut into
// committed funds.
type EncumbranceBreachError struct {
	Account    AccountID
	Encumbered int64
	Resulting  int64
}

func (e *EncumbranceBreachError) Error() string {
	return fmt.Sprintf("account %s would fall to %s, below its encumbered %s",
		e.Account, FormatCents(e.Resulting), FormatCents(e.Encumbered))
}

func (e *EncumbranceBreachError) Unwrap() error { return ErrEncumbranceBreach }

// NegativeBalanceError reports the overdrawn result.
type NegativeBalanceError struct {
	Account   AccountID
	Resulting int64
}

func (e *NegativeBalanceError) Error() string {
	return fmt.Sprintf("account %s would be overdrawn to %s", e.Account, FormatCents(e.Resulting))
}

func (e *NegativeBalanceError) Unwrap() error { return ErrNegativeBalance }

// ReconciliationError reports a conservation violation. Should be
// unreachable given correct arithmetic.
type ReconciliationError struct {
	TotalBefore int64
	TotalAfter  int64
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("budget total drifted from %s to %s during transfer",
		FormatCents(e.TotalBefore), FormatCents(e.TotalAfter))
}

func (e *ReconciliationError) Unwrap() error { return ErrReconciliationFailure }

// BatchError identifies which request sank a projection. Position is the
// zero-based index in submission order.
type BatchError struct {
	Position  int
	RequestID string
	Err       error
}

func (e *BatchError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("transfer %s (position %d): %v", e.RequestID, e.Position+1, e.Err)
	}
	return fmt.Sprintf("transfer at position %d: %v", e.Position+1, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than an engine defect.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrUnknownMode) ||
		errors.Is(err, ErrForbiddenIndirectTransfer) ||
		errors.Is(err, ErrUnknownAccount) ||
		errors.Is(err, ErrIdenticalAccounts) ||
		errors.Is(err, ErrEncumbranceBreach) ||
		errors.Is(err, ErrNegativeBalance)
}

// closestAccount returns the candidate with the smallest edit distance to
// target, for UnknownAccountError suggestions. Empty when nothing is
// remotely close.
func closestAccount(target AccountID, candidates []AccountID) AccountID {
	best := AccountID("")
	bestDist := -1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(string(target), string(c))
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	// A suggestion further than half the target length is noise.
	if bestDist < 0 || bestDist > (len(target)+1)/2 {
		return ""
	}
	return best
}
