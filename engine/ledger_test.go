package engine_test

import (
	"errors"
	"testing"

	"github.com/grantdesk/rebudget/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================
// Note: fnaPolicy is defined in impact_test.go

func grantBudget() engine.LineItems {
	return engine.LineItems{
		{Account: "6001", Description: "Senior Personnel", Current: 12000000, Proposed: 12000000},
		{Account: "6002", Description: "Other Personnel", Current: 4000000, Proposed: 4000000},
		{Account: "6100", Description: "Fringe Benefits", Current: 3000000, Proposed: 3000000},
		{Account: "6300", Description: "Travel", Current: 500000, Proposed: 500000},
		{Account: "6400", Description: "Materials and Supplies", Current: 800000, Proposed: 800000},
		{Account: "7000", Description: "Equipment", Current: 2500000, Proposed: 2500000, Encumbered: 2000000},
		{Account: "SUMMARY", Description: "Total Direct Costs", Current: 22800000, Proposed: 22800000},
	}
}

func encumbranceView() engine.LineItems {
	return grantBudget()
}

// =============================================================================
// APPLICATION
// =============================================================================

func TestApplyTransfer_EligibleDestination(t *testing.T) {
	// GIVEN: $10,000.00 direct to an eligible destination at 27.6%
	items := grantBudget()
	next, row, err := engine.ApplyTransfer(fnaPolicy(), items, encumbranceView(),
		"6001", "6300", 1000000, engine.ModeDirectToDest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: Source debited total, destination credited direct, surcharge routed
	src := next[next.Find("6001")]
	if src.Proposed != 12000000-1276000 {
		t.Errorf("source proposed = %d, want %d", src.Proposed, 12000000-1276000)
	}
	if src.Change != -1276000 {
		t.Errorf("source change = %d, want -1276000", src.Change)
	}

	dst := next[next.Find("6300")]
	if dst.Proposed != 500000+1000000 {
		t.Errorf("destination proposed = %d, want 1500000", dst.Proposed)
	}

	idc := next.Find(engine.DefaultIndirectAccount)
	if idc < 0 {
		t.Fatal("indirect line should have been created")
	}
	if next[idc].Current != 0 {
		t.Errorf("auto-created indirect line must have zero baseline, got %d", next[idc].Current)
	}
	if next[idc].Proposed != 276000 {
		t.Errorf("indirect proposed = %d, want 276000", next[idc].Proposed)
	}

	if row.SourceOut != 1276000 || row.DirectToDest != 1000000 || row.IndirectAdded != 276000 {
		t.Errorf("mapping row amounts wrong: %+v", row)
	}
	if !row.Eligible || row.Mode != engine.ModeDirectToDest {
		t.Errorf("mapping row metadata wrong: %+v", row)
	}
}

func TestApplyTransfer_ExistingIndirectLineCredited(t *testing.T) {
	items := append(grantBudget(), engine.LineItem{
		Account: engine.DefaultIndirectAccount, Description: "Indirect Costs (F&A)",
		Current: 1000000, Proposed: 1000000,
	})

	next, _, err := engine.ApplyTransfer(fnaPolicy(), items, encumbranceView(),
		"6001", "6300", 1000000, engine.ModeDirectToDest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	idc := next[next.Find(engine.DefaultIndirectAccount)]
	if idc.Proposed != 1276000 {
		t.Errorf("indirect proposed = %d, want 1276000", idc.Proposed)
	}
	if idc.Current != 1000000 {
		t.Errorf("indirect baseline must be untouched, got %d", idc.Current)
	}
}

func TestApplyTransfer_InputNeverMutated(t *testing.T) {
	items := grantBudget()
	before := items.Clone()

	_, _, err := engine.ApplyTransfer(fnaPolicy(), items, encumbranceView(),
		"6001", "6300", 1000000, engine.ModeBudgetTotal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := range before {
		if items[i] != before[i] {
			t.Fatalf("input snapshot mutated at row %d: %+v", i, items[i])
		}
	}
}

func TestApplyTransfer_Conservation(t *testing.T) {
	items := grantBudget()
	totalBefore := items.TotalCurrent()

	next, _, err := engine.ApplyTransfer(fnaPolicy(), items, encumbranceView(),
		"6002", "6400", 350001, engine.ModeBudgetTotal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.TotalCurrent() != totalBefore {
		t.Errorf("baseline total drifted: %d -> %d", totalBefore, next.TotalCurrent())
	}
}

// =============================================================================
// VALIDATION FAILURES
// =============================================================================

func TestApplyTransfer_ForbiddenIndirectTransfer(t *testing.T) {
	items := append(grantBudget(), engine.LineItem{Account: engine.DefaultIndirectAccount})

	_, _, err := engine.ApplyTransfer(fnaPolicy(), items, encumbranceView(),
		engine.DefaultIndirectAccount, "6300", 100, engine.ModeBudgetTotal)
	if !errors.Is(err, engine.ErrForbiddenIndirectTransfer) {
		t.Errorf("from indirect: got %v, want ErrForbiddenIndirectTransfer", err)
	}

	_, _, err = engine.ApplyTransfer(fnaPolicy(), items, encumbranceView(),
		"6001", engine.DefaultIndirectAccount, 100, engine.ModeBudgetTotal)
	if !errors.Is(err, engine.ErrForbiddenIndirectTransfer) {
		t.Errorf("to indirect: got %v, want ErrForbiddenIndirectTransfer", err)
	}
}

func TestApplyTransfer_UnknownAccount(t *testing.T) {
	_, _, err := engine.ApplyTransfer(fnaPolicy(), grantBudget(), encumbranceView(),
		"640", "6300", 100, engine.ModeBudgetTotal)
	if !errors.Is(err, engine.ErrUnknownAccount) {
		t.Fatalf("got %v, want ErrUnknownAccount", err)
	}

	// A near-miss account id should come back with a suggestion.
	var uae *engine.UnknownAccountError
	if !errors.As(err, &uae) {
		t.Fatal("expected *UnknownAccountError")
	}
	if uae.Suggestion != "6400" {
		t.Errorf("suggestion = %s, want 6400", uae.Suggestion)
	}
}

func TestApplyTransfer_SummaryRowInvisible(t *testing.T) {
	// The aggregate row is excluded from all arithmetic, including lookups.
	_, _, err := engine.ApplyTransfer(fnaPolicy(), grantBudget(), encumbranceView(),
		"6001", "SUMMARY", 100, engine.ModeBudgetTotal)
	if !errors.Is(err, engine.ErrUnknownAccount) {
		t.Errorf("got %v, want ErrUnknownAccount", err)
	}
}

func TestApplyTransfer_IdenticalAccounts(t *testing.T) {
	_, _, err := engine.ApplyTransfer(fnaPolicy(), grantBudget(), encumbranceView(),
		"6300", "6300", 100, engine.ModeBudgetTotal)
	if !errors.Is(err, engine.ErrIdenticalAccounts) {
		t.Errorf("got %v, want ErrIdenticalAccounts", err)
	}
}

func TestApplyTransfer_EncumbranceBreach(t *testing.T) {
	// GIVEN: Equipment holds $25,000.00 with $20,000.00 already committed
	// WHEN: Moving $10,000.00 away would leave only $15,000.00
	items := grantBudget()
	_, _, err := engine.ApplyTransfer(fnaPolicy(), items, encumbranceView(),
		"7000", "6400", 1000000, engine.ModeBudgetTotal)
	if !errors.Is(err, engine.ErrEncumbranceBreach) {
		t.Fatalf("got %v, want ErrEncumbranceBreach", err)
	}

	// THEN: The snapshot is untouched
	if items[items.Find("7000")].Proposed != 2500000 {
		t.Error("failed transfer must leave the snapshot unchanged")
	}

	var ebe *engine.EncumbranceBreachError
	if !errors.As(err, &ebe) {
		t.Fatal("expected *EncumbranceBreachError")
	}
	if ebe.Encumbered != 2000000 || ebe.Resulting != 1500000 {
		t.Errorf("breach detail wrong: %+v", ebe)
	}
}

func TestApplyTransfer_WithinEncumbranceHeadroom(t *testing.T) {
	// Moving only the unencumbered $5,000.00 is allowed.
	_, _, err := engine.ApplyTransfer(fnaPolicy(), grantBudget(), encumbranceView(),
		"7000", "6400", 500000, engine.ModeBudgetTotal)
	if err != nil {
		t.Errorf("transfer within headroom should succeed, got %v", err)
	}
}

func TestApplyTransfer_NegativeBalance(t *testing.T) {
	// Travel holds $5,000.00 and encumbers nothing; overdrawing it is a
	// negative-balance failure, not an encumbrance breach.
	_, _, err := engine.ApplyTransfer(fnaPolicy(), grantBudget(), encumbranceView(),
		"6300", "6400", 600000, engine.ModeBudgetTotal)
	if !errors.Is(err, engine.ErrNegativeBalance) {
		t.Errorf("got %v, want ErrNegativeBalance", err)
	}
	if errors.Is(err, engine.ErrEncumbranceBreach) {
		t.Error("unencumbered overdraw must not report an encumbrance breach")
	}
}

func TestApplyTransfer_EncumbranceSnapshotIsIndependent(t *testing.T) {
	// The encumbrance lookup uses the independent snapshot, not the
	// working copy: zeroing Encumbered on the working row changes nothing.
	items := grantBudget()
	items[items.Find("7000")].Encumbered = 0

	_, _, err := engine.ApplyTransfer(fnaPolicy(), items, encumbranceView(),
		"7000", "6400", 1000000, engine.ModeBudgetTotal)
	if !errors.Is(err, engine.ErrEncumbranceBreach) {
		t.Errorf("got %v, want ErrEncumbranceBreach from independent snapshot", err)
	}
}
