package engine_test

import (
	"errors"
	"testing"

	"github.com/grantdesk/rebudget/engine"
)

// =============================================================================
// ORDERED FOLD
// =============================================================================

func TestProject_SequentialTransfers(t *testing.T) {
	// GIVEN: Two transfers where the second depends on the first's effect
	baseline := grantBudget()
	requests := []engine.TransferRequest{
		{ID: "t-1", From: "6001", To: "6300", AmountCents: 1000000, Mode: engine.ModeDirectToDest},
		{ID: "t-2", From: "6300", To: "6400", AmountCents: 1200000, Mode: engine.ModeBudgetTotal},
	}

	result, err := engine.Project(fnaPolicy(), baseline, encumbranceView(), requests)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// THEN: The second transfer spends money the first one delivered
	// (Travel started with only $5,000.00).
	travel := result.Final[result.Final.Find("6300")]
	if travel.Proposed != 500000+1000000-1200000 {
		t.Errorf("travel proposed = %d, want 300000", travel.Proposed)
	}

	if len(result.Log) != 2 {
		t.Fatalf("log has %d rows, want 2", len(result.Log))
	}
	if result.Log[0].From != "6001" || result.Log[1].From != "6300" {
		t.Errorf("log out of submission order: %+v", result.Log)
	}

	if result.Final.TotalCurrent() != baseline.TotalCurrent() {
		t.Error("projection broke the conservation invariant")
	}
}

func TestProject_AllOrNothing(t *testing.T) {
	// GIVEN: The first transfer drains Travel near zero; the second would
	// overdraw it
	baseline := grantBudget()
	requests := []engine.TransferRequest{
		{ID: "t-1", From: "6300", To: "6400", AmountCents: 490000, Mode: engine.ModeBudgetTotal},
		{ID: "t-2", From: "6300", To: "6400", AmountCents: 20000, Mode: engine.ModeBudgetTotal},
	}

	// WHEN: Projecting the batch
	result, err := engine.Project(fnaPolicy(), baseline, encumbranceView(), requests)

	// THEN: The whole batch is rejected, the error names the second
	// request, and the baseline is untouched
	if result != nil {
		t.Fatal("failed projection must not return a partial result")
	}
	if !errors.Is(err, engine.ErrNegativeBalance) {
		t.Fatalf("got %v, want ErrNegativeBalance", err)
	}

	var be *engine.BatchError
	if !errors.As(err, &be) {
		t.Fatal("expected *BatchError")
	}
	if be.Position != 1 || be.RequestID != "t-2" {
		t.Errorf("batch error names wrong request: %+v", be)
	}

	if baseline[baseline.Find("6300")].Proposed != 500000 {
		t.Error("failed projection must leave the baseline unchanged")
	}
}

func TestProject_EmptyBatch(t *testing.T) {
	baseline := grantBudget()
	result, err := engine.Project(fnaPolicy(), baseline, encumbranceView(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Log) != 0 {
		t.Errorf("empty batch produced %d log rows", len(result.Log))
	}
	if result.Final.TotalProposed() != baseline.TotalProposed() {
		t.Error("empty batch must not move money")
	}
}

func TestProject_ConservationAcrossLongSequence(t *testing.T) {
	// Many transfers in both modes; the baseline total never moves and
	// every audit row sums exactly.
	baseline := grantBudget()
	requests := []engine.TransferRequest{
		{ID: "a", From: "6001", To: "6300", AmountCents: 123457, Mode: engine.ModeDirectToDest},
		{ID: "b", From: "6002", To: "6400", AmountCents: 98765, Mode: engine.ModeBudgetTotal},
		{ID: "c", From: "6001", To: "7000", AmountCents: 333333, Mode: engine.ModeDirectToDest},
		{ID: "d", From: "6100", To: "6300", AmountCents: 271828, Mode: engine.ModeBudgetTotal},
		{ID: "e", From: "6300", To: "6002", AmountCents: 141421, Mode: engine.ModeDirectToDest},
	}

	result, err := engine.Project(fnaPolicy(), baseline, encumbranceView(), requests)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Final.TotalCurrent() != baseline.TotalCurrent() {
		t.Errorf("conservation broken: %d -> %d", baseline.TotalCurrent(), result.Final.TotalCurrent())
	}

	for i, row := range result.Log {
		if row.DirectToDest+row.IndirectAdded != row.SourceOut {
			t.Errorf("row %d does not sum: %+v", i, row)
		}
	}
}
