/*
personnel.go - Personnel cost projection and burn schedules

PURPOSE:
  Projects personnel costs (salary at effort over an appointment, plus
  fringe benefits) and produces straight-line monthly burn schedules
  over a budget period. The arithmetic follows the same discipline as
  the engine: integer cents, a single rounding step per derived figure,
  and schedules that sum exactly to what they spread.

ROUNDING IN SCHEDULES:
  Dividing cents across N months truncates; the leftover cents are
  distributed one per month from the start so the schedule always sums
  exactly to the total. No month differs from another by more than one
  cent.
*/
package budget

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grantdesk/rebudget/engine"
)

// =============================================================================
// PERSONNEL PROJECTION
// =============================================================================

// Position describes one person's planned appointment on the grant.
type Position struct {
	Name              string
	Role              string
	AnnualSalaryCents int64

	// EffortPercent is 0-100.
	EffortPercent decimal.Decimal

	// FringeRate is a fraction (e.g., 0.305).
	FringeRate decimal.Decimal

	// Months of appointment within the budget period.
	Months int
}

// PersonnelCost is the projected cost of one position.
type PersonnelCost struct {
	Name        string
	Role        string
	SalaryCents int64
	FringeCents int64
	TotalCents  int64
}

// PersonnelPlan is the projection of all positions plus roll-up totals.
type PersonnelPlan struct {
	Costs            []PersonnelCost
	SalaryTotalCents int64
	FringeTotalCents int64
	TotalCents       int64
}

// ProjectPersonnel computes each position's salary at effort for its
// appointment, fringe on top, and roll-up totals.
func ProjectPersonnel(positions []Position) (PersonnelPlan, error) {
	plan := PersonnelPlan{Costs: make([]PersonnelCost, 0, len(positions))}

	for _, p := range positions {
		if p.AnnualSalaryCents < 0 {
			return PersonnelPlan{}, fmt.Errorf("position %q: negative salary", p.Name)
		}
		if p.Months < 0 || p.Months > 12 {
			return PersonnelPlan{}, fmt.Errorf("position %q: months %d out of range", p.Name, p.Months)
		}
		if p.EffortPercent.IsNegative() || p.EffortPercent.GreaterThan(decimal.NewFromInt(100)) {
			return PersonnelPlan{}, fmt.Errorf("position %q: effort %s%% out of range", p.Name, p.EffortPercent)
		}

		// salary = annual * effort% * months/12, rounded once
		salary := decimal.NewFromInt(p.AnnualSalaryCents).
			Mul(p.EffortPercent).
			Div(decimal.NewFromInt(100)).
			Mul(decimal.NewFromInt(int64(p.Months))).
			Div(decimal.NewFromInt(12)).
			Round(0).IntPart()

		fringe := decimal.NewFromInt(salary).Mul(p.FringeRate).Round(0).IntPart()

		cost := PersonnelCost{
			Name:        p.Name,
			Role:        p.Role,
			SalaryCents: salary,
			FringeCents: fringe,
			TotalCents:  salary + fringe,
		}
		plan.Costs = append(plan.Costs, cost)
		plan.SalaryTotalCents += cost.SalaryCents
		plan.FringeTotalCents += cost.FringeCents
		plan.TotalCents += cost.TotalCents
	}

	return plan, nil
}

// =============================================================================
// BURN SCHEDULE
// =============================================================================

// BurnRow is one account's straight-line monthly spend plan.
type BurnRow struct {
	Account     engine.AccountID
	Description string
	Monthly     []int64
}

// BurnSchedule spreads each non-SUMMARY line item's proposed budget
// evenly across months. Every row sums exactly to its proposed amount.
func BurnSchedule(items engine.LineItems, months int) ([]BurnRow, error) {
	if months <= 0 {
		return nil, fmt.Errorf("burn schedule needs a positive number of months, got %d", months)
	}

	var rows []BurnRow
	for _, li := range items {
		if li.Account == engine.SummaryAccount {
			continue
		}
		rows = append(rows, BurnRow{
			Account:     li.Account,
			Description: li.Description,
			Monthly:     spreadCents(li.Proposed, months),
		})
	}
	return rows, nil
}

// spreadCents splits total into months near-equal cent portions that sum
// exactly to total; leftover cents land on the earliest months.
func spreadCents(total int64, months int) []int64 {
	n := int64(months)
	base := total / n
	remainder := total - base*n

	step := int64(1)
	if remainder < 0 {
		step = -1
		remainder = -remainder
	}

	out := make([]int64, months)
	for i := range out {
		out[i] = base
		if int64(i) < remainder {
			out[i] += step
		}
	}
	return out
}
