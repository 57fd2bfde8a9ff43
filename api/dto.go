/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  internal cents-based domain model from the external contract. All
  monetary fields cross the boundary as two-decimal strings produced by
  the engine codec; inbound amounts may be strings or numbers.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - engine/money.go: The codec every amount passes through
*/
package api

import (
	"encoding/json"
	"fmt"

	"github.com/grantdesk/rebudget/engine"
)

// =============================================================================
// FLEXIBLE INBOUND AMOUNTS
// =============================================================================

// money accepts a JSON string or number and lands as integer cents.
type money int64

func (m *money) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = money(engine.ParseCents(s))
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*m = money(engine.CentsFromFloat(f))
		return nil
	}
	return fmt.Errorf("amount %s is neither a number nor a decimal string", data)
}

// =============================================================================
// BUDGET
// =============================================================================

// LineItemDTO represents one budget row in API responses.
type LineItemDTO struct {
	Account     string `json:"account"`
	Description string `json:"description"`
	Current     string `json:"current"`
	Proposed    string `json:"proposed"`
	Encumbered  string `json:"encumbered,omitempty"`
	Change      string `json:"change"`
	ChangeRatio string `json:"change_ratio,omitempty"`
}

// BudgetDTO is a full snapshot with totals.
type BudgetDTO struct {
	LineItems     []LineItemDTO `json:"line_items"`
	TotalCurrent  string        `json:"total_current"`
	TotalProposed string        `json:"total_proposed"`
}

func lineItemDTO(li engine.LineItem) LineItemDTO {
	dto := LineItemDTO{
		Account:     string(li.Account),
		Description: li.Description,
		Current:     engine.FormatCents(li.Current),
		Proposed:    engine.FormatCents(li.Proposed),
		Change:      engine.FormatCents(li.Change),
	}
	if li.Encumbered != 0 {
		dto.Encumbered = engine.FormatCents(li.Encumbered)
	}
	if li.Current != 0 {
		dto.ChangeRatio = li.ChangeRatio().StringFixed(4)
	}
	return dto
}

func budgetDTO(items engine.LineItems) BudgetDTO {
	dtos := make([]LineItemDTO, len(items))
	for i, li := range items {
		dtos[i] = lineItemDTO(li)
	}
	return BudgetDTO{
		LineItems:     dtos,
		TotalCurrent:  engine.FormatCents(items.TotalCurrent()),
		TotalProposed: engine.FormatCents(items.TotalProposed()),
	}
}

// =============================================================================
// RATE POLICY
// =============================================================================

// RatePolicyDTO represents the resolved policy in API responses.
type RatePolicyDTO struct {
	Rate             string   `json:"rate"`
	IndirectAccount  string   `json:"indirect_account"`
	EligibleAccounts []string `json:"eligible_accounts"`
}

// =============================================================================
// TRANSFERS
// =============================================================================

// TransferRequestDTO represents one queued transfer.
type TransferRequestDTO struct {
	ID     string `json:"id"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
	Mode   string `json:"mode"`
}

func transferDTO(req engine.TransferRequest) TransferRequestDTO {
	return TransferRequestDTO{
		ID:     req.ID,
		From:   string(req.From),
		To:     string(req.To),
		Amount: engine.FormatCents(req.AmountCents),
		Mode:   string(req.Mode),
	}
}

// EnqueueTransferRequest is the request to queue (or apply) a transfer.
type EnqueueTransferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount money  `json:"amount"`
	Mode   string `json:"mode"`
}

// PreviewRequest asks for the impact of a hypothetical transfer.
type PreviewRequest struct {
	To     string `json:"to"`
	Amount money  `json:"amount"`
	Mode   string `json:"mode"`
}

// ImpactDTO is the three-way split for a previewed or applied transfer.
type ImpactDTO struct {
	SourceOut     string `json:"source_out"`
	DirectToDest  string `json:"direct_to_dest"`
	IndirectAdded string `json:"indirect_added"`
	Eligible      bool   `json:"eligible"`
}

func impactDTO(impact engine.Impact) ImpactDTO {
	return ImpactDTO{
		SourceOut:     engine.FormatCents(impact.SourceOut),
		DirectToDest:  engine.FormatCents(impact.DirectToDest),
		IndirectAdded: engine.FormatCents(impact.IndirectAdded),
		Eligible:      impact.Eligible,
	}
}

// MappingRowDTO is one audit-trail row.
type MappingRowDTO struct {
	From          string `json:"from"`
	To            string `json:"to"`
	SourceOut     string `json:"source_out"`
	DirectToDest  string `json:"direct_to_dest"`
	IndirectAdded string `json:"indirect_added"`
	Eligible      bool   `json:"eligible"`
	Mode          string `json:"mode"`
}

func mappingDTO(row engine.MappingRow) MappingRowDTO {
	return MappingRowDTO{
		From:          string(row.From),
		To:            string(row.To),
		SourceOut:     engine.FormatCents(row.SourceOut),
		DirectToDest:  engine.FormatCents(row.DirectToDest),
		IndirectAdded: engine.FormatCents(row.IndirectAdded),
		Eligible:      row.Eligible,
		Mode:          string(row.Mode),
	}
}

// ProjectionResponse is the outcome of a batch projection.
type ProjectionResponse struct {
	Budget     BudgetDTO       `json:"budget"`
	MappingLog []MappingRowDTO `json:"mapping_log"`
}

// =============================================================================
// PERSONNEL
// =============================================================================

// PositionRequest describes one planned appointment.
type PositionRequest struct {
	Name          string      `json:"name"`
	Role          string      `json:"role"`
	AnnualSalary  money       `json:"annual_salary"`
	EffortPercent json.Number `json:"effort_percent"`
	FringeRate    json.Number `json:"fringe_rate"`
	Months        int         `json:"months"`
}

// PersonnelRequest is the request for a personnel projection.
type PersonnelRequest struct {
	Positions []PositionRequest `json:"positions"`

	// Months controls the burn schedule length; zero means the
	// configured default.
	Months int `json:"months,omitempty"`
}

// PersonnelCostDTO is the projected cost of one position.
type PersonnelCostDTO struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Salary string `json:"salary"`
	Fringe string `json:"fringe"`
	Total  string `json:"total"`
}

// BurnRowDTO is one account's monthly spend plan.
type BurnRowDTO struct {
	Account     string   `json:"account"`
	Description string   `json:"description"`
	Monthly     []string `json:"monthly"`
}

// PersonnelResponse bundles the projection with a burn schedule over the
// current working budget.
type PersonnelResponse struct {
	Costs       []PersonnelCostDTO `json:"costs"`
	SalaryTotal string             `json:"salary_total"`
	FringeTotal string             `json:"fringe_total"`
	Total       string             `json:"total"`
	Schedule    []BurnRowDTO       `json:"schedule,omitempty"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

// ScenarioDTO describes one demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ID string `json:"id"`
}

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
