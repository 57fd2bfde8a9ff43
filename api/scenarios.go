/*
scenarios.go - Demo scenario presets

PURPOSE:
  Canned budget snapshots and rate policies for demos and manual
  testing, loadable without uploading documents. Loading a scenario
  replaces all application state.
*/
package api

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/grantdesk/rebudget/engine"
)

type scenario struct {
	ID          string
	Name        string
	Description string
	Items       engine.LineItems
	Policy      *engine.RatePolicy
}

var scenarios = []scenario{
	{
		ID:          "r01-year2",
		Name:        "R01 Year 2 rebudget",
		Description: "Federal research budget with MTDC-eligible personnel and travel lines at a 27.6% F&A rate",
		Items: engine.LineItems{
			{Account: "6001", Description: "Senior Personnel", Current: 12000000, Proposed: 12000000},
			{Account: "6002", Description: "Other Personnel", Current: 4000000, Proposed: 4000000},
			{Account: "6100", Description: "Fringe Benefits", Current: 3000000, Proposed: 3000000},
			{Account: "6300", Description: "Travel", Current: 500000, Proposed: 500000},
			{Account: "6400", Description: "Materials and Supplies", Current: 800000, Proposed: 800000},
			{Account: "7000", Description: "Equipment", Current: 2500000, Proposed: 2500000, Encumbered: 2000000},
			{Account: "8000", Description: "Indirect Costs (F&A)", Current: 5601600, Proposed: 5601600},
			{Account: "SUMMARY", Description: "Total", Current: 28401600, Proposed: 28401600},
		},
		Policy: engine.NewRatePolicy(
			decimal.RequireFromString("0.276"),
			"8000",
			[]engine.AccountID{"6001", "6002", "6100", "6300", "6400"},
		),
	},
	{
		ID:          "foundation-flat",
		Name:        "Foundation grant, no indirects",
		Description: "Small foundation award where no account is MTDC-eligible",
		Items: engine.LineItems{
			{Account: "PERS", Description: "Personnel", Current: 6000000, Proposed: 6000000},
			{Account: "PROG", Description: "Program Costs", Current: 2500000, Proposed: 2500000},
			{Account: "EVAL", Description: "Evaluation", Current: 1500000, Proposed: 1500000, Encumbered: 500000},
		},
		Policy: engine.NewRatePolicy(decimal.Zero, "", nil),
	},
}

// ListScenarios returns the available presets.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{ID: s.ID, Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario replaces all application state with a preset.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	for _, s := range scenarios {
		if s.ID != req.ID {
			continue
		}

		h.mu.Lock()
		h.items = s.Items.Clone()
		h.encumbrances = nil
		h.policy = s.Policy
		h.auditLog = nil
		h.queue.Clear()
		h.currentScenario = s.ID
		h.mu.Unlock()

		log.Infof("scenario %s loaded", s.ID)
		writeJSON(w, http.StatusOK, budgetDTO(s.Items))
		return
	}

	writeError(w, http.StatusNotFound, "Scenario not found", nil)
}
