/*
handlers.go - HTTP handlers for the rebudgeting API

PURPOSE:
  Implements the HTTP surface over the engine. Handlers hold the entire
  application state in memory (working budget, encumbrance snapshot,
  rate policy, pending queue, audit trail) behind a single mutex; the
  engine itself is pure and takes explicit snapshots.

HANDLER PATTERN:
  1. Parse and validate the request
  2. Call the engine / domain package
  3. Commit returned state on success
  4. Serialize the response

ERROR HANDLING:
  Engine errors map onto HTTP status codes:
  - 400: InvalidAmount, IdenticalAccounts, ForbiddenIndirectTransfer,
         UnknownMode, malformed bodies
  - 404: UnknownAccount
  - 409: EncumbranceBreach, NegativeBalance (the budget state refuses)
  - 500: ReconciliationFailure and anything unexpected

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/grantdesk/rebudget/budget"
	"github.com/grantdesk/rebudget/config"
	"github.com/grantdesk/rebudget/engine"
)

// =============================================================================
// HANDLER STATE
// =============================================================================

// Handler holds all in-memory application state.
type Handler struct {
	cfg config.Application

	mu           sync.Mutex
	items        engine.LineItems
	encumbrances engine.LineItems
	policy       *engine.RatePolicy
	queue        *budget.Queue
	auditLog     []engine.MappingRow

	currentScenario string
}

// NewHandler creates a handler with empty state.
func NewHandler(cfg config.Application) *Handler {
	return &Handler{
		cfg:   cfg,
		queue: budget.NewQueue(),
	}
}

// encumbranceView returns the independent encumbrance snapshot, falling
// back to the working budget when none was uploaded.
// Callers must hold h.mu.
func (h *Handler) encumbranceView() engine.LineItems {
	if h.encumbrances != nil {
		return h.encumbrances
	}
	return h.items
}

// activePolicy applies the configured indirect-account override on top
// of the uploaded rate document. Callers must hold h.mu.
func (h *Handler) activePolicy() *engine.RatePolicy {
	if h.policy == nil || h.cfg.Budget.IndirectAccount == "" {
		return h.policy
	}
	override := *h.policy
	override.IndirectAccount = engine.AccountID(h.cfg.Budget.IndirectAccount)
	return &override
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// UploadBudget replaces the working snapshot. Accepts JSON rows or CSV,
// selected by Content-Type.
func (h *Handler) UploadBudget(w http.ResponseWriter, r *http.Request) {
	items, err := parseSnapshotBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse budget snapshot", err)
		return
	}

	h.mu.Lock()
	h.items = items
	h.auditLog = nil
	h.queue.Clear()
	h.currentScenario = ""
	h.mu.Unlock()

	log.Infof("budget snapshot uploaded: %d line items, total %s",
		len(items), engine.FormatCents(items.TotalCurrent()))
	writeJSON(w, http.StatusCreated, budgetDTO(items))
}

// GetBudget returns the working snapshot.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	var items engine.LineItems
	if h.items != nil {
		items = h.items.Clone()
	}
	h.mu.Unlock()

	if items == nil {
		writeError(w, http.StatusNotFound, "No budget uploaded", nil)
		return
	}
	writeJSON(w, http.StatusOK, budgetDTO(items))
}

// UploadEncumbrances replaces the independent encumbrance snapshot.
func (h *Handler) UploadEncumbrances(w http.ResponseWriter, r *http.Request) {
	items, err := parseSnapshotBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse encumbrance snapshot", err)
		return
	}

	h.mu.Lock()
	h.encumbrances = items
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, map[string]any{"line_items": len(items)})
}

func parseSnapshotBody(r *http.Request) (engine.LineItems, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "csv") {
		return budget.ParseSnapshotCSV(r.Body)
	}
	return budget.ParseSnapshotJSON(r.Body)
}

// =============================================================================
// RATE POLICY HANDLERS
// =============================================================================

// UploadRates replaces the rate policy from an uploaded document.
func (h *Handler) UploadRates(w http.ResponseWriter, r *http.Request) {
	policy, err := budget.ParseRateDocument(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse rate document", err)
		return
	}

	h.mu.Lock()
	h.policy = policy
	h.mu.Unlock()

	log.Infof("rate policy uploaded: rate %s, indirect account %s",
		policy.Rate, policy.Indirect())
	writeJSON(w, http.StatusCreated, ratePolicyDTO(policy))
}

// GetRates returns the resolved rate policy.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	policy := h.activePolicy()
	h.mu.Unlock()

	if policy == nil {
		writeError(w, http.StatusNotFound, "No rate policy uploaded", nil)
		return
	}
	writeJSON(w, http.StatusOK, ratePolicyDTO(policy))
}

func ratePolicyDTO(policy *engine.RatePolicy) RatePolicyDTO {
	accounts := make([]string, 0, len(policy.Eligible))
	for a, ok := range policy.Eligible {
		if ok {
			accounts = append(accounts, string(a))
		}
	}
	sort.Strings(accounts)
	return RatePolicyDTO{
		Rate:             policy.Rate.String(),
		IndirectAccount:  string(policy.Indirect()),
		EligibleAccounts: accounts,
	}
}

// =============================================================================
// TRANSFER HANDLERS
// =============================================================================

// ListTransfers returns the pending queue in submission order.
func (h *Handler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	items := h.queue.Items()
	h.mu.Unlock()

	dtos := make([]TransferRequestDTO, len(items))
	for i, req := range items {
		dtos[i] = transferDTO(req)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// EnqueueTransfer appends a transfer to the pending queue. The queue
// does no validation; validity is decided at projection time.
func (h *Handler) EnqueueTransfer(w http.ResponseWriter, r *http.Request) {
	var req EnqueueTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.From == "" || req.To == "" {
		writeError(w, http.StatusBadRequest, "Both from and to accounts are required", nil)
		return
	}

	h.mu.Lock()
	queued := h.queue.Enqueue(
		engine.AccountID(req.From),
		engine.AccountID(req.To),
		int64(req.Amount),
		engine.TransferMode(req.Mode),
	)
	h.mu.Unlock()

	writeJSON(w, http.StatusCreated, transferDTO(queued))
}

// RemoveTransfer drops one pending transfer by id.
func (h *Handler) RemoveTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	h.mu.Lock()
	removed := h.queue.Remove(id)
	h.mu.Unlock()

	if !removed {
		writeError(w, http.StatusNotFound, "Transfer not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": id})
}

// PreviewTransfer computes the three-way split without touching state.
func (h *Handler) PreviewTransfer(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	policy := h.activePolicy()
	h.mu.Unlock()

	impact, err := engine.ComputeImpact(policy, engine.AccountID(req.To),
		int64(req.Amount), engine.TransferMode(req.Mode))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, impactDTO(impact))
}

// ApplyTransfer validates and applies one transfer immediately,
// committing the result and its audit row.
func (h *Handler) ApplyTransfer(w http.ResponseWriter, r *http.Request) {
	var req EnqueueTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.items == nil {
		writeError(w, http.StatusNotFound, "No budget uploaded", nil)
		return
	}

	next, row, err := engine.ApplyTransfer(
		h.activePolicy(), h.items, h.encumbranceView(),
		engine.AccountID(req.From), engine.AccountID(req.To),
		int64(req.Amount), engine.TransferMode(req.Mode),
	)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.items = next
	h.auditLog = append(h.auditLog, row)

	writeJSON(w, http.StatusOK, ProjectionResponse{
		Budget:     budgetDTO(next),
		MappingLog: []MappingRowDTO{mappingDTO(row)},
	})
}

// =============================================================================
// PROJECTION / EXPORT HANDLERS
// =============================================================================

// RunProjection folds the pending queue over the working budget. All or
// nothing: on success the final budget is committed, the audit rows are
// appended, and the queue is cleared; on failure nothing changes.
func (h *Handler) RunProjection(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.items == nil {
		writeError(w, http.StatusNotFound, "No budget uploaded", nil)
		return
	}

	requests := h.queue.Items()
	result, err := engine.Project(h.activePolicy(), h.items, h.encumbranceView(), requests)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	h.items = result.Final
	h.auditLog = append(h.auditLog, result.Log...)
	h.queue.Clear()

	dtos := make([]MappingRowDTO, len(result.Log))
	for i, row := range result.Log {
		dtos[i] = mappingDTO(row)
	}
	log.Infof("projection applied: %d transfers, total %s conserved",
		len(result.Log), engine.FormatCents(result.Final.TotalCurrent()))
	writeJSON(w, http.StatusOK, ProjectionResponse{
		Budget:     budgetDTO(result.Final),
		MappingLog: dtos,
	})
}

// ExportAudit streams the accumulated audit trail as CSV.
func (h *Handler) ExportAudit(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	auditLog := make([]engine.MappingRow, len(h.auditLog))
	copy(auditLog, h.auditLog)
	h.mu.Unlock()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="audit.csv"`)
	if err := budget.WriteAuditCSV(w, auditLog); err != nil {
		log.Errorf("writing audit CSV: %v", err)
	}
}

// ExportBudget streams the working snapshot as CSV.
func (h *Handler) ExportBudget(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	var items engine.LineItems
	if h.items != nil {
		items = h.items.Clone()
	}
	h.mu.Unlock()

	if items == nil {
		writeError(w, http.StatusNotFound, "No budget uploaded", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="budget.csv"`)
	if err := budget.WriteBudgetCSV(w, items); err != nil {
		log.Errorf("writing budget CSV: %v", err)
	}
}

// =============================================================================
// PERSONNEL HANDLERS
// =============================================================================

// PersonnelProjection projects personnel costs and returns a burn
// schedule over the working budget.
func (h *Handler) PersonnelProjection(w http.ResponseWriter, r *http.Request) {
	var req PersonnelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	positions := make([]budget.Position, len(req.Positions))
	for i, p := range req.Positions {
		effort, err := parseRatio(p.EffortPercent)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid effort for %q", p.Name), err)
			return
		}
		fringe, err := parseRatio(p.FringeRate)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid fringe rate for %q", p.Name), err)
			return
		}
		positions[i] = budget.Position{
			Name:              p.Name,
			Role:              p.Role,
			AnnualSalaryCents: int64(p.AnnualSalary),
			EffortPercent:     effort,
			FringeRate:        fringe,
			Months:            p.Months,
		}
	}

	plan, err := budget.ProjectPersonnel(positions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Personnel projection failed", err)
		return
	}

	months := req.Months
	if months <= 0 {
		months = h.cfg.Budget.ScheduleMonths
	}

	h.mu.Lock()
	var items engine.LineItems
	if h.items != nil {
		items = h.items.Clone()
	}
	h.mu.Unlock()

	resp := PersonnelResponse{
		Costs:       make([]PersonnelCostDTO, len(plan.Costs)),
		SalaryTotal: engine.FormatCents(plan.SalaryTotalCents),
		FringeTotal: engine.FormatCents(plan.FringeTotalCents),
		Total:       engine.FormatCents(plan.TotalCents),
	}
	for i, c := range plan.Costs {
		resp.Costs[i] = PersonnelCostDTO{
			Name:   c.Name,
			Role:   c.Role,
			Salary: engine.FormatCents(c.SalaryCents),
			Fringe: engine.FormatCents(c.FringeCents),
			Total:  engine.FormatCents(c.TotalCents),
		}
	}

	if items != nil {
		rows, err := budget.BurnSchedule(items, months)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Burn schedule failed", err)
			return
		}
		for _, row := range rows {
			monthly := make([]string, len(row.Monthly))
			for i, m := range row.Monthly {
				monthly[i] = engine.FormatCents(m)
			}
			resp.Schedule = append(resp.Schedule, BurnRowDTO{
				Account:     string(row.Account),
				Description: row.Description,
				Monthly:     monthly,
			})
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func parseRatio(n json.Number) (decimal.Decimal, error) {
	if n == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(n.String())
}

// =============================================================================
// HEALTH
// =============================================================================

// Health reports liveness and a glance at the loaded state.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	loaded := h.items != nil
	queued := h.queue.Len()
	h.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"budget_loaded": loaded,
		"queued":        queued,
	})
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeEngineError maps engine errors onto HTTP status codes.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, engine.ErrUnknownAccount):
		writeError(w, http.StatusNotFound, "Unknown account", err)
	case errors.Is(err, engine.ErrEncumbranceBreach), errors.Is(err, engine.ErrNegativeBalance):
		writeError(w, http.StatusConflict, "Transfer rejected", err)
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Transfer rejected", err)
	default:
		log.Errorf("engine defect: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
