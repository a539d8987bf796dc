/*
handlers.go - HTTP API handlers for the budget engine

PURPOSE:
  Exposes the budget engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Budgets:
    GET    /api/budgets/current             Active budget with spending
    POST   /api/budgets                     Create budget
    GET    /api/budgets/{id}                Get budget with spending
    PUT    /api/budgets/{id}                Update plan figures
    PUT    /api/budgets/{id}/allocations    Replace allocation set
    GET    /api/budgets/{id}/daily-spending Daily trend with ideal pace
    GET    /api/budgets/{id}/risk           Traffic-light risk

  Expenses:
    GET    /api/expenses                    List expenses in a date range
    POST   /api/expenses                    Record expense
    DELETE /api/expenses/{id}               Soft-delete expense

  Payments:
    GET    /api/payments                    List payments due in a range
    POST   /api/payments                    Schedule payment
    POST   /api/payments/{id}/paid          Settle (reschedules recurring)

  Categories:
    GET    /api/categories                  List categories
    POST   /api/categories                  Create category

  Profile:
    GET    /api/profile                     Get settings
    PUT    /api/profile                     Save settings

  Simulator endpoints live in simulator.go.

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Stores: persistence interfaces from the engine package
  - Planner: scenario computation
  - Log: structured logging
  - now: injectable clock for deterministic tests

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (tracker, planner, risk)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.
  Single-user deployments only.

SEE ALSO:
  - dto.go: Request/response data structures
  - simulator.go: Plan, what-if, and recommendation handlers
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for API handlers.
type Handler struct {
	Budgets    engine.BudgetStore
	Expenses   engine.ExpenseStore
	Payments   engine.PaymentStore
	Categories engine.CategoryStore
	Profiles   engine.ProfileStore

	Planner *engine.Planner
	Log     *logrus.Logger

	// now is the handler's clock; tests override it for fixed dates.
	now func() engine.TimePoint
}

// Stores bundles the persistence interfaces a Handler needs. Any type that
// implements all five (the sqlite store, the in-memory store) satisfies it.
type Stores interface {
	engine.BudgetStore
	engine.ExpenseStore
	engine.PaymentStore
	engine.CategoryStore
	engine.ProfileStore
}

// NewHandler creates the API handler with its dependencies.
func NewHandler(stores Stores, planner *engine.Planner, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		Budgets:    stores,
		Expenses:   stores,
		Payments:   stores,
		Categories: stores,
		Profiles:   stores,
		Planner:    planner,
		Log:        log,
		now:        func() engine.TimePoint { return engine.Today() },
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeEngineError maps domain errors onto HTTP statuses.
func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case engine.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.WithError(err).Error("internal error")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// thresholdsFor loads the profile's risk thresholds, falling back to the
// defaults when no profile has been saved.
func (h *Handler) thresholdsFor(r *http.Request) engine.RiskThresholds {
	profile, err := h.Profiles.GetProfile(r.Context())
	if err != nil {
		h.Log.WithError(err).Warn("profile load failed, using defaults")
		return engine.DefaultRiskThresholds()
	}
	return profile.RiskThresholds
}

// budgetFromPath resolves the {id} URL segment. The literal "current"
// resolves to the budget active today.
func (h *Handler) budgetFromPath(r *http.Request) (engine.Budget, error) {
	id := chi.URLParam(r, "id")
	if id == "current" {
		return h.Budgets.CurrentBudget(r.Context(), h.now())
	}
	return h.Budgets.GetBudget(r.Context(), engine.BudgetID(id))
}

// spendingFor loads one budget and computes its utilization view.
func (h *Handler) spendingFor(r *http.Request, budget engine.Budget) (engine.BudgetWithSpending, error) {
	expenses, err := h.Expenses.ExpensesInRange(r.Context(), budget.Period)
	if err != nil {
		return engine.BudgetWithSpending{}, err
	}
	categories, err := h.Categories.Categories(r.Context())
	if err != nil {
		return engine.BudgetWithSpending{}, err
	}
	return engine.ComputeSpending(budget, expenses, engine.CategoryLookup(categories))
}

// =============================================================================
// BUDGET HANDLERS
// =============================================================================

// GetCurrentBudget returns the budget active today, with spending.
func (h *Handler) GetCurrentBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := h.Budgets.CurrentBudget(r.Context(), h.now())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	bws, err := h.spendingFor(r, budget)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetWithSpendingDTO(bws))
}

// GetBudget returns one budget by id, with spending.
func (h *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	budget, err := h.budgetFromPath(r)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	bws, err := h.spendingFor(r, budget)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetWithSpendingDTO(bws))
}

// CreateBudget creates a budget for a date range. Overlapping active budgets
// are deactivated by the store.
func (h *Handler) CreateBudget(w http.ResponseWriter, r *http.Request) {
	var req CreateBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	budget, err := budgetFromRequest(req)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	created, err := h.Budgets.CreateBudget(r.Context(), budget)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"budget_id": created.ID,
		"total":     created.TotalAmount.String(),
		"period":    created.Period.String(),
	}).Info("budget created")

	writeJSON(w, http.StatusCreated, toBudgetDTO(created))
}

func budgetFromRequest(req CreateBudgetRequest) (engine.Budget, error) {
	total, err := engine.ParseMoney(req.TotalAmount)
	if err != nil {
		return engine.Budget{}, err
	}
	if total.IsNegative() {
		return engine.Budget{}, &engine.InvalidBudgetError{Reason: "total_amount must not be negative"}
	}

	period, err := parsePeriod(req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return engine.Budget{}, err
	}

	allocations, err := allocationsFromDTO(req.Allocations)
	if err != nil {
		return engine.Budget{}, err
	}

	return engine.Budget{
		TotalAmount: total,
		Period:      period,
		Notes:       req.Notes,
		Allocations: allocations,
		Active:      true,
	}, nil
}

func parsePeriod(start, end string) (engine.Period, error) {
	s, err := engine.ParseDate(start)
	if err != nil {
		return engine.Period{}, &engine.InvalidInputError{Field: "period_start", Reason: "must be YYYY-MM-DD"}
	}
	e, err := engine.ParseDate(end)
	if err != nil {
		return engine.Period{}, &engine.InvalidInputError{Field: "period_end", Reason: "must be YYYY-MM-DD"}
	}
	return engine.Period{Start: s, End: e}, nil
}

func allocationsFromDTO(dtos []AllocationDTO) ([]engine.Allocation, error) {
	allocations := make([]engine.Allocation, 0, len(dtos))
	for _, a := range dtos {
		amount, err := engine.ParseMoney(a.AllocatedAmount)
		if err != nil {
			return nil, err
		}
		if amount.IsNegative() {
			return nil, &engine.InvalidInputError{Field: "allocated_amount", Reason: "must not be negative"}
		}
		allocations = append(allocations, engine.Allocation{
			CategoryID: engine.CategoryID(a.CategoryID),
			Amount:     amount,
		})
	}
	return allocations, nil
}

// UpdateBudget rewrites a budget's plan figures. Recorded expenses are
// untouched; the utilization view shifts on the next read.
func (h *Handler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	var req UpdateBudgetRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	total, err := engine.ParseMoney(req.TotalAmount)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if total.IsNegative() {
		writeError(w, http.StatusBadRequest, "total_amount must not be negative")
		return
	}

	id := engine.BudgetID(chi.URLParam(r, "id"))
	updated, err := h.Budgets.UpdateBudgetPlan(r.Context(), id, total, req.Notes)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetDTO(updated))
}

// ReplaceAllocations replaces a budget's allocation set. Duplicate category
// ids in the request collapse to the last amount given.
func (h *Handler) ReplaceAllocations(w http.ResponseWriter, r *http.Request) {
	var req ReplaceAllocationsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	allocations, err := allocationsFromDTO(req.Allocations)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	id := engine.BudgetID(chi.URLParam(r, "id"))
	updated, err := h.Budgets.ReplaceAllocations(r.Context(), id, allocations)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBudgetDTO(updated))
}

// GetDailySpending returns the day-by-day trend with the ideal linear pace.
func (h *Handler) GetDailySpending(w http.ResponseWriter, r *http.Request) {
	budget, err := h.budgetFromPath(r)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	expenses, err := h.Expenses.ExpensesInRange(r.Context(), budget.Period)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	series, err := engine.ComputeDailySpending(budget, expenses)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	breakdown, err := budget.Period.Normalize()
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	resp := DailySpendingResponse{
		BudgetID:       string(budget.ID),
		RawDays:        breakdown.RawDays,
		NormalizedDays: breakdown.NormalizedDays,
		Series:         make([]DailySpendingDTO, len(series)),
	}
	for i, d := range series {
		resp.Series[i] = DailySpendingDTO{
			Date:        d.Date.String(),
			DailyAmount: money(d.DailyAmount),
			Accumulated: money(d.Accumulated),
			Ideal:       money(engine.IdealProjection(budget.TotalAmount, breakdown.NormalizedDays, i)),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetBudgetRisk returns a budget's traffic-light risk assessment.
func (h *Handler) GetBudgetRisk(w http.ResponseWriter, r *http.Request) {
	budget, err := h.budgetFromPath(r)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	bws, err := h.spendingFor(r, budget)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	risk := engine.AssessRisk(bws.Spent, budget.TotalAmount, h.thresholdsFor(r))
	writeJSON(w, http.StatusOK, toRiskIndicatorDTO(risk))
}

// =============================================================================
// EXPENSE HANDLERS
// =============================================================================

// ListExpenses returns expenses inside a from/to query range; the range
// defaults to the current month.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	period, err := h.queryPeriod(r)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	expenses, err := h.Expenses.ExpensesInRange(r.Context(), period)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) queryPeriod(r *http.Request) (engine.Period, error) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" && to == "" {
		return engine.MonthOf(h.now()), nil
	}
	return parsePeriod(from, to)
}

// CreateExpense records an expense.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	amount, err := engine.ParseMoney(req.Amount)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	date := h.now()
	if req.Date != "" {
		date, err = engine.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "expense_date must be YYYY-MM-DD")
			return
		}
	}

	created, err := h.Expenses.CreateExpense(r.Context(), engine.Expense{
		Amount:     amount,
		CategoryID: engine.CategoryID(req.CategoryID),
		Date:       date,
		Notes:      req.Notes,
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toExpenseDTO(created))
}

// DeleteExpense soft-deletes an expense.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := engine.ExpenseID(chi.URLParam(r, "id"))
	if err := h.Expenses.DeleteExpense(r.Context(), id); err != nil {
		h.writeEngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// ListPayments returns payments due inside a from/to query range; the range
// defaults to the current month.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	period, err := h.queryPeriod(r)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	payments, err := h.Payments.PaymentsDueInRange(r.Context(), period)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	dtos := make([]PaymentDTO, len(payments))
	for i, p := range payments {
		dtos[i] = toPaymentDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePayment schedules a payment on the calendar.
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	payment, err := paymentFromRequest(req)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	created, err := h.Payments.CreatePayment(r.Context(), payment)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toPaymentDTO(created))
}

func paymentFromRequest(req CreatePaymentRequest) (engine.Payment, error) {
	if req.Name == "" {
		return engine.Payment{}, &engine.InvalidInputError{Field: "name", Reason: "must not be empty"}
	}

	amount, err := engine.ParseMoney(req.Amount)
	if err != nil {
		return engine.Payment{}, err
	}
	if !amount.IsPositive() {
		return engine.Payment{}, &engine.InvalidInputError{Field: "amount", Reason: "must be positive"}
	}

	due, err := engine.ParseDate(req.DueDate)
	if err != nil {
		return engine.Payment{}, &engine.InvalidInputError{Field: "due_date", Reason: "must be YYYY-MM-DD"}
	}

	frequency := engine.PaymentFrequency(req.Frequency)
	switch frequency {
	case "":
		frequency = engine.FrequencyOneTime
	case engine.FrequencyOneTime, engine.FrequencyWeekly, engine.FrequencyMonthly, engine.FrequencyYearly:
	default:
		return engine.Payment{}, &engine.InvalidInputError{Field: "frequency", Reason: "unknown frequency"}
	}

	return engine.Payment{
		Name:       req.Name,
		Amount:     amount,
		DueDate:    due,
		Frequency:  frequency,
		CategoryID: engine.CategoryID(req.CategoryID),
	}, nil
}

// MarkPaymentPaid settles a payment. Recurring payments get their follow-up
// occurrence scheduled in the same call.
func (h *Handler) MarkPaymentPaid(w http.ResponseWriter, r *http.Request) {
	id := engine.PaymentID(chi.URLParam(r, "id"))

	paid, err := h.Payments.MarkPaid(r.Context(), id, time.Now().UTC())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	resp := MarkPaidResponse{Payment: toPaymentDTO(paid)}
	if next, ok := engine.NextOccurrence(paid); ok {
		created, err := h.Payments.CreatePayment(r.Context(), next)
		if err != nil {
			h.writeEngineError(w, err)
			return
		}
		dto := toPaymentDTO(created)
		resp.Next = &dto

		h.Log.WithFields(logrus.Fields{
			"payment_id": created.ID,
			"due_date":   created.DueDate.String(),
		}).Info("recurring payment rescheduled")
	}

	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// CATEGORY HANDLERS
// =============================================================================

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Categories.Categories(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	dtos := make([]CategoryDTO, len(categories))
	for i, c := range categories {
		dtos[i] = toCategoryDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name must not be empty")
		return
	}

	created, err := h.Categories.CreateCategory(r.Context(), engine.Category{
		Name:   req.Name,
		Icon:   req.Icon,
		Color:  req.Color,
		Active: true,
	})
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryDTO(created))
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.GetProfile(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(profile))
}

func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileDTO
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	profile := engine.Profile{
		RiskThresholds: engine.RiskThresholds{
			Yellow: decimal.NewFromFloat(req.RiskThresholds.Yellow),
			Red:    decimal.NewFromFloat(req.RiskThresholds.Red),
		},
		WeeklyClosingDay: time.Weekday(req.WeeklyClosingDay),
	}
	if err := profile.RiskThresholds.Validate(); err != nil {
		h.writeEngineError(w, err)
		return
	}
	if req.WeeklyClosingDay < 0 || req.WeeklyClosingDay > 6 {
		writeError(w, http.StatusBadRequest, "weekly_closing_day must be 0 through 6")
		return
	}

	if err := h.Profiles.SaveProfile(r.Context(), profile); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(profile))
}

func toProfileDTO(p engine.Profile) ProfileDTO {
	var dto ProfileDTO
	dto.RiskThresholds.Yellow = money(p.RiskThresholds.Yellow)
	dto.RiskThresholds.Red = money(p.RiskThresholds.Red)
	dto.WeeklyClosingDay = int(p.WeeklyClosingDay)
	return dto
}
