/*
simulator.go - Scenario planning and what-if API handlers

PURPOSE:
  HTTP surface for the planning side of the engine: the three-scenario
  monthly plan, applying a chosen scenario to the active budget, what-if
  simulations over current spending, and the recommendation feed.

ENDPOINTS:
  POST /api/simulator/plan            Compute the three scenarios
  POST /api/simulator/apply           Apply one scenario to the active budget
  POST /api/simulator/what-if         Quick or per-category simulation
  GET  /api/simulator/recommendations Spending recommendations

REQUEST FLOW (plan and apply):
  The handler gathers the live snapshots the planner needs, unpaid
  payments for the current month and week/month-to-date actuals, then
  hands everything to the pure planner. Apply re-runs the plan from the
  request body rather than trusting figures a client computed earlier.

SEE ALSO:
  - engine/planner.go: Scenario math
  - engine/whatif.go: Simulation math
  - engine/recommend.go: Recommendation rules
*/
package api

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// PLAN
// =============================================================================

// PlanScenarios computes the three spending scenarios for the current month.
func (h *Handler) PlanScenarios(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result, err := h.runPlan(r, req)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toPlanResponse(result))
}

// runPlan gathers the snapshots the planner needs and runs it.
func (h *Handler) runPlan(r *http.Request, req PlanRequest) (engine.PlanResult, error) {
	inputs, err := planInputsFromRequest(req)
	if err != nil {
		return engine.PlanResult{}, err
	}

	today := h.now()

	payments, err := h.Payments.PaymentsDueInRange(r.Context(), engine.MonthOf(today))
	if err != nil {
		return engine.PlanResult{}, err
	}

	actuals, err := h.currentActuals(r, today)
	if err != nil {
		return engine.PlanResult{}, err
	}

	return h.Planner.Plan(inputs, payments, actuals, today)
}

func planInputsFromRequest(req PlanRequest) (engine.ScenarioInputs, error) {
	income, err := engine.ParseMoney(req.MonthlyIncome)
	if err != nil {
		return engine.ScenarioInputs{}, err
	}
	goal, err := engine.ParseMoney(req.SavingsGoal)
	if err != nil {
		return engine.ScenarioInputs{}, err
	}
	fixed, err := engine.ParseMoney(req.FixedExpenses)
	if err != nil {
		return engine.ScenarioInputs{}, err
	}
	essential, err := engine.ParseMoney(req.EssentialExpenses)
	if err != nil {
		return engine.ScenarioInputs{}, err
	}

	exclude := make([]engine.PaymentID, len(req.ExcludePaymentIDs))
	for i, id := range req.ExcludePaymentIDs {
		exclude[i] = engine.PaymentID(id)
	}

	return engine.ScenarioInputs{
		MonthlyIncome:       income,
		SavingsGoal:         goal,
		FixedExpenses:       fixed,
		EssentialExpenses:   essential,
		UseCalendarPayments: req.UseCalendarPayments,
		ExcludePaymentIDs:   exclude,
	}, nil
}

// currentActuals derives the week- and month-to-date spend totals from the
// expense record. The tracking week runs from the profile's closing day.
func (h *Handler) currentActuals(r *http.Request, today engine.TimePoint) (engine.CurrentPeriodActuals, error) {
	profile, err := h.Profiles.GetProfile(r.Context())
	if err != nil {
		return engine.CurrentPeriodActuals{}, err
	}

	month := engine.MonthOf(today)
	monthExpenses, err := h.Expenses.ExpensesInRange(r.Context(), month)
	if err != nil {
		return engine.CurrentPeriodActuals{}, err
	}

	weekStart := engine.WeekStart(today, profile.WeeklyClosingDay)

	var actuals engine.CurrentPeriodActuals
	for _, e := range monthExpenses {
		actuals.SpentMonthToDate = actuals.SpentMonthToDate.Add(e.Amount)
		if e.Date.AfterOrEqual(weekStart) && e.Date.BeforeOrEqual(today) {
			actuals.SpentWeekToDate = actuals.SpentWeekToDate.Add(e.Amount)
		}
	}
	return actuals, nil
}

// =============================================================================
// APPLY
// =============================================================================

// ApplyScenario re-runs the plan from the request inputs, picks the named
// scenario, and writes its amount through to the active budget's total.
func (h *Handler) ApplyScenario(w http.ResponseWriter, r *http.Request) {
	var req ApplyScenarioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Scenario {
	case engine.ScenarioSpendAll, engine.ScenarioNormal, engine.ScenarioSevere:
	default:
		writeError(w, http.StatusBadRequest, "scenario must be spend_all, normal, or severe")
		return
	}

	result, err := h.runPlan(r, req.PlanRequest)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	scenario := result.Scenarios[req.Scenario]

	budget, err := h.Budgets.CurrentBudget(r.Context(), h.now())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	total, err := engine.AmountForPeriod(scenario, budget.Period)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	notes := req.Notes
	if notes == "" {
		notes = budget.Notes
	}
	updated, err := h.Budgets.UpdateBudgetPlan(r.Context(), budget.ID, total, notes)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.Log.WithFields(logrus.Fields{
		"budget_id": updated.ID,
		"scenario":  req.Scenario,
		"total":     total.String(),
	}).Info("scenario applied to budget")

	writeJSON(w, http.StatusOK, ApplyScenarioResponse{
		Scenario:     req.Scenario,
		AppliedTotal: money(total),
		Budget:       toBudgetDTO(updated),
	})
}

// =============================================================================
// WHAT-IF
// =============================================================================

// WhatIf runs a hypothetical against the current budget's spending. A body
// with simulation_type runs the quick single-knob form; a body with
// adjustments runs the per-category form.
func (h *Handler) WhatIf(w http.ResponseWriter, r *http.Request) {
	var req WhatIfRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	budget, err := h.Budgets.CurrentBudget(r.Context(), h.now())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	current, err := h.spendingFor(r, budget)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	if req.SimulationType != "" {
		h.quickWhatIf(w, req, current, h.thresholdsFor(r))
		return
	}
	h.adjustmentWhatIf(w, req, current)
}

func (h *Handler) quickWhatIf(w http.ResponseWriter, req WhatIfRequest, current engine.BudgetWithSpending, thresholds engine.RiskThresholds) {
	additional, err := engine.ParseMoney(req.AdditionalExpense)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	newBudget, err := engine.ParseMoney(req.NewBudgetAmount)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	result, err := engine.SimulateQuick(current, engine.QuickSimulation{
		Type:              engine.SimulationType(req.SimulationType),
		AdditionalExpense: additional,
		NewBudgetAmount:   newBudget,
	}, thresholds)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, QuickSimulationResponse{
		OriginalBudget:      money(result.Original.Budget),
		OriginalSpent:       money(result.Original.Spent),
		OriginalRemaining:   money(result.Original.Remaining),
		OriginalPercentage:  money(result.Original.PercentageUsed),
		SimulatedBudget:     money(result.Simulated.Budget),
		SimulatedSpent:      money(result.Simulated.Spent),
		SimulatedRemaining:  money(result.Simulated.Remaining),
		SimulatedPercentage: money(result.Simulated.PercentageUsed),
		SimulatedRiskLevel:  string(result.RiskLevel),
		Difference:          money(result.Difference),
		Recommendation:      result.Recommendation,
	})
}

func (h *Handler) adjustmentWhatIf(w http.ResponseWriter, req WhatIfRequest, current engine.BudgetWithSpending) {
	adjustments := make([]engine.CategoryAdjustment, 0, len(req.Adjustments))
	for _, a := range req.Adjustments {
		change, err := engine.ParseMoney(a.PercentageChange)
		if err != nil {
			h.writeEngineError(w, err)
			return
		}
		adjustments = append(adjustments, engine.CategoryAdjustment{
			CategoryID:       engine.CategoryID(a.CategoryID),
			PercentageChange: change,
		})
	}

	result, err := engine.SimulateAdjustments(current, adjustments)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	byCategory := make([]AdjustedCategoryDTO, len(result.ByCategory))
	for i, c := range result.ByCategory {
		byCategory[i] = AdjustedCategoryDTO{
			CategoryID: string(c.CategoryID),
			Name:       c.Name,
			Icon:       c.Icon,
			Color:      c.Color,
			Current:    money(c.Current),
			Simulated:  money(c.Simulated),
			Difference: money(c.Difference),
		}
	}

	writeJSON(w, http.StatusOK, AdjustmentResponse{
		CurrentState:   toBudgetStateDTO(result.CurrentState),
		SimulatedState: toBudgetStateDTO(result.SimulatedState),
		Impact: AdjustmentImpactDTO{
			SpendingDifference:   money(result.Impact.SpendingDifference),
			PercentageDifference: money(result.Impact.PercentageDifference),
			RemainingDifference:  money(result.Impact.RemainingDifference),
		},
		ByCategory: byCategory,
	})
}

// =============================================================================
// RECOMMENDATIONS
// =============================================================================

// GetRecommendations analyzes the current budget and returns prioritized
// spending suggestions.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	budget, err := h.Budgets.CurrentBudget(r.Context(), h.now())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	current, err := h.spendingFor(r, budget)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	categories, err := h.Categories.Categories(r.Context())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	report := engine.Recommend(current, categories, h.thresholdsFor(r))

	var resp RecommendationsResponse
	resp.Recommendations = make([]RecommendationDTO, len(report.Recommendations))
	for i, rec := range report.Recommendations {
		resp.Recommendations[i] = RecommendationDTO{
			Type:               string(rec.Type),
			Title:              rec.Title,
			Message:            rec.Message,
			Priority:           string(rec.Priority),
			CategoryID:         string(rec.CategoryID),
			SuggestedReduction: money(rec.SuggestedReduction),
		}
	}
	resp.CurrentStats.Budget = money(report.Budget)
	resp.CurrentStats.Spent = money(report.Spent)
	resp.CurrentStats.Remaining = money(report.Remaining)
	resp.CurrentStats.PercentageUsed = money(report.PercentageUsed)

	writeJSON(w, http.StatusOK, resp)
}
