/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY ENCODING:
  The engine computes with decimals; the wire format is plain JSON numbers
  rounded to two places, matching what the clients expect.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - simulator.go: Plan/what-if request handling
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// BUDGET TYPES
// =============================================================================

// BudgetDTO represents a budget in API responses.
type BudgetDTO struct {
	ID          string          `json:"id"`
	TotalAmount float64         `json:"total_amount"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Notes       string          `json:"notes,omitempty"`
	Active      bool            `json:"active"`
	Allocations []AllocationDTO `json:"allocations"`
	CreatedAt   string          `json:"created_at,omitempty"`
}

// AllocationDTO is a per-category sub-budget.
type AllocationDTO struct {
	CategoryID      string  `json:"category_id"`
	AllocatedAmount float64 `json:"allocated_amount"`
}

// CreateBudgetRequest is the request to create a budget.
type CreateBudgetRequest struct {
	TotalAmount float64         `json:"total_amount"`
	PeriodStart string          `json:"period_start"`
	PeriodEnd   string          `json:"period_end"`
	Notes       string          `json:"notes"`
	Allocations []AllocationDTO `json:"allocations"`
}

// UpdateBudgetRequest rewrites a budget's plan figures.
type UpdateBudgetRequest struct {
	TotalAmount float64 `json:"total_amount"`
	Notes       string  `json:"notes"`
}

// ReplaceAllocationsRequest replaces a budget's allocation set.
type ReplaceAllocationsRequest struct {
	Allocations []AllocationDTO `json:"allocations"`
}

// CategorySpendingDTO is one row of the by-category breakdown.
type CategorySpendingDTO struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon,omitempty"`
	Color      string  `json:"color,omitempty"`
	Total      float64 `json:"total"`
}

// BudgetWithSpendingDTO is the utilization view of a budget.
type BudgetWithSpendingDTO struct {
	Budget         BudgetDTO             `json:"budget"`
	Spent          float64               `json:"spent"`
	Remaining      float64               `json:"remaining"`
	PercentageUsed float64               `json:"percentage_used"`
	ByCategory     []CategorySpendingDTO `json:"by_category"`
}

// DailySpendingDTO is one entry of the daily trend series, with the ideal
// linear pace at the same index.
type DailySpendingDTO struct {
	Date        string  `json:"date"`
	DailyAmount float64 `json:"daily_amount"`
	Accumulated float64 `json:"accumulated"`
	Ideal       float64 `json:"ideal"`
}

// DailySpendingResponse wraps the series with its period metadata.
type DailySpendingResponse struct {
	BudgetID       string             `json:"budget_id"`
	RawDays        int                `json:"raw_days"`
	NormalizedDays int                `json:"normalized_days"`
	Series         []DailySpendingDTO `json:"series"`
}

// RiskIndicatorDTO is a budget's traffic-light risk assessment.
type RiskIndicatorDTO struct {
	Level      string  `json:"level"`
	Percentage float64 `json:"percentage"`
	Spent      float64 `json:"spent"`
	Budget     float64 `json:"budget"`
	Remaining  float64 `json:"remaining"`
	Message    string  `json:"message"`
}

// =============================================================================
// SIMULATOR TYPES
// =============================================================================

// PlanRequest is the simulator entry point's input contract.
type PlanRequest struct {
	MonthlyIncome       float64  `json:"monthly_income"`
	SavingsGoal         float64  `json:"savings_goal"`
	FixedExpenses       float64  `json:"fixed_expenses"`
	EssentialExpenses   float64  `json:"essential_expenses"`
	UseCalendarPayments bool     `json:"use_calendar_payments"`
	ExcludePaymentIDs   []string `json:"exclude_payment_ids"`
}

// PlanResponse is the simulator output: resolved inputs plus the three
// scenarios.
type PlanResponse struct {
	Inputs              PlanInputsDTO       `json:"inputs"`
	FixedExpensesUsed   float64             `json:"fixed_expenses_used"`
	FixedExpensesSource string              `json:"fixed_expenses_source"`
	CalendarPayments    CalendarPaymentsDTO `json:"calendar_payments"`
	WeeksInMonth        float64             `json:"weeks_in_month"`
	DaysInMonth         int                 `json:"days_in_month"`
	Scenarios           ScenarioSetDTO      `json:"scenarios"`
}

// PlanInputsDTO echoes the request's resolved inputs.
type PlanInputsDTO struct {
	MonthlyIncome       float64 `json:"monthly_income"`
	SavingsGoal         float64 `json:"savings_goal"`
	FixedExpenses       float64 `json:"fixed_expenses"`
	EssentialExpenses   float64 `json:"essential_expenses"`
	UseCalendarPayments bool    `json:"use_calendar_payments"`
}

// CalendarPaymentsDTO summarizes the unpaid in-month payments.
type CalendarPaymentsDTO struct {
	MonthStart    string              `json:"month_start"`
	MonthEnd      string              `json:"month_end"`
	Total         float64             `json:"total"`
	IncludedTotal float64             `json:"included_total"`
	IncludedIDs   []string            `json:"included_ids"`
	Payments      []PaymentSummaryDTO `json:"payments"`
}

// PaymentSummaryDTO is the slim payment view inside plan responses.
type PaymentSummaryDTO struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	DueDate string  `json:"due_date"`
}

// ScenarioSetDTO names the three scenarios explicitly so the JSON keys are
// stable regardless of map ordering.
type ScenarioSetDTO struct {
	SpendAll ScenarioDTO `json:"spend_all"`
	Normal   ScenarioDTO `json:"normal"`
	Severe   ScenarioDTO `json:"severe"`
}

// ScenarioDTO is one computed spending plan.
type ScenarioDTO struct {
	Label                string              `json:"label"`
	SavingsMonthly       float64             `json:"savings_monthly"`
	AvailableMonthly     float64             `json:"available_monthly"`
	EssentialMonthly     float64             `json:"essential_monthly"`
	DiscretionaryMonthly float64             `json:"discretionary_monthly"`
	Weekly               WeeklySplitDTO      `json:"weekly"`
	Tracking             ScenarioTrackingDTO `json:"tracking"`
	Feasible             bool                `json:"feasible"`
	Shortfall            float64             `json:"shortfall"`
	RiskLevel            string              `json:"risk_level"`
	Recommendation       string              `json:"recommendation"`
}

// WeeklySplitDTO is the weekly breakdown of a scenario.
type WeeklySplitDTO struct {
	Total         float64 `json:"total"`
	Essential     float64 `json:"essential"`
	Discretionary float64 `json:"discretionary"`
}

// ScenarioTrackingDTO compares actuals with scenario targets.
type ScenarioTrackingDTO struct {
	SpentWeekToDate     float64 `json:"spent_week_to_date"`
	RemainingWeek       float64 `json:"remaining_week"`
	WeekExceeded        bool    `json:"week_exceeded"`
	SpentMonthToDate    float64 `json:"spent_month_to_date"`
	WeeklyTarget        float64 `json:"weekly_target"`
	ExpectedMonthToDate float64 `json:"expected_month_to_date"`
	AdherenceRatio      float64 `json:"adherence_ratio"`
	AdherenceStatus     string  `json:"adherence_status"`
}

// ApplyScenarioRequest applies one of a plan's scenarios to the active
// budget. The plan is re-run server side so there is nothing stale to trust.
type ApplyScenarioRequest struct {
	PlanRequest
	Scenario string `json:"scenario"`
	Notes    string `json:"notes"`
}

// ApplyScenarioResponse reports the applied figure and the updated budget.
type ApplyScenarioResponse struct {
	Scenario     string    `json:"scenario"`
	AppliedTotal float64   `json:"applied_total"`
	Budget       BudgetDTO `json:"budget"`
}

// WhatIfRequest drives both what-if shapes: quick single-knob simulations
// (simulation_type set) and per-category percentage adjustments.
type WhatIfRequest struct {
	SimulationType    string          `json:"simulation_type,omitempty"`
	AdditionalExpense float64         `json:"additional_expense,omitempty"`
	NewBudgetAmount   float64         `json:"new_budget_amount,omitempty"`
	Adjustments       []AdjustmentDTO `json:"adjustments,omitempty"`
}

// AdjustmentDTO scales one category's spend by a percentage.
type AdjustmentDTO struct {
	CategoryID       string  `json:"category_id"`
	PercentageChange float64 `json:"percentage_change"`
}

// QuickSimulationResponse is the quick what-if output.
type QuickSimulationResponse struct {
	OriginalBudget      float64 `json:"original_budget"`
	OriginalSpent       float64 `json:"original_spent"`
	OriginalRemaining   float64 `json:"original_remaining"`
	OriginalPercentage  float64 `json:"original_percentage"`
	SimulatedBudget     float64 `json:"simulated_budget"`
	SimulatedSpent      float64 `json:"simulated_spent"`
	SimulatedRemaining  float64 `json:"simulated_remaining"`
	SimulatedPercentage float64 `json:"simulated_percentage"`
	SimulatedRiskLevel  string  `json:"simulated_risk_level"`
	Difference          float64 `json:"difference"`
	Recommendation      string  `json:"recommendation"`
}

// BudgetStateDTO is one before-or-after snapshot in an adjustment response.
type BudgetStateDTO struct {
	TotalSpent     float64 `json:"total_spent"`
	Remaining      float64 `json:"remaining"`
	PercentageUsed float64 `json:"percentage_used"`
}

// AdjustmentImpactDTO aggregates the effect of category adjustments.
type AdjustmentImpactDTO struct {
	SpendingDifference   float64 `json:"spending_difference"`
	PercentageDifference float64 `json:"percentage_difference"`
	RemainingDifference  float64 `json:"remaining_difference"`
}

// AdjustedCategoryDTO is one category's before/after pair.
type AdjustedCategoryDTO struct {
	CategoryID string  `json:"category_id"`
	Name       string  `json:"name"`
	Icon       string  `json:"icon,omitempty"`
	Color      string  `json:"color,omitempty"`
	Current    float64 `json:"current"`
	Simulated  float64 `json:"simulated"`
	Difference float64 `json:"difference"`
}

// AdjustmentResponse is the category-adjustment what-if output.
type AdjustmentResponse struct {
	CurrentState   BudgetStateDTO        `json:"current_state"`
	SimulatedState BudgetStateDTO        `json:"simulated_state"`
	Impact         AdjustmentImpactDTO   `json:"impact"`
	ByCategory     []AdjustedCategoryDTO `json:"by_category"`
}

// RecommendationDTO is one spending suggestion.
type RecommendationDTO struct {
	Type               string  `json:"type"`
	Title              string  `json:"title"`
	Message            string  `json:"message"`
	Priority           string  `json:"priority"`
	CategoryID         string  `json:"category_id,omitempty"`
	SuggestedReduction float64 `json:"suggested_reduction,omitempty"`
}

// RecommendationsResponse bundles suggestions with current stats.
type RecommendationsResponse struct {
	Recommendations []RecommendationDTO `json:"recommendations"`
	CurrentStats    struct {
		Budget         float64 `json:"budget"`
		Spent          float64 `json:"spent"`
		Remaining      float64 `json:"remaining"`
		PercentageUsed float64 `json:"percentage_used"`
	} `json:"current_stats"`
}

// =============================================================================
// EXPENSE / PAYMENT / CATEGORY / PROFILE TYPES
// =============================================================================

// ExpenseDTO represents an expense record.
type ExpenseDTO struct {
	ID         string  `json:"id"`
	Amount     float64 `json:"amount"`
	CategoryID string  `json:"category_id,omitempty"`
	Date       string  `json:"expense_date"`
	Notes      string  `json:"notes,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// CreateExpenseRequest is the request to record an expense.
type CreateExpenseRequest struct {
	Amount     float64 `json:"amount"`
	CategoryID string  `json:"category_id"`
	Date       string  `json:"expense_date"`
	Notes      string  `json:"notes"`
}

// PaymentDTO represents a scheduled payment.
type PaymentDTO struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	DueDate    string  `json:"due_date"`
	Frequency  string  `json:"frequency"`
	CategoryID string  `json:"category_id,omitempty"`
	IsPaid     bool    `json:"is_paid"`
	PaidAt     string  `json:"paid_at,omitempty"`
	Notes      string  `json:"notes,omitempty"`
}

// CreatePaymentRequest is the request to schedule a payment.
type CreatePaymentRequest struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	DueDate    string  `json:"due_date"`
	Frequency  string  `json:"frequency"`
	CategoryID string  `json:"category_id"`
	Notes      string  `json:"notes"`
}

// MarkPaidResponse returns the settled payment and, for recurring
// frequencies, the scheduled follow-up.
type MarkPaidResponse struct {
	Payment PaymentDTO  `json:"payment"`
	Next    *PaymentDTO `json:"next,omitempty"`
}

// CategoryDTO represents category display metadata.
type CategoryDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

// ProfileDTO carries the per-user settings.
type ProfileDTO struct {
	RiskThresholds struct {
		Yellow float64 `json:"yellow"`
		Red    float64 `json:"red"`
	} `json:"risk_thresholds"`
	WeeklyClosingDay int `json:"weekly_closing_day"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

// money rounds a decimal to the wire's two-place float form.
func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

func toBudgetDTO(b engine.Budget) BudgetDTO {
	allocations := make([]AllocationDTO, len(b.Allocations))
	for i, a := range b.Allocations {
		allocations[i] = AllocationDTO{
			CategoryID:      string(a.CategoryID),
			AllocatedAmount: money(a.Amount),
		}
	}
	return BudgetDTO{
		ID:          string(b.ID),
		TotalAmount: money(b.TotalAmount),
		PeriodStart: b.Period.Start.String(),
		PeriodEnd:   b.Period.End.String(),
		Notes:       b.Notes,
		Active:      b.Active,
		Allocations: allocations,
		CreatedAt:   b.CreatedAt.Format(time.RFC3339),
	}
}

func toBudgetWithSpendingDTO(bws engine.BudgetWithSpending) BudgetWithSpendingDTO {
	byCategory := make([]CategorySpendingDTO, len(bws.ByCategory))
	for i, c := range bws.ByCategory {
		byCategory[i] = CategorySpendingDTO{
			CategoryID: string(c.CategoryID),
			Name:       c.Name,
			Icon:       c.Icon,
			Color:      c.Color,
			Total:      money(c.Total),
		}
	}
	return BudgetWithSpendingDTO{
		Budget:         toBudgetDTO(bws.Budget),
		Spent:          money(bws.Spent),
		Remaining:      money(bws.Remaining),
		PercentageUsed: money(bws.PercentageUsed),
		ByCategory:     byCategory,
	}
}

func toRiskIndicatorDTO(r engine.RiskIndicator) RiskIndicatorDTO {
	return RiskIndicatorDTO{
		Level:      string(r.Level),
		Percentage: money(r.Percentage),
		Spent:      money(r.Spent),
		Budget:     money(r.Budget),
		Remaining:  money(r.Remaining),
		Message:    r.Message,
	}
}

func toScenarioDTO(s engine.Scenario) ScenarioDTO {
	return ScenarioDTO{
		Label:                s.Label,
		SavingsMonthly:       money(s.SavingsMonthly),
		AvailableMonthly:     money(s.AvailableMonthly),
		EssentialMonthly:     money(s.EssentialMonthly),
		DiscretionaryMonthly: money(s.DiscretionaryMonthly),
		Weekly: WeeklySplitDTO{
			Total:         money(s.Weekly.Total),
			Essential:     money(s.Weekly.Essential),
			Discretionary: money(s.Weekly.Discretionary),
		},
		Tracking: ScenarioTrackingDTO{
			SpentWeekToDate:     money(s.Tracking.SpentWeekToDate),
			RemainingWeek:       money(s.Tracking.RemainingWeek),
			WeekExceeded:        s.Tracking.WeekExceeded,
			SpentMonthToDate:    money(s.Tracking.SpentMonthToDate),
			WeeklyTarget:        money(s.Tracking.WeeklyTarget),
			ExpectedMonthToDate: money(s.Tracking.ExpectedMonthToDate),
			AdherenceRatio:      money(s.Tracking.AdherenceRatio),
			AdherenceStatus:     string(s.Tracking.AdherenceStatus),
		},
		Feasible:       s.Feasible,
		Shortfall:      money(s.Shortfall),
		RiskLevel:      string(s.RiskLevel),
		Recommendation: s.Recommendation,
	}
}

func toPlanResponse(result engine.PlanResult) PlanResponse {
	payments := make([]PaymentSummaryDTO, len(result.CalendarPayments.Payments))
	for i, p := range result.CalendarPayments.Payments {
		payments[i] = PaymentSummaryDTO{
			ID:      string(p.ID),
			Name:    p.Name,
			Amount:  money(p.Amount),
			DueDate: p.DueDate.String(),
		}
	}
	includedIDs := make([]string, len(result.CalendarPayments.IncludedIDs))
	for i, id := range result.CalendarPayments.IncludedIDs {
		includedIDs[i] = string(id)
	}

	weeks, _ := result.WeeksInMonth.Round(2).Float64()

	return PlanResponse{
		Inputs: PlanInputsDTO{
			MonthlyIncome:       money(result.Inputs.MonthlyIncome),
			SavingsGoal:         money(result.Inputs.SavingsGoal),
			FixedExpenses:       money(result.FixedExpensesUsed),
			EssentialExpenses:   money(result.Inputs.EssentialExpenses),
			UseCalendarPayments: result.Inputs.UseCalendarPayments,
		},
		FixedExpensesUsed:   money(result.FixedExpensesUsed),
		FixedExpensesSource: string(result.FixedExpensesSource),
		CalendarPayments: CalendarPaymentsDTO{
			MonthStart:    result.CalendarPayments.Month.Start.String(),
			MonthEnd:      result.CalendarPayments.Month.End.String(),
			Total:         money(result.CalendarPayments.Total),
			IncludedTotal: money(result.CalendarPayments.IncludedTotal),
			IncludedIDs:   includedIDs,
			Payments:      payments,
		},
		WeeksInMonth: weeks,
		DaysInMonth:  result.DaysInMonth,
		Scenarios: ScenarioSetDTO{
			SpendAll: toScenarioDTO(result.Scenarios[engine.ScenarioSpendAll]),
			Normal:   toScenarioDTO(result.Scenarios[engine.ScenarioNormal]),
			Severe:   toScenarioDTO(result.Scenarios[engine.ScenarioSevere]),
		},
	}
}

func toExpenseDTO(e engine.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:         string(e.ID),
		Amount:     money(e.Amount),
		CategoryID: string(e.CategoryID),
		Date:       e.Date.String(),
		Notes:      e.Notes,
		CreatedAt:  e.CreatedAt.Format(time.RFC3339),
	}
}

func toPaymentDTO(p engine.Payment) PaymentDTO {
	dto := PaymentDTO{
		ID:         string(p.ID),
		Name:       p.Name,
		Amount:     money(p.Amount),
		DueDate:    p.DueDate.String(),
		Frequency:  string(p.Frequency),
		CategoryID: string(p.CategoryID),
		IsPaid:     p.Paid,
		Notes:      p.Notes,
	}
	if p.PaidAt != nil {
		dto.PaidAt = p.PaidAt.Format(time.RFC3339)
	}
	return dto
}

func toCategoryDTO(c engine.Category) CategoryDTO {
	return CategoryDTO{
		ID:    string(c.ID),
		Name:  c.Name,
		Icon:  c.Icon,
		Color: c.Color,
	}
}

func toBudgetStateDTO(s engine.BudgetState) BudgetStateDTO {
	return BudgetStateDTO{
		TotalSpent:     money(s.Spent),
		Remaining:      money(s.Remaining),
		PercentageUsed: money(s.PercentageUsed),
	}
}
