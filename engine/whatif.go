/*
whatif.go - Quick hypothetical simulations over the current budget

PURPOSE:
  Answers "what happens if" questions without touching stored data. Two
  shapes are supported:
    - Quick simulations: add a one-off expense, or resize the budget total,
      and see the resulting remaining/percentage/risk.
    - Category adjustments: scale one or more categories' current spend by a
      percentage and see the aggregate impact.

  Everything operates on a BudgetWithSpending snapshot the caller already
  computed; nothing here reads or writes stores.

SEE ALSO:
  - tracker.go: Produces the snapshot these simulations perturb
  - risk.go: Tiering of the simulated state
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// SimulationType selects which quick simulation to run.
type SimulationType string

const (
	SimulateAddExpense   SimulationType = "add_expense"
	SimulateAdjustBudget SimulationType = "adjust_budget"
)

// QuickSimulation is a single-knob hypothetical over the current budget.
type QuickSimulation struct {
	Type SimulationType

	// AdditionalExpense applies to add_expense; NewBudgetAmount to
	// adjust_budget. Both must be positive for their respective type.
	AdditionalExpense decimal.Decimal
	NewBudgetAmount   decimal.Decimal
}

// BudgetState is one before-or-after snapshot of a simulated budget.
type BudgetState struct {
	Budget         decimal.Decimal
	Spent          decimal.Decimal
	Remaining      decimal.Decimal
	PercentageUsed decimal.Decimal
}

// QuickSimulationResult compares the current budget state with the
// simulated one.
type QuickSimulationResult struct {
	Original       BudgetState
	Simulated      BudgetState
	RiskLevel      RiskLevel
	Difference     decimal.Decimal
	Recommendation string
}

// SimulateQuick runs a single-knob hypothetical against the given spending
// snapshot.
func SimulateQuick(current BudgetWithSpending, sim QuickSimulation, thresholds RiskThresholds) (QuickSimulationResult, error) {
	simSpent := current.Spent
	simBudget := current.Budget.TotalAmount

	switch sim.Type {
	case SimulateAddExpense:
		if !sim.AdditionalExpense.IsPositive() {
			return QuickSimulationResult{}, &InvalidInputError{Field: "additional_expense", Reason: "must be greater than 0"}
		}
		simSpent = simSpent.Add(sim.AdditionalExpense)
	case SimulateAdjustBudget:
		if !sim.NewBudgetAmount.IsPositive() {
			return QuickSimulationResult{}, &InvalidInputError{Field: "new_budget_amount", Reason: "must be greater than 0"}
		}
		simBudget = sim.NewBudgetAmount
	default:
		return QuickSimulationResult{}, &InvalidInputError{Field: "simulation_type", Reason: "unknown simulation type"}
	}

	original := stateOf(current.Budget.TotalAmount, current.Spent)
	simulated := stateOf(simBudget, simSpent)
	level := levelForPercent(simulated.PercentageUsed, thresholds)

	return QuickSimulationResult{
		Original:       original,
		Simulated:      simulated,
		RiskLevel:      level,
		Difference:     simulated.Remaining.Sub(original.Remaining),
		Recommendation: quickRecommendation(level),
	}, nil
}

func stateOf(budget, spent decimal.Decimal) BudgetState {
	percentage := decimal.Zero
	if budget.IsPositive() {
		percentage = spent.Div(budget).Mul(oneHundred)
	}
	return BudgetState{
		Budget:         budget,
		Spent:          spent,
		Remaining:      budget.Sub(spent),
		PercentageUsed: percentage,
	}
}

func quickRecommendation(level RiskLevel) string {
	switch level {
	case RiskRed:
		return "High risk: this change pushes you past your critical budget threshold."
	case RiskYellow:
		return "Caution: this change brings you close to your budget limit."
	default:
		return "Good control: your budget stays in a healthy range."
	}
}

// CategoryAdjustment scales one category's current spend by a percentage.
// A change of -20 means "spend 20% less in this category".
type CategoryAdjustment struct {
	CategoryID       CategoryID
	PercentageChange decimal.Decimal
}

// AdjustedCategory is one category's before/after pair in an adjustment
// simulation.
type AdjustedCategory struct {
	CategoryID CategoryID
	Name       string
	Icon       string
	Color      string
	Current    decimal.Decimal
	Simulated  decimal.Decimal
	Difference decimal.Decimal
}

// AdjustmentImpact aggregates the effect of a set of category adjustments.
type AdjustmentImpact struct {
	SpendingDifference   decimal.Decimal
	PercentageDifference decimal.Decimal
	RemainingDifference  decimal.Decimal
}

// AdjustmentResult is the full outcome of a category-adjustment simulation.
type AdjustmentResult struct {
	CurrentState   BudgetState
	SimulatedState BudgetState
	Impact         AdjustmentImpact
	ByCategory     []AdjustedCategory
}

// SimulateAdjustments scales per-category spend by the requested
// percentages and reports the aggregate impact on the budget. Categories
// without an adjustment pass through unchanged.
func SimulateAdjustments(current BudgetWithSpending, adjustments []CategoryAdjustment) (AdjustmentResult, error) {
	if len(adjustments) == 0 {
		return AdjustmentResult{}, &InvalidInputError{Field: "adjustments", Reason: "at least one adjustment is required"}
	}

	byCategory := make(map[CategoryID]decimal.Decimal, len(adjustments))
	for _, adj := range adjustments {
		byCategory[adj.CategoryID] = adj.PercentageChange
	}

	one := decimal.NewFromInt(1)
	simulatedTotal := decimal.Zero
	out := make([]AdjustedCategory, 0, len(current.ByCategory))

	for _, cat := range current.ByCategory {
		simulated := cat.Total
		if change, ok := byCategory[cat.CategoryID]; ok {
			simulated = cat.Total.Mul(one.Add(change.Div(oneHundred)))
		}
		simulatedTotal = simulatedTotal.Add(simulated)
		out = append(out, AdjustedCategory{
			CategoryID: cat.CategoryID,
			Name:       cat.Name,
			Icon:       cat.Icon,
			Color:      cat.Color,
			Current:    cat.Total,
			Simulated:  simulated,
			Difference: simulated.Sub(cat.Total),
		})
	}

	currentState := stateOf(current.Budget.TotalAmount, current.Spent)
	simulatedState := stateOf(current.Budget.TotalAmount, simulatedTotal)

	return AdjustmentResult{
		CurrentState:   currentState,
		SimulatedState: simulatedState,
		Impact: AdjustmentImpact{
			SpendingDifference:   simulatedTotal.Sub(current.Spent),
			PercentageDifference: simulatedState.PercentageUsed.Sub(currentState.PercentageUsed),
			RemainingDifference:  simulatedState.Remaining.Sub(currentState.Remaining),
		},
		ByCategory: out,
	}, nil
}
