package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func spendingSnapshot(t *testing.T, total float64, expenses []engine.Expense) engine.BudgetWithSpending {
	t.Helper()
	bws, err := engine.ComputeSpending(januaryBudget(total), expenses, testCategories())
	if err != nil {
		t.Fatalf("snapshot setup failed: %v", err)
	}
	return bws
}

// =============================================================================
// QUICK SIMULATION TESTS
// =============================================================================

func TestSimulateQuick_AddExpense(t *testing.T) {
	// GIVEN: 1000 budget with 600 spent
	// WHEN: Simulating an extra 350 expense
	// THEN: Spend moves to 950, remaining drops by 350, risk goes red

	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(600, "groceries", day(2024, time.January, 10)),
	})

	result, err := engine.SimulateQuick(current, engine.QuickSimulation{
		Type:              engine.SimulateAddExpense,
		AdditionalExpense: money(350),
	}, engine.DefaultRiskThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Original.Spent.Equal(money(600)) {
		t.Errorf("expected original spent 600, got %v", result.Original.Spent)
	}
	if !result.Simulated.Spent.Equal(money(950)) {
		t.Errorf("expected simulated spent 950, got %v", result.Simulated.Spent)
	}
	if !result.Simulated.Remaining.Equal(money(50)) {
		t.Errorf("expected simulated remaining 50, got %v", result.Simulated.Remaining)
	}
	if !result.Difference.Equal(money(-350)) {
		t.Errorf("expected difference -350, got %v", result.Difference)
	}
	if result.RiskLevel != engine.RiskRed {
		t.Errorf("expected red at 95%%, got %s", result.RiskLevel)
	}
	if result.Recommendation == "" {
		t.Error("expected a non-empty recommendation")
	}
}

func TestSimulateQuick_AdjustBudget(t *testing.T) {
	// GIVEN: 1000 budget with 600 spent (60%, green)
	// WHEN: Shrinking the budget to 700
	// THEN: Same spend is now ~85.7%, yellow

	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(600, "groceries", day(2024, time.January, 10)),
	})

	result, err := engine.SimulateQuick(current, engine.QuickSimulation{
		Type:            engine.SimulateAdjustBudget,
		NewBudgetAmount: money(700),
	}, engine.DefaultRiskThresholds())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Simulated.Budget.Equal(money(700)) {
		t.Errorf("expected simulated budget 700, got %v", result.Simulated.Budget)
	}
	if !result.Simulated.Remaining.Equal(money(100)) {
		t.Errorf("expected simulated remaining 100, got %v", result.Simulated.Remaining)
	}
	if result.RiskLevel != engine.RiskYellow {
		t.Errorf("expected yellow, got %s", result.RiskLevel)
	}
	if !result.Difference.Equal(money(-300)) {
		t.Errorf("expected difference -300, got %v", result.Difference)
	}
}

func TestSimulateQuick_RejectsNonPositiveKnobs(t *testing.T) {
	current := spendingSnapshot(t, 1000, nil)

	cases := []struct {
		name string
		sim  engine.QuickSimulation
	}{
		{"zero expense", engine.QuickSimulation{Type: engine.SimulateAddExpense}},
		{"negative expense", engine.QuickSimulation{Type: engine.SimulateAddExpense, AdditionalExpense: money(-5)}},
		{"zero budget", engine.QuickSimulation{Type: engine.SimulateAdjustBudget}},
		{"unknown type", engine.QuickSimulation{Type: "freeze_spending"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.SimulateQuick(current, tc.sim, engine.DefaultRiskThresholds())
			if !errors.Is(err, engine.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

// =============================================================================
// CATEGORY ADJUSTMENT TESTS
// =============================================================================

func TestSimulateAdjustments_ScalesTargetedCategories(t *testing.T) {
	// GIVEN: 200 groceries + 100 transport against a 1000 budget
	// WHEN: Cutting groceries by 20%
	// THEN: Groceries simulates at 160, transport passes through untouched

	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(200, "groceries", day(2024, time.January, 5)),
		expense(100, "transport", day(2024, time.January, 6)),
	})

	result, err := engine.SimulateAdjustments(current, []engine.CategoryAdjustment{
		{CategoryID: "groceries", PercentageChange: money(-20)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.CurrentState.Spent.Equal(money(300)) {
		t.Errorf("expected current spend 300, got %v", result.CurrentState.Spent)
	}
	if !result.SimulatedState.Spent.Equal(money(260)) {
		t.Errorf("expected simulated spend 260, got %v", result.SimulatedState.Spent)
	}
	if !result.Impact.SpendingDifference.Equal(money(-40)) {
		t.Errorf("expected spending difference -40, got %v", result.Impact.SpendingDifference)
	}
	if !result.Impact.RemainingDifference.Equal(money(40)) {
		t.Errorf("expected remaining difference 40, got %v", result.Impact.RemainingDifference)
	}

	if len(result.ByCategory) != 2 {
		t.Fatalf("expected 2 category rows, got %d", len(result.ByCategory))
	}
	for _, row := range result.ByCategory {
		switch row.CategoryID {
		case "groceries":
			if !row.Simulated.Equal(money(160)) || !row.Difference.Equal(money(-40)) {
				t.Errorf("groceries: expected 160 / -40, got %v / %v", row.Simulated, row.Difference)
			}
		case "transport":
			if !row.Simulated.Equal(money(100)) || !row.Difference.IsZero() {
				t.Errorf("transport: expected unchanged 100, got %v / %v", row.Simulated, row.Difference)
			}
		default:
			t.Errorf("unexpected category %s", row.CategoryID)
		}
	}
}

func TestSimulateAdjustments_IncreaseRaisesPercentage(t *testing.T) {
	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(500, "groceries", day(2024, time.January, 5)),
	})

	result, err := engine.SimulateAdjustments(current, []engine.CategoryAdjustment{
		{CategoryID: "groceries", PercentageChange: money(50)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.SimulatedState.Spent.Equal(money(750)) {
		t.Errorf("expected simulated spend 750, got %v", result.SimulatedState.Spent)
	}
	if !result.Impact.PercentageDifference.Equal(money(25)) {
		t.Errorf("expected percentage difference 25, got %v", result.Impact.PercentageDifference)
	}
}

func TestSimulateAdjustments_EmptySet_Rejected(t *testing.T) {
	current := spendingSnapshot(t, 1000, nil)

	_, err := engine.SimulateAdjustments(current, nil)
	if !errors.Is(err, engine.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
