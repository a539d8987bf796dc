package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func januaryBudget(total float64) engine.Budget {
	return engine.Budget{
		ID:          "budget-1",
		TotalAmount: money(total),
		Period:      period(day(2024, time.January, 1), day(2024, time.January, 31)),
		Active:      true,
	}
}

func expense(amount float64, categoryID string, date engine.TimePoint) engine.Expense {
	return engine.Expense{
		Amount:     money(amount),
		CategoryID: engine.CategoryID(categoryID),
		Date:       date,
	}
}

func testCategories() map[engine.CategoryID]engine.Category {
	return map[engine.CategoryID]engine.Category{
		"groceries": {ID: "groceries", Name: "Groceries", Icon: "cart", Color: "#22C55E"},
		"transport": {ID: "transport", Name: "Transport", Icon: "bus", Color: "#3B82F6"},
	}
}

// =============================================================================
// SPENDING COMPUTATION TESTS
// =============================================================================

func TestComputeSpending_SumsOnlyInPeriodExpenses(t *testing.T) {
	// GIVEN: Expenses inside and outside the budget period
	// WHEN: Computing spending
	// THEN: Only in-period amounts count, boundaries inclusive

	budget := januaryBudget(1000)
	expenses := []engine.Expense{
		expense(100, "groceries", day(2024, time.January, 1)),  // start boundary
		expense(50, "transport", day(2024, time.January, 31)),  // end boundary
		expense(999, "groceries", day(2023, time.December, 31)), // before
		expense(999, "groceries", day(2024, time.February, 1)),  // after
	}

	got, err := engine.ComputeSpending(budget, expenses, testCategories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.Spent.Equal(money(150)) {
		t.Errorf("expected spent 150, got %v", got.Spent)
	}
	if !got.Remaining.Equal(money(850)) {
		t.Errorf("expected remaining 850, got %v", got.Remaining)
	}
	if !got.PercentageUsed.Equal(money(15)) {
		t.Errorf("expected 15%% used, got %v", got.PercentageUsed)
	}
}

func TestComputeSpending_ByCategoryPartitionsSpent(t *testing.T) {
	// GIVEN: Expenses across several categories
	// THEN: The by-category totals sum to spent and sort largest first

	budget := januaryBudget(1000)
	expenses := []engine.Expense{
		expense(80, "groceries", day(2024, time.January, 3)),
		expense(150, "transport", day(2024, time.January, 5)),
		expense(40, "groceries", day(2024, time.January, 10)),
	}

	got, err := engine.ComputeSpending(budget, expenses, testCategories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	sum := decimal.Zero
	for _, c := range got.ByCategory {
		sum = sum.Add(c.Total)
	}
	if !sum.Equal(got.Spent) {
		t.Errorf("by-category totals %v do not partition spent %v", sum, got.Spent)
	}

	if len(got.ByCategory) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got.ByCategory))
	}
	if got.ByCategory[0].Name != "Transport" {
		t.Errorf("expected largest category first, got %s", got.ByCategory[0].Name)
	}
	if !got.ByCategory[0].Total.Equal(money(150)) {
		t.Errorf("expected transport total 150, got %v", got.ByCategory[0].Total)
	}
}

func TestComputeSpending_ByCategoryTies_BreakOnCategoryID(t *testing.T) {
	// GIVEN: Two categories with identical totals
	// THEN: The smaller category id sorts first, keeping the order stable

	budget := januaryBudget(1000)
	expenses := []engine.Expense{
		expense(120, "transport", day(2024, time.January, 5)),
		expense(120, "groceries", day(2024, time.January, 6)),
	}

	got, err := engine.ComputeSpending(budget, expenses, testCategories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.ByCategory) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(got.ByCategory))
	}
	if got.ByCategory[0].CategoryID != "groceries" {
		t.Errorf("expected groceries first on tied totals, got %s", got.ByCategory[0].CategoryID)
	}
}

func TestComputeSpending_UnknownCategory_FallsBackToUncategorized(t *testing.T) {
	budget := januaryBudget(500)
	expenses := []engine.Expense{
		expense(60, "mystery", day(2024, time.January, 4)),
	}

	got, err := engine.ComputeSpending(budget, expenses, testCategories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.ByCategory) != 1 {
		t.Fatalf("expected 1 category entry, got %d", len(got.ByCategory))
	}
	if got.ByCategory[0].Name != "Uncategorized" {
		t.Errorf("expected uncategorized fallback, got %s", got.ByCategory[0].Name)
	}
	if !got.ByCategory[0].Total.Equal(money(60)) {
		t.Errorf("expected fallback total 60, got %v", got.ByCategory[0].Total)
	}
}

func TestComputeSpending_ZeroTotal_PercentageStaysZero(t *testing.T) {
	// GIVEN: A zero-total budget with real spending
	// THEN: Percentage is guarded to 0 and remaining goes negative

	budget := januaryBudget(0)
	expenses := []engine.Expense{
		expense(75, "groceries", day(2024, time.January, 2)),
	}

	got, err := engine.ComputeSpending(budget, expenses, testCategories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !got.PercentageUsed.IsZero() {
		t.Errorf("expected percentage 0 for zero total, got %v", got.PercentageUsed)
	}
	if !got.Remaining.Equal(money(-75)) {
		t.Errorf("expected remaining -75, got %v", got.Remaining)
	}
}

func TestComputeSpending_EmptyExpenses_YieldsZeroSpent(t *testing.T) {
	got, err := engine.ComputeSpending(januaryBudget(400), nil, testCategories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Spent.IsZero() {
		t.Errorf("expected zero spent, got %v", got.Spent)
	}
	if len(got.ByCategory) != 0 {
		t.Errorf("expected empty breakdown, got %d entries", len(got.ByCategory))
	}
}

func TestComputeSpending_NegativeTotal_Rejected(t *testing.T) {
	budget := januaryBudget(-10)

	_, err := engine.ComputeSpending(budget, nil, testCategories())
	if err == nil {
		t.Fatal("expected error for negative total")
	}
	if !errors.Is(err, engine.ErrInvalidBudget) {
		t.Errorf("expected ErrInvalidBudget, got %v", err)
	}
}

func TestComputeSpending_Idempotent(t *testing.T) {
	// GIVEN: One fixed input snapshot
	// THEN: Two calls produce identical results, no hidden state

	budget := januaryBudget(1000)
	expenses := []engine.Expense{
		expense(33.33, "groceries", day(2024, time.January, 9)),
		expense(66.67, "transport", day(2024, time.January, 20)),
	}

	first, err := engine.ComputeSpending(budget, expenses, testCategories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.ComputeSpending(budget, expenses, testCategories())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !first.Spent.Equal(second.Spent) || !first.PercentageUsed.Equal(second.PercentageUsed) {
		t.Errorf("repeated computation diverged: %v vs %v", first, second)
	}
}

// =============================================================================
// DAILY SERIES TESTS
// =============================================================================

func TestComputeDailySpending_OneEntryPerRawDay(t *testing.T) {
	// GIVEN: A 6-raw-day period (normalized to 7)
	// THEN: The series still enumerates the 7 raw calendar days

	budget := engine.Budget{
		TotalAmount: money(700),
		Period:      period(day(2024, time.January, 1), day(2024, time.January, 7)),
	}

	series, err := engine.ComputeDailySpending(budget, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 7 {
		t.Fatalf("expected 7 entries, got %d", len(series))
	}
}

func TestComputeDailySpending_AccumulatedIsMonotonic(t *testing.T) {
	budget := januaryBudget(1000)
	expenses := []engine.Expense{
		expense(20, "groceries", day(2024, time.January, 2)),
		expense(35, "transport", day(2024, time.January, 2)),
		expense(10, "groceries", day(2024, time.January, 15)),
	}

	series, err := engine.ComputeDailySpending(budget, expenses)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(series) != 31 {
		t.Fatalf("expected 31 entries, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Accumulated.LessThan(series[i-1].Accumulated) {
			t.Fatalf("accumulated decreased at index %d: %v < %v", i, series[i].Accumulated, series[i-1].Accumulated)
		}
	}

	// Same-day amounts collapse into one entry.
	if !series[1].DailyAmount.Equal(money(55)) {
		t.Errorf("expected Jan 2 daily amount 55, got %v", series[1].DailyAmount)
	}
	if !series[30].Accumulated.Equal(money(65)) {
		t.Errorf("expected final accumulated 65, got %v", series[30].Accumulated)
	}
}

// =============================================================================
// IDEAL PROJECTION TESTS
// =============================================================================

func TestIdealProjection_LinearPace(t *testing.T) {
	// GIVEN: 700 over 7 normalized days
	// THEN: The 4th day (index 3) projects exactly 400

	got := engine.IdealProjection(money(700), 7, 3)
	if !got.Equal(money(400)) {
		t.Errorf("expected 400, got %v", got)
	}
}

func TestIdealProjection_RawNormalizedMismatchPinned(t *testing.T) {
	// GIVEN: A 6-raw-day period normalized to 7, enumerated over 7 raw days
	// THEN: The ideal line reaches exactly the total on the last entry here,
	// but for a 30-raw-day January the divisor stays 30 while the series has
	// 31 entries, so the final ideal overshoots the total. Both behaviors are
	// pinned; changing either changes the chart for every consumer.

	weekTotal := money(700)
	if got := engine.IdealProjection(weekTotal, 7, 6); !got.Equal(weekTotal) {
		t.Errorf("expected week ideal to end at 700, got %v", got)
	}

	monthTotal := money(3000)
	monthBudget := januaryBudget(3000)
	series, err := engine.ComputeDailySpending(monthBudget, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	breakdown, err := monthBudget.Period.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lastIdeal := engine.IdealProjection(monthTotal, breakdown.NormalizedDays, len(series)-1)
	want := monthTotal.Div(money(30)).Mul(money(31))
	if !lastIdeal.Equal(want) {
		t.Errorf("expected final ideal %v (overshooting the total), got %v", want, lastIdeal)
	}
	if !lastIdeal.GreaterThan(monthTotal) {
		t.Errorf("expected final ideal to overshoot total %v, got %v", monthTotal, lastIdeal)
	}
}

func TestIdealProjection_ZeroDays_ReturnsZero(t *testing.T) {
	if got := engine.IdealProjection(money(100), 0, 5); !got.IsZero() {
		t.Errorf("expected zero for a degenerate day count, got %v", got)
	}
}
