package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/engine"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func june2024() engine.Period {
	return engine.Period{
		Start: engine.NewTimePoint(2024, time.June, 1),
		End:   engine.NewTimePoint(2024, time.June, 30),
	}
}

func TestStore_BudgetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateBudget(ctx, engine.Budget{
		TotalAmount: decimal.RequireFromString("1234.56"),
		Period:      june2024(),
		Notes:       "june plan",
		Allocations: []engine.Allocation{
			{CategoryID: "groceries", Amount: decimal.RequireFromString("300.25")},
			{CategoryID: "transport", Amount: decimal.NewFromInt(100)},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.GetBudget(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.TotalAmount.Equal(decimal.RequireFromString("1234.56")), "money survives TEXT storage exactly")
	assert.True(t, got.Period.Start.Equal(engine.NewTimePoint(2024, time.June, 1)))
	assert.True(t, got.Period.End.Equal(engine.NewTimePoint(2024, time.June, 30)))
	assert.Equal(t, "june plan", got.Notes)
	assert.True(t, got.Active)
	require.Len(t, got.Allocations, 2)
	assert.Equal(t, engine.CategoryID("groceries"), got.Allocations[0].CategoryID)
	assert.True(t, got.Allocations[0].Amount.Equal(decimal.RequireFromString("300.25")))

	_, err = s.GetBudget(ctx, "missing")
	assert.ErrorIs(t, err, engine.ErrBudgetNotFound)
}

func TestStore_CurrentBudget_CoversGivenDay(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateBudget(ctx, engine.Budget{
		TotalAmount: decimal.NewFromInt(1000),
		Period:      june2024(),
	})
	require.NoError(t, err)

	got, err := s.CurrentBudget(ctx, engine.NewTimePoint(2024, time.June, 30))
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = s.CurrentBudget(ctx, engine.NewTimePoint(2024, time.July, 1))
	assert.ErrorIs(t, err, engine.ErrBudgetNotFound)
}

func TestStore_CreateBudget_DeactivatesOverlapping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.CreateBudget(ctx, engine.Budget{
		TotalAmount: decimal.NewFromInt(1000),
		Period:      june2024(),
	})
	require.NoError(t, err)

	second, err := s.CreateBudget(ctx, engine.Budget{
		TotalAmount: decimal.NewFromInt(900),
		Period: engine.Period{
			Start: engine.NewTimePoint(2024, time.June, 24),
			End:   engine.NewTimePoint(2024, time.July, 23),
		},
	})
	require.NoError(t, err)

	old, err := s.GetBudget(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, old.Active)

	current, err := s.CurrentBudget(ctx, engine.NewTimePoint(2024, time.June, 25))
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)
}

func TestStore_UpdateBudgetPlan(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateBudget(ctx, engine.Budget{
		TotalAmount: decimal.NewFromInt(1000),
		Period:      june2024(),
	})
	require.NoError(t, err)

	updated, err := s.UpdateBudgetPlan(ctx, created.ID, decimal.RequireFromString("857.14"), "normal scenario applied")
	require.NoError(t, err)
	assert.True(t, updated.TotalAmount.Equal(decimal.RequireFromString("857.14")))
	assert.Equal(t, "normal scenario applied", updated.Notes)

	_, err = s.UpdateBudgetPlan(ctx, "missing", decimal.NewFromInt(1), "")
	assert.ErrorIs(t, err, engine.ErrBudgetNotFound)
}

func TestStore_ReplaceAllocations_UpsertsPerCategory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.CreateBudget(ctx, engine.Budget{
		TotalAmount: decimal.NewFromInt(1000),
		Period:      june2024(),
		Allocations: []engine.Allocation{
			{CategoryID: "groceries", Amount: decimal.NewFromInt(300)},
		},
	})
	require.NoError(t, err)

	// A duplicate category in one request lands on the unique index; the
	// later amount wins.
	updated, err := s.ReplaceAllocations(ctx, created.ID, []engine.Allocation{
		{CategoryID: "transport", Amount: decimal.NewFromInt(150)},
		{CategoryID: "dining", Amount: decimal.NewFromInt(80)},
		{CategoryID: "transport", Amount: decimal.NewFromInt(175)},
	})
	require.NoError(t, err)
	require.Len(t, updated.Allocations, 2)

	byCategory := make(map[engine.CategoryID]decimal.Decimal)
	for _, a := range updated.Allocations {
		byCategory[a.CategoryID] = a.Amount
	}
	assert.True(t, byCategory["transport"].Equal(decimal.NewFromInt(175)))
	assert.True(t, byCategory["dining"].Equal(decimal.NewFromInt(80)))
	_, hasGroceries := byCategory["groceries"]
	assert.False(t, hasGroceries, "replaced set drops the old category")

	_, err = s.ReplaceAllocations(ctx, "missing", nil)
	assert.ErrorIs(t, err, engine.ErrBudgetNotFound)
}

func TestStore_ExpenseRangeAndSoftDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.CreateExpense(ctx, engine.Expense{
		Amount:     decimal.RequireFromString("45.90"),
		CategoryID: "groceries",
		Date:       engine.NewTimePoint(2024, time.June, 3),
		Notes:      "weekly shop",
	})
	require.NoError(t, err)

	second, err := s.CreateExpense(ctx, engine.Expense{
		Amount: decimal.NewFromInt(20),
		Date:   engine.NewTimePoint(2024, time.June, 10),
	})
	require.NoError(t, err)

	_, err = s.CreateExpense(ctx, engine.Expense{
		Amount: decimal.NewFromInt(99),
		Date:   engine.NewTimePoint(2024, time.July, 2),
	})
	require.NoError(t, err)

	got, err := s.ExpensesInRange(ctx, june2024())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID, "sorted by date ascending")
	assert.True(t, got[0].Amount.Equal(decimal.RequireFromString("45.90")))
	assert.Equal(t, "weekly shop", got[0].Notes)
	assert.Equal(t, second.ID, got[1].ID)

	require.NoError(t, s.DeleteExpense(ctx, first.ID))
	assert.ErrorIs(t, s.DeleteExpense(ctx, first.ID), engine.ErrExpenseNotFound)

	got, err = s.ExpensesInRange(ctx, june2024())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second.ID, got[0].ID)
}

func TestStore_PaymentLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rent, err := s.CreatePayment(ctx, engine.Payment{
		Name:      "Rent",
		Amount:    decimal.RequireFromString("900.50"),
		DueDate:   engine.NewTimePoint(2024, time.June, 1),
		Frequency: engine.FrequencyMonthly,
		Notes:     "landlord transfer",
	})
	require.NoError(t, err)

	_, err = s.CreatePayment(ctx, engine.Payment{
		Name:      "Insurance",
		Amount:    decimal.NewFromInt(300),
		DueDate:   engine.NewTimePoint(2024, time.August, 1),
		Frequency: engine.FrequencyOneTime,
	})
	require.NoError(t, err)

	due, err := s.PaymentsDueInRange(ctx, june2024())
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, rent.ID, due[0].ID)
	assert.True(t, due[0].Amount.Equal(decimal.RequireFromString("900.50")))
	assert.Equal(t, engine.FrequencyMonthly, due[0].Frequency)
	assert.False(t, due[0].Paid)
	assert.Nil(t, due[0].PaidAt)

	paidAt := time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
	paid, err := s.MarkPaid(ctx, rent.ID, paidAt)
	require.NoError(t, err)
	assert.True(t, paid.Paid)
	require.NotNil(t, paid.PaidAt)
	assert.True(t, paid.PaidAt.Equal(paidAt))

	got, err := s.GetPayment(ctx, rent.ID)
	require.NoError(t, err)
	assert.True(t, got.Paid)

	_, err = s.GetPayment(ctx, "missing")
	assert.ErrorIs(t, err, engine.ErrPaymentNotFound)

	_, err = s.MarkPaid(ctx, "missing", paidAt)
	assert.ErrorIs(t, err, engine.ErrPaymentNotFound)
}

func TestStore_CategoriesSortedByName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateCategory(ctx, engine.Category{Name: "Transport", Icon: "bus", Color: "#3B82F6"})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, engine.Category{Name: "Groceries", Icon: "cart", Color: "#22C55E"})
	require.NoError(t, err)

	got, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Groceries", got[0].Name)
	assert.Equal(t, "cart", got[0].Icon)
	assert.Equal(t, "Transport", got[1].Name)
}

func TestStore_ProfileSingleRow(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultProfile().WeeklyClosingDay, got.WeeklyClosingDay)
	assert.True(t, got.RiskThresholds.Yellow.Equal(engine.DefaultRiskThresholds().Yellow))

	first := engine.Profile{
		RiskThresholds: engine.RiskThresholds{
			Yellow: decimal.NewFromInt(60),
			Red:    decimal.NewFromInt(80),
		},
		WeeklyClosingDay: time.Sunday,
	}
	require.NoError(t, s.SaveProfile(ctx, first))

	second := first
	second.RiskThresholds.Red = decimal.NewFromInt(85)
	second.WeeklyClosingDay = time.Friday
	require.NoError(t, s.SaveProfile(ctx, second))

	got, err = s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, time.Friday, got.WeeklyClosingDay)
	assert.True(t, got.RiskThresholds.Red.Equal(decimal.NewFromInt(85)))
}

func TestStore_ResetClearsAllTables(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.CreateBudget(ctx, engine.Budget{
		TotalAmount: decimal.NewFromInt(500),
		Period:      june2024(),
		Allocations: []engine.Allocation{{CategoryID: "groceries", Amount: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)
	_, err = s.CreateExpense(ctx, engine.Expense{Amount: decimal.NewFromInt(10), Date: engine.NewTimePoint(2024, time.June, 5)})
	require.NoError(t, err)
	_, err = s.CreateCategory(ctx, engine.Category{Name: "Groceries"})
	require.NoError(t, err)
	require.NoError(t, s.SaveProfile(ctx, engine.Profile{WeeklyClosingDay: time.Friday}))

	require.NoError(t, s.Reset(ctx))

	_, err = s.CurrentBudget(ctx, engine.NewTimePoint(2024, time.June, 5))
	assert.ErrorIs(t, err, engine.ErrBudgetNotFound)

	expenses, err := s.ExpensesInRange(ctx, june2024())
	require.NoError(t, err)
	assert.Empty(t, expenses)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Empty(t, cats)

	profile, err := s.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, engine.DefaultProfile().WeeklyClosingDay, profile.WeeklyClosingDay)
}
