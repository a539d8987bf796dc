/*
tracker.go - Budget utilization and daily-trend computation

PURPOSE:
  Computes how one budget is doing against its actual expenses: total spent,
  remaining, percentage used, the by-category breakdown, and the day-by-day
  accumulated series the trend chart compares against an ideal linear pace.

KEY INSIGHT:
  Utilization is a derived view. It is recomputed from the expense snapshot
  on every read - there is no stored "spent" field that can drift out of
  sync with the expenses themselves.

CALCULATIONS:
  Spent          = sum of expense amounts with date in [Start, End] inclusive
  Remaining      = TotalAmount - Spent (negative when overspent)
  PercentageUsed = Spent / TotalAmount * 100, guarded to 0 for a zero total
  ByCategory     = Spent grouped by category, sorted by total descending

DAILY SERIES AND THE IDEAL LINE:
  ComputeDailySpending enumerates every calendar day in the period
  (inclusive) and accumulates the running sum. The comparison line is
  IdealProjection(total, normalizedDays, i) = total/normalizedDays*(i+1).
  Note the divisor is the NORMALIZED day count while the series itself
  enumerates raw days; for ranges whose raw span is not six days the ideal
  line overshoots the total on the final day. This asymmetry is intentional
  behavioral parity and is pinned by a test - do not "fix" it here without
  changing every consumer of the chart.

SEE ALSO:
  - period.go: Day enumeration and normalization
  - risk.go: Traffic-light tiering over PercentageUsed
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ComputeSpending derives the utilization view of a budget from its expense
// snapshot. Expenses outside the budget period are ignored. Category display
// metadata is joined from the supplied lookup; unknown categories degrade to
// the uncategorized sentinel instead of failing.
func ComputeSpending(budget Budget, expenses []Expense, categories map[CategoryID]Category) (BudgetWithSpending, error) {
	if budget.TotalAmount.IsNegative() {
		return BudgetWithSpending{}, &InvalidBudgetError{BudgetID: budget.ID, Reason: "total amount is negative"}
	}
	if _, err := budget.Period.Normalize(); err != nil {
		return BudgetWithSpending{}, err
	}

	spent := decimal.Zero
	totals := make(map[CategoryID]decimal.Decimal)

	for _, e := range expenses {
		if !budget.Period.Contains(e.Date) {
			continue
		}
		spent = spent.Add(e.Amount)
		totals[e.CategoryID] = totals[e.CategoryID].Add(e.Amount)
	}

	byCategory := make([]CategorySpending, 0, len(totals))
	for id, total := range totals {
		cat, ok := categories[id]
		if !ok {
			cat = UncategorizedCategory()
		}
		byCategory = append(byCategory, CategorySpending{
			CategoryID: cat.ID,
			Name:       cat.Name,
			Icon:       cat.Icon,
			Color:      cat.Color,
			Total:      total,
		})
	}

	// Largest spend first; ties broken by id for a stable order.
	sort.Slice(byCategory, func(i, j int) bool {
		if byCategory[i].Total.Equal(byCategory[j].Total) {
			return byCategory[i].CategoryID < byCategory[j].CategoryID
		}
		return byCategory[i].Total.GreaterThan(byCategory[j].Total)
	})

	percentage := decimal.Zero
	if budget.TotalAmount.IsPositive() {
		percentage = spent.Div(budget.TotalAmount).Mul(oneHundred)
	}

	return BudgetWithSpending{
		Budget:         budget,
		Spent:          spent,
		Remaining:      budget.TotalAmount.Sub(spent),
		PercentageUsed: percentage,
		ByCategory:     byCategory,
	}, nil
}

// ComputeDailySpending builds the day-by-day series for the budget period,
// one entry per calendar day from Start to End inclusive, with the running
// accumulated total. Days without expenses appear with a zero daily amount.
func ComputeDailySpending(budget Budget, expenses []Expense) ([]DailySpending, error) {
	if _, err := budget.Period.Normalize(); err != nil {
		return nil, err
	}

	byDate := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		if !budget.Period.Contains(e.Date) {
			continue
		}
		key := e.Date.String()
		byDate[key] = byDate[key].Add(e.Amount)
	}

	days := budget.Period.Days()
	series := make([]DailySpending, 0, len(days))
	accumulated := decimal.Zero

	for _, day := range days {
		daily := byDate[day.String()]
		accumulated = accumulated.Add(daily)
		series = append(series, DailySpending{
			Date:        day,
			DailyAmount: daily,
			Accumulated: accumulated,
		})
	}

	return series, nil
}

// IdealProjection returns the linear spending pace at the given zero-based
// day index: total/normalizedDays*(index+1). The caller passes the
// NormalizedDays of the budget period even though the series it compares
// against enumerates raw days (see the file header note on this asymmetry).
func IdealProjection(total decimal.Decimal, normalizedDays, dayIndex int) decimal.Decimal {
	if normalizedDays < 1 {
		return decimal.Zero
	}
	return total.
		Div(decimal.NewFromInt(int64(normalizedDays))).
		Mul(decimal.NewFromInt(int64(dayIndex + 1)))
}
