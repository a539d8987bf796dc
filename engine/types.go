/*
Package engine provides the core budget computation engine.

PURPOSE:
  This package contains the domain types and algorithms for budget tracking
  and scenario planning. Given a budget, its expenses, and one set of monthly
  inputs, the same engine answers "how am I doing against this budget?" and
  "what would my month look like under three savings postures?".

KEY CONCEPTS IN THIS FILE (types.go):
  - Budget/Allocation: A spending envelope for a date range, split by category
  - Expense: A single recorded spend, attributed to a day and a category
  - Payment: A scheduled obligation (rent, subscriptions) on a due date
  - BudgetWithSpending: The derived utilization view, recomputed every read
  - DailySpending: The day-by-day accumulated spend series

DESIGN PRINCIPLES:
  1. Purity: Every computation is a transformation over caller-supplied
     snapshots. The engine performs no I/O and holds no state between calls.
  2. Precision: Uses decimal.Decimal to avoid floating-point drift in sums.
  3. Derived views are never persisted: spent/remaining/percentage are
     recomputed from expenses on every read so they cannot go stale.

SEE ALSO:
  - period.go: Date-range normalization (day counts, week counts)
  - tracker.go: Utilization and daily-trend computation
  - planner.go: Three-scenario monthly planning
  - risk.go: Traffic-light risk tiering
*/
package engine

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type BudgetID string
type CategoryID string
type ExpenseID string
type PaymentID string

// =============================================================================
// MONEY - All amounts are decimals in the account's currency
// =============================================================================

// ParseMoney converts a caller-supplied float into a decimal amount.
// Non-finite values are rejected rather than silently coerced.
func ParseMoney(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero, &InvalidInputError{Field: "amount", Reason: "must be a finite number"}
	}
	return decimal.NewFromFloat(v), nil
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// =============================================================================
// CATEGORY - Display metadata for by-category breakdowns
// =============================================================================

type Category struct {
	ID     CategoryID
	Name   string
	Icon   string
	Color  string
	Active bool
}

// UncategorizedCategory is the sentinel used when an expense references a
// category the lookup does not know about. Breakdowns degrade to this entry
// instead of failing the whole computation.
func UncategorizedCategory() Category {
	return Category{
		ID:    "uncategorized",
		Name:  "Uncategorized",
		Icon:  "more-horizontal",
		Color: "#6B7280",
	}
}

// =============================================================================
// BUDGET - A spending envelope over a date range
// =============================================================================

// Allocation is a per-category sub-budget within a Budget's total.
// A Budget's allocations are keyed by category: writing an allocation for an
// existing category replaces its amount, never duplicates it.
type Allocation struct {
	CategoryID CategoryID
	Amount     decimal.Decimal
}

type Budget struct {
	ID          BudgetID
	TotalAmount decimal.Decimal
	Period      Period
	Notes       string
	Allocations []Allocation
	Active      bool
	CreatedAt   time.Time
}

// =============================================================================
// EXPENSE - A single recorded spend
// =============================================================================

type Expense struct {
	ID         ExpenseID
	Amount     decimal.Decimal
	CategoryID CategoryID
	Date       TimePoint
	Notes      string
	CreatedAt  time.Time
}

// =============================================================================
// PAYMENT - A scheduled obligation on the calendar
// =============================================================================

type PaymentFrequency string

const (
	FrequencyOneTime PaymentFrequency = "one_time"
	FrequencyWeekly  PaymentFrequency = "weekly"
	FrequencyMonthly PaymentFrequency = "monthly"
	FrequencyYearly  PaymentFrequency = "yearly"
)

type Payment struct {
	ID         PaymentID
	Name       string
	Amount     decimal.Decimal
	DueDate    TimePoint
	Frequency  PaymentFrequency
	CategoryID CategoryID // optional; empty when unassigned
	Paid       bool
	PaidAt     *time.Time
	Notes      string
	CreatedAt  time.Time
}

// NextOccurrence returns the follow-up payment for a recurring payment that
// was just settled. One-time payments have no follow-up.
func NextOccurrence(p Payment) (Payment, bool) {
	var due TimePoint
	switch p.Frequency {
	case FrequencyWeekly:
		due = p.DueDate.AddDays(7)
	case FrequencyMonthly:
		due = p.DueDate.AddMonths(1)
	case FrequencyYearly:
		due = p.DueDate.AddYears(1)
	default:
		return Payment{}, false
	}

	next := p
	next.ID = ""
	next.DueDate = due
	next.Paid = false
	next.PaidAt = nil
	return next, true
}

// =============================================================================
// DERIVED VIEWS - Recomputed every read, never persisted
// =============================================================================

// CategorySpending is one row of the by-category breakdown.
type CategorySpending struct {
	CategoryID CategoryID
	Name       string
	Icon       string
	Color      string
	Total      decimal.Decimal
}

// BudgetWithSpending is the utilization view of one budget against its
// actual expenses.
type BudgetWithSpending struct {
	Budget         Budget
	Spent          decimal.Decimal
	Remaining      decimal.Decimal // negative when overspent
	PercentageUsed decimal.Decimal // 0 when TotalAmount is 0
	ByCategory     []CategorySpending
}

// DailySpending is one entry of the day-by-day trend series.
type DailySpending struct {
	Date        TimePoint
	DailyAmount decimal.Decimal
	Accumulated decimal.Decimal
}

// =============================================================================
// PROFILE - Per-user tuning knobs
// =============================================================================

// Profile carries the per-user settings the engine consumes: risk thresholds
// and the weekday the tracking week closes on (time.Weekday numbering).
type Profile struct {
	RiskThresholds   RiskThresholds
	WeeklyClosingDay time.Weekday
}

func DefaultProfile() Profile {
	return Profile{
		RiskThresholds:   DefaultRiskThresholds(),
		WeeklyClosingDay: time.Monday,
	}
}
