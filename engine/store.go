/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:
  Defines the boundary between the computation core and the database. The
  engine itself is pure; everything stateful flows through these interfaces.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  BudgetStore:   Active budget lifecycle and the apply-scenario write-through
  ExpenseStore:  Actual spend records, queried by date range
  PaymentStore:  Scheduled obligations, queried by due-date range
  CategoryStore: Display metadata for by-category enrichment
  ProfileStore:  Per-user risk thresholds and week settings

READ SNAPSHOTS:
  Derived views (spending, risk, scenarios) are recomputed from store reads
  on every request. Stores return copies; callers never see shared mutable
  state.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - engine/store/memory.go: In-memory for testing

SEE ALSO:
  - tracker.go: Consumes expense snapshots
  - planner.go: Consumes payment snapshots
*/
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BUDGET STORE
// =============================================================================

// BudgetStore handles budget persistence. Creating a budget deactivates any
// active budget whose period overlaps the new one.
type BudgetStore interface {
	// CurrentBudget returns the active budget covering today.
	// Returns ErrBudgetNotFound when none exists.
	CurrentBudget(ctx context.Context, today TimePoint) (Budget, error)

	GetBudget(ctx context.Context, id BudgetID) (Budget, error)

	CreateBudget(ctx context.Context, budget Budget) (Budget, error)

	// UpdateBudgetPlan rewrites total amount and notes. This is the
	// apply-scenario write-through target.
	UpdateBudgetPlan(ctx context.Context, id BudgetID, totalAmount decimal.Decimal, notes string) (Budget, error)

	// ReplaceAllocations upserts allocations keyed by category. Writing an
	// allocation for an existing category replaces its amount.
	ReplaceAllocations(ctx context.Context, id BudgetID, allocations []Allocation) (Budget, error)
}

// =============================================================================
// EXPENSE / PAYMENT SOURCES
// =============================================================================

// ExpenseStore handles actual spend records. Deletes are soft; deleted
// expenses never appear in range queries.
type ExpenseStore interface {
	// ExpensesInRange returns non-deleted expenses with dates in the
	// period, boundaries inclusive, ordered by date.
	ExpensesInRange(ctx context.Context, period Period) ([]Expense, error)

	CreateExpense(ctx context.Context, expense Expense) (Expense, error)

	DeleteExpense(ctx context.Context, id ExpenseID) error
}

// PaymentStore handles scheduled obligations.
type PaymentStore interface {
	// PaymentsDueInRange returns payments with due dates in the period,
	// boundaries inclusive, ordered by due date. Includes paid payments;
	// callers filter.
	PaymentsDueInRange(ctx context.Context, period Period) ([]Payment, error)

	GetPayment(ctx context.Context, id PaymentID) (Payment, error)

	CreatePayment(ctx context.Context, payment Payment) (Payment, error)

	// MarkPaid settles a payment at the given instant.
	MarkPaid(ctx context.Context, id PaymentID, paidAt time.Time) (Payment, error)
}

// =============================================================================
// CATEGORY / PROFILE
// =============================================================================

// CategoryStore handles category display metadata.
type CategoryStore interface {
	Categories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, category Category) (Category, error)
}

// ProfileStore handles the per-user settings row. GetProfile returns
// DefaultProfile values when nothing has been saved yet.
type ProfileStore interface {
	GetProfile(ctx context.Context) (Profile, error)
	SaveProfile(ctx context.Context, profile Profile) error
}

// CategoryLookup builds the id-keyed map ComputeSpending joins against.
func CategoryLookup(categories []Category) map[CategoryID]Category {
	m := make(map[CategoryID]Category, len(categories))
	for _, c := range categories {
		m[c.ID] = c
	}
	return m
}
