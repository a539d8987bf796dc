// Package store provides in-memory implementations of the engine's
// persistence interfaces, used in tests and dev mode.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements every engine store interface over mutex-guarded maps.
// All reads return copies; callers never observe later mutations.
type Memory struct {
	mu         sync.RWMutex
	budgets    map[engine.BudgetID]engine.Budget
	expenses   map[engine.ExpenseID]engine.Expense
	deleted    map[engine.ExpenseID]bool
	payments   map[engine.PaymentID]engine.Payment
	categories map[engine.CategoryID]engine.Category
	profile    *engine.Profile
}

func NewMemory() *Memory {
	return &Memory{
		budgets:    make(map[engine.BudgetID]engine.Budget),
		expenses:   make(map[engine.ExpenseID]engine.Expense),
		deleted:    make(map[engine.ExpenseID]bool),
		payments:   make(map[engine.PaymentID]engine.Payment),
		categories: make(map[engine.CategoryID]engine.Category),
	}
}

// =============================================================================
// BUDGET STORE
// =============================================================================

func (m *Memory) CurrentBudget(_ context.Context, today engine.TimePoint) (engine.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, b := range m.budgets {
		if b.Active && b.Period.Contains(today) {
			return copyBudget(b), nil
		}
	}
	return engine.Budget{}, engine.ErrBudgetNotFound
}

func (m *Memory) GetBudget(_ context.Context, id engine.BudgetID) (engine.Budget, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.budgets[id]
	if !ok {
		return engine.Budget{}, engine.ErrBudgetNotFound
	}
	return copyBudget(b), nil
}

func (m *Memory) CreateBudget(_ context.Context, budget engine.Budget) (engine.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if budget.ID == "" {
		budget.ID = engine.BudgetID(uuid.NewString())
	}
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = time.Now()
	}
	budget.Active = true

	// One active budget per overlapping window.
	for id, existing := range m.budgets {
		if existing.Active && periodsOverlap(existing.Period, budget.Period) {
			existing.Active = false
			m.budgets[id] = existing
		}
	}

	m.budgets[budget.ID] = copyBudget(budget)
	return copyBudget(budget), nil
}

func (m *Memory) UpdateBudgetPlan(_ context.Context, id engine.BudgetID, totalAmount decimal.Decimal, notes string) (engine.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.budgets[id]
	if !ok {
		return engine.Budget{}, engine.ErrBudgetNotFound
	}
	b.TotalAmount = totalAmount
	b.Notes = notes
	m.budgets[id] = b
	return copyBudget(b), nil
}

func (m *Memory) ReplaceAllocations(_ context.Context, id engine.BudgetID, allocations []engine.Allocation) (engine.Budget, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.budgets[id]
	if !ok {
		return engine.Budget{}, engine.ErrBudgetNotFound
	}

	// Keyed by category: a later allocation for the same category replaces
	// the earlier amount.
	byCategory := make(map[engine.CategoryID]decimal.Decimal, len(allocations))
	order := make([]engine.CategoryID, 0, len(allocations))
	for _, a := range allocations {
		if _, seen := byCategory[a.CategoryID]; !seen {
			order = append(order, a.CategoryID)
		}
		byCategory[a.CategoryID] = a.Amount
	}

	b.Allocations = make([]engine.Allocation, 0, len(order))
	for _, cat := range order {
		b.Allocations = append(b.Allocations, engine.Allocation{CategoryID: cat, Amount: byCategory[cat]})
	}
	m.budgets[id] = b
	return copyBudget(b), nil
}

// =============================================================================
// EXPENSE STORE
// =============================================================================

func (m *Memory) ExpensesInRange(_ context.Context, period engine.Period) ([]engine.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.Expense
	for id, e := range m.expenses {
		if m.deleted[id] || !period.Contains(e.Date) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Date.Equal(result[j].Date) {
			return result[i].ID < result[j].ID
		}
		return result[i].Date.Before(result[j].Date)
	})
	return result, nil
}

func (m *Memory) CreateExpense(_ context.Context, expense engine.Expense) (engine.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if expense.ID == "" {
		expense.ID = engine.ExpenseID(uuid.NewString())
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}
	m.expenses[expense.ID] = expense
	return expense, nil
}

func (m *Memory) DeleteExpense(_ context.Context, id engine.ExpenseID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.expenses[id]; !ok || m.deleted[id] {
		return engine.ErrExpenseNotFound
	}
	m.deleted[id] = true
	return nil
}

// =============================================================================
// PAYMENT STORE
// =============================================================================

func (m *Memory) PaymentsDueInRange(_ context.Context, period engine.Period) ([]engine.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.Payment
	for _, p := range m.payments {
		if period.Contains(p.DueDate) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DueDate.Equal(result[j].DueDate) {
			return result[i].ID < result[j].ID
		}
		return result[i].DueDate.Before(result[j].DueDate)
	})
	return result, nil
}

func (m *Memory) GetPayment(_ context.Context, id engine.PaymentID) (engine.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok {
		return engine.Payment{}, engine.ErrPaymentNotFound
	}
	return p, nil
}

func (m *Memory) CreatePayment(_ context.Context, payment engine.Payment) (engine.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if payment.ID == "" {
		payment.ID = engine.PaymentID(uuid.NewString())
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	m.payments[payment.ID] = payment
	return payment, nil
}

func (m *Memory) MarkPaid(_ context.Context, id engine.PaymentID, paidAt time.Time) (engine.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.payments[id]
	if !ok {
		return engine.Payment{}, engine.ErrPaymentNotFound
	}
	p.Paid = true
	p.PaidAt = &paidAt
	m.payments[id] = p
	return p, nil
}

// =============================================================================
// CATEGORY / PROFILE STORE
// =============================================================================

func (m *Memory) Categories(_ context.Context) ([]engine.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]engine.Category, 0, len(m.categories))
	for _, c := range m.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) CreateCategory(_ context.Context, category engine.Category) (engine.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if category.ID == "" {
		category.ID = engine.CategoryID(uuid.NewString())
	}
	m.categories[category.ID] = category
	return category, nil
}

func (m *Memory) GetProfile(_ context.Context) (engine.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.profile == nil {
		return engine.DefaultProfile(), nil
	}
	return *m.profile, nil
}

func (m *Memory) SaveProfile(_ context.Context, profile engine.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := profile
	m.profile = &p
	return nil
}

// Reset clears all data. Demo loads and tests use it between datasets.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.budgets = make(map[engine.BudgetID]engine.Budget)
	m.expenses = make(map[engine.ExpenseID]engine.Expense)
	m.deleted = make(map[engine.ExpenseID]bool)
	m.payments = make(map[engine.PaymentID]engine.Payment)
	m.categories = make(map[engine.CategoryID]engine.Category)
	m.profile = nil
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func copyBudget(b engine.Budget) engine.Budget {
	out := b
	out.Allocations = append([]engine.Allocation(nil), b.Allocations...)
	return out
}

func periodsOverlap(a, b engine.Period) bool {
	return a.Start.BeforeOrEqual(b.End) && b.Start.BeforeOrEqual(a.End)
}
