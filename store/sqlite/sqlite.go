/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface the engine consumes (BudgetStore,
  ExpenseStore, PaymentStore, CategoryStore, ProfileStore) using SQLite.
  In production the same patterns apply to PostgreSQL with minor SQL
  dialect differences.

KEY TABLES:
  budgets:            Budget rows with period and active flag
  budget_allocations: Per-category sub-budgets, unique per budget+category
  categories:         Display metadata for by-category breakdowns
  expenses:           Actual spend records (soft-deleted, never dropped)
  payments:           Scheduled obligations on the calendar
  user_profile:       Single-row settings (risk thresholds, week closing day)

DATA ENCODING:
  Money is stored as decimal TEXT, never floats. Calendar dates use the
  day-granularity format 2006-01-02; timestamps use RFC3339.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/engine"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		total_amount TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	-- Active-budget lookup by period (hot path: every spending read)
	CREATE INDEX IF NOT EXISTS idx_budgets_active_period
		ON budgets(active, period_start, period_end);

	-- One allocation row per budget+category; upserts replace the amount
	CREATE TABLE IF NOT EXISTS budget_allocations (
		id TEXT PRIMARY KEY,
		budget_id TEXT NOT NULL,
		category_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		UNIQUE(budget_id, category_id)
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_budget
		ON budget_allocations(budget_id);

	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		icon TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE
	);

	-- Expenses are soft-deleted so period aggregates stay reproducible
	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		amount TEXT NOT NULL,
		category_id TEXT NOT NULL DEFAULT '',
		expense_date TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	-- Range scans over dates (hot path: every spending read)
	CREATE INDEX IF NOT EXISTS idx_expenses_date
		ON expenses(expense_date) WHERE is_deleted = FALSE;
	CREATE INDEX IF NOT EXISTS idx_expenses_category
		ON expenses(category_id);

	CREATE TABLE IF NOT EXISTS payments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		due_date TEXT NOT NULL,
		frequency TEXT NOT NULL,
		category_id TEXT NOT NULL DEFAULT '',
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		paid_at TEXT,
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_payments_due
		ON payments(due_date, is_paid);

	-- Single-row settings table
	CREATE TABLE IF NOT EXISTS user_profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		yellow_threshold TEXT NOT NULL,
		red_threshold TEXT NOT NULL,
		weekly_closing_day INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BUDGET STORE (engine.BudgetStore interface)
// =============================================================================

// CurrentBudget returns the active budget whose period covers today.
func (s *Store) CurrentBudget(ctx context.Context, today engine.TimePoint) (engine.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, total_amount, period_start, period_end, notes, active, created_at
		FROM budgets
		WHERE active = TRUE AND period_start <= ? AND period_end >= ?
		ORDER BY created_at DESC
		LIMIT 1
	`

	day := today.String()
	budget, err := scanBudget(s.db.QueryRowContext(ctx, query, day, day))
	if err == sql.ErrNoRows {
		return engine.Budget{}, engine.ErrBudgetNotFound
	}
	if err != nil {
		return engine.Budget{}, err
	}
	return s.attachAllocations(ctx, budget)
}

// GetBudget retrieves a budget by ID.
func (s *Store) GetBudget(ctx context.Context, id engine.BudgetID) (engine.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getBudgetLocked(ctx, id)
}

func (s *Store) getBudgetLocked(ctx context.Context, id engine.BudgetID) (engine.Budget, error) {
	query := `
		SELECT id, total_amount, period_start, period_end, notes, active, created_at
		FROM budgets WHERE id = ?
	`

	budget, err := scanBudget(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return engine.Budget{}, engine.ErrBudgetNotFound
	}
	if err != nil {
		return engine.Budget{}, err
	}
	return s.attachAllocations(ctx, budget)
}

// CreateBudget inserts a budget and deactivates any active budget whose
// period overlaps the new one.
func (s *Store) CreateBudget(ctx context.Context, budget engine.Budget) (engine.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if budget.ID == "" {
		budget.ID = engine.BudgetID(uuid.NewString())
	}
	if budget.CreatedAt.IsZero() {
		budget.CreatedAt = time.Now().UTC()
	}
	budget.Active = true

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.Budget{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE budgets SET active = FALSE
		 WHERE active = TRUE AND period_start <= ? AND period_end >= ?`,
		budget.Period.End.String(), budget.Period.Start.String(),
	)
	if err != nil {
		return engine.Budget{}, fmt.Errorf("failed to deactivate overlapping budgets: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO budgets (id, total_amount, period_start, period_end, notes, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		budget.ID,
		budget.TotalAmount.String(),
		budget.Period.Start.String(),
		budget.Period.End.String(),
		budget.Notes,
		budget.Active,
		budget.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return engine.Budget{}, fmt.Errorf("failed to insert budget: %w", err)
	}

	for _, a := range budget.Allocations {
		if err := upsertAllocation(ctx, tx, budget.ID, a); err != nil {
			return engine.Budget{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return engine.Budget{}, err
	}
	return budget, nil
}

// UpdateBudgetPlan rewrites total amount and notes. This is the
// apply-scenario write-through target.
func (s *Store) UpdateBudgetPlan(ctx context.Context, id engine.BudgetID, totalAmount decimal.Decimal, notes string) (engine.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE budgets SET total_amount = ?, notes = ? WHERE id = ?",
		totalAmount.String(), notes, id,
	)
	if err != nil {
		return engine.Budget{}, fmt.Errorf("failed to update budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.Budget{}, engine.ErrBudgetNotFound
	}
	return s.getBudgetLocked(ctx, id)
}

// ReplaceAllocations upserts allocations keyed by category.
func (s *Store) ReplaceAllocations(ctx context.Context, id engine.BudgetID, allocations []engine.Allocation) (engine.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getBudgetLocked(ctx, id); err != nil {
		return engine.Budget{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return engine.Budget{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM budget_allocations WHERE budget_id = ?", id); err != nil {
		return engine.Budget{}, fmt.Errorf("failed to clear allocations: %w", err)
	}
	for _, a := range allocations {
		if err := upsertAllocation(ctx, tx, id, a); err != nil {
			return engine.Budget{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return engine.Budget{}, err
	}
	return s.getBudgetLocked(ctx, id)
}

func upsertAllocation(ctx context.Context, tx *sql.Tx, budgetID engine.BudgetID, a engine.Allocation) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO budget_allocations (id, budget_id, category_id, amount)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(budget_id, category_id) DO UPDATE SET
			amount = excluded.amount`,
		uuid.NewString(), budgetID, a.CategoryID, a.Amount.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert allocation: %w", err)
	}
	return nil
}

func scanBudget(row *sql.Row) (engine.Budget, error) {
	var (
		b          engine.Budget
		total      string
		start, end string
		createdAt  string
	)
	err := row.Scan(&b.ID, &total, &start, &end, &b.Notes, &b.Active, &createdAt)
	if err != nil {
		return b, err
	}

	b.TotalAmount = engine.MustParseDecimal(total)
	b.Period.Start, _ = engine.ParseDate(start)
	b.Period.End, _ = engine.ParseDate(end)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return b, nil
}

func (s *Store) attachAllocations(ctx context.Context, b engine.Budget) (engine.Budget, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT category_id, amount FROM budget_allocations WHERE budget_id = ? ORDER BY category_id",
		b.ID,
	)
	if err != nil {
		return b, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a engine.Allocation
		var amount string
		if err := rows.Scan(&a.CategoryID, &amount); err != nil {
			return b, err
		}
		a.Amount = engine.MustParseDecimal(amount)
		b.Allocations = append(b.Allocations, a)
	}
	return b, rows.Err()
}

// =============================================================================
// EXPENSE STORE (engine.ExpenseStore interface)
// =============================================================================

// ExpensesInRange returns non-deleted expenses with dates in the period,
// boundaries inclusive.
func (s *Store) ExpensesInRange(ctx context.Context, period engine.Period) ([]engine.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, amount, category_id, expense_date, notes, created_at
		FROM expenses
		WHERE is_deleted = FALSE AND expense_date >= ? AND expense_date <= ?
		ORDER BY expense_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []engine.Expense
	for rows.Next() {
		var (
			e         engine.Expense
			amount    string
			date      string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &amount, &e.CategoryID, &date, &e.Notes, &createdAt); err != nil {
			return nil, err
		}
		e.Amount = engine.MustParseDecimal(amount)
		e.Date, _ = engine.ParseDate(date)
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// CreateExpense inserts an expense record.
func (s *Store) CreateExpense(ctx context.Context, expense engine.Expense) (engine.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.ID == "" {
		expense.ID = engine.ExpenseID(uuid.NewString())
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, amount, category_id, expense_date, notes, is_deleted, created_at)
		 VALUES (?, ?, ?, ?, ?, FALSE, ?)`,
		expense.ID,
		expense.Amount.String(),
		expense.CategoryID,
		expense.Date.String(),
		expense.Notes,
		expense.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return engine.Expense{}, fmt.Errorf("failed to insert expense: %w", err)
	}
	return expense, nil
}

// DeleteExpense soft-deletes an expense.
func (s *Store) DeleteExpense(ctx context.Context, id engine.ExpenseID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE expenses SET is_deleted = TRUE WHERE id = ? AND is_deleted = FALSE", id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.ErrExpenseNotFound
	}
	return nil
}

// =============================================================================
// PAYMENT STORE (engine.PaymentStore interface)
// =============================================================================

// PaymentsDueInRange returns payments with due dates in the period,
// boundaries inclusive. Paid payments are included; callers filter.
func (s *Store) PaymentsDueInRange(ctx context.Context, period engine.Period) ([]engine.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, amount, due_date, frequency, category_id, is_paid, paid_at, notes, created_at
		FROM payments
		WHERE due_date >= ? AND due_date <= ?
		ORDER BY due_date ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	defer rows.Close()

	var payments []engine.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// GetPayment retrieves a payment by ID.
func (s *Store) GetPayment(ctx context.Context, id engine.PaymentID) (engine.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getPaymentLocked(ctx, id)
}

func (s *Store) getPaymentLocked(ctx context.Context, id engine.PaymentID) (engine.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, due_date, frequency, category_id, is_paid, paid_at, notes, created_at
		 FROM payments WHERE id = ?`, id,
	)
	if err != nil {
		return engine.Payment{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return engine.Payment{}, err
		}
		return engine.Payment{}, engine.ErrPaymentNotFound
	}
	return scanPayment(rows)
}

// CreatePayment inserts a scheduled payment.
func (s *Store) CreatePayment(ctx context.Context, payment engine.Payment) (engine.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if payment.ID == "" {
		payment.ID = engine.PaymentID(uuid.NewString())
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	var paidAt *string
	if payment.PaidAt != nil {
		t := payment.PaidAt.Format(time.RFC3339)
		paidAt = &t
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO payments (id, name, amount, due_date, frequency, category_id, is_paid, paid_at, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.Name,
		payment.Amount.String(),
		payment.DueDate.String(),
		payment.Frequency,
		payment.CategoryID,
		payment.Paid,
		paidAt,
		payment.Notes,
		payment.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return engine.Payment{}, fmt.Errorf("failed to insert payment: %w", err)
	}
	return payment, nil
}

// MarkPaid settles a payment at the given instant.
func (s *Store) MarkPaid(ctx context.Context, id engine.PaymentID, paidAt time.Time) (engine.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE payments SET is_paid = TRUE, paid_at = ? WHERE id = ?",
		paidAt.Format(time.RFC3339), id,
	)
	if err != nil {
		return engine.Payment{}, fmt.Errorf("failed to mark payment paid: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return engine.Payment{}, engine.ErrPaymentNotFound
	}
	return s.getPaymentLocked(ctx, id)
}

func scanPayment(rows *sql.Rows) (engine.Payment, error) {
	var (
		p         engine.Payment
		amount    string
		due       string
		paidAt    sql.NullString
		createdAt string
	)
	err := rows.Scan(&p.ID, &p.Name, &amount, &due, &p.Frequency, &p.CategoryID, &p.Paid, &paidAt, &p.Notes, &createdAt)
	if err != nil {
		return p, fmt.Errorf("failed to scan payment: %w", err)
	}

	p.Amount = engine.MustParseDecimal(amount)
	p.DueDate, _ = engine.ParseDate(due)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if paidAt.Valid {
		t, _ := time.Parse(time.RFC3339, paidAt.String)
		p.PaidAt = &t
	}
	return p, nil
}

// =============================================================================
// CATEGORY STORE (engine.CategoryStore interface)
// =============================================================================

// Categories returns all active categories.
func (s *Store) Categories(ctx context.Context) ([]engine.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, icon, color FROM categories WHERE active = TRUE ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []engine.Category
	for rows.Next() {
		var c engine.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateCategory inserts a category.
func (s *Store) CreateCategory(ctx context.Context, category engine.Category) (engine.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if category.ID == "" {
		category.ID = engine.CategoryID(uuid.NewString())
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, name, icon, color, active) VALUES (?, ?, ?, ?, TRUE)",
		category.ID, category.Name, category.Icon, category.Color,
	)
	if err != nil {
		return engine.Category{}, fmt.Errorf("failed to insert category: %w", err)
	}
	return category, nil
}

// =============================================================================
// PROFILE STORE (engine.ProfileStore interface)
// =============================================================================

// GetProfile returns the saved settings, or defaults when none exist.
func (s *Store) GetProfile(ctx context.Context) (engine.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		yellow, red string
		closingDay  int
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT yellow_threshold, red_threshold, weekly_closing_day FROM user_profile WHERE id = 1",
	).Scan(&yellow, &red, &closingDay)

	if err == sql.ErrNoRows {
		return engine.DefaultProfile(), nil
	}
	if err != nil {
		return engine.Profile{}, err
	}

	return engine.Profile{
		RiskThresholds: engine.RiskThresholds{
			Yellow: engine.MustParseDecimal(yellow),
			Red:    engine.MustParseDecimal(red),
		},
		WeeklyClosingDay: time.Weekday(closingDay),
	}, nil
}

// SaveProfile writes the single settings row.
func (s *Store) SaveProfile(ctx context.Context, profile engine.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_profile (id, yellow_threshold, red_threshold, weekly_closing_day)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			yellow_threshold = excluded.yellow_threshold,
			red_threshold = excluded.red_threshold,
			weekly_closing_day = excluded.weekly_closing_day`,
		profile.RiskThresholds.Yellow.String(),
		profile.RiskThresholds.Red.String(),
		int(profile.WeeklyClosingDay),
	)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"budget_allocations", "budgets", "expenses", "payments", "categories", "user_profile"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
