/*
demo.go - Demo dataset loaders for testing and demonstrations

PURPOSE:

	Provides pre-built datasets that populate the stores with realistic
	data for testing and demos. Each dataset creates categories, a budget,
	expenses, and scheduled payments that demonstrate specific states of
	the tracker and simulator.

AVAILABLE DATASETS:

	fresh-start: Current-month budget with allocations, nothing spent yet
	mid-month:   Typical month in progress, spending roughly on pace
	overspent:   Budget blown past its red threshold, overdue rent

HOW DATASETS WORK:
 1. Reset the store (clear all data)
 2. Create categories
 3. Create a budget for the current month with allocations
 4. Add expenses and scheduled payments

USAGE VIA API:

	POST /api/demo/load
	{"dataset_id": "mid-month"}

ADDING NEW DATASETS:
 1. Add to 'demoDatasets' slice with ID, name, description
 2. Create loader function: loadXxxDataset(ctx, h, today)
 3. Add case to LoadDemoDataset handler

NOTE:

	Datasets reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Store interfaces the loaders write through
  - store/sqlite/sqlite.go: Reset implementation
*/
package api

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// DATASET DEFINITIONS
// =============================================================================

// DemoDatasetDTO describes one loadable demo dataset.
type DemoDatasetDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var demoDatasets = []DemoDatasetDTO{
	{
		ID:          "fresh-start",
		Name:        "Fresh Start",
		Description: "Current-month budget with allocations and no spending",
	},
	{
		ID:          "mid-month",
		Name:        "Mid-Month",
		Description: "Typical month in progress with groceries, transport, and rent on the calendar",
	},
	{
		ID:          "overspent",
		Name:        "Overspent",
		Description: "Budget past its red threshold with an overdue rent payment",
	},
}

// Resetter is implemented by stores that can wipe themselves for demo loads.
type Resetter interface {
	Reset(ctx context.Context) error
}

// ListDemoDatasets returns the available datasets.
func (h *Handler) ListDemoDatasets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, demoDatasets)
}

// LoadDemoDataset resets the store and loads a predefined dataset.
func (h *Handler) LoadDemoDataset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DatasetID string `json:"dataset_id"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx := r.Context()

	resetter, ok := h.Budgets.(Resetter)
	if !ok {
		writeError(w, http.StatusInternalServerError, "store does not support demo loads")
		return
	}
	if err := resetter.Reset(ctx); err != nil {
		h.writeEngineError(w, err)
		return
	}

	today := h.now()

	var err error
	switch req.DatasetID {
	case "fresh-start":
		err = h.loadFreshStartDataset(ctx, today)
	case "mid-month":
		err = h.loadMidMonthDataset(ctx, today)
	case "overspent":
		err = h.loadOverspentDataset(ctx, today)
	default:
		writeError(w, http.StatusBadRequest, "unknown dataset")
		return
	}

	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "dataset": req.DatasetID})
}

// =============================================================================
// DATASET LOADERS
// =============================================================================

// seedCategories creates the shared category set and returns ids by name.
func (h *Handler) seedCategories(ctx context.Context) (map[string]engine.CategoryID, error) {
	seed := []engine.Category{
		{Name: "Groceries", Icon: "shopping-cart", Color: "#22C55E", Active: true},
		{Name: "Transport", Icon: "bus", Color: "#3B82F6", Active: true},
		{Name: "Dining Out", Icon: "utensils", Color: "#F97316", Active: true},
		{Name: "Housing", Icon: "home", Color: "#8B5CF6", Active: true},
		{Name: "Entertainment", Icon: "film", Color: "#EC4899", Active: true},
	}

	ids := make(map[string]engine.CategoryID, len(seed))
	for _, c := range seed {
		created, err := h.Categories.CreateCategory(ctx, c)
		if err != nil {
			return nil, err
		}
		ids[created.Name] = created.ID
	}
	return ids, nil
}

func (h *Handler) seedMonthBudget(ctx context.Context, today engine.TimePoint, total float64, ids map[string]engine.CategoryID) (engine.Budget, error) {
	return h.Budgets.CreateBudget(ctx, engine.Budget{
		TotalAmount: decimal.NewFromFloat(total),
		Period:      engine.MonthOf(today),
		Notes:       "Demo dataset",
		Allocations: []engine.Allocation{
			{CategoryID: ids["Groceries"], Amount: decimal.NewFromFloat(total * 0.3)},
			{CategoryID: ids["Transport"], Amount: decimal.NewFromFloat(total * 0.1)},
			{CategoryID: ids["Dining Out"], Amount: decimal.NewFromFloat(total * 0.2)},
			{CategoryID: ids["Entertainment"], Amount: decimal.NewFromFloat(total * 0.1)},
		},
		Active: true,
	})
}

func (h *Handler) loadFreshStartDataset(ctx context.Context, today engine.TimePoint) error {
	ids, err := h.seedCategories(ctx)
	if err != nil {
		return err
	}
	if _, err := h.seedMonthBudget(ctx, today, 1200, ids); err != nil {
		return err
	}

	// Rent on the first of next month so the calendar has something coming.
	_, err = h.Payments.CreatePayment(ctx, engine.Payment{
		Name:       "Rent",
		Amount:     decimal.NewFromInt(900),
		DueDate:    engine.MonthOf(today).NextPeriod().Start,
		Frequency:  engine.FrequencyMonthly,
		CategoryID: ids["Housing"],
	})
	return err
}

func (h *Handler) loadMidMonthDataset(ctx context.Context, today engine.TimePoint) error {
	ids, err := h.seedCategories(ctx)
	if err != nil {
		return err
	}
	if _, err := h.seedMonthBudget(ctx, today, 1200, ids); err != nil {
		return err
	}

	month := engine.MonthOf(today)

	// Spending spread over the month so the daily trend has a shape.
	expenses := []engine.Expense{
		{Amount: decimal.NewFromFloat(86.40), CategoryID: ids["Groceries"], Date: month.Start.AddDays(1), Notes: "Weekly shop"},
		{Amount: decimal.NewFromFloat(12.50), CategoryID: ids["Transport"], Date: month.Start.AddDays(2), Notes: "Metro pass top-up"},
		{Amount: decimal.NewFromFloat(54.00), CategoryID: ids["Dining Out"], Date: month.Start.AddDays(4), Notes: "Dinner with friends"},
		{Amount: decimal.NewFromFloat(92.10), CategoryID: ids["Groceries"], Date: month.Start.AddDays(8), Notes: "Weekly shop"},
		{Amount: decimal.NewFromFloat(29.99), CategoryID: ids["Entertainment"], Date: month.Start.AddDays(9), Notes: "Concert ticket"},
		{Amount: decimal.NewFromFloat(18.75), CategoryID: ids["Dining Out"], Date: month.Start.AddDays(11), Notes: "Lunch"},
	}
	for _, e := range expenses {
		if e.Date.After(today) {
			continue
		}
		if _, err := h.Expenses.CreateExpense(ctx, e); err != nil {
			return err
		}
	}

	// A paid subscription and the upcoming rent.
	payments := []engine.Payment{
		{Name: "Streaming subscription", Amount: decimal.NewFromFloat(14.99), DueDate: month.Start.AddDays(3), Frequency: engine.FrequencyMonthly, CategoryID: ids["Entertainment"]},
		{Name: "Rent", Amount: decimal.NewFromInt(900), DueDate: month.NextPeriod().Start, Frequency: engine.FrequencyMonthly, CategoryID: ids["Housing"]},
	}
	for _, p := range payments {
		if _, err := h.Payments.CreatePayment(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadOverspentDataset(ctx context.Context, today engine.TimePoint) error {
	ids, err := h.seedCategories(ctx)
	if err != nil {
		return err
	}
	if _, err := h.seedMonthBudget(ctx, today, 600, ids); err != nil {
		return err
	}

	month := engine.MonthOf(today)

	// Well past the budget inside the first half of the month.
	expenses := []engine.Expense{
		{Amount: decimal.NewFromFloat(240.00), CategoryID: ids["Dining Out"], Date: month.Start.AddDays(2), Notes: "Birthday dinner"},
		{Amount: decimal.NewFromFloat(180.30), CategoryID: ids["Groceries"], Date: month.Start.AddDays(5), Notes: "Stocking up"},
		{Amount: decimal.NewFromFloat(150.00), CategoryID: ids["Entertainment"], Date: month.Start.AddDays(7), Notes: "Festival tickets"},
		{Amount: decimal.NewFromFloat(95.00), CategoryID: ids["Transport"], Date: month.Start.AddDays(9), Notes: "Car repair share"},
	}
	for _, e := range expenses {
		if e.Date.After(today) {
			continue
		}
		if _, err := h.Expenses.CreateExpense(ctx, e); err != nil {
			return err
		}
	}

	// Rent was due at the start of the month and is still unpaid. The
	// overdue sweep will flag it.
	_, err = h.Payments.CreatePayment(ctx, engine.Payment{
		Name:       "Rent",
		Amount:     decimal.NewFromInt(900),
		DueDate:    month.Start,
		Frequency:  engine.FrequencyMonthly,
		CategoryID: ids["Housing"],
	})
	return err
}
