package engine_test

import (
	"testing"
	"time"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func categoryList() []engine.Category {
	var out []engine.Category
	for _, c := range testCategories() {
		out = append(out, c)
	}
	return out
}

func findRec(t *testing.T, report engine.RecommendationReport, title string) engine.Recommendation {
	t.Helper()
	for _, rec := range report.Recommendations {
		if rec.Title == title {
			return rec
		}
	}
	t.Fatalf("no recommendation titled %q in %v", title, report.Recommendations)
	return engine.Recommendation{}
}

// =============================================================================
// RECOMMENDATION TESTS
// =============================================================================

func TestRecommend_RedTier_WarnsAndTargetsTopCategory(t *testing.T) {
	// GIVEN: 950 of 1000 spent, groceries being the biggest category
	// WHEN: Generating recommendations with the default thresholds
	// THEN: A high-priority warning plus a 20% cut suggestion on groceries

	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(700, "groceries", day(2024, time.January, 5)),
		expense(250, "transport", day(2024, time.January, 8)),
	})

	report := engine.Recommend(current, categoryList(), engine.DefaultRiskThresholds())

	warning := findRec(t, report, "High spending")
	if warning.Type != engine.RecommendationWarning {
		t.Errorf("expected warning type, got %s", warning.Type)
	}
	if warning.Priority != engine.PriorityHigh {
		t.Errorf("expected high priority, got %s", warning.Priority)
	}

	cut := findRec(t, report, "Reduce Groceries")
	if cut.Type != engine.RecommendationSuggestion {
		t.Errorf("expected suggestion type, got %s", cut.Type)
	}
	if cut.CategoryID != "groceries" {
		t.Errorf("expected groceries targeted, got %s", cut.CategoryID)
	}
	if !cut.SuggestedReduction.Equal(money(20)) {
		t.Errorf("expected 20%% suggested reduction, got %v", cut.SuggestedReduction)
	}

	if !report.Spent.Equal(money(950)) || !report.Remaining.Equal(money(50)) {
		t.Errorf("unexpected stats: spent %v remaining %v", report.Spent, report.Remaining)
	}
}

func TestRecommend_YellowTier_InfoOnly(t *testing.T) {
	// GIVEN: 750 of 1000 spent (75%, yellow)
	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(750, "groceries", day(2024, time.January, 5)),
	})

	report := engine.Recommend(current, nil, engine.DefaultRiskThresholds())

	info := findRec(t, report, "Moderate spending")
	if info.Type != engine.RecommendationInfo {
		t.Errorf("expected info type, got %s", info.Type)
	}
	if info.Priority != engine.PriorityLow {
		t.Errorf("expected low priority, got %s", info.Priority)
	}
	for _, rec := range report.Recommendations {
		if rec.Type == engine.RecommendationWarning {
			t.Errorf("yellow tier should not warn: %v", rec)
		}
	}
}

func TestRecommend_GreenTier_SavingsNudge(t *testing.T) {
	// GIVEN: 400 of 1000 spent, 600 remaining
	// THEN: Success message plus a savings suggestion for 30% of remaining

	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(400, "groceries", day(2024, time.January, 5)),
	})

	report := engine.Recommend(current, nil, engine.DefaultRiskThresholds())

	success := findRec(t, report, "Spending under control")
	if success.Type != engine.RecommendationSuccess {
		t.Errorf("expected success type, got %s", success.Type)
	}

	savings := findRec(t, report, "Savings opportunity")
	if savings.Message != "You could save $180 this period." {
		t.Errorf("unexpected savings message: %q", savings.Message)
	}
}

func TestRecommend_OverspentBudget_NoSavingsNudge(t *testing.T) {
	// GIVEN: Tiny budget fully blown, remaining is negative
	current := spendingSnapshot(t, 100, []engine.Expense{
		expense(120, "groceries", day(2024, time.January, 5)),
	})

	report := engine.Recommend(current, nil, engine.DefaultRiskThresholds())

	for _, rec := range report.Recommendations {
		if rec.Title == "Savings opportunity" {
			t.Error("overspent budget must not produce a savings nudge")
		}
	}
}

func TestRecommend_FlagsUnusedCategories(t *testing.T) {
	// GIVEN: Two known categories but spend recorded only in groceries
	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(100, "groceries", day(2024, time.January, 5)),
	})

	report := engine.Recommend(current, categoryList(), engine.DefaultRiskThresholds())

	unused := findRec(t, report, "Unused categories")
	if unused.Message != "1 categories have no recorded expenses this period." {
		t.Errorf("unexpected message: %q", unused.Message)
	}
	if unused.Type != engine.RecommendationInfo {
		t.Errorf("expected info type, got %s", unused.Type)
	}
}

func TestRecommend_AllCategoriesUsed_NoUnusedNote(t *testing.T) {
	current := spendingSnapshot(t, 1000, []engine.Expense{
		expense(100, "groceries", day(2024, time.January, 5)),
		expense(50, "transport", day(2024, time.January, 6)),
	})

	report := engine.Recommend(current, categoryList(), engine.DefaultRiskThresholds())

	for _, rec := range report.Recommendations {
		if rec.Title == "Unused categories" {
			t.Error("no unused-category note expected when every category has spend")
		}
	}
}
