/*
recommend.go - Spending recommendations for the current budget

PURPOSE:
  Turns a utilization snapshot into a small list of prioritized, actionable
  recommendations: cut-back warnings when usage is high, a savings nudge
  when there is room, and a note about categories with no recorded spend.

  Tiering reuses the shared risk thresholds so "high usage" here means the
  same thing as a red budget indicator.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RecommendationType classifies how a recommendation should be presented.
type RecommendationType string

const (
	RecommendationWarning    RecommendationType = "warning"
	RecommendationSuggestion RecommendationType = "suggestion"
	RecommendationInfo       RecommendationType = "info"
	RecommendationSuccess    RecommendationType = "success"
)

// RecommendationPriority orders recommendations for display.
type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// Recommendation is one actionable suggestion about current spending.
type Recommendation struct {
	Type       RecommendationType
	Title      string
	Message    string
	Priority   RecommendationPriority
	CategoryID CategoryID

	// SuggestedReduction is a percentage; only set on cut-back suggestions.
	SuggestedReduction decimal.Decimal
}

// RecommendationReport bundles the suggestions with the stats they were
// derived from.
type RecommendationReport struct {
	Recommendations []Recommendation
	Budget          decimal.Decimal
	Spent           decimal.Decimal
	Remaining       decimal.Decimal
	PercentageUsed  decimal.Decimal
}

// savingsShare is the fraction of remaining funds the savings nudge
// proposes to set aside.
var savingsShare = decimal.NewFromFloat(0.3)

// Recommend analyzes the utilization snapshot and produces prioritized
// suggestions. Categories are the user's full active set, used to flag the
// ones with no recorded spend.
func Recommend(current BudgetWithSpending, categories []Category, thresholds RiskThresholds) RecommendationReport {
	recs := []Recommendation{}
	pct := current.PercentageUsed

	switch levelForPercent(pct, thresholds) {
	case RiskRed:
		recs = append(recs, Recommendation{
			Type:     RecommendationWarning,
			Title:    "High spending",
			Message:  fmt.Sprintf("You've used %s%% of your budget. Consider cutting back on non-essential categories.", pct.Round(1)),
			Priority: PriorityHigh,
		})
		// ByCategory is already sorted largest first.
		if len(current.ByCategory) > 0 {
			top := current.ByCategory[0]
			recs = append(recs, Recommendation{
				Type:               RecommendationSuggestion,
				Title:              fmt.Sprintf("Reduce %s", top.Name),
				Message:            fmt.Sprintf("Your biggest expense is %s ($%s). Try cutting it by 20%%.", top.Name, top.Total.Round(2)),
				Priority:           PriorityMedium,
				CategoryID:         top.CategoryID,
				SuggestedReduction: decimal.NewFromInt(20),
			})
		}
	case RiskYellow:
		recs = append(recs, Recommendation{
			Type:     RecommendationInfo,
			Title:    "Moderate spending",
			Message:  fmt.Sprintf("You've used %s%% of your budget. You're doing fine, but stay in control.", pct.Round(1)),
			Priority: PriorityLow,
		})
	default:
		recs = append(recs, Recommendation{
			Type:     RecommendationSuccess,
			Title:    "Spending under control",
			Message:  fmt.Sprintf("Great! You still have $%s available this period.", current.Remaining.Round(2)),
			Priority: PriorityLow,
		})
		if current.Remaining.IsPositive() {
			recs = append(recs, Recommendation{
				Type:     RecommendationSuggestion,
				Title:    "Savings opportunity",
				Message:  fmt.Sprintf("You could save $%s this period.", current.Remaining.Mul(savingsShare).Round(2)),
				Priority: PriorityMedium,
			})
		}
	}

	if unused := countUnusedCategories(current, categories); unused > 0 {
		recs = append(recs, Recommendation{
			Type:     RecommendationInfo,
			Title:    "Unused categories",
			Message:  fmt.Sprintf("%d categories have no recorded expenses this period.", unused),
			Priority: PriorityLow,
		})
	}

	return RecommendationReport{
		Recommendations: recs,
		Budget:          current.Budget.TotalAmount,
		Spent:           current.Spent,
		Remaining:       current.Remaining,
		PercentageUsed:  pct,
	}
}

func countUnusedCategories(current BudgetWithSpending, categories []Category) int {
	seen := make(map[CategoryID]bool, len(current.ByCategory))
	for _, c := range current.ByCategory {
		if c.Total.IsPositive() {
			seen[c.CategoryID] = true
		}
	}
	unused := 0
	for _, c := range categories {
		if !seen[c.ID] {
			unused++
		}
	}
	return unused
}
