/*
risk.go - Traffic-light risk tiering over budget utilization

PURPOSE:
  Maps a spent/total ratio to a three-tier indicator (green, yellow, red)
  with a human-readable message. Both the live budget view and scenario
  simulation reuse the same tiering so a "red" means the same thing in
  either context.

TIERS (percentage of budget consumed, inclusive lower bounds):
  green  < Yellow threshold
  yellow >= Yellow and < Red
  red    >= Red

EDGE CASES:
  - Zero or negative budget total reports 0% (green) regardless of spend.
    The percentage has no denominator, so it is guarded to 0 the same way
    the tracker guards PercentageUsed.

SEE ALSO:
  - tracker.go: Produces the Spent/TotalAmount pair this consumes
  - planner.go: Reuses levelForPercent for scenario risk
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RiskLevel is the traffic-light tier of a risk assessment.
type RiskLevel string

const (
	RiskGreen  RiskLevel = "green"
	RiskYellow RiskLevel = "yellow"
	RiskRed    RiskLevel = "red"
)

// RiskThresholds are the tier boundaries expressed as percentages of the
// budget consumed. Yellow must be strictly below Red.
type RiskThresholds struct {
	Yellow decimal.Decimal
	Red    decimal.Decimal
}

// DefaultRiskThresholds returns the stock boundaries: yellow at 70%,
// red at 90%.
func DefaultRiskThresholds() RiskThresholds {
	return RiskThresholds{
		Yellow: decimal.NewFromInt(70),
		Red:    decimal.NewFromInt(90),
	}
}

// Validate reports whether the thresholds are usable.
func (t RiskThresholds) Validate() error {
	if t.Yellow.IsNegative() || t.Red.IsNegative() {
		return &InvalidInputError{Field: "risk_thresholds", Reason: "thresholds must be non-negative"}
	}
	if !t.Yellow.LessThan(t.Red) {
		return &InvalidInputError{Field: "risk_thresholds", Reason: "yellow threshold must be below red"}
	}
	return nil
}

// RiskIndicator is the assessed state of one budget at a point in time.
type RiskIndicator struct {
	Level      RiskLevel
	Percentage decimal.Decimal
	Spent      decimal.Decimal
	Budget     decimal.Decimal
	Remaining  decimal.Decimal
	Message    string
}

// AssessRisk tiers the given spend against the budget total.
func AssessRisk(spent, total decimal.Decimal, thresholds RiskThresholds) RiskIndicator {
	percentage := decimal.Zero
	if total.IsPositive() {
		percentage = spent.Div(total).Mul(oneHundred)
	}

	level := levelForPercent(percentage, thresholds)

	return RiskIndicator{
		Level:      level,
		Percentage: percentage,
		Spent:      spent,
		Budget:     total,
		Remaining:  total.Sub(spent),
		Message:    riskMessage(level, percentage),
	}
}

func levelForPercent(percentage decimal.Decimal, thresholds RiskThresholds) RiskLevel {
	switch {
	case percentage.GreaterThanOrEqual(thresholds.Red):
		return RiskRed
	case percentage.GreaterThanOrEqual(thresholds.Yellow):
		return RiskYellow
	default:
		return RiskGreen
	}
}

func riskMessage(level RiskLevel, percentage decimal.Decimal) string {
	pct := percentage.Round(1)
	switch level {
	case RiskRed:
		return fmt.Sprintf("You've used %s%% of your budget. Time to cut back on non-essentials.", pct)
	case RiskYellow:
		return fmt.Sprintf("You've used %s%% of your budget. Keep an eye on discretionary spending.", pct)
	default:
		return fmt.Sprintf("You've used %s%% of your budget. Spending is on track.", pct)
	}
}
