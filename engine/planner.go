/*
planner.go - Multi-scenario monthly budget simulation

PURPOSE:
  Produces three named spending scenarios (spend_all, normal, severe) from a
  single set of monthly inputs: income, savings goal, fixed obligations, and
  essential expenses. Each scenario varies how aggressively savings are
  reserved, then splits what remains into essential and discretionary
  allowances with weekly breakdowns, feasibility, risk, and adherence
  tracking against the current month's actual spend.

PIPELINE (per plan request):
  1. Resolve fixed expenses: manual figure, or the sum of unpaid non-excluded
     payments due in the current calendar month.
  2. Per scenario: savings target = goal * multiplier; available = income -
     fixed - savings target.
  3. Feasibility: feasible when available covers essentials; shortfall is the
     uncovered remainder. Essential is clamped to available for the split.
  4. Weekly split over the current calendar month (days / 7 weeks).
  5. Risk: red when infeasible or essentials consume the red share of
     available funds; same thresholds as the live budget indicator.
  6. Tracking: week/month-to-date actuals vs the scenario's weekly target and
     a linear month-to-date expectation anchored to today.
  7. A non-empty recommendation string.

PURITY:
  Plan performs no I/O. Payments and actuals are caller-supplied snapshots;
  applying a chosen scenario to a budget is the caller's write, fed by
  AmountForPeriod.

SEE ALSO:
  - period.go: Week arithmetic for the apply-scenario conversion
  - risk.go: Shared tier thresholds
  - tracker.go: Source of the actuals snapshot
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Scenario labels. These are wire-visible identifiers, not display text.
const (
	ScenarioSpendAll = "spend_all"
	ScenarioNormal   = "normal"
	ScenarioSevere   = "severe"
)

// FixedExpensesSource records where the fixed-expense figure came from.
type FixedExpensesSource string

const (
	FixedSourceManual   FixedExpensesSource = "manual"
	FixedSourceCalendar FixedExpensesSource = "calendar"
)

// PlannerConfig carries the tunable policy constants of the simulator.
// The multipliers scale the stated savings goal per scenario; they are
// calibrated constants, not derived values, so they live in configuration.
type PlannerConfig struct {
	SpendAllMultiplier decimal.Decimal
	NormalMultiplier   decimal.Decimal
	SevereMultiplier   decimal.Decimal

	// AdherenceTolerance is the half-width of the on_track band around an
	// adherence ratio of 1.0.
	AdherenceTolerance decimal.Decimal

	Thresholds RiskThresholds

	// Epsilon guards the essential/available risk ratio when available
	// funds are zero or negative.
	Epsilon decimal.Decimal
}

// DefaultPlannerConfig returns the stock policy: spend_all reserves half the
// savings goal, normal reserves it fully, severe reserves one and a half
// times it, with a 10% adherence band.
func DefaultPlannerConfig() PlannerConfig {
	return PlannerConfig{
		SpendAllMultiplier: decimal.NewFromFloat(0.5),
		NormalMultiplier:   decimal.NewFromInt(1),
		SevereMultiplier:   decimal.NewFromFloat(1.5),
		AdherenceTolerance: decimal.NewFromFloat(0.10),
		Thresholds:         DefaultRiskThresholds(),
		Epsilon:            decimal.NewFromFloat(0.01),
	}
}

// ScenarioInputs are the user-entered monthly figures a plan is built from.
type ScenarioInputs struct {
	MonthlyIncome     decimal.Decimal
	SavingsGoal       decimal.Decimal
	FixedExpenses     decimal.Decimal
	EssentialExpenses decimal.Decimal

	UseCalendarPayments bool
	ExcludePaymentIDs   []PaymentID
}

// CurrentPeriodActuals is the tracking snapshot the caller derives from the
// expense record, typically via ComputeSpending over week and month windows.
type CurrentPeriodActuals struct {
	SpentWeekToDate  decimal.Decimal
	SpentMonthToDate decimal.Decimal
}

// WeeklySplit is one scenario's monthly allowance divided over the weeks of
// the current calendar month.
type WeeklySplit struct {
	Total         decimal.Decimal
	Essential     decimal.Decimal
	Discretionary decimal.Decimal
}

// AdherenceStatus classifies month-to-date spend against the linear
// expectation.
type AdherenceStatus string

const (
	AdherenceOnTrack AdherenceStatus = "on_track"
	AdherenceUnder   AdherenceStatus = "under"
	AdherenceOver    AdherenceStatus = "over"
)

// ScenarioTracking compares actual spend with a scenario's targets.
type ScenarioTracking struct {
	SpentWeekToDate     decimal.Decimal
	RemainingWeek       decimal.Decimal
	SpentMonthToDate    decimal.Decimal
	WeeklyTarget        decimal.Decimal
	ExpectedMonthToDate decimal.Decimal
	WeekExceeded        bool
	AdherenceRatio      decimal.Decimal
	AdherenceStatus     AdherenceStatus
}

// Scenario is one fully computed spending plan. Derived, never persisted.
type Scenario struct {
	Label                string
	SavingsMonthly       decimal.Decimal
	AvailableMonthly     decimal.Decimal
	EssentialMonthly     decimal.Decimal
	DiscretionaryMonthly decimal.Decimal
	Weekly               WeeklySplit
	Tracking             ScenarioTracking
	Feasible             bool
	Shortfall            decimal.Decimal
	RiskLevel            RiskLevel
	Recommendation       string
}

// CalendarPayments summarizes the unpaid payments due in the plan's month.
// Payments and Total cover every unpaid in-month payment; IncludedIDs and
// IncludedTotal reflect the subset that survives the exclusion list and
// actually feeds the fixed-expense figure.
type CalendarPayments struct {
	Month         Period
	Payments      []Payment
	Total         decimal.Decimal
	IncludedIDs   []PaymentID
	IncludedTotal decimal.Decimal
}

// PlanResult is the full simulator output for one set of inputs.
type PlanResult struct {
	Inputs              ScenarioInputs
	FixedExpensesUsed   decimal.Decimal
	FixedExpensesSource FixedExpensesSource
	CalendarPayments    CalendarPayments
	WeeksInMonth        decimal.Decimal
	DaysInMonth         int
	Scenarios           map[string]Scenario
}

// Planner runs scenario simulations under one policy configuration.
type Planner struct {
	cfg PlannerConfig
}

// NewPlanner validates the configuration and returns a planner.
func NewPlanner(cfg PlannerConfig) (*Planner, error) {
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Epsilon.IsPositive() {
		return nil, &InvalidInputError{Field: "epsilon", Reason: "must be positive"}
	}
	if cfg.AdherenceTolerance.IsNegative() {
		return nil, &InvalidInputError{Field: "adherence_tolerance", Reason: "must be non-negative"}
	}
	for _, m := range []struct {
		name  string
		value decimal.Decimal
	}{
		{"spend_all_multiplier", cfg.SpendAllMultiplier},
		{"normal_multiplier", cfg.NormalMultiplier},
		{"severe_multiplier", cfg.SevereMultiplier},
	} {
		if m.value.IsNegative() {
			return nil, &InvalidInputError{Field: m.name, Reason: "must be non-negative"}
		}
	}
	return &Planner{cfg: cfg}, nil
}

// Plan computes the three scenarios for the month containing today. The
// payments slice is only consulted when inputs request calendar-derived
// fixed expenses; actuals come from the caller's expense snapshot.
func (p *Planner) Plan(inputs ScenarioInputs, payments []Payment, actuals CurrentPeriodActuals, today TimePoint) (PlanResult, error) {
	if err := validateInputs(inputs); err != nil {
		return PlanResult{}, err
	}

	calendar := resolveCalendarPayments(payments, today, inputs.ExcludePaymentIDs)

	fixedUsed := inputs.FixedExpenses
	source := FixedSourceManual
	if inputs.UseCalendarPayments {
		source = FixedSourceCalendar
		fixedUsed = calendar.IncludedTotal
	}

	daysInMonth := DaysInMonth(today)
	weeksInMonth := decimal.NewFromInt(int64(daysInMonth)).Div(decimal.NewFromInt(7))

	scenarios := map[string]Scenario{
		ScenarioSpendAll: p.buildScenario(ScenarioSpendAll, p.cfg.SpendAllMultiplier, inputs, fixedUsed, weeksInMonth, daysInMonth, actuals, today),
		ScenarioNormal:   p.buildScenario(ScenarioNormal, p.cfg.NormalMultiplier, inputs, fixedUsed, weeksInMonth, daysInMonth, actuals, today),
		ScenarioSevere:   p.buildScenario(ScenarioSevere, p.cfg.SevereMultiplier, inputs, fixedUsed, weeksInMonth, daysInMonth, actuals, today),
	}

	return PlanResult{
		Inputs:              inputs,
		FixedExpensesUsed:   fixedUsed,
		FixedExpensesSource: source,
		CalendarPayments:    calendar,
		WeeksInMonth:        weeksInMonth,
		DaysInMonth:         daysInMonth,
		Scenarios:           scenarios,
	}, nil
}

func validateInputs(inputs ScenarioInputs) error {
	if inputs.MonthlyIncome.IsNegative() {
		return &InvalidInputError{Field: "monthly_income", Reason: "must be non-negative"}
	}
	if inputs.SavingsGoal.IsNegative() {
		return &InvalidInputError{Field: "savings_goal", Reason: "must be non-negative"}
	}
	if inputs.EssentialExpenses.IsNegative() {
		return &InvalidInputError{Field: "essential_expenses", Reason: "must be non-negative"}
	}
	// The manual figure is ignored when calendar payments drive fixed
	// expenses, so it is only validated on the manual path.
	if !inputs.UseCalendarPayments && inputs.FixedExpenses.IsNegative() {
		return &InvalidInputError{Field: "fixed_expenses", Reason: "must be non-negative"}
	}
	return nil
}

// resolveCalendarPayments collects unpaid payments due in today's calendar
// month and sums both the full total and the non-excluded subtotal.
func resolveCalendarPayments(payments []Payment, today TimePoint, exclude []PaymentID) CalendarPayments {
	excluded := make(map[PaymentID]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	out := CalendarPayments{
		Month:         MonthOf(today),
		Total:         decimal.Zero,
		IncludedTotal: decimal.Zero,
	}

	for _, pay := range payments {
		if pay.Paid || !out.Month.Contains(pay.DueDate) {
			continue
		}
		out.Payments = append(out.Payments, pay)
		out.Total = out.Total.Add(pay.Amount)
		if !excluded[pay.ID] {
			out.IncludedIDs = append(out.IncludedIDs, pay.ID)
			out.IncludedTotal = out.IncludedTotal.Add(pay.Amount)
		}
	}
	return out
}

func (p *Planner) buildScenario(label string, multiplier decimal.Decimal, inputs ScenarioInputs, fixedUsed, weeksInMonth decimal.Decimal, daysInMonth int, actuals CurrentPeriodActuals, today TimePoint) Scenario {
	savings := inputs.SavingsGoal.Mul(multiplier)
	available := inputs.MonthlyIncome.Sub(fixedUsed).Sub(savings)

	feasible := available.GreaterThanOrEqual(inputs.EssentialExpenses)
	shortfall := decimal.Max(inputs.EssentialExpenses.Sub(available), decimal.Zero)

	// The split never allocates negative money: essential is clamped to
	// what is actually available, discretionary takes the rest.
	spendable := decimal.Max(available, decimal.Zero)
	essential := decimal.Min(inputs.EssentialExpenses, spendable)
	discretionary := spendable.Sub(essential)

	weekly := WeeklySplit{
		Total:         spendable.Div(weeksInMonth),
		Essential:     essential.Div(weeksInMonth),
		Discretionary: discretionary.Div(weeksInMonth),
	}

	risk := p.scenarioRisk(inputs.EssentialExpenses, available, feasible)
	tracking := p.buildTracking(weekly, spendable, daysInMonth, actuals, today)

	return Scenario{
		Label:                label,
		SavingsMonthly:       savings,
		AvailableMonthly:     available,
		EssentialMonthly:     essential,
		DiscretionaryMonthly: discretionary,
		Weekly:               weekly,
		Tracking:             tracking,
		Feasible:             feasible,
		Shortfall:            shortfall,
		RiskLevel:            risk,
		Recommendation:       recommendationFor(label, feasible, risk, shortfall),
	}
}

// scenarioRisk tiers a scenario by how much of the available funds the
// essential expenses already consume, using the same thresholds as the live
// budget indicator. An infeasible scenario is always red.
func (p *Planner) scenarioRisk(essential, available decimal.Decimal, feasible bool) RiskLevel {
	if !feasible {
		return RiskRed
	}
	ratio := essential.Div(decimal.Max(available, p.cfg.Epsilon)).Mul(oneHundred)
	return levelForPercent(ratio, p.cfg.Thresholds)
}

func (p *Planner) buildTracking(weekly WeeklySplit, spendable decimal.Decimal, daysInMonth int, actuals CurrentPeriodActuals, today TimePoint) ScenarioTracking {
	expected := spendable.
		Mul(decimal.NewFromInt(int64(today.Day()))).
		Div(decimal.NewFromInt(int64(daysInMonth)))

	ratio := decimal.Zero
	status := AdherenceOnTrack
	if expected.IsPositive() {
		ratio = actuals.SpentMonthToDate.Div(expected)
		one := decimal.NewFromInt(1)
		// Band edges belong to the outer bands: a ratio of exactly
		// 1 - tolerance is under, exactly 1 + tolerance is over.
		switch {
		case ratio.LessThanOrEqual(one.Sub(p.cfg.AdherenceTolerance)):
			status = AdherenceUnder
		case ratio.GreaterThanOrEqual(one.Add(p.cfg.AdherenceTolerance)):
			status = AdherenceOver
		}
	}

	return ScenarioTracking{
		SpentWeekToDate:     actuals.SpentWeekToDate,
		RemainingWeek:       weekly.Total.Sub(actuals.SpentWeekToDate),
		SpentMonthToDate:    actuals.SpentMonthToDate,
		WeeklyTarget:        weekly.Total,
		ExpectedMonthToDate: expected,
		WeekExceeded:        actuals.SpentWeekToDate.GreaterThan(weekly.Total),
		AdherenceRatio:      ratio,
		AdherenceStatus:     status,
	}
}

func recommendationFor(label string, feasible bool, risk RiskLevel, shortfall decimal.Decimal) string {
	if !feasible {
		return fmt.Sprintf("This plan doesn't cover your essentials: you're short %s per month. Reduce your savings target or trim essential costs.", shortfall.Round(2))
	}

	var base string
	switch label {
	case ScenarioSpendAll:
		base = "Relaxed savings: enjoy the extra room, but your long-term goal will take longer to reach."
	case ScenarioSevere:
		base = "Aggressive savings: this builds your buffer fastest. Expect a tight discretionary allowance."
	default:
		base = "Balanced plan: savings goal fully funded with a workable weekly allowance."
	}

	switch risk {
	case RiskRed:
		return base + " Essentials consume nearly everything available, so any surprise expense breaks the plan."
	case RiskYellow:
		return base + " Essentials take a large share of available funds; keep discretionary spending deliberate."
	default:
		return base
	}
}

// AmountForPeriod converts a scenario's weekly allowance into a total for
// the given budget period, for the caller to persist on apply. Periods
// shorter than a week still fund at least one full week.
func AmountForPeriod(s Scenario, budgetPeriod Period) (decimal.Decimal, error) {
	breakdown, err := budgetPeriod.Normalize()
	if err != nil {
		return decimal.Zero, err
	}
	weeks := decimal.NewFromFloat(breakdown.Weeks)
	one := decimal.NewFromInt(1)
	if weeks.LessThan(one) {
		weeks = one
	}
	return s.Weekly.Total.Mul(weeks).Round(2), nil
}
