package engine_test

import (
	"testing"
	"time"

	"github.com/warp/budget-engine/engine"
)

// =============================================================================
// RECURRING PAYMENT TESTS
// =============================================================================

func recurringPayment(freq engine.PaymentFrequency, due engine.TimePoint) engine.Payment {
	paidAt := time.Date(2024, time.January, 31, 9, 0, 0, 0, time.UTC)
	return engine.Payment{
		ID:        "pay-1",
		Name:      "Rent",
		Amount:    money(900),
		DueDate:   due,
		Frequency: freq,
		Paid:      true,
		PaidAt:    &paidAt,
	}
}

func TestNextOccurrence_MonthlyClampsToMonthEnd(t *testing.T) {
	// GIVEN: Monthly payments due on days the following month may not have
	// THEN: The next due date lands on the target month's last day,
	//       never spilling into the month after

	cases := []struct {
		name string
		due  engine.TimePoint
		want engine.TimePoint
	}{
		{"jan 31 to leap feb", day(2024, time.January, 31), day(2024, time.February, 29)},
		{"jan 31 to plain feb", day(2025, time.January, 31), day(2025, time.February, 28)},
		{"mar 31 to apr 30", day(2024, time.March, 31), day(2024, time.April, 30)},
		{"mid-month unaffected", day(2024, time.January, 15), day(2024, time.February, 15)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, ok := engine.NextOccurrence(recurringPayment(engine.FrequencyMonthly, tc.due))
			if !ok {
				t.Fatal("expected a follow-up payment")
			}
			if !next.DueDate.Equal(tc.want) {
				t.Errorf("expected next due %s, got %s", tc.want, next.DueDate)
			}
		})
	}
}

func TestNextOccurrence_YearlyFromLeapDay(t *testing.T) {
	next, ok := engine.NextOccurrence(recurringPayment(engine.FrequencyYearly, day(2024, time.February, 29)))
	if !ok {
		t.Fatal("expected a follow-up payment")
	}
	if want := day(2025, time.February, 28); !next.DueDate.Equal(want) {
		t.Errorf("expected next due %s, got %s", want, next.DueDate)
	}
}

func TestNextOccurrence_WeeklyAdvancesSevenDays(t *testing.T) {
	next, ok := engine.NextOccurrence(recurringPayment(engine.FrequencyWeekly, day(2024, time.June, 28)))
	if !ok {
		t.Fatal("expected a follow-up payment")
	}
	if want := day(2024, time.July, 5); !next.DueDate.Equal(want) {
		t.Errorf("expected next due %s, got %s", want, next.DueDate)
	}
}

func TestNextOccurrence_ResetsSettlementState(t *testing.T) {
	next, ok := engine.NextOccurrence(recurringPayment(engine.FrequencyMonthly, day(2024, time.January, 31)))
	if !ok {
		t.Fatal("expected a follow-up payment")
	}

	if next.ID != "" {
		t.Errorf("expected a blank id for the follow-up, got %q", next.ID)
	}
	if next.Paid || next.PaidAt != nil {
		t.Error("expected the follow-up to start unpaid")
	}
	if next.Name != "Rent" || !next.Amount.Equal(money(900)) {
		t.Errorf("expected name and amount carried over, got %s %v", next.Name, next.Amount)
	}
}

func TestNextOccurrence_OneTimeHasNoFollowUp(t *testing.T) {
	if _, ok := engine.NextOccurrence(recurringPayment(engine.FrequencyOneTime, day(2024, time.June, 1))); ok {
		t.Error("expected no follow-up for a one-time payment")
	}
}
