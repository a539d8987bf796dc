package engine

import (
	"time"
)

// =============================================================================
// TIME POINT - Calendar-day abstraction (budgets are date-ranged, not timed)
// =============================================================================

// TimePoint is a calendar date in UTC. Budgets, expenses, and payments all
// operate at day granularity; wall-clock time never enters the math.
type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func Today() TimePoint {
	now := time.Now().UTC()
	return NewTimePoint(now.Year(), now.Month(), now.Day())
}

// ParseDate parses an ISO date (YYYY-MM-DD).
func ParseDate(s string) (TimePoint, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return TimePoint{}, err
	}
	return TimePoint{Time: t}, nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return tp.Before(other) || tp.Equal(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return tp.After(other) || tp.Equal(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// AddMonths steps n calendar months forward, clamping the day of month to the
// target month's last day. Jan 31 plus one month is Feb 28 (or 29), never
// Mar 2 or 3. Recurring payment schedules depend on this.
func (tp TimePoint) AddMonths(n int) TimePoint {
	first := time.Date(tp.Year(), tp.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	day := tp.Day()
	if last := DaysInMonth(TimePoint{Time: first}); day > last {
		day = last
	}
	return NewTimePoint(first.Year(), first.Month(), day)
}

func (tp TimePoint) AddYears(n int) TimePoint { return tp.AddMonths(12 * n) }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format("2006-01-02")
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

// DaysBetween returns the calendar-day difference to - from.
// Negative when to precedes from.
func DaysBetween(from, to TimePoint) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }

func EndOfMonth(year int, month time.Month) TimePoint {
	t := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return TimePoint{Time: t}
}

// DaysInMonth returns the number of calendar days in the month containing tp.
func DaysInMonth(tp TimePoint) int {
	return EndOfMonth(tp.Year(), tp.Month()).Day()
}

// MonthOf returns the calendar month containing tp as a Period.
func MonthOf(tp TimePoint) Period {
	return Period{
		Start: StartOfMonth(tp.Year(), tp.Month()),
		End:   EndOfMonth(tp.Year(), tp.Month()),
	}
}

// WeekStart returns the start of the tracking week containing tp, where
// closingDay is the weekday the week opens on (per-user setting).
func WeekStart(tp TimePoint, closingDay time.Weekday) TimePoint {
	daysSince := (int(tp.Weekday()) - int(closingDay) + 7) % 7
	return tp.AddDays(-daysSince)
}
