package engine

// =============================================================================
// PERIOD - The core concept for budget tracking
// =============================================================================

// Period defines the date range a budget applies to.
// Utilization is ALWAYS computed for a period, not at a point in time.
//
// Examples:
//   - A tracking week: Mon Jan 1 - Sun Jan 7
//   - A calendar month: Feb 1 - Feb 29
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns all days in the period as a slice of TimePoints, boundaries
// inclusive. A one-day period yields one entry.
func (p Period) Days() []TimePoint {
	var days []TimePoint
	current := p.Start
	for current.BeforeOrEqual(p.End) {
		days = append(days, current)
		current = current.AddDays(1)
	}
	return days
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// NextPeriod returns the contiguous period following this one, same length.
func (p Period) NextPeriod() Period {
	newStart := p.End.AddDays(1)
	duration := DaysBetween(p.Start, p.End)
	newEnd := newStart.AddDays(duration)
	return Period{Start: newStart, End: newEnd}
}

// =============================================================================
// PERIOD NORMALIZATION - Day and week counts for projection math
// =============================================================================

// Breakdown is the normalized shape of a period used by projection and
// weekly-split math.
type Breakdown struct {
	// RawDays is the calendar-day difference End - Start. Note that the
	// inclusive enumeration in Days() yields RawDays+1 entries.
	RawDays int

	// NormalizedDays is RawDays with two fixups: a 6-day difference (the
	// usual Mon-Sun inclusive week) is treated as a full 7-day week, and
	// anything shorter than a day counts as one day.
	NormalizedDays int

	// Weeks is NormalizedDays / 7, fractional. A 4-day period is ~0.571
	// weeks; no rounding is applied here.
	Weeks float64
}

// Normalize computes the day and week counts for the period.
// Returns ErrInvalidRange when End precedes Start.
func (p Period) Normalize() (Breakdown, error) {
	raw := DaysBetween(p.Start, p.End)
	if raw < 0 {
		return Breakdown{}, &InvalidRangeError{Start: p.Start, End: p.End}
	}

	normalized := raw
	if raw == 6 {
		normalized = 7
	} else if raw < 1 {
		normalized = 1
	}

	return Breakdown{
		RawDays:        raw,
		NormalizedDays: normalized,
		Weeks:          float64(normalized) / 7.0,
	}, nil
}
