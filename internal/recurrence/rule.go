// Package recurrence validates recurrence rules and computes the preview end
// date shown on the confirm step. Expanding a rule into concrete appointment
// rows is the backend's job; this package only does the client-visible math.
package recurrence

import (
	"fmt"
	"time"
)

// Frequency enumerates the supported recurrence intervals.
type Frequency string

const (
	Weekly      Frequency = "weekly"
	Every2Weeks Frequency = "every_2_weeks"
	Every4Weeks Frequency = "every_4_weeks"
	Every6Weeks Frequency = "every_6_weeks"
	Every8Weeks Frequency = "every_8_weeks"
	Monthly     Frequency = "monthly"
)

const (
	MinOccurrences = 2
	MaxOccurrences = 26
)

// intervalWeeks returns the week interval for week-based frequencies.
// Monthly is calendar-month arithmetic and returns ok=false.
func (f Frequency) intervalWeeks() (int, bool) {
	switch f {
	case Weekly:
		return 1, true
	case Every2Weeks:
		return 2, true
	case Every4Weeks:
		return 4, true
	case Every6Weeks:
		return 6, true
	case Every8Weeks:
		return 8, true
	default:
		return 0, false
	}
}

// Valid reports whether f is a known frequency.
func (f Frequency) Valid() bool {
	if _, ok := f.intervalWeeks(); ok {
		return true
	}
	return f == Monthly
}

// Rule is a recurrence selection made in the wizard.
type Rule struct {
	Frequency   Frequency `json:"frequency"`
	Occurrences int       `json:"occurrences"`
}

// Validate checks frequency and occurrence bounds.
func (r Rule) Validate() error {
	if !r.Frequency.Valid() {
		return fmt.Errorf("recurrence: unknown frequency %q", r.Frequency)
	}
	if r.Occurrences < MinOccurrences || r.Occurrences > MaxOccurrences {
		return fmt.Errorf("recurrence: occurrences must be between %d and %d, got %d",
			MinOccurrences, MaxOccurrences, r.Occurrences)
	}
	return nil
}

// PreviewEndDate returns the date of the final occurrence for a series
// starting at start: start + interval*(occurrences-1).
func (r Rule) PreviewEndDate(start time.Time) time.Time {
	steps := r.Occurrences - 1
	if steps < 0 {
		steps = 0
	}
	if weeks, ok := r.Frequency.intervalWeeks(); ok {
		return start.AddDate(0, 0, 7*weeks*steps)
	}
	return start.AddDate(0, steps, 0)
}
