// Package availability decides which tables are already taken for a requested slot.
package availability

import "github.com/tablebook/backend/internal/timenorm"

// DefaultDuration is the length of a reservation in minutes when none is configured.
const DefaultDuration = 60

// Window is the half-open interval [Start, End) in minutes since midnight.
type Window struct {
	Start int
	End   int
}

// NewWindow returns the window a reservation starting at start occupies. It never
// extends past midnight.
func NewWindow(start, duration int) Window {
	if start < 0 {
		start = 0
	}
	if start > timenorm.MinutesPerDay {
		start = timenorm.MinutesPerDay
	}
	end := start + duration
	if end > timenorm.MinutesPerDay {
		end = timenorm.MinutesPerDay
	}
	return Window{Start: start, End: end}
}

// Overlaps uses strict inequalities so back-to-back windows do not collide.
func (w Window) Overlaps(o Window) bool {
	return w.Start < o.End && o.Start < w.End
}

// IsOverlapping reports whether a booking at requested minutes collides with a stored
// booking at candidate. A candidate that does not parse never collides.
func IsOverlapping(requested int, candidate string, duration int) bool {
	candidateStart, ok := timenorm.ParseTimeToMinutes(candidate)
	if !ok {
		return false
	}
	return NewWindow(requested, duration).Overlaps(NewWindow(candidateStart, duration))
}
