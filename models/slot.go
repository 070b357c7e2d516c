package models

import "time"

// Slot is a half-open bookable interval [Start, End) aligned to the
// generator's stepping rule. Instants are in the owning calendar's timezone.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Touches reports whether the slot shares exactly one boundary instant with
// the interval [start, end). Touching intervals never conflict.
func (s Slot) Touches(start, end time.Time) bool {
	return s.End.Equal(start) || s.Start.Equal(end)
}

// Overlaps reports proper overlap with [start, end) under half-open
// semantics.
func (s Slot) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && s.End.After(start)
}
