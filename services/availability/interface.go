package availability

import (
	"context"
	"time"

	"github.com/primego-bg/sites-by-appointments/models"
)

// Validation is the outcome of checking a requested booking slot.
type Validation int

const (
	// ValidationInvalid: the requested slot is not in the generated set.
	ValidationInvalid Validation = iota
	// ValidationValid: both bounds are exact members of the generated set.
	ValidationValid
	// ValidationIndeterminate: the calendar is synchronizing; availability
	// is unknown and must not be read as fully booked.
	ValidationIndeterminate
)

func (v Validation) String() string {
	switch v {
	case ValidationValid:
		return "valid"
	case ValidationIndeterminate:
		return "indeterminate"
	default:
		return "invalid"
	}
}

// Engine lists open slots and validates requested booking slots.
type Engine interface {
	// ListAvailable returns the ordered open slots for a business and
	// duration, optionally scoped to one sub-calendar. An empty list is a
	// valid result; a lookup failure surfaces as a notFound error, never as
	// an empty list.
	ListAvailable(ctx context.Context, businessID string, duration time.Duration, subCalendarID string) ([]models.Slot, error)
	// ValidateRequestedSlot normalizes the requested bounds to zero-seconds
	// wall clock in the calendar's timezone and requires exact membership of
	// both bounds in the generated slot set. Bookings are only accepted on
	// generator-produced grid boundaries.
	ValidateRequestedSlot(ctx context.Context, calendarID string, start, end time.Time, subCalendarID string) (Validation, error)
}
