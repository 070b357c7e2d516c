package eventsRepo

import (
	"context"
	"errors"
	"time"

	"github.com/primego-bg/sites-by-appointments/models"
)

// ErrDuplicateSlot is returned when an insert collides with the unique
// (subCalendarIds, start) index. Two concurrent booking attempts for the
// same slot can both pass the availability read; exactly one insert wins.
var ErrDuplicateSlot = errors.New("slot already taken for sub-calendar")

// EventRepository is the cached local projection of provider events. All
// event writes flow through the sync coordinator or the booking path.
type EventRepository interface {
	// GetByCalendar retrieves every cached event for a calendar in one read.
	GetByCalendar(ctx context.Context, calendarID string) ([]models.Event, error)
	// GetByCalendarAndSubCalendar narrows the read to one sub-calendar.
	GetByCalendarAndSubCalendar(ctx context.Context, calendarID, subCalendarID string) ([]models.Event, error)
	// GetByProviderID retrieves an event by its exact provider id.
	GetByProviderID(ctx context.Context, calendarID, providerEventID string) (*models.Event, error)
	// Insert persists a new event. Returns ErrDuplicateSlot on a
	// (subCalendarIds, start) uniqueness collision.
	Insert(ctx context.Context, event *models.Event) error
	// UpsertByProviderID replaces the row keyed by provider event id, or
	// inserts it when absent. Idempotent under duplicate webhook delivery.
	UpsertByProviderID(ctx context.Context, event *models.Event) error
	// UpdateBounds rewrites the start/end instants of an existing event.
	UpdateBounds(ctx context.Context, calendarID, providerEventID string, start, end time.Time) error
	// SetProviderID binds a locally committed event to the provider event
	// created for it.
	SetProviderID(ctx context.Context, eventID, providerEventID string) error
	// DeleteByID removes a single locally committed event.
	DeleteByID(ctx context.Context, eventID string) error
	// DeleteByProviderID removes the single row with this exact provider id.
	DeleteByProviderID(ctx context.Context, calendarID, providerEventID string) error
	// DeleteByProviderIDPrefix removes every occurrence row of a recurring
	// series, matching the provider id as a prefix.
	DeleteByProviderIDPrefix(ctx context.Context, calendarID, prefix string) (int64, error)
	// DeleteAbsent removes every event of the calendar whose provider id was
	// not observed in the latest authoritative fetch (tombstone sweep).
	// Rows with an empty provider id are spared: those are locally committed
	// bookings whose provider binding is still in flight, and sweeping them
	// would transiently reopen a sold slot.
	DeleteAbsent(ctx context.Context, calendarID string, observed map[string]struct{}) (int64, error)
}
