package sync

import (
	"context"
	"time"
)

// ProviderEvent is one event (or one occurrence of a recurring series) as
// reported by the external calendar of record. Occurrence ids carry the
// series id as a prefix. DeletedAt is non-nil for provider-side tombstones.
type ProviderEvent struct {
	ProviderID     string     `json:"providerId"`
	SubCalendarIDs []string   `json:"subCalendarIds"`
	Title          string     `json:"title,omitempty"`
	Description    string     `json:"description,omitempty"`
	Start          time.Time  `json:"start"`
	End            time.Time  `json:"end"`
	RecurrenceRule string     `json:"rrule,omitempty"`
	AllDay         bool       `json:"allDay,omitempty"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

// SubCalendar is a provider-side bookable calendar, one per employee.
type SubCalendar struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ProviderConfiguration is the provider-side calendar configuration.
type ProviderConfiguration struct {
	Timezone     string        `json:"timezone"`
	SubCalendars []SubCalendar `json:"subcalendars"`
}

// CalendarProvider is the external calendar-of-record collaborator. The
// provider owns recurrence expansion: ListEvents returns one entry per
// occurrence, never an unexpanded rule that the core would have to
// materialize itself.
type CalendarProvider interface {
	GetConfiguration(ctx context.Context, calendarKey, token string) (*ProviderConfiguration, error)
	ListEvents(ctx context.Context, calendarKey, token string, since time.Time) ([]ProviderEvent, error)
	CreateEvent(ctx context.Context, calendarKey, token string, subCalendarIDs []string, title, description string, start, end time.Time) (string, error)
}

// Coordinator reconciles the local event cache against the provider.
type Coordinator interface {
	// FullSync reconciles one calendar: applies every fetched event and
	// tombstone-sweeps local rows the fetch window did not confirm.
	// Idempotent and safe to re-run.
	FullSync(ctx context.Context, calendarID string) error
	// SyncOne is the reactive entry point invoked when a recurring event
	// changes; same algorithm, scoped to one calendar.
	SyncOne(ctx context.Context, calendarID string) error
	// SyncAll runs FullSync over every syncable calendar, continuing past
	// per-calendar failures.
	SyncAll(ctx context.Context)
}
