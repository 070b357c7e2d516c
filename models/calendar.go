package models

import "time"

// Calendar sync lifecycle. A calendar stays in CalendarStatusSyncing for the
// whole duration of a reconciliation run; availability for a syncing
// calendar is indeterminate, never "fully booked". The status field is
// mutated only by the sync coordinator.
const (
	CalendarStatusActive  = "active"
	CalendarStatusSyncing = "syncing"
	CalendarStatusDeleted = "deleted"
)

// Calendar binds a business to its external calendar of record. There is
// exactly one calendar per business.
type Calendar struct {
	ID                string     `bson:"id" json:"id"`
	BusinessID        string     `bson:"businessId" json:"businessId"`
	APIKey            string     `bson:"apiKey" json:"-"`
	SecretCalendarKey string     `bson:"secretCalendarKey" json:"-"`
	Timezone          string     `bson:"timezone" json:"timezone"` // IANA name, e.g. "Europe/Sofia"
	LastSynchronized  *time.Time `bson:"lastSynchronized,omitempty" json:"lastSynchronized,omitempty"`
	Status            string     `bson:"status" json:"status"`
}

// Location loads the calendar's IANA timezone. Falls back to UTC when the
// name does not resolve on the host.
func (c Calendar) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
