package models

import (
	"strings"
	"time"
)

// Event is the local projection of a provider event. ProviderEventID is the
// reconciliation key; occurrences of a recurring series carry the series id
// as a prefix of their provider id, so series-wide operations match by
// prefix.
type Event struct {
	ID              string    `bson:"id" json:"id"`
	CalendarID      string    `bson:"calendarId" json:"calendarId"`
	SubCalendarIDs  []string  `bson:"subCalendarIds" json:"subCalendarIds"`
	ProviderEventID string    `bson:"providerEventId" json:"providerEventId"`
	Title           string    `bson:"title,omitempty" json:"title,omitempty"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	Start           time.Time `bson:"start" json:"start"` // UTC instant
	End             time.Time `bson:"end" json:"end"`     // UTC instant, exclusive
	AllDay          bool      `bson:"allDay,omitempty" json:"allDay,omitempty"`
	RecurrenceRule  string    `bson:"rrule,omitempty" json:"rrule,omitempty"`
}

// Recurring reports whether the event belongs to a recurring series.
func (e Event) Recurring() bool {
	return e.RecurrenceRule != ""
}

// OccupiesSubCalendar reports whether the event blocks the given
// sub-calendar.
func (e Event) OccupiesSubCalendar(subCalendarID string) bool {
	for _, id := range e.SubCalendarIDs {
		if id == subCalendarID {
			return true
		}
	}
	return false
}

// SeriesID strips a Teamup-style occurrence suffix ("<series>-rid-<ts>")
// from a provider event id, yielding the id shared by the whole series.
func SeriesID(providerEventID string) string {
	if i := strings.Index(providerEventID, "-rid-"); i >= 0 {
		return providerEventID[:i]
	}
	return providerEventID
}
