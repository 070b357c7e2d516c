package availability

import (
	"time"

	"github.com/primego-bg/sites-by-appointments/models"
)

// ConflictChecker tests candidate slots against cached events under
// half-open-interval semantics: a slot conflicts iff
// slotStart < eventEnd && slotEnd > eventStart. Touching intervals
// (slotEnd == eventStart or slotStart == eventEnd) never conflict, so
// back-to-back bookings stay possible.
//
// Events are partitioned by calendar day up front; the per-slot check then
// scans only that day's bucket instead of the whole horizon's event set.
type ConflictChecker struct {
	loc   *time.Location
	byDay map[string][]models.Event
}

// NewConflictChecker pre-partitions the events that occupy the given
// sub-calendar. An empty subCalendarID keeps every event (no sub-calendar
// context means any booked event blocks the slot).
func NewConflictChecker(events []models.Event, subCalendarID string, loc *time.Location) *ConflictChecker {
	c := &ConflictChecker{loc: loc, byDay: make(map[string][]models.Event)}
	for _, ev := range events {
		if subCalendarID != "" && !ev.OccupiesSubCalendar(subCalendarID) {
			continue
		}
		if !ev.End.After(ev.Start) {
			continue
		}
		// An event spanning midnight lands in every day bucket it touches.
		start := ev.Start.In(loc)
		last := ev.End.Add(-time.Nanosecond).In(loc)
		for d := dayOf(start); !d.After(dayOf(last)); d = d.AddDate(0, 0, 1) {
			key := d.Format("2006-01-02")
			c.byDay[key] = append(c.byDay[key], ev)
		}
	}
	return c
}

// Conflicts reports whether the slot properly overlaps any event on its day.
func (c *ConflictChecker) Conflicts(slot models.Slot) bool {
	key := slot.Start.In(c.loc).Format("2006-01-02")
	for _, ev := range c.byDay[key] {
		if slot.Overlaps(ev.Start, ev.End) {
			return true
		}
	}
	return false
}

// Filter returns the slots that do not conflict with any event, preserving
// order.
func (c *ConflictChecker) Filter(slots []models.Slot) []models.Slot {
	out := make([]models.Slot, 0, len(slots))
	for _, s := range slots {
		if !c.Conflicts(s) {
			out = append(out, s)
		}
	}
	return out
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
