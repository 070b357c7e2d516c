package availability

import (
	"time"

	"github.com/primego-bg/sites-by-appointments/models"
)

// GenerateSlots walks the horizon [today, today+horizonDays) day by day and
// emits every candidate slot of the given duration inside the open
// intervals, respecting the lead-time floor now+lead. Within an interval,
// candidates start at the interval open and step by the slot duration; the
// first candidate is the first duration-aligned boundary at or after
// max(open, now+lead). All arithmetic happens in loc, so daylight-saving
// transitions are location-local.
//
// The result is ordered day-ascending then start-ascending and
// duplicate-free. It is regenerated per call; callers may cache it with a
// short TTL invalidated by event mutations.
func GenerateSlots(idx *WorkingHoursIndex, loc *time.Location, now time.Time, horizonDays int, duration, lead time.Duration) []models.Slot {
	if duration <= 0 || horizonDays <= 0 {
		return nil
	}

	now = now.In(loc)
	floor := now.Add(lead)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	var slots []models.Slot
	for i := 0; i < horizonDays; i++ {
		day := today.AddDate(0, 0, i)
		for _, iv := range idx.IntervalsOn(day, loc) {
			t := iv.Open
			// Skip whole duration steps until the lead-time floor is
			// cleared; if the floor already exceeds the interval close, the
			// interval yields nothing.
			for t.Before(floor) {
				t = t.Add(duration)
			}
			for end := t.Add(duration); !end.After(iv.Close); end = t.Add(duration) {
				slots = append(slots, models.Slot{Start: t, End: end})
				t = end
			}
		}
	}

	return dedupe(slots)
}

// dedupe drops consecutive duplicates. Input is already ordered; duplicates
// only arise from defective (merged) schedule configurations.
func dedupe(slots []models.Slot) []models.Slot {
	if len(slots) < 2 {
		return slots
	}
	out := slots[:1]
	for _, s := range slots[1:] {
		last := out[len(out)-1]
		if s.Start.Equal(last.Start) && s.End.Equal(last.End) {
			continue
		}
		out = append(out, s)
	}
	return out
}
