package availability

import (
	"testing"
	"time"

	"github.com/primego-bg/sites-by-appointments/models"
)

func mondaySchedule(open, close string) *WorkingHoursIndex {
	return NewWorkingHoursIndex([]models.WorkingHoursRange{
		{Day: "monday", Open: open, Close: close},
	})
}

func TestGenerateSlotsLeadTimeSkipsWholeSteps(t *testing.T) {
	idx := mondaySchedule("09:00", "12:00")
	loc := time.UTC

	// Monday 2026-03-02 08:10, lead time one hour, one-hour service. The
	// first candidate clearing 09:10 on the duration grid anchored at the
	// interval open is 10:00, not 09:10.
	now := time.Date(2026, 3, 2, 8, 10, 0, 0, loc)
	slots := GenerateSlots(idx, loc, now, 1, time.Hour, time.Hour)

	want := []models.Slot{
		{Start: time.Date(2026, 3, 2, 10, 0, 0, 0, loc), End: time.Date(2026, 3, 2, 11, 0, 0, 0, loc)},
		{Start: time.Date(2026, 3, 2, 11, 0, 0, 0, loc), End: time.Date(2026, 3, 2, 12, 0, 0, 0, loc)},
	}
	assertSlots(t, slots, want)
}

func TestGenerateSlotsNoLead(t *testing.T) {
	idx := mondaySchedule("09:00", "11:00")
	loc := time.UTC

	// Queried well before opening, every grid slot of the day is emitted.
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	slots := GenerateSlots(idx, loc, now, 1, 30*time.Minute, 0)

	if len(slots) != 4 {
		t.Fatalf("expected 4 half-hour slots in 09:00-11:00, got %d: %v", len(slots), slots)
	}
	if got := slots[0].Start; !got.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, loc)) {
		t.Errorf("first slot start = %v, want 09:00", got)
	}
	if got := slots[3].End; !got.Equal(time.Date(2026, 3, 2, 11, 0, 0, 0, loc)) {
		t.Errorf("last slot end = %v, want 11:00", got)
	}
}

func TestGenerateSlotsDurationExceedsInterval(t *testing.T) {
	idx := mondaySchedule("09:00", "10:00")
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	slots := GenerateSlots(idx, time.UTC, now, 1, 2*time.Hour, 0)
	if len(slots) != 0 {
		t.Fatalf("a 2h service cannot fit a 1h interval, got %v", slots)
	}
}

func TestGenerateSlotsFloorPastClose(t *testing.T) {
	idx := mondaySchedule("09:00", "12:00")
	loc := time.UTC

	// Lead-time floor lands after closing; the day yields nothing but the
	// walk continues into later days (horizon 1 here, so empty).
	now := time.Date(2026, 3, 2, 11, 45, 0, 0, loc)
	slots := GenerateSlots(idx, loc, now, 1, time.Hour, time.Hour)
	if len(slots) != 0 {
		t.Fatalf("expected no slots when the floor passes closing, got %v", slots)
	}
}

func TestGenerateSlotsHorizonCoversMultipleWeeks(t *testing.T) {
	idx := mondaySchedule("09:00", "10:00")
	loc := time.UTC

	now := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	slots := GenerateSlots(idx, loc, now, 15, time.Hour, 0)

	// Mondays within [Mar 2, Mar 17): Mar 2, Mar 9, Mar 16.
	if len(slots) != 3 {
		t.Fatalf("expected 3 monday slots in a 15-day horizon, got %d: %v", len(slots), slots)
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i].Start.After(slots[i-1].Start) {
			t.Errorf("slots out of order: %v before %v", slots[i], slots[i-1])
		}
	}
}

func TestGenerateSlotsSpringForwardDay(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	idx := NewWorkingHoursIndex([]models.WorkingHoursRange{
		{Day: "sunday", Open: "01:00", Close: "05:00"},
	})

	// 2026-03-08: clocks jump 02:00 -> 03:00. Stepping is by absolute
	// duration, so the slot after [01:00, +1h) starts at wall clock 03:00
	// and the nominal four-hour window holds three real hours.
	now := time.Date(2026, 3, 8, 0, 0, 0, 0, loc)
	slots := GenerateSlots(idx, loc, now, 1, time.Hour, 0)

	if len(slots) != 3 {
		t.Fatalf("expected 3 slots across the transition, got %d: %v", len(slots), slots)
	}
	wantStarts := []int{1, 3, 4}
	for i, s := range slots {
		if s.Start.In(loc).Hour() != wantStarts[i] {
			t.Errorf("slot %d starts at wall clock %02d:00, want %02d:00",
				i, s.Start.In(loc).Hour(), wantStarts[i])
		}
	}
}

func TestGenerateSlotsDegenerateInputs(t *testing.T) {
	idx := mondaySchedule("09:00", "12:00")
	now := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if got := GenerateSlots(idx, time.UTC, now, 0, time.Hour, 0); got != nil {
		t.Errorf("zero horizon should yield nil, got %v", got)
	}
	if got := GenerateSlots(idx, time.UTC, now, 1, 0, 0); got != nil {
		t.Errorf("zero duration should yield nil, got %v", got)
	}
}

func assertSlots(t *testing.T, got, want []models.Slot) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("slot count = %d, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !got[i].Start.Equal(want[i].Start) || !got[i].End.Equal(want[i].End) {
			t.Errorf("slot %d = [%v, %v), want [%v, %v)",
				i, got[i].Start, got[i].End, want[i].Start, want[i].End)
		}
	}
}
