package availability

import (
	"testing"
	"time"

	"github.com/primego-bg/sites-by-appointments/models"
)

func TestIntervalsOnClosedDay(t *testing.T) {
	idx := NewWorkingHoursIndex([]models.WorkingHoursRange{
		{Day: "monday", Open: "09:00", Close: "17:00"},
	})

	// 2026-03-03 is a Tuesday.
	tuesday := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	if got := idx.IntervalsOn(tuesday, time.UTC); got != nil {
		t.Fatalf("expected nil intervals on a closed day, got %v", got)
	}
}

func TestIntervalsOnSplitDay(t *testing.T) {
	idx := NewWorkingHoursIndex([]models.WorkingHoursRange{
		{Day: "monday", Open: "13:00", Close: "17:00"},
		{Day: "monday", Open: "09:00", Close: "12:00"},
	})

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	got := idx.IntervalsOn(monday, time.UTC)
	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %d", len(got))
	}
	if got[0].Open.Hour() != 9 || got[0].Close.Hour() != 12 {
		t.Errorf("first interval = %v-%v, want 09:00-12:00", got[0].Open, got[0].Close)
	}
	if got[1].Open.Hour() != 13 || got[1].Close.Hour() != 17 {
		t.Errorf("second interval = %v-%v, want 13:00-17:00", got[1].Open, got[1].Close)
	}
	if !got[0].Close.Before(got[1].Open) {
		t.Errorf("intervals not disjoint: %v vs %v", got[0], got[1])
	}
}

func TestOverlappingRangesAreMerged(t *testing.T) {
	idx := NewWorkingHoursIndex([]models.WorkingHoursRange{
		{Day: "monday", Open: "09:00", Close: "13:00"},
		{Day: "monday", Open: "12:00", Close: "17:00"},
	})

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	got := idx.IntervalsOn(monday, time.UTC)
	if len(got) != 1 {
		t.Fatalf("expected overlapping ranges merged into 1 interval, got %d", len(got))
	}
	if got[0].Open.Hour() != 9 || got[0].Close.Hour() != 17 {
		t.Errorf("merged interval = %v-%v, want 09:00-17:00", got[0].Open, got[0].Close)
	}
}

func TestMalformedRangesAreSkipped(t *testing.T) {
	idx := NewWorkingHoursIndex([]models.WorkingHoursRange{
		{Day: "monday", Open: "17:00", Close: "09:00"}, // close before open
		{Day: "monday", Open: "nope", Close: "12:00"},
		{Day: "tuesday", Open: "09:00", Close: "12:00"},
	})

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := idx.IntervalsOn(monday, time.UTC); got != nil {
		t.Errorf("malformed monday ranges should be dropped, got %v", got)
	}
	tuesday := monday.AddDate(0, 0, 1)
	if got := idx.IntervalsOn(tuesday, time.UTC); len(got) != 1 {
		t.Errorf("expected tuesday range kept, got %v", got)
	}
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule []models.WorkingHoursRange
		wantErr  bool
	}{
		{
			name: "valid split day",
			schedule: []models.WorkingHoursRange{
				{Day: "monday", Open: "09:00", Close: "12:00"},
				{Day: "monday", Open: "13:00", Close: "17:00"},
			},
		},
		{
			name: "close equals open",
			schedule: []models.WorkingHoursRange{
				{Day: "monday", Open: "09:00", Close: "09:00"},
			},
			wantErr: true,
		},
		{
			name: "bad clock format",
			schedule: []models.WorkingHoursRange{
				{Day: "monday", Open: "9am", Close: "17:00"},
			},
			wantErr: true,
		},
		{
			name: "overlapping ranges",
			schedule: []models.WorkingHoursRange{
				{Day: "monday", Open: "09:00", Close: "13:00"},
				{Day: "monday", Open: "12:30", Close: "17:00"},
			},
			wantErr: true,
		},
		{
			name: "same clocks on different days",
			schedule: []models.WorkingHoursRange{
				{Day: "monday", Open: "09:00", Close: "17:00"},
				{Day: "tuesday", Open: "09:00", Close: "17:00"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSchedule() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
