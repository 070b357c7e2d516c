package availability

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/utils"
)

// clockRange is a parsed open period within one weekday, in minutes from
// midnight.
type clockRange struct {
	open  int
	close int
}

// OpenInterval is a same-day open period anchored to a concrete calendar
// day, half-open [Open, Close).
type OpenInterval struct {
	Open  time.Time
	Close time.Time
}

// WorkingHoursIndex resolves a schedule into ordered, disjoint open
// intervals per weekday. A weekday absent from the schedule is closed.
// Overlapping ranges within a day are a configuration defect: the index
// merges them deterministically and reports the defect, but never fails a
// query over it.
type WorkingHoursIndex struct {
	byDay map[string][]clockRange
}

// NewWorkingHoursIndex builds the per-weekday index. Malformed or
// overlapping ranges are logged and normalized away.
func NewWorkingHoursIndex(schedule []models.WorkingHoursRange) *WorkingHoursIndex {
	logger := utils.GetLogger()
	byDay := make(map[string][]clockRange)

	for _, r := range schedule {
		day := strings.ToLower(r.Day)
		open, err1 := parseClock(r.Open)
		closeAt, err2 := parseClock(r.Close)
		if err1 != nil || err2 != nil || closeAt <= open {
			logger.Warn("skipping malformed working-hours range",
				zap.String("day", r.Day), zap.String("open", r.Open), zap.String("close", r.Close))
			continue
		}
		byDay[day] = append(byDay[day], clockRange{open: open, close: closeAt})
	}

	for day, ranges := range byDay {
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].open < ranges[j].open })
		merged := ranges[:1]
		for _, r := range ranges[1:] {
			last := &merged[len(merged)-1]
			if r.open < last.close {
				logger.Warn("overlapping working-hours ranges, merging",
					zap.String("day", day),
					zap.Int("rangeOpen", r.open), zap.Int("lastClose", last.close))
				if r.close > last.close {
					last.close = r.close
				}
				continue
			}
			merged = append(merged, r)
		}
		byDay[day] = merged
	}

	return &WorkingHoursIndex{byDay: byDay}
}

// IntervalsOn anchors the weekday's ranges to a concrete calendar day in the
// given timezone, in chronological order. Returns nil for a closed day.
func (idx *WorkingHoursIndex) IntervalsOn(day time.Time, loc *time.Location) []OpenInterval {
	day = day.In(loc)
	ranges := idx.byDay[weekdayName(day)]
	if len(ranges) == 0 {
		return nil
	}

	out := make([]OpenInterval, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, OpenInterval{
			Open:  time.Date(day.Year(), day.Month(), day.Day(), r.open/60, r.open%60, 0, 0, loc),
			Close: time.Date(day.Year(), day.Month(), day.Day(), r.close/60, r.close%60, 0, 0, loc),
		})
	}
	return out
}

// ValidateSchedule is the write-time check for schedules: every range must
// parse, close after open, and ranges within a day must not overlap. The
// admin CRUD surface calls this before persisting.
func ValidateSchedule(schedule []models.WorkingHoursRange) error {
	byDay := make(map[string][]clockRange)
	for _, r := range schedule {
		open, err := parseClock(r.Open)
		if err != nil {
			return fmt.Errorf("invalid open time %q on %s: %w", r.Open, r.Day, err)
		}
		closeAt, err := parseClock(r.Close)
		if err != nil {
			return fmt.Errorf("invalid close time %q on %s: %w", r.Close, r.Day, err)
		}
		if closeAt <= open {
			return fmt.Errorf("close %q not after open %q on %s", r.Close, r.Open, r.Day)
		}
		byDay[strings.ToLower(r.Day)] = append(byDay[strings.ToLower(r.Day)], clockRange{open: open, close: closeAt})
	}
	for day, ranges := range byDay {
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].open < ranges[j].open })
		for i := 1; i < len(ranges); i++ {
			if ranges[i].open < ranges[i-1].close {
				return fmt.Errorf("overlapping working-hours ranges on %s", day)
			}
		}
	}
	return nil
}

// parseClock parses "HH:mm" into minutes from midnight.
func parseClock(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:mm, got %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("bad hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("bad minute in %q", s)
	}
	return h*60 + m, nil
}

func weekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}
