package availability

import (
	"context"
	"time"

	"go.uber.org/zap"

	calendarsRepo "github.com/primego-bg/sites-by-appointments/database/repository/calendars"
	catalogRepo "github.com/primego-bg/sites-by-appointments/database/repository/catalog"
	eventsRepo "github.com/primego-bg/sites-by-appointments/database/repository/events"
	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/utils"
)

// DefaultEngine is the production availability engine.
type DefaultEngine struct {
	Catalog   catalogRepo.CatalogRepository
	Calendars calendarsRepo.CalendarRepository
	Events    eventsRepo.EventRepository
	Cache     *SlotCache       // optional; nil disables caching
	Now       func() time.Time // overridable for tests; nil means time.Now
}

func (e *DefaultEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *DefaultEngine) ListAvailable(ctx context.Context, businessID string, duration time.Duration, subCalendarID string) ([]models.Slot, error) {
	logger := utils.GetLogger()

	business, err := e.Catalog.GetBusinessByID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, utils.NewNotFound("business %s not found", businessID)
	}
	if business.Status != models.StatusActive {
		return nil, utils.NewInvalidState("business %s is not active", businessID)
	}

	minutes := int(duration.Minutes())
	if minutes <= 0 || duration%time.Minute != 0 {
		return nil, utils.NewInvalidRequest("duration must be a positive whole number of minutes")
	}
	if business.SlotTime <= 0 || minutes%business.SlotTime != 0 {
		return nil, utils.NewInvalidRequest("duration %dm is not a multiple of the %dm slot granularity", minutes, business.SlotTime)
	}

	cal, err := e.Calendars.GetByBusinessID(ctx, businessID)
	if err != nil {
		return nil, err
	}
	if cal == nil || cal.Status == models.CalendarStatusDeleted {
		return nil, utils.NewNotFound("no calendar bound to business %s", businessID)
	}
	if cal.Status == models.CalendarStatusSyncing {
		// Mid-reconciliation the local projection is partial; report unknown
		// rather than computing over half-applied state.
		return nil, utils.NewInvalidState("calendar %s is synchronizing, availability unknown", cal.ID)
	}

	if cached, ok := e.Cache.Get(ctx, cal.ID, subCalendarID, duration); ok {
		return cached, nil
	}

	schedule, events, err := e.resolveScheduleAndEvents(ctx, business, cal, subCalendarID)
	if err != nil {
		return nil, err
	}

	loc := cal.Location()
	idx := NewWorkingHoursIndex(schedule)
	lead := time.Duration(business.LeadTimeMinutes()) * time.Minute
	candidates := GenerateSlots(idx, loc, e.now(), business.MaximumDaysInFuture, duration, lead)
	open := NewConflictChecker(events, subCalendarID, loc).Filter(candidates)

	logger.Debug("availability computed",
		zap.String("businessId", businessID),
		zap.String("subCalendarId", subCalendarID),
		zap.Int("candidates", len(candidates)),
		zap.Int("open", len(open)))

	e.Cache.Set(ctx, cal.ID, subCalendarID, duration, open)
	return open, nil
}

// resolveScheduleAndEvents picks the working-hours source and performs the
// single batched event read for the calendar. The canonical rule: when the
// sub-calendar's employee resolves to a location with its own schedule, the
// location hours win; otherwise the business-level hours apply.
func (e *DefaultEngine) resolveScheduleAndEvents(ctx context.Context, business *models.Business, cal *models.Calendar, subCalendarID string) ([]models.WorkingHoursRange, []models.Event, error) {
	schedule := business.WorkingHours

	if subCalendarID == "" {
		events, err := e.Events.GetByCalendar(ctx, cal.ID)
		if err != nil {
			return nil, nil, err
		}
		return schedule, events, nil
	}

	employee, err := e.Catalog.GetEmployeeBySubCalendarID(ctx, subCalendarID)
	if err != nil {
		return nil, nil, err
	}
	if employee == nil || employee.Status != models.StatusActive {
		return nil, nil, utils.NewNotFound("no active employee for sub-calendar %s", subCalendarID)
	}
	if employee.BusinessID != business.ID {
		return nil, nil, utils.NewInvalidRequest("sub-calendar %s does not belong to business %s", subCalendarID, business.ID)
	}

	location, err := e.Catalog.GetLocationForEmployee(ctx, employee.ID)
	if err != nil {
		return nil, nil, err
	}
	if location != nil && location.Status == models.StatusActive && len(location.WorkingHours) > 0 {
		schedule = location.WorkingHours
	}

	events, err := e.Events.GetByCalendarAndSubCalendar(ctx, cal.ID, subCalendarID)
	if err != nil {
		return nil, nil, err
	}
	return schedule, events, nil
}

func (e *DefaultEngine) ValidateRequestedSlot(ctx context.Context, calendarID string, start, end time.Time, subCalendarID string) (Validation, error) {
	cal, err := e.Calendars.GetByID(ctx, calendarID)
	if err != nil {
		return ValidationInvalid, err
	}
	if cal == nil || cal.Status == models.CalendarStatusDeleted {
		return ValidationInvalid, utils.NewNotFound("calendar %s not found", calendarID)
	}
	if cal.Status == models.CalendarStatusSyncing {
		return ValidationIndeterminate, nil
	}

	loc := cal.Location()
	start = zeroSeconds(start, loc)
	end = zeroSeconds(end, loc)

	duration := end.Sub(start)
	if duration <= 0 {
		return ValidationInvalid, utils.NewInvalidRequest("slot end must be after start")
	}

	slots, err := e.ListAvailable(ctx, cal.BusinessID, duration, subCalendarID)
	if err != nil {
		if utils.CodeOf(err) == utils.CodeInvalidRequest {
			// Off-granularity durations can never land on the grid.
			return ValidationInvalid, nil
		}
		return ValidationInvalid, err
	}

	for _, s := range slots {
		if s.Start.Equal(start) && s.End.Equal(end) {
			return ValidationValid, nil
		}
	}
	return ValidationInvalid, nil
}

// zeroSeconds truncates to zero-seconds wall clock in the calendar timezone.
func zeroSeconds(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}
