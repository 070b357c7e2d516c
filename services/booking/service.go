package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	calendarsRepo "github.com/primego-bg/sites-by-appointments/database/repository/calendars"
	catalogRepo "github.com/primego-bg/sites-by-appointments/database/repository/catalog"
	eventsRepo "github.com/primego-bg/sites-by-appointments/database/repository/events"
	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/services/availability"
	"github.com/primego-bg/sites-by-appointments/services/notification"
	syncsvc "github.com/primego-bg/sites-by-appointments/services/sync"
	"github.com/primego-bg/sites-by-appointments/utils"
)

const providerCallTimeout = 30 * time.Second

// DefaultService is the production booking service.
type DefaultService struct {
	Catalog   catalogRepo.CatalogRepository
	Calendars calendarsRepo.CalendarRepository
	Events    eventsRepo.EventRepository
	Engine    availability.Engine
	Provider  syncsvc.CalendarProvider
	Notifier  notification.Service
	Cache     *availability.SlotCache // optional

	locks *subCalendarLocks
}

func NewDefaultService(
	catalog catalogRepo.CatalogRepository,
	calendars calendarsRepo.CalendarRepository,
	events eventsRepo.EventRepository,
	engine availability.Engine,
	provider syncsvc.CalendarProvider,
	notifier notification.Service,
	cache *availability.SlotCache,
) *DefaultService {
	return &DefaultService{
		Catalog:   catalog,
		Calendars: calendars,
		Events:    events,
		Engine:    engine,
		Provider:  provider,
		Notifier:  notifier,
		Cache:     cache,
		locks:     newSubCalendarLocks(),
	}
}

func (s *DefaultService) BookSlot(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	logger := utils.GetLogger()

	business, err := s.Catalog.GetBusinessByID(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	if business == nil {
		return nil, utils.NewNotFound("business %s not found", req.BusinessID)
	}
	if business.Status != models.StatusActive {
		return nil, utils.NewInvalidState("business %s is not active", req.BusinessID)
	}

	service, err := s.Catalog.GetServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if service == nil || service.Status != models.StatusActive {
		return nil, utils.NewNotFound("service %s not found", req.ServiceID)
	}
	if service.BusinessID != business.ID {
		return nil, utils.NewInvalidRequest("service %s does not belong to business %s", req.ServiceID, business.ID)
	}

	employee, err := s.Catalog.GetEmployeeByID(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if employee == nil || employee.Status != models.StatusActive {
		return nil, utils.NewNotFound("employee %s not found", req.EmployeeID)
	}
	if employee.BusinessID != business.ID {
		return nil, utils.NewInvalidRequest("employee %s does not belong to business %s", req.EmployeeID, business.ID)
	}
	if !employeeOffersService(employee, service.ID) {
		return nil, utils.NewInvalidRequest("employee %s does not offer service %s", employee.ID, service.ID)
	}

	cal, err := s.Calendars.GetByBusinessID(ctx, business.ID)
	if err != nil {
		return nil, err
	}
	if cal == nil || cal.Status == models.CalendarStatusDeleted {
		return nil, utils.NewNotFound("no calendar bound to business %s", business.ID)
	}

	loc := cal.Location()
	start := req.Start.In(loc)
	start = time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), start.Minute(), 0, 0, loc)
	// The committed interval always spans the full service duration, so that
	// is the interval to validate; a client-supplied end never narrows it.
	end := start.Add(time.Duration(service.DurationMinutes(*business)) * time.Minute)

	verdict, err := s.Engine.ValidateRequestedSlot(ctx, cal.ID, start, end, employee.SubCalendarID)
	if err != nil {
		return nil, err
	}
	switch verdict {
	case availability.ValidationIndeterminate:
		return nil, utils.NewInvalidState("calendar %s is synchronizing, retry shortly", cal.ID)
	case availability.ValidationInvalid:
		return nil, utils.NewInvalidRequest("requested slot is not available")
	}

	// Serialize commits per sub-calendar; the unique (subCalendarIds, start)
	// index backs this up across processes.
	release := s.locks.acquire(employee.SubCalendarID)
	defer release()

	title := fmt.Sprintf("%s - %s", req.CustomerName, service.Name)
	description := fmt.Sprintf("%s / %s", req.CustomerEmail, req.CustomerPhone)
	event := &models.Event{
		CalendarID:      cal.ID,
		SubCalendarIDs:  []string{employee.SubCalendarID},
		ProviderEventID: "", // bound after provider creation
		Title:           title,
		Description:     description,
		Start:           start.UTC(),
		End:             end.UTC(),
	}
	if err := s.Events.Insert(ctx, event); err != nil {
		if errors.Is(err, eventsRepo.ErrDuplicateSlot) {
			return nil, utils.NewInvalidState("slot was just taken, pick another")
		}
		return nil, err
	}

	pctx, cancel := context.WithTimeout(ctx, providerCallTimeout)
	defer cancel()
	providerID, err := s.Provider.CreateEvent(pctx, cal.SecretCalendarKey, cal.APIKey,
		event.SubCalendarIDs, title, description, start, end)
	if err != nil {
		// The provider is the calendar of record; without a provider event
		// the local row would be swept on the next full sync anyway.
		if delErr := s.Events.DeleteByID(ctx, event.ID); delErr != nil {
			logger.Error("failed to roll back local event after provider error",
				zap.String("eventId", event.ID), zap.Error(delErr))
		}
		return nil, err
	}
	if err := s.Events.SetProviderID(ctx, event.ID, providerID); err != nil {
		logger.Error("failed to bind provider event id; full sync will reconcile",
			zap.String("eventId", event.ID), zap.String("providerEventId", providerID), zap.Error(err))
	}

	s.Cache.InvalidateCalendar(ctx, cal.ID)

	// Post-commit notification; its failure never rolls back the booking.
	payload := models.NotificationPayload{
		To:           req.CustomerEmail,
		BusinessName: business.Name,
		ServiceName:  service.Name,
		EmployeeName: employee.Name,
		Start:        start,
		End:          end,
		Timezone:     cal.Timezone,
	}
	if err := s.Notifier.EnqueueBookingConfirmation(ctx, payload); err != nil {
		logger.Error("failed to enqueue booking confirmation",
			zap.String("eventId", event.ID), zap.Error(err))
	}

	return &models.BookingConfirmation{
		EventID:         event.ID,
		ProviderEventID: providerID,
		Start:           start,
		End:             end,
		EmployeeName:    employee.Name,
		ServiceName:     service.Name,
	}, nil
}

func employeeOffersService(employee *models.Employee, serviceID string) bool {
	for _, id := range employee.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
