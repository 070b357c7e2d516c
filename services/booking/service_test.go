package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	eventsRepo "github.com/primego-bg/sites-by-appointments/database/repository/events"
	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/services/availability"
	syncsvc "github.com/primego-bg/sites-by-appointments/services/sync"
	"github.com/primego-bg/sites-by-appointments/utils"
)

type bookCatalog struct {
	business *models.Business
	service  *models.Service
	employee *models.Employee
}

func (s *bookCatalog) GetBusinessByID(ctx context.Context, id string) (*models.Business, error) {
	if s.business != nil && s.business.ID == id {
		return s.business, nil
	}
	return nil, nil
}

func (s *bookCatalog) GetBusinessByURLPostfix(ctx context.Context, postfix string) (*models.Business, error) {
	return nil, nil
}

func (s *bookCatalog) GetEmployeeByID(ctx context.Context, id string) (*models.Employee, error) {
	if s.employee != nil && s.employee.ID == id {
		return s.employee, nil
	}
	return nil, nil
}

func (s *bookCatalog) GetEmployeeBySubCalendarID(ctx context.Context, subCalendarID string) (*models.Employee, error) {
	if s.employee != nil && s.employee.SubCalendarID == subCalendarID {
		return s.employee, nil
	}
	return nil, nil
}

func (s *bookCatalog) GetServiceByID(ctx context.Context, id string) (*models.Service, error) {
	if s.service != nil && s.service.ID == id {
		return s.service, nil
	}
	return nil, nil
}

func (s *bookCatalog) GetLocationForEmployee(ctx context.Context, employeeID string) (*models.Location, error) {
	return nil, nil
}

type bookCalendars struct {
	cal *models.Calendar
}

func (s *bookCalendars) GetByID(ctx context.Context, id string) (*models.Calendar, error) {
	return s.cal, nil
}

func (s *bookCalendars) GetByBusinessID(ctx context.Context, businessID string) (*models.Calendar, error) {
	if s.cal != nil && s.cal.BusinessID == businessID {
		return s.cal, nil
	}
	return nil, nil
}

func (s *bookCalendars) ListSyncable(ctx context.Context) ([]models.Calendar, error) { return nil, nil }

func (s *bookCalendars) SetStatus(ctx context.Context, id, status string) error { return nil }

func (s *bookCalendars) MarkSynchronized(ctx context.Context, id string, at time.Time) error {
	return nil
}

// bookEvents stores committed events and can inject a duplicate collision.
// existing seeds pre-booked events visible to availability reads.
type bookEvents struct {
	rows      []models.Event
	existing  []models.Event
	seq       int
	duplicate bool
	deleted   []string
	bound     map[string]string
}

func newBookEvents() *bookEvents {
	return &bookEvents{bound: make(map[string]string)}
}

func (m *bookEvents) GetByCalendar(ctx context.Context, calendarID string) ([]models.Event, error) {
	return append(append([]models.Event{}, m.existing...), m.rows...), nil
}

func (m *bookEvents) GetByCalendarAndSubCalendar(ctx context.Context, calendarID, subCalendarID string) ([]models.Event, error) {
	var out []models.Event
	for _, ev := range append(append([]models.Event{}, m.existing...), m.rows...) {
		if ev.OccupiesSubCalendar(subCalendarID) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (m *bookEvents) GetByProviderID(ctx context.Context, calendarID, providerEventID string) (*models.Event, error) {
	return nil, nil
}

func (m *bookEvents) Insert(ctx context.Context, event *models.Event) error {
	if m.duplicate {
		return eventsRepo.ErrDuplicateSlot
	}
	m.seq++
	event.ID = fmt.Sprintf("ev-%d", m.seq)
	m.rows = append(m.rows, *event)
	return nil
}

func (m *bookEvents) UpsertByProviderID(ctx context.Context, event *models.Event) error { return nil }

func (m *bookEvents) UpdateBounds(ctx context.Context, calendarID, providerEventID string, start, end time.Time) error {
	return nil
}

func (m *bookEvents) SetProviderID(ctx context.Context, eventID, providerEventID string) error {
	m.bound[eventID] = providerEventID
	return nil
}

func (m *bookEvents) DeleteByID(ctx context.Context, eventID string) error {
	m.deleted = append(m.deleted, eventID)
	for i, ev := range m.rows {
		if ev.ID == eventID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (m *bookEvents) DeleteByProviderID(ctx context.Context, calendarID, providerEventID string) error {
	return nil
}

func (m *bookEvents) DeleteByProviderIDPrefix(ctx context.Context, calendarID, prefix string) (int64, error) {
	return 0, nil
}

func (m *bookEvents) DeleteAbsent(ctx context.Context, calendarID string, observed map[string]struct{}) (int64, error) {
	return 0, nil
}

type verdictEngine struct {
	verdict availability.Validation

	// bounds the last validation was asked about
	checkedStart time.Time
	checkedEnd   time.Time
}

func (e *verdictEngine) ListAvailable(ctx context.Context, businessID string, duration time.Duration, subCalendarID string) ([]models.Slot, error) {
	return nil, nil
}

func (e *verdictEngine) ValidateRequestedSlot(ctx context.Context, calendarID string, start, end time.Time, subCalendarID string) (availability.Validation, error) {
	e.checkedStart = start
	e.checkedEnd = end
	return e.verdict, nil
}

type failingProvider struct{}

func (failingProvider) GetConfiguration(ctx context.Context, calendarKey, token string) (*syncsvc.ProviderConfiguration, error) {
	return nil, errors.New("provider unreachable")
}

func (failingProvider) ListEvents(ctx context.Context, calendarKey, token string, since time.Time) ([]syncsvc.ProviderEvent, error) {
	return nil, errors.New("provider unreachable")
}

func (failingProvider) CreateEvent(ctx context.Context, calendarKey, token string, subCalendarIDs []string, title, description string, start, end time.Time) (string, error) {
	return "", utils.NewProviderUnavailable("creating provider event failed", errors.New("provider unreachable"))
}

type recordingNotifier struct {
	payloads []models.NotificationPayload
	err      error
}

func (n *recordingNotifier) EnqueueBookingConfirmation(ctx context.Context, payload models.NotificationPayload) error {
	if n.err != nil {
		return n.err
	}
	n.payloads = append(n.payloads, payload)
	return nil
}

var slotStart = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func validRequest() models.BookingRequest {
	return models.BookingRequest{
		BusinessID:    "b-1",
		ServiceID:     "s-1",
		EmployeeID:    "e-1",
		Start:         slotStart,
		End:           slotStart.Add(time.Hour),
		CustomerName:  "Ana Petrova",
		CustomerEmail: "ana@example.com",
		CustomerPhone: "+359000000",
	}
}

type bookingFixture struct {
	svc      *DefaultService
	events   *bookEvents
	notifier *recordingNotifier
	provider *syncsvc.InMemoryProvider
}

func newBookingFixture() *bookingFixture {
	events := newBookEvents()
	notifier := &recordingNotifier{}
	provider := syncsvc.NewInMemoryProvider("UTC")

	catalog := &bookCatalog{
		business: &models.Business{ID: "b-1", Name: "Salon", SlotTime: 30, Status: models.StatusActive},
		service:  &models.Service{ID: "s-1", BusinessID: "b-1", Name: "Haircut", TimeSlots: 2, Status: models.StatusActive},
		employee: &models.Employee{
			ID: "e-1", BusinessID: "b-1", Name: "Maria",
			SubCalendarID: "sc-1", ServiceIDs: []string{"s-1"}, Status: models.StatusActive,
		},
	}
	calendars := &bookCalendars{cal: &models.Calendar{
		ID: "cal-1", BusinessID: "b-1", SecretCalendarKey: "key-1", APIKey: "token-1",
		Timezone: "UTC", Status: models.CalendarStatusActive,
	}}

	svc := NewDefaultService(catalog, calendars, events,
		&verdictEngine{verdict: availability.ValidationValid}, provider, notifier, nil)
	return &bookingFixture{svc: svc, events: events, notifier: notifier, provider: provider}
}

func TestBookSlotCommitsAndNotifies(t *testing.T) {
	f := newBookingFixture()

	conf, err := f.svc.BookSlot(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}
	if conf.ProviderEventID == "" {
		t.Error("confirmation missing provider event id")
	}
	if !conf.Start.Equal(slotStart) || !conf.End.Equal(slotStart.Add(time.Hour)) {
		t.Errorf("confirmation bounds = %v-%v", conf.Start, conf.End)
	}
	if conf.EmployeeName != "Maria" || conf.ServiceName != "Haircut" {
		t.Errorf("confirmation = %+v", conf)
	}

	if len(f.events.rows) != 1 {
		t.Fatalf("expected 1 committed event, got %d", len(f.events.rows))
	}
	if got := f.events.bound[conf.EventID]; got != conf.ProviderEventID {
		t.Errorf("event bound to provider id %q, want %q", got, conf.ProviderEventID)
	}

	if len(f.notifier.payloads) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(f.notifier.payloads))
	}
	p := f.notifier.payloads[0]
	if p.To != "ana@example.com" || p.BusinessName != "Salon" {
		t.Errorf("notification payload = %+v", p)
	}
}

func TestBookSlotValidatesCommittedInterval(t *testing.T) {
	f := newBookingFixture()

	// End is client-supplied but the committed end derives from the service
	// duration; the interval handed to the engine must be the committed one,
	// never the narrower client interval.
	req := validRequest()
	req.End = slotStart.Add(30 * time.Minute)
	conf, err := f.svc.BookSlot(context.Background(), req)
	if err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}
	if !conf.End.Equal(slotStart.Add(time.Hour)) {
		t.Errorf("committed end = %v, want service duration end %v", conf.End, slotStart.Add(time.Hour))
	}

	engine := f.svc.Engine.(*verdictEngine)
	if !engine.checkedStart.Equal(slotStart) || !engine.checkedEnd.Equal(slotStart.Add(time.Hour)) {
		t.Errorf("validated interval = [%v, %v), want the committed [%v, %v)",
			engine.checkedStart, engine.checkedEnd, slotStart, slotStart.Add(time.Hour))
	}
}

func TestBookSlotShortEndCannotHideOverlap(t *testing.T) {
	f := newBookingFixture()

	// Real engine over the fixture repos: one event already occupies the
	// tail half of the hour the 60m service would reserve.
	business := f.svc.Catalog.(*bookCatalog).business
	business.WorkingHours = []models.WorkingHoursRange{
		{Day: "monday", Open: "09:00", Close: "17:00"},
	}
	business.MaximumDaysInFuture = 1
	f.events.existing = []models.Event{{
		ID:              "ev-existing",
		CalendarID:      "cal-1",
		SubCalendarIDs:  []string{"sc-1"},
		ProviderEventID: "tu-existing",
		Start:           slotStart.Add(30 * time.Minute),
		End:             slotStart.Add(time.Hour),
	}}
	f.svc.Engine = &availability.DefaultEngine{
		Catalog:   f.svc.Catalog,
		Calendars: f.svc.Calendars,
		Events:    f.events,
		Now:       func() time.Time { return slotStart.Add(-2 * time.Hour) },
	}

	req := validRequest()
	req.End = slotStart.Add(30 * time.Minute)
	_, err := f.svc.BookSlot(context.Background(), req)
	if utils.CodeOf(err) != utils.CodeInvalidRequest {
		t.Fatalf("error = %v, want invalidRequest for a committed interval overlapping an event", err)
	}
	if len(f.events.rows) != 0 {
		t.Errorf("overlapping booking must not commit, got %v", f.events.rows)
	}
}

func TestBookSlotDuplicateLosesRace(t *testing.T) {
	f := newBookingFixture()
	f.events.duplicate = true

	_, err := f.svc.BookSlot(context.Background(), validRequest())
	if utils.CodeOf(err) != utils.CodeInvalidState {
		t.Fatalf("error = %v, want invalidState on slot collision", err)
	}
	if len(f.notifier.payloads) != 0 {
		t.Error("lost race must not notify")
	}
}

func TestBookSlotVerdicts(t *testing.T) {
	tests := []struct {
		name     string
		verdict  availability.Validation
		wantCode string
	}{
		{name: "syncing calendar", verdict: availability.ValidationIndeterminate, wantCode: utils.CodeInvalidState},
		{name: "slot not on the grid", verdict: availability.ValidationInvalid, wantCode: utils.CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			f.svc.Engine = &verdictEngine{verdict: tt.verdict}

			_, err := f.svc.BookSlot(context.Background(), validRequest())
			if utils.CodeOf(err) != tt.wantCode {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
			if len(f.events.rows) != 0 {
				t.Error("rejected booking must not commit an event")
			}
		})
	}
}

func TestBookSlotProviderFailureRollsBack(t *testing.T) {
	f := newBookingFixture()
	f.svc.Provider = failingProvider{}

	_, err := f.svc.BookSlot(context.Background(), validRequest())
	if utils.CodeOf(err) != utils.CodeProviderUnavailable {
		t.Fatalf("error = %v, want providerUnavailable", err)
	}
	if len(f.events.rows) != 0 {
		t.Errorf("local event must be rolled back, got %v", f.events.rows)
	}
	if len(f.events.deleted) != 1 {
		t.Errorf("expected 1 rollback delete, got %d", len(f.events.deleted))
	}
	if len(f.notifier.payloads) != 0 {
		t.Error("failed booking must not notify")
	}
}

func TestBookSlotNotificationFailureKeepsBooking(t *testing.T) {
	f := newBookingFixture()
	f.notifier.err = errors.New("queue down")

	conf, err := f.svc.BookSlot(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("BookSlot() error = %v", err)
	}
	if conf == nil || len(f.events.rows) != 1 {
		t.Error("booking must survive a notification failure")
	}
}

func TestBookSlotResolutionErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(f *bookingFixture)
		wantCode string
	}{
		{
			name:     "unknown business",
			mutate:   func(f *bookingFixture) { f.svc.Catalog.(*bookCatalog).business = nil },
			wantCode: utils.CodeNotFound,
		},
		{
			name: "inactive business",
			mutate: func(f *bookingFixture) {
				f.svc.Catalog.(*bookCatalog).business.Status = models.StatusInactive
			},
			wantCode: utils.CodeInvalidState,
		},
		{
			name:     "unknown service",
			mutate:   func(f *bookingFixture) { f.svc.Catalog.(*bookCatalog).service = nil },
			wantCode: utils.CodeNotFound,
		},
		{
			name: "service of another business",
			mutate: func(f *bookingFixture) {
				f.svc.Catalog.(*bookCatalog).service.BusinessID = "b-2"
			},
			wantCode: utils.CodeInvalidRequest,
		},
		{
			name: "employee does not offer the service",
			mutate: func(f *bookingFixture) {
				f.svc.Catalog.(*bookCatalog).employee.ServiceIDs = []string{"s-other"}
			},
			wantCode: utils.CodeInvalidRequest,
		},
		{
			name: "calendar deleted",
			mutate: func(f *bookingFixture) {
				f.svc.Calendars.(*bookCalendars).cal.Status = models.CalendarStatusDeleted
			},
			wantCode: utils.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			tt.mutate(f)
			_, err := f.svc.BookSlot(context.Background(), validRequest())
			if utils.CodeOf(err) != tt.wantCode {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}
