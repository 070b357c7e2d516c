package sync

import (
	"context"
	"fmt"
	gosync "sync"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/primego-bg/sites-by-appointments/utils"

	"go.uber.org/zap"
)

// defaultMaterializeWindow bounds how far ahead recurring series are
// expanded when listing events.
const defaultMaterializeWindow = 365 * 24 * time.Hour

// InMemoryEvent is a stored event on the in-memory provider. For recurring
// events, RecurrenceRule holds the RRULE text and Start/End describe the
// first occurrence; ListEvents materializes the series.
type InMemoryEvent struct {
	ProviderID     string
	SubCalendarIDs []string
	Title          string
	Description    string
	Start          time.Time
	End            time.Time
	RecurrenceRule string
	AllDay         bool
	DeletedAt      *time.Time
}

// InMemoryProvider is a provider-agnostic CalendarProvider. Recurrence
// expansion stays behind the collaborator interface: series are materialized
// here with an RRULE evaluator, so the sync core never parses recurrence
// rules. Used by the sync and webhook tests, and usable as a local fallback
// when no external calendar is configured.
type InMemoryProvider struct {
	mu       gosync.Mutex
	Timezone string
	Window   time.Duration // materialization window; zero means one year
	events   map[string][]InMemoryEvent
	seq      int
}

func NewInMemoryProvider(timezone string) *InMemoryProvider {
	return &InMemoryProvider{
		Timezone: timezone,
		events:   make(map[string][]InMemoryEvent),
	}
}

// Put stores or replaces an event under the calendar key.
func (p *InMemoryProvider) Put(calendarKey string, ev InMemoryEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.events[calendarKey] {
		if existing.ProviderID == ev.ProviderID {
			p.events[calendarKey][i] = ev
			return
		}
	}
	p.events[calendarKey] = append(p.events[calendarKey], ev)
}

// Remove marks an event deleted at the given instant; the tombstone is still
// reported by ListEvents.
func (p *InMemoryProvider) Remove(calendarKey, providerID string, at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.events[calendarKey] {
		if existing.ProviderID == providerID {
			p.events[calendarKey][i].DeletedAt = &at
			return
		}
	}
}

// Drop deletes an event without leaving a tombstone, simulating a provider
// whose deletion never reaches the fetch window.
func (p *InMemoryProvider) Drop(calendarKey, providerID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	evs := p.events[calendarKey]
	for i, existing := range evs {
		if existing.ProviderID == providerID {
			p.events[calendarKey] = append(evs[:i], evs[i+1:]...)
			return
		}
	}
}

func (p *InMemoryProvider) GetConfiguration(ctx context.Context, calendarKey, token string) (*ProviderConfiguration, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[string]struct{})
	cfg := &ProviderConfiguration{Timezone: p.Timezone}
	for _, ev := range p.events[calendarKey] {
		for _, id := range ev.SubCalendarIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			cfg.SubCalendars = append(cfg.SubCalendars, SubCalendar{ID: id, Name: id})
		}
	}
	return cfg, nil
}

func (p *InMemoryProvider) ListEvents(ctx context.Context, calendarKey, token string, since time.Time) ([]ProviderEvent, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	window := p.Window
	if window <= 0 {
		window = defaultMaterializeWindow
	}
	until := since.Add(window)

	var out []ProviderEvent
	for _, ev := range p.events[calendarKey] {
		if ev.RecurrenceRule == "" {
			if ev.End.Before(since) {
				continue
			}
			out = append(out, ProviderEvent{
				ProviderID:     ev.ProviderID,
				SubCalendarIDs: ev.SubCalendarIDs,
				Title:          ev.Title,
				Description:    ev.Description,
				Start:          ev.Start,
				End:            ev.End,
				AllDay:         ev.AllDay,
				DeletedAt:      ev.DeletedAt,
			})
			continue
		}
		out = append(out, materialize(ev, since, until)...)
	}
	return out, nil
}

func (p *InMemoryProvider) CreateEvent(ctx context.Context, calendarKey, token string, subCalendarIDs []string, title, description string, start, end time.Time) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	id := fmt.Sprintf("mem-%d", p.seq)
	p.events[calendarKey] = append(p.events[calendarKey], InMemoryEvent{
		ProviderID:     id,
		SubCalendarIDs: subCalendarIDs,
		Title:          title,
		Description:    description,
		Start:          start,
		End:            end,
	})
	return id, nil
}

// materialize expands a recurring series into per-occurrence provider
// events within [since, until]. Occurrence ids are the series id plus a
// "-rid-" timestamp suffix, matching the prefix convention the sync
// coordinator reconciles on.
func materialize(ev InMemoryEvent, since, until time.Time) []ProviderEvent {
	r, err := rrule.StrToRRule(ev.RecurrenceRule)
	if err != nil {
		utils.GetLogger().Warn("skipping series with unparseable rrule",
			zap.String("providerId", ev.ProviderID), zap.Error(err))
		return nil
	}
	r.DTStart(ev.Start)

	duration := ev.End.Sub(ev.Start)
	var out []ProviderEvent
	for _, occ := range r.Between(since.Add(-duration), until, true) {
		out = append(out, ProviderEvent{
			ProviderID:     fmt.Sprintf("%s-rid-%s", ev.ProviderID, occ.UTC().Format("20060102T150405Z")),
			SubCalendarIDs: ev.SubCalendarIDs,
			Title:          ev.Title,
			Description:    ev.Description,
			Start:          occ,
			End:            occ.Add(duration),
			RecurrenceRule: ev.RecurrenceRule,
			AllDay:         ev.AllDay,
			DeletedAt:      ev.DeletedAt,
		})
	}
	return out
}
