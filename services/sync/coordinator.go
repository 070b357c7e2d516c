package sync

import (
	"context"
	"time"

	"go.uber.org/zap"

	calendarsRepo "github.com/primego-bg/sites-by-appointments/database/repository/calendars"
	eventsRepo "github.com/primego-bg/sites-by-appointments/database/repository/events"
	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/services/availability"
	"github.com/primego-bg/sites-by-appointments/utils"
)

// DefaultCoordinator is the production sync coordinator. It is the only
// component that mutates calendar sync status.
type DefaultCoordinator struct {
	Calendars calendarsRepo.CalendarRepository
	Events    eventsRepo.EventRepository
	Provider  CalendarProvider
	Cache     *availability.SlotCache // optional
	Now       func() time.Time        // overridable for tests; nil means time.Now
}

func (c *DefaultCoordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *DefaultCoordinator) FullSync(ctx context.Context, calendarID string) error {
	logger := utils.GetLogger()

	cal, err := c.Calendars.GetByID(ctx, calendarID)
	if err != nil {
		return err
	}
	if cal == nil || cal.Status == models.CalendarStatusDeleted {
		return utils.NewNotFound("calendar %s not found", calendarID)
	}

	if err := c.Calendars.SetStatus(ctx, cal.ID, models.CalendarStatusSyncing); err != nil {
		return err
	}

	// Forward-only bootstrap: the first sync starts at "now", never a
	// historical backfill.
	started := c.now()
	since := started
	if cal.LastSynchronized != nil {
		since = *cal.LastSynchronized
	}

	fetched, err := c.Provider.ListEvents(ctx, cal.SecretCalendarKey, cal.APIKey, since)
	if err != nil {
		// The calendar stays syncing/inactive until the next scheduled sync
		// or webhook; availability reads as unknown meanwhile. Mutations
		// already applied are not rolled back.
		logger.Error("full sync: provider fetch failed",
			zap.String("calendarId", cal.ID), zap.Error(err))
		return utils.NewProviderUnavailable("listing provider events failed", err)
	}

	observed := make(map[string]struct{}, len(fetched))
	// A recurring series is wiped once per run, before its first occurrence
	// is applied; wiping per occurrence would delete the occurrences already
	// inserted in this run.
	wipedSeries := make(map[string]struct{})

	for _, ev := range fetched {
		if ev.RecurrenceRule != "" {
			seriesID := models.SeriesID(ev.ProviderID)
			if _, done := wipedSeries[seriesID]; !done {
				if _, err := c.Events.DeleteByProviderIDPrefix(ctx, cal.ID, seriesID); err != nil {
					logger.Error("full sync: series wipe failed",
						zap.String("calendarId", cal.ID), zap.String("seriesId", seriesID), zap.Error(err))
					return err
				}
				wipedSeries[seriesID] = struct{}{}
			}
			if ev.DeletedAt != nil {
				continue
			}
			if err := c.Events.UpsertByProviderID(ctx, projectEvent(cal.ID, ev)); err != nil {
				return err
			}
			observed[ev.ProviderID] = struct{}{}
			continue
		}

		if err := c.Events.DeleteByProviderID(ctx, cal.ID, ev.ProviderID); err != nil {
			return err
		}
		if ev.DeletedAt != nil {
			continue
		}
		if err := c.Events.UpsertByProviderID(ctx, projectEvent(cal.ID, ev)); err != nil {
			return err
		}
		observed[ev.ProviderID] = struct{}{}
	}

	// Tombstone sweep: anything the fetch window did not confirm is gone on
	// the provider side (or its deletion webhook was dropped).
	swept, err := c.Events.DeleteAbsent(ctx, cal.ID, observed)
	if err != nil {
		return err
	}

	if err := c.Calendars.MarkSynchronized(ctx, cal.ID, started); err != nil {
		return err
	}
	c.Cache.InvalidateCalendar(ctx, cal.ID)

	logger.Info("full sync complete",
		zap.String("calendarId", cal.ID),
		zap.Int("fetched", len(fetched)),
		zap.Int64("swept", swept))
	return nil
}

func (c *DefaultCoordinator) SyncOne(ctx context.Context, calendarID string) error {
	return c.FullSync(ctx, calendarID)
}

func (c *DefaultCoordinator) SyncAll(ctx context.Context) {
	logger := utils.GetLogger()

	cals, err := c.Calendars.ListSyncable(ctx)
	if err != nil {
		logger.Error("sync all: listing calendars failed", zap.Error(err))
		return
	}
	for _, cal := range cals {
		if err := c.FullSync(ctx, cal.ID); err != nil {
			logger.Error("sync all: calendar failed",
				zap.String("calendarId", cal.ID), zap.Error(err))
		}
	}
}

// projectEvent maps a provider event onto the local projection.
func projectEvent(calendarID string, ev ProviderEvent) *models.Event {
	return &models.Event{
		CalendarID:      calendarID,
		SubCalendarIDs:  ev.SubCalendarIDs,
		ProviderEventID: ev.ProviderID,
		Title:           ev.Title,
		Description:     ev.Description,
		Start:           ev.Start.UTC(),
		End:             ev.End.UTC(),
		AllDay:          ev.AllDay,
		RecurrenceRule:  ev.RecurrenceRule,
	}
}
