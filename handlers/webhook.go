package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	calendarsRepo "github.com/primego-bg/sites-by-appointments/database/repository/calendars"
	catalogRepo "github.com/primego-bg/sites-by-appointments/database/repository/catalog"
	eventsRepo "github.com/primego-bg/sites-by-appointments/database/repository/events"
	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/services/availability"
	syncsvc "github.com/primego-bg/sites-by-appointments/services/sync"
	"github.com/primego-bg/sites-by-appointments/utils"
)

// Webhook trigger types delivered by the provider.
const (
	triggerEventCreated  = "event.created"
	triggerEventModified = "event.modified"
	triggerEventRemoved  = "event.removed"
)

// webhookEvent is the provider's wire shape for one changed event.
type webhookEvent struct {
	ID             string        `json:"id"`
	SubcalendarIDs []json.Number `json:"subcalendar_ids"`
	Title          string        `json:"title"`
	Notes          string        `json:"notes"`
	StartDt        time.Time     `json:"start_dt"`
	EndDt          time.Time     `json:"end_dt"`
	AllDay         bool          `json:"all_day"`
	Rrule          string        `json:"rrule"`
}

type webhookDispatchItem struct {
	Trigger string       `json:"trigger"`
	Event   webhookEvent `json:"event"`
}

type webhookPayload struct {
	Dispatch []webhookDispatchItem `json:"dispatch"`
}

// WebhookHandler authenticates and classifies inbound provider change
// notifications, mutating the event cache directly for non-recurring
// changes and delegating recurring ones to the sync coordinator.
type WebhookHandler struct {
	Catalog   catalogRepo.CatalogRepository
	Calendars calendarsRepo.CalendarRepository
	Events    eventsRepo.EventRepository
	Sync      syncsvc.Coordinator
	Cache     *availability.SlotCache // optional
	Secret    string
}

func NewWebhookHandler(
	catalog catalogRepo.CatalogRepository,
	calendars calendarsRepo.CalendarRepository,
	events eventsRepo.EventRepository,
	coordinator syncsvc.Coordinator,
	cache *availability.SlotCache,
	secret string,
) *WebhookHandler {
	return &WebhookHandler{
		Catalog:   catalog,
		Calendars: calendars,
		Events:    events,
		Sync:      coordinator,
		Cache:     cache,
		Secret:    secret,
	}
}

// HandleProviderEvent is the POST /api/webhook/event endpoint.
func (h *WebhookHandler) HandleProviderEvent(c *gin.Context) {
	logger := utils.GetLogger()

	body, err := c.GetRawData()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "could not read webhook body", err.Error())
		return
	}

	// Authenticity check over the raw body; mismatch rejects the whole
	// batch with no side effects.
	if !h.verifySignature(body, c.GetHeader("Teamup-Signature")) {
		utils.JSONAppError(c, utils.NewSignatureMismatch())
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "malformed webhook payload", err.Error())
		return
	}

	for _, item := range payload.Dispatch {
		if err := h.dispatch(c, item); err != nil {
			// A resolution miss fails the whole webhook call.
			utils.JSONAppError(c, err)
			return
		}
	}

	logger.Debug("webhook batch applied", zap.Int("items", len(payload.Dispatch)))
	c.String(http.StatusOK, "Event received")
}

func (h *WebhookHandler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.Secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (h *WebhookHandler) dispatch(c *gin.Context, item webhookDispatchItem) error {
	ctx := c.Request.Context()

	if len(item.Event.SubcalendarIDs) == 0 {
		return utils.NewInvalidRequest("webhook event %s carries no sub-calendar", item.Event.ID)
	}

	employee, err := h.Catalog.GetEmployeeBySubCalendarID(ctx, item.Event.SubcalendarIDs[0].String())
	if err != nil {
		return err
	}
	if employee == nil {
		return utils.NewNotFound("no employee for sub-calendar %s", item.Event.SubcalendarIDs[0].String())
	}

	business, err := h.Catalog.GetBusinessByID(ctx, employee.BusinessID)
	if err != nil {
		return err
	}
	if business == nil {
		return utils.NewNotFound("business %s not found", employee.BusinessID)
	}

	cal, err := h.Calendars.GetByBusinessID(ctx, business.ID)
	if err != nil {
		return err
	}
	if cal == nil || cal.Status == models.CalendarStatusDeleted {
		return utils.NewNotFound("no calendar bound to business %s", business.ID)
	}

	// Recurring changes cannot be expressed as single-row mutations:
	// per-instance identity is provider-owned, so re-fetch the calendar.
	if item.Event.Rrule != "" {
		if err := h.Sync.SyncOne(ctx, cal.ID); err != nil {
			return err
		}
		return nil
	}

	switch item.Trigger {
	case triggerEventRemoved:
		if err := h.Events.DeleteByProviderID(ctx, cal.ID, item.Event.ID); err != nil {
			return err
		}
	case triggerEventCreated, triggerEventModified:
		// Delivery may duplicate; upsert keyed by provider id keeps this
		// idempotent. Modification is the same delete-then-reinsert.
		subIDs := make([]string, 0, len(item.Event.SubcalendarIDs))
		for _, id := range item.Event.SubcalendarIDs {
			subIDs = append(subIDs, id.String())
		}
		event := &models.Event{
			CalendarID:      cal.ID,
			SubCalendarIDs:  subIDs,
			ProviderEventID: item.Event.ID,
			Title:           item.Event.Title,
			Description:     item.Event.Notes,
			Start:           item.Event.StartDt.UTC(),
			End:             item.Event.EndDt.UTC(),
			AllDay:          item.Event.AllDay,
		}
		if err := h.Events.UpsertByProviderID(ctx, event); err != nil {
			return err
		}
	default:
		return utils.NewInvalidRequest("unknown webhook trigger %q", item.Trigger)
	}

	h.Cache.InvalidateCalendar(ctx, cal.ID)
	return nil
}
