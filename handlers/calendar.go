package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	calendarsRepo "github.com/primego-bg/sites-by-appointments/database/repository/calendars"
	syncsvc "github.com/primego-bg/sites-by-appointments/services/sync"
	"github.com/primego-bg/sites-by-appointments/utils"
)

// CalendarHandler exposes calendar state and the manual resync trigger.
type CalendarHandler struct {
	Calendars calendarsRepo.CalendarRepository
	Sync      syncsvc.Coordinator
}

func NewCalendarHandler(calendars calendarsRepo.CalendarRepository, coordinator syncsvc.Coordinator) *CalendarHandler {
	return &CalendarHandler{Calendars: calendars, Sync: coordinator}
}

// GetCalendar is GET /api/calendars/:id.
func (h *CalendarHandler) GetCalendar(c *gin.Context) {
	cal, err := h.Calendars.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}
	if cal == nil {
		utils.JSONAppError(c, utils.NewNotFound("calendar %s not found", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, cal)
}

// TriggerSync is POST /api/calendars/:id/sync. The resync runs inline; a
// failure leaves the calendar in syncing state until the next attempt.
func (h *CalendarHandler) TriggerSync(c *gin.Context) {
	if err := h.Sync.SyncOne(c.Request.Context(), c.Param("id")); err != nil {
		utils.JSONAppError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "synchronized"})
}
