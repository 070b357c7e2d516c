package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/services/booking"
	"github.com/primego-bg/sites-by-appointments/utils"
)

// BookingHandler serves the booking commit endpoint.
type BookingHandler struct {
	Service booking.Service
}

func NewBookingHandler(service booking.Service) *BookingHandler {
	return &BookingHandler{Service: service}
}

// CreateBooking is POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req models.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking request", err.Error())
		return
	}

	confirmation, err := h.Service.BookSlot(c.Request.Context(), req)
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}
	c.JSON(http.StatusCreated, confirmation)
}
