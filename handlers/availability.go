package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	catalogRepo "github.com/primego-bg/sites-by-appointments/database/repository/catalog"
	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/services/availability"
	"github.com/primego-bg/sites-by-appointments/utils"
)

// AvailabilityHandler serves the open-slot listing endpoint.
type AvailabilityHandler struct {
	Catalog catalogRepo.CatalogRepository
	Engine  availability.Engine
}

func NewAvailabilityHandler(catalog catalogRepo.CatalogRepository, engine availability.Engine) *AvailabilityHandler {
	return &AvailabilityHandler{Catalog: catalog, Engine: engine}
}

// ListAvailableSlots is GET /api/availability. Accepts either businessId or
// the public business URL postfix, a required serviceId, and an optional
// employeeId narrowing the computation to that employee's sub-calendar.
func (h *AvailabilityHandler) ListAvailableSlots(c *gin.Context) {
	ctx := c.Request.Context()

	business, err := h.resolveBusiness(c)
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}

	serviceID := c.Query("serviceId")
	if serviceID == "" {
		utils.JSONError(c, http.StatusBadRequest, "serviceId is required", "")
		return
	}
	service, err := h.Catalog.GetServiceByID(ctx, serviceID)
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}
	if service == nil || service.Status != models.StatusActive || service.BusinessID != business.ID {
		utils.JSONAppError(c, utils.NewNotFound("service %s not found", serviceID))
		return
	}

	subCalendarID := ""
	if employeeID := c.Query("employeeId"); employeeID != "" {
		employee, err := h.Catalog.GetEmployeeByID(ctx, employeeID)
		if err != nil {
			utils.JSONAppError(c, err)
			return
		}
		if employee == nil || employee.Status != models.StatusActive || employee.BusinessID != business.ID {
			utils.JSONAppError(c, utils.NewNotFound("employee %s not found", employeeID))
			return
		}
		subCalendarID = employee.SubCalendarID
	}

	duration := time.Duration(service.DurationMinutes(*business)) * time.Minute
	slots, err := h.Engine.ListAvailable(ctx, business.ID, duration, subCalendarID)
	if err != nil {
		utils.JSONAppError(c, err)
		return
	}

	// Zero slots is a valid result, not an error.
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

func (h *AvailabilityHandler) resolveBusiness(c *gin.Context) (*models.Business, error) {
	ctx := c.Request.Context()

	if id := c.Query("businessId"); id != "" {
		business, err := h.Catalog.GetBusinessByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if business == nil {
			return nil, utils.NewNotFound("business %s not found", id)
		}
		return business, nil
	}
	if postfix := c.Query("business"); postfix != "" {
		business, err := h.Catalog.GetBusinessByURLPostfix(ctx, postfix)
		if err != nil {
			return nil, err
		}
		if business == nil {
			return nil, utils.NewNotFound("business %s not found", postfix)
		}
		return business, nil
	}
	return nil, utils.NewInvalidRequest("businessId or business is required")
}
