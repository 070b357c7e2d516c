package models

import "time"

// BookingRequest is a client request for a specific slot.
type BookingRequest struct {
	BusinessID    string    `json:"businessId" binding:"required"`
	ServiceID     string    `json:"serviceId" binding:"required"`
	EmployeeID    string    `json:"employeeId" binding:"required"`
	Start         time.Time `json:"start" binding:"required"`
	End           time.Time `json:"end" binding:"required"`
	CustomerName  string    `json:"customerName" binding:"required"`
	CustomerEmail string    `json:"customerEmail" binding:"required,email"`
	CustomerPhone string    `json:"customerPhone,omitempty"`
}

// BookingConfirmation is returned once the slot is committed locally and the
// provider event has been created.
type BookingConfirmation struct {
	EventID         string    `json:"eventId"`
	ProviderEventID string    `json:"providerEventId"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	EmployeeName    string    `json:"employeeName"`
	ServiceName     string    `json:"serviceName"`
}

// NotificationPayload is the asynq task body queued after a successful
// booking commit.
type NotificationPayload struct {
	To           string    `json:"to"`
	BusinessName string    `json:"businessName"`
	ServiceName  string    `json:"serviceName"`
	EmployeeName string    `json:"employeeName"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Timezone     string    `json:"timezone"`
}
