package handlers

// HandlerBundle groups every route handler for registration.
type HandlerBundle struct {
	Availability *AvailabilityHandler
	Booking      *BookingHandler
	Calendar     *CalendarHandler
	Webhook      *WebhookHandler
}
