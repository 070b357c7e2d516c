package notification

import (
	"context"

	"github.com/primego-bg/sites-by-appointments/models"
)

// Service queues booking notifications. Delivery is asynchronous and
// best-effort: a notification failure never rolls back the booking it
// follows.
type Service interface {
	EnqueueBookingConfirmation(ctx context.Context, payload models.NotificationPayload) error
}

// Sender delivers one outbound message. The worker in cron/ drains the
// queue through a Sender.
type Sender interface {
	Send(to, subject, body string) error
}
