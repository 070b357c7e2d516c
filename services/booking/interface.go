package booking

import (
	"context"

	"github.com/primego-bg/sites-by-appointments/models"
)

// Service commits validated booking requests: local event insert under the
// per-sub-calendar serialization, provider event creation, then the
// post-commit notification. Commit either succeeds or fails with a conflict
// error; a slot is never silently double-booked.
type Service interface {
	BookSlot(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error)
}
