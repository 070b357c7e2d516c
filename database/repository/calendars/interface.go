package calendarsRepo

import (
	"context"
	"time"

	"github.com/primego-bg/sites-by-appointments/models"
)

// CalendarRepository persists the per-business calendar binding and its sync
// state. The status field is mutated only by the sync coordinator.
type CalendarRepository interface {
	GetByID(ctx context.Context, id string) (*models.Calendar, error)
	GetByBusinessID(ctx context.Context, businessID string) (*models.Calendar, error)
	// ListSyncable returns every calendar that participates in the periodic
	// full resync (everything not deleted, including ones stuck in syncing
	// after a failed run).
	ListSyncable(ctx context.Context) ([]models.Calendar, error)
	SetStatus(ctx context.Context, id, status string) error
	// MarkSynchronized flips the calendar back to active and records the
	// sync watermark.
	MarkSynchronized(ctx context.Context, id string, at time.Time) error
}
