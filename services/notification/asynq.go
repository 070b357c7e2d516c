package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/primego-bg/sites-by-appointments/models"
)

// TypeBookingConfirmation is the asynq task type for post-commit booking
// confirmations.
const TypeBookingConfirmation = "notification:booking_confirmation"

// AsynqService enqueues notification tasks onto the Redis-backed queue.
type AsynqService struct {
	Client *asynq.Client
}

func NewAsynqService(client *asynq.Client) *AsynqService {
	return &AsynqService{Client: client}
}

func (s *AsynqService) EnqueueBookingConfirmation(ctx context.Context, payload models.NotificationPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	task := asynq.NewTask(TypeBookingConfirmation, raw)
	if _, err := s.Client.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Timeout(30*time.Second)); err != nil {
		return fmt.Errorf("enqueue booking confirmation: %w", err)
	}
	return nil
}
