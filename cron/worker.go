package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"

	"github.com/primego-bg/sites-by-appointments/config"
	"github.com/primego-bg/sites-by-appointments/models"
	"github.com/primego-bg/sites-by-appointments/services/notification"
	syncsvc "github.com/primego-bg/sites-by-appointments/services/sync"
)

// syncRunTimeout bounds one full resync sweep across all calendars.
const syncRunTimeout = 10 * time.Minute

// InitSyncScheduler starts the periodic full resync. The schedule comes
// from config (cron spec, default every 15 minutes). Full resync is
// idempotent, so an overlapping or repeated run is safe.
func InitSyncScheduler(coordinator syncsvc.Coordinator) *cron.Cron {
	c := cron.New()
	schedule := config.AppConfig.SyncSchedule
	if schedule == "" {
		schedule = "@every 15m"
	}
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncRunTimeout)
		defer cancel()
		coordinator.SyncAll(ctx)
	})
	if err != nil {
		log.Fatalf("[SyncScheduler] invalid schedule %q: %v", schedule, err)
	}
	c.Start()
	log.Printf("[SyncScheduler] periodic full resync scheduled (%s)", schedule)
	return c
}

// InitNotificationWorker runs the async worker in background.
func InitNotificationWorker(sender notification.Sender) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(notification.TypeBookingConfirmation, handleBookingConfirmationTask(sender))

	// Start async worker with retry logic
	go func() {
		log.Println("[NotificationWorker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleBookingConfirmationTask(sender notification.Sender) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.NotificationPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[NotificationWorker] invalid payload: %v", err)
			return err
		}

		loc, err := time.LoadLocation(p.Timezone)
		if err != nil {
			loc = time.UTC
		}
		subject := fmt.Sprintf("Booking confirmed at %s", p.BusinessName)
		body := fmt.Sprintf(
			"Your %s appointment with %s is confirmed for %s - %s.",
			p.ServiceName,
			p.EmployeeName,
			p.Start.In(loc).Format("Mon, 02 Jan 2006 15:04"),
			p.End.In(loc).Format("15:04"),
		)

		if err := sender.Send(p.To, subject, body); err != nil {
			log.Printf("[NotificationWorker] failed to send confirmation to %s: %v", p.To, err)
			return err
		}
		return nil
	}
}
