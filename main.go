package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"

	"github.com/primego-bg/sites-by-appointments/config"
	"github.com/primego-bg/sites-by-appointments/cron"
	"github.com/primego-bg/sites-by-appointments/database"
	calendarsRepo "github.com/primego-bg/sites-by-appointments/database/repository/calendars"
	catalogRepo "github.com/primego-bg/sites-by-appointments/database/repository/catalog"
	eventsRepo "github.com/primego-bg/sites-by-appointments/database/repository/events"
	"github.com/primego-bg/sites-by-appointments/handlers"
	"github.com/primego-bg/sites-by-appointments/routes"
	"github.com/primego-bg/sites-by-appointments/services/availability"
	"github.com/primego-bg/sites-by-appointments/services/booking"
	"github.com/primego-bg/sites-by-appointments/services/notification"
	syncsvc "github.com/primego-bg/sites-by-appointments/services/sync"
	"github.com/primego-bg/sites-by-appointments/services/teamup"
	"github.com/primego-bg/sites-by-appointments/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	indexCtx, cancelIndex := context.WithTimeout(context.Background(), 30*time.Second)
	if err := eventsRepo.EnsureEventIndexes(indexCtx); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure event indexes: %v", err)
	}
	cancelIndex()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	// repositories.
	catalog := catalogRepo.NewMongoCatalogRepo()
	calendars := calendarsRepo.NewMongoCalendarRepo()
	events := eventsRepo.NewMongoEventRepo()

	// services.
	slotCache := availability.NewSlotCache(
		utils.GetCacheClient(),
		time.Duration(config.AppConfig.SlotCacheTTLSeconds)*time.Second,
	)

	engine := &availability.DefaultEngine{
		Catalog:   catalog,
		Calendars: calendars,
		Events:    events,
		Cache:     slotCache,
	}

	provider := teamup.NewClient()

	coordinator := &syncsvc.DefaultCoordinator{
		Calendars: calendars,
		Events:    events,
		Provider:  provider,
		Cache:     slotCache,
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()
	notifier := notification.NewAsynqService(asynqClient)

	bookingService := booking.NewDefaultService(
		catalog, calendars, events, engine, provider, notifier, slotCache,
	)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Availability: handlers.NewAvailabilityHandler(catalog, engine),
		Booking:      handlers.NewBookingHandler(bookingService),
		Calendar:     handlers.NewCalendarHandler(calendars, coordinator),
		Webhook: handlers.NewWebhookHandler(
			catalog, calendars, events, coordinator, slotCache,
			config.AppConfig.WebhookSecret,
		),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Background workers.
	sender := notification.NewSMTPSender(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPFrom,
	)
	cron.InitNotificationWorker(sender)
	scheduler := cron.InitSyncScheduler(coordinator)
	defer scheduler.Stop()

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
