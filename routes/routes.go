package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/primego-bg/sites-by-appointments/handlers"
	"github.com/primego-bg/sites-by-appointments/middleware"
)

// RegisterRoutes wires every endpoint onto the router.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Teamup-Signature"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)

	api := r.Group("/api")
	{
		api.GET("/availability", middleware.RateLimitMiddleware(), hb.Availability.ListAvailableSlots)
		api.POST("/bookings", middleware.RateLimitMiddleware(), hb.Booking.CreateBooking)

		api.GET("/calendars/:id", hb.Calendar.GetCalendar)
		api.POST("/calendars/:id/sync", hb.Calendar.TriggerSync)

		// Provider change notifications; authenticity is the HMAC signature,
		// so the route carries no auth middleware.
		api.POST("/webhook/event", hb.Webhook.HandleProviderEvent)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}
