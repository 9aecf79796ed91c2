package routes

import (
	"net/http"
	"time"

	"companify/handlers"
	"companify/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the HTTP handlers and shared middleware so route
// registration needs a single argument.
type HandlerBundle struct {
	Availability *handlers.AvailabilityHandler
	Booking      *handlers.BookingHandler
	Requests     *handlers.RequestHandler
	RateLimiter  *middleware.RateLimiter
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Companify"})
	})
}

// RegisterAvailabilityRoutes sets up the slot and template endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/booking/availability")
	{
		api.Use(middleware.AuthMiddleware())

		// Read endpoints are open to any authenticated actor.
		api.GET("/:providerId", hb.Availability.Availability)
		api.GET("/:providerId/slots", hb.Availability.DailySlots)
		api.GET("/:providerId/weekly", hb.Availability.WeeklyPattern)
		api.GET("/:providerId/calendar", hb.Availability.Calendar)

		// Template mutation is rate limited per provider.
		api.PUT("/template", hb.RateLimiter.Middleware(), hb.Availability.SetTemplate)
		api.GET("/template/audit", hb.Availability.TemplateAudit)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/booking")
	{
		api.Use(middleware.AuthMiddleware())
		api.GET("/my-bookings", hb.Booking.MyBookings)

		mutating := api.Group("")
		mutating.Use(hb.RateLimiter.Middleware())
		mutating.POST("/create", hb.Booking.CreateBooking)
		mutating.PUT("/:id/status", hb.Booking.Transition)
		mutating.PUT("/:id/payment", hb.Booking.MarkPayment)
	}
}

// RegisterRequestRoutes sets up the negotiation endpoints.
func RegisterRequestRoutes(r *gin.Engine, hb *HandlerBundle) {
	api := r.Group("/booking/requests")
	{
		api.Use(middleware.AuthMiddleware())
		api.GET("/my-requests", hb.Requests.MyRequests)

		mutating := api.Group("")
		mutating.Use(hb.RateLimiter.Middleware())
		mutating.POST("/create", hb.Requests.CreateRequest)
		mutating.PUT("/:id/status", hb.Requests.Respond)
		mutating.PUT("/:id/confirm", hb.Requests.ConfirmCounter)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterRequestRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}
