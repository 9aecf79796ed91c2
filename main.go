package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"companify/config"
	"companify/cron"
	"companify/database"
	auditRepoPkg "companify/database/repository/audit"
	availabilityRepoPkg "companify/database/repository/availability"
	bookingRepoPkg "companify/database/repository/booking"
	requestRepoPkg "companify/database/repository/request"
	"companify/handlers"
	"companify/middleware"
	"companify/routes"
	"companify/services/notification"
	"companify/services/scheduling"
	"companify/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Repositories.
	windowRepo := availabilityRepoPkg.NewMongoAvailabilityRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	requestRepo := requestRepoPkg.NewMongoRequestRepo()
	auditRepo := auditRepoPkg.NewMongoAuditRepo()

	for _, ensure := range []func() error{
		windowRepo.EnsureIndexes,
		bookingRepo.EnsureIndexes,
		requestRepo.EnsureIndexes,
		auditRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
		}
	}

	// Notification queue.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()
	notifier := notification.NewAsynqNotificationService(asynqClient, logger)
	cron.InitNotificationWorker()

	// Engines.
	slotEngine := &scheduling.SlotEngine{
		Availability: windowRepo,
		Bookings:     bookingRepo,
		MaxRangeDays: config.AppConfig.CalendarMaxDays,
	}
	bookingEngine := &scheduling.BookingEngine{
		Bookings:    bookingRepo,
		Notifier:    notifier,
		Audit:       auditRepo,
		MinDuration: config.AppConfig.MinBookingMins,
		MaxDuration: config.AppConfig.MaxBookingMins,
		Logger:      logger,
	}
	negotiationEngine := &scheduling.NegotiationEngine{
		Requests: requestRepo,
		Booking:  bookingEngine,
		Notifier: notifier,
		TTL:      time.Duration(config.AppConfig.RequestTTLHours) * time.Hour,
		Logger:   logger,
	}
	templateService := &scheduling.TemplateService{
		Windows: windowRepo,
		Audit:   auditRepo,
		Logger:  logger,
	}

	sweeper, err := cron.InitExpirySweeper(negotiationEngine)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to start expiry sweeper: %v", err)
	}
	defer sweeper.Stop()

	// HTTP surface.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())

	rateLimiter := &middleware.RateLimiter{
		Store:  &middleware.RedisLimiterStore{Client: utils.GetCacheClient()},
		PerMin: config.AppConfig.RateLimitPerMin,
		Logger: logger,
	}
	ownershipGate := middleware.NewOwnershipGate(auditRepo, logger)

	handlerBundle := &routes.HandlerBundle{
		Availability: handlers.NewAvailabilityHandler(slotEngine, templateService, auditRepo, ownershipGate, logger),
		Booking:      handlers.NewBookingHandler(bookingEngine, logger),
		Requests:     handlers.NewRequestHandler(negotiationEngine, logger),
		RateLimiter:  rateLimiter,
	}
	routes.RegisterRoutes(router, handlerBundle)

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
