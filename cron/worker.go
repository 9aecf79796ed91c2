package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"companify/config"
	"companify/services/notification"
	"companify/services/scheduling"
	"companify/utils"

	"github.com/hibiken/asynq"
	cronv3 "github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// InitNotificationWorker runs the async worker consuming queued scheduling
// notifications in the background.
func InitNotificationWorker() {
	logger := utils.GetLogger()

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
	mux.HandleFunc(notification.TypeBookingCreated, handleNotifyTask)
	mux.HandleFunc(notification.TypeBookingStatusChanged, handleNotifyTask)
	mux.HandleFunc(notification.TypeRequestCreated, handleNotifyTask)
	mux.HandleFunc(notification.TypeRequestResponded, handleNotifyTask)

	go func() {
		logger.Info("Starting notification worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				logger.Error("Failed to start notification worker",
					zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))

				if attempts == maxAttempts {
					logger.Fatal("Notification worker could not start, giving up")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleNotifyTask delivers a queued scheduling event. Delivery is currently a
// structured log line; push and email transports plug in here.
func handleNotifyTask(_ context.Context, task *asynq.Task) error {
	var p notification.Payload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		utils.GetLogger().Error("Invalid notification payload", zap.String("type", task.Type()), zap.Error(err))
		return err
	}

	utils.GetLogger().Info("Dispatching scheduling notification",
		zap.String("type", task.Type()),
		zap.String("bookingId", p.BookingID),
		zap.String("requestId", p.RequestID),
		zap.String("clientId", p.ClientID),
		zap.String("providerId", p.ProviderID),
		zap.String("status", p.Status),
		zap.String("previousStatus", p.PreviousStatus),
		zap.String("date", p.Date),
	)
	return nil
}

// InitExpirySweeper schedules the periodic pass that moves overdue pending
// booking requests to expired. Returns the scheduler so the caller can stop it
// on shutdown.
func InitExpirySweeper(engine *scheduling.NegotiationEngine) (*cronv3.Cron, error) {
	logger := utils.GetLogger()

	c := cronv3.New()
	spec := fmt.Sprintf("@every %dm", config.AppConfig.ExpirySweepEvery)
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := engine.SweepExpired(ctx); err != nil {
			logger.Error("Request expiry sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule expiry sweep: %w", err)
	}

	c.Start()
	logger.Info("Request expiry sweeper started", zap.String("schedule", spec))
	return c, nil
}
