package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"companify/models"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqNotificationService enqueues notification events onto the redis-backed
// task queue consumed by the background worker.
type AsynqNotificationService struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// NewAsynqNotificationService constructs the queue-backed dispatcher.
func NewAsynqNotificationService(client *asynq.Client, logger *zap.Logger) NotificationService {
	return &AsynqNotificationService{Client: client, Logger: logger}
}

func (s *AsynqNotificationService) enqueue(taskType string, p Payload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal notification payload: %w", err)
	}
	if _, err := s.Client.Enqueue(asynq.NewTask(taskType, data)); err != nil {
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}
	return nil
}

func (s *AsynqNotificationService) BookingCreated(_ context.Context, b models.Booking) error {
	return s.enqueue(TypeBookingCreated, Payload{
		BookingID:  b.ID,
		ClientID:   b.ClientID,
		ProviderID: b.ProviderID,
		Status:     b.Status,
		Date:       b.Date,
	})
}

func (s *AsynqNotificationService) BookingStatusChanged(_ context.Context, b models.Booking, previous string) error {
	return s.enqueue(TypeBookingStatusChanged, Payload{
		BookingID:      b.ID,
		ClientID:       b.ClientID,
		ProviderID:     b.ProviderID,
		Status:         b.Status,
		PreviousStatus: previous,
		Date:           b.Date,
	})
}

func (s *AsynqNotificationService) RequestCreated(_ context.Context, r models.BookingRequest) error {
	return s.enqueue(TypeRequestCreated, Payload{
		RequestID:  r.ID,
		ClientID:   r.ClientID,
		ProviderID: r.ProviderID,
		Status:     r.Status,
		Date:       r.Date,
	})
}

func (s *AsynqNotificationService) RequestResponded(_ context.Context, r models.BookingRequest) error {
	return s.enqueue(TypeRequestResponded, Payload{
		RequestID:  r.ID,
		ClientID:   r.ClientID,
		ProviderID: r.ProviderID,
		Status:     r.Status,
		Date:       r.Date,
	})
}
