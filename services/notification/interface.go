package notification

import (
	"context"

	"companify/models"
)

// Task type names on the notification queue.
const (
	TypeBookingCreated       = "notify:booking_created"
	TypeBookingStatusChanged = "notify:booking_status_changed"
	TypeRequestCreated       = "notify:request_created"
	TypeRequestResponded     = "notify:request_responded"
)

// Payload is the queued representation of a notification event.
type Payload struct {
	BookingID      string `json:"bookingId,omitempty"`
	RequestID      string `json:"requestId,omitempty"`
	ClientID       string `json:"clientId"`
	ProviderID     string `json:"providerId"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previousStatus,omitempty"`
	Date           string `json:"date"`
}

// NotificationService dispatches scheduling events to the delivery
// collaborator. Dispatch is fire-and-forget from the engine's point of view;
// failures are logged, never propagated into the booking path.
type NotificationService interface {
	BookingCreated(ctx context.Context, b models.Booking) error
	BookingStatusChanged(ctx context.Context, b models.Booking, previous string) error
	RequestCreated(ctx context.Context, r models.BookingRequest) error
	RequestResponded(ctx context.Context, r models.BookingRequest) error
}
