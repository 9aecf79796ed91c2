package bookingRepo

import (
	"context"
	"errors"

	"companify/models"
)

// Sentinel errors surfaced by the store so callers can classify failures.
var (
	// ErrNotFound indicates the booking id does not exist.
	ErrNotFound = errors.New("booking not found")
	// ErrSlotTaken indicates the reservation transaction found an
	// overlapping pending or confirmed booking.
	ErrSlotTaken = errors.New("slot already taken")
	// ErrStaleStatus indicates a status-filtered update matched nothing,
	// meaning the booking moved concurrently or never held that status.
	ErrStaleStatus = errors.New("booking status changed concurrently")
)

// BookingRepository owns persisted bookings.
type BookingRepository interface {
	// CreateIfSlotFree runs the overlap check and the insert as one atomic
	// unit. Returns ErrSlotTaken when a pending or confirmed booking for the
	// same provider and date overlaps the candidate's [start,end) window.
	CreateIfSlotFree(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// ListForProviderDate returns bookings for one provider and date limited
	// to the given statuses, ordered by start time.
	ListForProviderDate(ctx context.Context, providerID, date string, statuses []string) ([]models.Booking, error)
	// ListForActor returns bookings where the actor is the client or the
	// provider, newest first.
	ListForActor(ctx context.Context, actorID string) ([]models.Booking, error)
	// CountOverlapping counts bookings in the given statuses whose [start,end)
	// intersects the candidate window.
	CountOverlapping(ctx context.Context, providerID, date string, start, end int, statuses []string) (int64, error)
	// UpdateStatus moves a booking from an expected current status to a new
	// one. Returns ErrStaleStatus when the filter matches nothing.
	UpdateStatus(ctx context.Context, id, from, to string) (*models.Booking, error)
	// UpdatePaymentStatus moves the payment sub-status the same way.
	UpdatePaymentStatus(ctx context.Context, id, from, to string) (*models.Booking, error)
	EnsureIndexes() error
}
