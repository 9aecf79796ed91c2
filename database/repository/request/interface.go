package requestRepo

import (
	"context"
	"errors"
	"time"

	"companify/models"
)

var (
	// ErrNotFound indicates the booking request id does not exist.
	ErrNotFound = errors.New("booking request not found")
	// ErrStaleStatus indicates a status-filtered update matched nothing.
	ErrStaleStatus = errors.New("booking request status changed concurrently")
)

// RequestRepository owns persisted booking requests.
type RequestRepository interface {
	Create(ctx context.Context, req *models.BookingRequest) error
	GetByID(ctx context.Context, id string) (*models.BookingRequest, error)
	// ListForActor returns requests where the actor is the client or the
	// provider, newest first.
	ListForActor(ctx context.Context, actorID string) ([]models.BookingRequest, error)
	// UpdateFromStatus replaces the mutable fields of a request, filtered on
	// the expected current status. Returns ErrStaleStatus on a lost race.
	UpdateFromStatus(ctx context.Context, req *models.BookingRequest, expectStatus string) error
	// MarkExpired moves one still-pending request to expired.
	MarkExpired(ctx context.Context, id string) error
	// ExpireOverdue moves every pending request whose expires_at has passed
	// to expired, returning the number moved.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
	EnsureIndexes() error
}
