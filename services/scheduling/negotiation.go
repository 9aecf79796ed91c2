package scheduling

import (
	"context"
	"errors"
	"time"

	requestRepo "companify/database/repository/request"
	"companify/models"
	"companify/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Respond decisions.
const (
	DecisionAccept = "accept"
	DecisionReject = "reject"
)

// CreateRequestParams carries a booking-request candidate. Start and End are
// minutes from midnight.
type CreateRequestParams struct {
	ClientID   string
	ProviderID string
	Date       string
	Start      int
	End        int
	Note       string
}

// NegotiationEngine runs the booking-request workflow used when no bookable
// slot fits: pending -> accepted/rejected/expired, with an optional provider
// counter-offer requiring a second client confirmation.
type NegotiationEngine struct {
	Requests requestRepo.RequestRepository
	Booking  *BookingEngine
	Notifier notification.NotificationService
	TTL      time.Duration
	Now      func() time.Time
	Logger   *zap.Logger
}

func (n *NegotiationEngine) now() time.Time {
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

// CreateRequest records a negotiation request with an expiry horizon.
func (n *NegotiationEngine) CreateRequest(ctx context.Context, p CreateRequestParams) (*models.BookingRequest, error) {
	if err := n.Booking.validateWindow(p.ClientID, p.ProviderID, p.Date, p.Start, p.End); err != nil {
		return nil, err
	}

	now := n.now()
	ttl := n.TTL
	if ttl <= 0 {
		ttl = 36 * time.Hour
	}
	req := &models.BookingRequest{
		ID:            uuid.New().String(),
		ClientID:      p.ClientID,
		ProviderID:    p.ProviderID,
		Date:          p.Date,
		Start:         p.Start,
		End:           p.End,
		DurationHours: float64(p.End-p.Start) / 60,
		Note:          p.Note,
		Status:        models.RequestPending,
		ExpiresAt:     now.Add(ttl),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := n.Requests.Create(ctx, req); err != nil {
		return nil, err
	}

	go func(r models.BookingRequest) {
		if err := n.Notifier.RequestCreated(context.Background(), r); err != nil {
			n.Logger.Warn("request created notification failed",
				zap.String("requestID", r.ID), zap.Error(err))
		}
	}(*req)

	return req, nil
}

// expireIfOverdue lazily moves a pending request past its horizon to expired.
// The returned request reflects the new status.
func (n *NegotiationEngine) expireIfOverdue(ctx context.Context, req *models.BookingRequest) *models.BookingRequest {
	if req.Status != models.RequestPending || n.now().Before(req.ExpiresAt) {
		return req
	}
	if err := n.Requests.MarkExpired(ctx, req.ID); err != nil && !errors.Is(err, requestRepo.ErrStaleStatus) {
		n.Logger.Warn("lazy expiry failed", zap.String("requestID", req.ID), zap.Error(err))
	}
	req.Status = models.RequestExpired
	return req
}

// Get fetches one request, restricted to its parties, expiring it lazily.
func (n *NegotiationEngine) Get(ctx context.Context, requestID string, actor Actor) (*models.BookingRequest, error) {
	req, err := n.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking request", ID: requestID}
		}
		return nil, err
	}
	if actor.Role != RoleSystem && actor.ID != req.ClientID && actor.ID != req.ProviderID {
		return nil, NewAuthorizationError("actor %s is not a party to request %s", actor.ID, requestID)
	}
	return n.expireIfOverdue(ctx, req), nil
}

// ListForActor returns the actor's requests, expiring overdue ones lazily.
func (n *NegotiationEngine) ListForActor(ctx context.Context, actor Actor) ([]models.BookingRequest, error) {
	reqs, err := n.Requests.ListForActor(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	for i := range reqs {
		reqs[i] = *n.expireIfOverdue(ctx, &reqs[i])
	}
	return reqs, nil
}

// Respond applies the provider's decision to a pending request.
//
// accept without a counter-offer materializes a confirmed booking for the
// requested window; the booking passes conflict checking against the
// now-current schedule, never bypassing it. accept with a counter-offer
// leaves the request accepted pending the client's confirmation. reject
// closes the request with an optional reason.
func (n *NegotiationEngine) Respond(ctx context.Context, requestID, providerID string, decision string, counter *models.CounterOffer, reason string) (*models.BookingRequest, error) {
	req, err := n.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking request", ID: requestID}
		}
		return nil, err
	}
	if req.ProviderID != providerID {
		return nil, NewAuthorizationError("request %s belongs to another provider", requestID)
	}
	req = n.expireIfOverdue(ctx, req)
	if req.Status != models.RequestPending {
		return nil, &IllegalTransitionError{From: req.Status, To: decision}
	}

	switch decision {
	case DecisionReject:
		req.Status = models.RequestRejected
		req.RejectReason = reason
		req.UpdatedAt = n.now()
		if err := n.Requests.UpdateFromStatus(ctx, req, models.RequestPending); err != nil {
			if errors.Is(err, requestRepo.ErrStaleStatus) {
				return nil, &IllegalTransitionError{From: models.RequestPending, To: decision}
			}
			return nil, err
		}

	case DecisionAccept:
		if counter != nil {
			if counter.Start >= counter.End {
				return nil, NewValidationError("counter-offer start must precede end")
			}
			if _, err := models.ParseDate(counter.Date, n.now().Location()); err != nil {
				return nil, NewValidationError("%v", err)
			}
			// Two-phase accept: the booking materializes only after the
			// client confirms the counter window.
			req.Status = models.RequestAccepted
			req.Counter = counter
			req.UpdatedAt = n.now()
			if err := n.Requests.UpdateFromStatus(ctx, req, models.RequestPending); err != nil {
				if errors.Is(err, requestRepo.ErrStaleStatus) {
					return nil, &IllegalTransitionError{From: models.RequestPending, To: decision}
				}
				return nil, err
			}
			break
		}

		booking, err := n.materializeBooking(ctx, req, req.Date, req.Start, req.End)
		if err != nil {
			return nil, err
		}
		req.Status = models.RequestAccepted
		req.ResultingBookingID = booking.ID
		req.UpdatedAt = n.now()
		if err := n.Requests.UpdateFromStatus(ctx, req, models.RequestPending); err != nil {
			// The booking exists but the request moved concurrently; release
			// the slot again so the two records cannot disagree.
			if _, cErr := n.Booking.Transition(ctx, booking.ID, Actor{ID: req.ProviderID, Role: RoleProvider}, models.BookingCancelled); cErr != nil {
				n.Logger.Error("failed to release booking after request race",
					zap.String("requestID", req.ID), zap.String("bookingID", booking.ID), zap.Error(cErr))
			}
			if errors.Is(err, requestRepo.ErrStaleStatus) {
				return nil, &IllegalTransitionError{From: models.RequestPending, To: decision}
			}
			return nil, err
		}

	default:
		return nil, NewValidationError("unknown decision %q", decision)
	}

	go func(r models.BookingRequest) {
		if err := n.Notifier.RequestResponded(context.Background(), r); err != nil {
			n.Logger.Warn("request responded notification failed",
				zap.String("requestID", r.ID), zap.Error(err))
		}
	}(*req)

	return req, nil
}

// ConfirmCounter is the second phase of a countered accept: the client
// confirms the provider's suggested window and the booking materializes,
// conflict-checked against the current schedule.
func (n *NegotiationEngine) ConfirmCounter(ctx context.Context, requestID, clientID string) (*models.BookingRequest, *models.Booking, error) {
	req, err := n.Requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, requestRepo.ErrNotFound) {
			return nil, nil, &NotFoundError{Resource: "booking request", ID: requestID}
		}
		return nil, nil, err
	}
	if req.ClientID != clientID {
		return nil, nil, NewAuthorizationError("request %s belongs to another client", requestID)
	}
	if req.Status != models.RequestAccepted || req.Counter == nil {
		return nil, nil, &IllegalTransitionError{From: req.Status, To: "confirm"}
	}
	if req.ResultingBookingID != "" {
		return nil, nil, &IllegalTransitionError{From: req.Status, To: "confirm"}
	}

	booking, err := n.materializeBooking(ctx, req, req.Counter.Date, req.Counter.Start, req.Counter.End)
	if err != nil {
		return nil, nil, err
	}
	req.ResultingBookingID = booking.ID
	req.UpdatedAt = n.now()
	if err := n.Requests.UpdateFromStatus(ctx, req, models.RequestAccepted); err != nil {
		if _, cErr := n.Booking.Transition(ctx, booking.ID, Actor{ID: req.ProviderID, Role: RoleProvider}, models.BookingCancelled); cErr != nil {
			n.Logger.Error("failed to release booking after confirm race",
				zap.String("requestID", req.ID), zap.String("bookingID", booking.ID), zap.Error(cErr))
		}
		if errors.Is(err, requestRepo.ErrStaleStatus) {
			return nil, nil, &IllegalTransitionError{From: models.RequestAccepted, To: "confirm"}
		}
		return nil, nil, err
	}
	return req, booking, nil
}

// materializeBooking creates and provider-confirms a booking for the given
// window on behalf of an accepted request.
func (n *NegotiationEngine) materializeBooking(ctx context.Context, req *models.BookingRequest, date string, start, end int) (*models.Booking, error) {
	booking, err := n.Booking.CreateBooking(ctx, CreateBookingParams{
		ClientID:   req.ClientID,
		ProviderID: req.ProviderID,
		Date:       date,
		Start:      start,
		End:        end,
	})
	if err != nil {
		return nil, err
	}
	confirmed, err := n.Booking.Transition(ctx, booking.ID, Actor{ID: req.ProviderID, Role: RoleProvider}, models.BookingConfirmed)
	if err != nil {
		return nil, err
	}
	return confirmed, nil
}

// SweepExpired moves every overdue pending request to expired. Run
// periodically; lazy expiry on read covers the gap between sweeps.
func (n *NegotiationEngine) SweepExpired(ctx context.Context) (int64, error) {
	moved, err := n.Requests.ExpireOverdue(ctx, n.now())
	if err != nil {
		return 0, err
	}
	if moved > 0 {
		n.Logger.Info("expired overdue booking requests", zap.Int64("count", moved))
	}
	return moved, nil
}
