package scheduling

import (
	"context"
	"errors"
	"time"

	auditRepo "companify/database/repository/audit"
	bookingRepo "companify/database/repository/booking"
	"companify/models"
	"companify/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allowedTransitions is the booking state machine. Anything not listed fails
// with an IllegalTransitionError.
var allowedTransitions = map[string][]string{
	models.BookingPending:   {models.BookingConfirmed, models.BookingCancelled},
	models.BookingConfirmed: {models.BookingCompleted, models.BookingCancelled, models.BookingNoShow},
}

// allowedPaymentTransitions is the payment sub-status machine.
var allowedPaymentTransitions = map[string][]string{
	models.PaymentUnpaid:  {models.PaymentPending, models.PaymentPaid, models.PaymentFailed},
	models.PaymentPending: {models.PaymentPaid, models.PaymentFailed},
	models.PaymentFailed:  {models.PaymentPending, models.PaymentPaid},
	models.PaymentPaid:    {models.PaymentRefunded},
}

// CreateBookingParams carries a validated-at-the-edge booking candidate.
// Start and End are minutes from midnight.
type CreateBookingParams struct {
	ClientID    string
	ProviderID  string
	Date        string
	Start       int
	End         int
	MeetingType string
	Service     string
}

// BookingEngine governs a booking's status and payment sub-status, and owns
// the atomic create path.
type BookingEngine struct {
	Bookings    bookingRepo.BookingRepository
	Notifier    notification.NotificationService
	Audit       auditRepo.AuditRepository // optional; records rejected cross-party transitions
	MinDuration int                       // minutes
	MaxDuration int                       // minutes
	Now         func() time.Time
	Logger      *zap.Logger
}

func (e *BookingEngine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func transitionAllowed(table map[string][]string, from, to string) bool {
	for _, t := range table[from] {
		if t == to {
			return true
		}
	}
	return false
}

func (e *BookingEngine) validateWindow(clientID, providerID, date string, start, end int) error {
	if clientID == providerID {
		return NewValidationError("clients cannot book themselves")
	}
	if start >= end {
		return NewValidationError("start %s must precede end %s", models.FormatClock(start), models.FormatClock(end))
	}
	if start < 0 || end > 24*60 {
		return NewValidationError("times must fall within a single day")
	}
	dur := end - start
	if e.MinDuration > 0 && dur < e.MinDuration {
		return NewValidationError("duration %d minutes is below the %d minute minimum", dur, e.MinDuration)
	}
	if e.MaxDuration > 0 && dur > e.MaxDuration {
		return NewValidationError("duration %d minutes exceeds the %d minute maximum", dur, e.MaxDuration)
	}
	now := e.now()
	day, err := models.ParseDate(date, now.Location())
	if err != nil {
		return NewValidationError("%v", err)
	}
	startAt := day.Add(time.Duration(start) * time.Minute)
	if startAt.Before(now) {
		return NewValidationError("booking start %s %s is in the past", date, models.FormatClock(start))
	}
	return nil
}

// CreateBooking validates the candidate, then reserves the slot atomically:
// the conflict check and the insert run inside one store transaction, so two
// concurrent calls for the same window yield one booking and one ConflictError.
func (e *BookingEngine) CreateBooking(ctx context.Context, p CreateBookingParams) (*models.Booking, error) {
	if err := e.validateWindow(p.ClientID, p.ProviderID, p.Date, p.Start, p.End); err != nil {
		return nil, err
	}
	meetingType := p.MeetingType
	if meetingType == "" {
		meetingType = models.MeetingInPerson
	}
	if meetingType != models.MeetingInPerson && meetingType != models.MeetingVirtual {
		return nil, NewValidationError("unknown meeting type %q", meetingType)
	}

	now := e.now()
	booking := &models.Booking{
		ID:            uuid.New().String(),
		ClientID:      p.ClientID,
		ProviderID:    p.ProviderID,
		Date:          p.Date,
		Start:         p.Start,
		End:           p.End,
		DurationHours: float64(p.End-p.Start) / 60,
		Status:        models.BookingPending,
		PaymentStatus: models.PaymentUnpaid,
		MeetingType:   meetingType,
		Service:       p.Service,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.Bookings.CreateIfSlotFree(ctx, booking); err != nil {
		if errors.Is(err, bookingRepo.ErrSlotTaken) {
			return nil, NewConflictError("slot %s %s-%s is no longer available",
				p.Date, models.FormatClock(p.Start), models.FormatClock(p.End))
		}
		return nil, err
	}

	// Fire-and-forget: notification dispatch is outside the transaction and
	// never fails the booking.
	go func(b models.Booking) {
		if err := e.Notifier.BookingCreated(context.Background(), b); err != nil {
			e.Logger.Warn("booking created notification failed",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}(*booking)

	return booking, nil
}

// authorizeTransition enforces the actor policy for a target state.
func (e *BookingEngine) authorizeTransition(b *models.Booking, actor Actor, target string) error {
	if actor.Role == RoleSystem {
		return nil
	}
	isProvider := actor.ID == b.ProviderID
	isClient := actor.ID == b.ClientID
	if !isProvider && !isClient {
		return NewAuthorizationError("actor %s is not a party to booking %s", actor.ID, b.ID)
	}

	switch target {
	case models.BookingConfirmed:
		if !isProvider {
			return NewAuthorizationError("only the provider may confirm a booking")
		}
	case models.BookingCancelled:
		// While pending: the provider rejects, or the client withdraws.
		// Once confirmed: either party may cancel.
	case models.BookingCompleted:
		if !isProvider {
			return NewAuthorizationError("only the provider may complete a booking")
		}
	case models.BookingNoShow:
		if !isProvider {
			return NewAuthorizationError("only the provider may record a no-show")
		}
	}
	return nil
}

// Transition moves a booking to the target status under the allowed table and
// actor policy. Completed additionally requires the booking's end instant to
// have passed.
func (e *BookingEngine) Transition(ctx context.Context, bookingID string, actor Actor, target string) (*models.Booking, error) {
	booking, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}

	if !transitionAllowed(allowedTransitions, booking.Status, target) {
		return nil, &IllegalTransitionError{From: booking.Status, To: target}
	}
	if err := e.authorizeTransition(booking, actor, target); err != nil {
		if e.Audit != nil {
			entry := &models.AuditEntry{
				ID:         uuid.New().String(),
				ProviderID: booking.ProviderID,
				Action:     models.AuditOwnershipViolated,
				NewData:    map[string]string{"bookingId": booking.ID, "target": target},
				ActorID:    actor.ID,
				Timestamp:  e.now(),
			}
			if aErr := e.Audit.Append(ctx, entry); aErr != nil {
				e.Logger.Error("failed to audit rejected transition",
					zap.String("bookingID", booking.ID), zap.Error(aErr))
			}
		}
		return nil, err
	}
	if target == models.BookingCompleted {
		day, err := models.ParseDate(booking.Date, e.now().Location())
		if err != nil {
			return nil, NewValidationError("%v", err)
		}
		endAt := day.Add(time.Duration(booking.End) * time.Minute)
		if e.now().Before(endAt) {
			return nil, NewValidationError("booking %s cannot complete before it ends at %s %s",
				bookingID, booking.Date, models.FormatClock(booking.End))
		}
	}

	previous := booking.Status
	updated, err := e.Bookings.UpdateStatus(ctx, bookingID, previous, target)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, &IllegalTransitionError{From: previous, To: target}
		}
		return nil, err
	}

	go func(b models.Booking, prev string) {
		if err := e.Notifier.BookingStatusChanged(context.Background(), b, prev); err != nil {
			e.Logger.Warn("booking status notification failed",
				zap.String("bookingID", b.ID), zap.Error(err))
		}
	}(*updated, previous)

	return updated, nil
}

// MarkPayment moves the payment sub-status. Provider- or system-driven; the
// engine records outcomes, it never initiates charges.
func (e *BookingEngine) MarkPayment(ctx context.Context, bookingID string, actor Actor, target string) (*models.Booking, error) {
	booking, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	if actor.Role != RoleSystem && actor.ID != booking.ProviderID {
		return nil, NewAuthorizationError("only the provider may update payment status")
	}
	if !transitionAllowed(allowedPaymentTransitions, booking.PaymentStatus, target) {
		return nil, &IllegalTransitionError{From: booking.PaymentStatus, To: target}
	}

	updated, err := e.Bookings.UpdatePaymentStatus(ctx, bookingID, booking.PaymentStatus, target)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, &IllegalTransitionError{From: booking.PaymentStatus, To: target}
		}
		return nil, err
	}
	return updated, nil
}

// ListForActor returns the bookings the actor participates in, newest first.
func (e *BookingEngine) ListForActor(ctx context.Context, actor Actor) ([]models.Booking, error) {
	return e.Bookings.ListForActor(ctx, actor.ID)
}

// Get fetches one booking, restricted to its parties.
func (e *BookingEngine) Get(ctx context.Context, bookingID string, actor Actor) (*models.Booking, error) {
	booking, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrNotFound) {
			return nil, &NotFoundError{Resource: "booking", ID: bookingID}
		}
		return nil, err
	}
	if actor.Role != RoleSystem && actor.ID != booking.ClientID && actor.ID != booking.ProviderID {
		return nil, NewAuthorizationError("actor %s is not a party to booking %s", actor.ID, bookingID)
	}
	return booking, nil
}
