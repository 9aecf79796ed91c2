package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"companify/models"

	"go.uber.org/zap"
)

func newBookingFixture() (*BookingEngine, *fakeBookingRepo) {
	repo := newFakeBookingRepo()
	engine := &BookingEngine{
		Bookings:    repo,
		Notifier:    noopNotifier{},
		MinDuration: 30,
		MaxDuration: 480,
		Now:         fixedNow,
		Logger:      zap.NewNop(),
	}
	return engine, repo
}

func validParams() CreateBookingParams {
	return CreateBookingParams{
		ClientID:   "c1",
		ProviderID: "p1",
		Date:       "2026-03-02",
		Start:      540, // 09:00
		End:        630, // 10:30
	}
}

func TestCreateBooking(t *testing.T) {
	engine, _ := newBookingFixture()

	booking, err := engine.CreateBooking(context.Background(), validParams())
	if err != nil {
		t.Fatalf("CreateBooking returned error: %v", err)
	}
	if booking.ID == "" {
		t.Error("expected a generated booking id")
	}
	if booking.Status != models.BookingPending {
		t.Errorf("status = %q, want pending", booking.Status)
	}
	if booking.PaymentStatus != models.PaymentUnpaid {
		t.Errorf("payment status = %q, want unpaid", booking.PaymentStatus)
	}
	if booking.MeetingType != models.MeetingInPerson {
		t.Errorf("meeting type = %q, want default in_person", booking.MeetingType)
	}
	if booking.DurationHours != 1.5 {
		t.Errorf("duration = %v hours, want 1.5", booking.DurationHours)
	}
}

func TestCreateBookingValidation(t *testing.T) {
	engine, _ := newBookingFixture()

	cases := []struct {
		name   string
		mutate func(*CreateBookingParams)
	}{
		{"self booking", func(p *CreateBookingParams) { p.ClientID = p.ProviderID }},
		{"start after end", func(p *CreateBookingParams) { p.Start, p.End = 630, 540 }},
		{"zero length", func(p *CreateBookingParams) { p.End = p.Start }},
		{"past midnight", func(p *CreateBookingParams) { p.Start, p.End = 1380, 1500 }},
		{"below minimum duration", func(p *CreateBookingParams) { p.End = p.Start + 15 }},
		{"above maximum duration", func(p *CreateBookingParams) { p.Start, p.End = 60, 600 }},
		{"bad date", func(p *CreateBookingParams) { p.Date = "tomorrow" }},
		{"in the past", func(p *CreateBookingParams) { p.Date = "2026-03-01" }},
		{"unknown meeting type", func(p *CreateBookingParams) { p.MeetingType = "astral" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams()
			tc.mutate(&p)
			_, err := engine.CreateBooking(context.Background(), p)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestCreateBookingConflict(t *testing.T) {
	engine, repo := newBookingFixture()
	repo.put(models.Booking{
		ID: "existing", ProviderID: "p1", Date: "2026-03-02",
		Start: 600, End: 660, Status: models.BookingConfirmed,
	})

	_, err := engine.CreateBooking(context.Background(), validParams())
	var cErr *ConflictError
	if !errors.As(err, &cErr) {
		t.Fatalf("expected ConflictError, got %v", err)
	}

	// A cancelled booking releases the slot.
	repo.put(models.Booking{
		ID: "existing", ProviderID: "p1", Date: "2026-03-02",
		Start: 600, End: 660, Status: models.BookingCancelled,
	})
	if _, err := engine.CreateBooking(context.Background(), validParams()); err != nil {
		t.Errorf("cancelled booking should not block, got %v", err)
	}
}

func TestCreateBookingConcurrent(t *testing.T) {
	engine, _ := newBookingFixture()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := validParams()
			_, errs[i] = engine.CreateBooking(context.Background(), p)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		default:
			var cErr *ConflictError
			if !errors.As(err, &cErr) {
				t.Fatalf("unexpected error: %v", err)
			}
			conflicts++
		}
	}
	if wins != 1 || conflicts != attempts-1 {
		t.Errorf("got %d wins and %d conflicts, want exactly 1 win", wins, conflicts)
	}
}

func seedBooking(repo *fakeBookingRepo, status string) models.Booking {
	b := models.Booking{
		ID: "b1", ClientID: "c1", ProviderID: "p1",
		Date: "2026-03-02", Start: 540, End: 630,
		Status: status, PaymentStatus: models.PaymentUnpaid,
	}
	repo.put(b)
	return b
}

func TestTransitionTable(t *testing.T) {
	provider := Actor{ID: "p1", Role: RoleProvider}
	client := Actor{ID: "c1", Role: RoleClient}

	cases := []struct {
		from, to string
		actor    Actor
		ok       bool
	}{
		{models.BookingPending, models.BookingConfirmed, provider, true},
		{models.BookingPending, models.BookingCancelled, client, true},
		{models.BookingPending, models.BookingCancelled, provider, true},
		{models.BookingPending, models.BookingNoShow, provider, false},
		{models.BookingConfirmed, models.BookingCancelled, client, true},
		{models.BookingConfirmed, models.BookingNoShow, provider, true},
		{models.BookingConfirmed, models.BookingConfirmed, provider, false},
		{models.BookingCancelled, models.BookingConfirmed, provider, false},
		{models.BookingCompleted, models.BookingCancelled, client, false},
		{models.BookingNoShow, models.BookingConfirmed, provider, false},
	}
	for _, tc := range cases {
		t.Run(tc.from+"_to_"+tc.to, func(t *testing.T) {
			engine, repo := newBookingFixture()
			seedBooking(repo, tc.from)

			_, err := engine.Transition(context.Background(), "b1", tc.actor, tc.to)
			if tc.ok && err != nil {
				t.Errorf("expected transition %s -> %s to succeed, got %v", tc.from, tc.to, err)
			}
			if !tc.ok {
				var tErr *IllegalTransitionError
				if !errors.As(err, &tErr) {
					t.Errorf("expected IllegalTransitionError for %s -> %s, got %v", tc.from, tc.to, err)
				}
			}
		})
	}
}

func TestTransitionActorPolicy(t *testing.T) {
	engine, repo := newBookingFixture()

	seedBooking(repo, models.BookingPending)
	_, err := engine.Transition(context.Background(), "b1", Actor{ID: "c1", Role: RoleClient}, models.BookingConfirmed)
	var aErr *AuthorizationError
	if !errors.As(err, &aErr) {
		t.Errorf("client confirming should fail authorization, got %v", err)
	}

	_, err = engine.Transition(context.Background(), "b1", Actor{ID: "stranger", Role: RoleClient}, models.BookingCancelled)
	if !errors.As(err, &aErr) {
		t.Errorf("non-party actor should fail authorization, got %v", err)
	}

	// The system actor bypasses party checks.
	if _, err := engine.Transition(context.Background(), "b1", System, models.BookingCancelled); err != nil {
		t.Errorf("system actor transition failed: %v", err)
	}
}

func TestTransitionNonPartyIsAudited(t *testing.T) {
	engine, repo := newBookingFixture()
	audit := &fakeAuditRepo{}
	engine.Audit = audit
	seedBooking(repo, models.BookingPending)

	_, err := engine.Transition(context.Background(), "b1", Actor{ID: "stranger", Role: RoleClient}, models.BookingCancelled)
	var aErr *AuthorizationError
	if !errors.As(err, &aErr) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}

	entries, _ := audit.ListByProvider(context.Background(), "p1", 10)
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	if entries[0].Action != models.AuditOwnershipViolated || entries[0].ActorID != "stranger" {
		t.Errorf("audit entry = %+v", entries[0])
	}
}

func TestTransitionCompleteRequiresEndPassed(t *testing.T) {
	engine, repo := newBookingFixture()
	seedBooking(repo, models.BookingConfirmed)
	provider := Actor{ID: "p1", Role: RoleProvider}

	_, err := engine.Transition(context.Background(), "b1", provider, models.BookingCompleted)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("completing before the end instant should fail, got %v", err)
	}

	engine.Now = func() time.Time { return time.Date(2026, time.March, 2, 11, 0, 0, 0, time.UTC) }
	updated, err := engine.Transition(context.Background(), "b1", provider, models.BookingCompleted)
	if err != nil {
		t.Fatalf("completing after the end instant failed: %v", err)
	}
	if updated.Status != models.BookingCompleted {
		t.Errorf("status = %q, want completed", updated.Status)
	}
}

func TestTransitionNotFound(t *testing.T) {
	engine, _ := newBookingFixture()
	_, err := engine.Transition(context.Background(), "ghost", System, models.BookingCancelled)
	var nErr *NotFoundError
	if !errors.As(err, &nErr) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestMarkPayment(t *testing.T) {
	engine, repo := newBookingFixture()
	seedBooking(repo, models.BookingConfirmed)
	provider := Actor{ID: "p1", Role: RoleProvider}

	updated, err := engine.MarkPayment(context.Background(), "b1", provider, models.PaymentPaid)
	if err != nil {
		t.Fatalf("MarkPayment returned error: %v", err)
	}
	if updated.PaymentStatus != models.PaymentPaid {
		t.Errorf("payment status = %q, want paid", updated.PaymentStatus)
	}

	// paid -> pending is not a legal payment move.
	_, err = engine.MarkPayment(context.Background(), "b1", provider, models.PaymentPending)
	var tErr *IllegalTransitionError
	if !errors.As(err, &tErr) {
		t.Errorf("expected IllegalTransitionError, got %v", err)
	}

	// Refund after payment is.
	if _, err := engine.MarkPayment(context.Background(), "b1", System, models.PaymentRefunded); err != nil {
		t.Errorf("system refund failed: %v", err)
	}
}

func TestMarkPaymentClientForbidden(t *testing.T) {
	engine, repo := newBookingFixture()
	seedBooking(repo, models.BookingConfirmed)

	_, err := engine.MarkPayment(context.Background(), "b1", Actor{ID: "c1", Role: RoleClient}, models.PaymentPaid)
	var aErr *AuthorizationError
	if !errors.As(err, &aErr) {
		t.Errorf("client marking payment should fail authorization, got %v", err)
	}
}

func TestGetRestrictedToParties(t *testing.T) {
	engine, repo := newBookingFixture()
	seedBooking(repo, models.BookingPending)

	if _, err := engine.Get(context.Background(), "b1", Actor{ID: "c1", Role: RoleClient}); err != nil {
		t.Errorf("party fetch failed: %v", err)
	}
	_, err := engine.Get(context.Background(), "b1", Actor{ID: "stranger", Role: RoleClient})
	var aErr *AuthorizationError
	if !errors.As(err, &aErr) {
		t.Errorf("expected AuthorizationError, got %v", err)
	}
}
