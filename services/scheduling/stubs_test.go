package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	bookingRepo "companify/database/repository/booking"
	requestRepo "companify/database/repository/request"
	"companify/models"
)

// testNow is a Monday morning; all test fixtures book later the same week.
var testNow = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// fakeBookingRepo is an in-memory BookingRepository with the same atomicity
// contract as the mongo implementation: the overlap check and the insert hold
// one lock.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[string]models.Booking)}
}

func (f *fakeBookingRepo) put(b models.Booking) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookings[b.ID] = b
}

func statusIn(status string, statuses []string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (f *fakeBookingRepo) CreateIfSlotFree(_ context.Context, booking *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bookings {
		if b.ProviderID != booking.ProviderID || b.Date != booking.Date {
			continue
		}
		if !statusIn(b.Status, BlockingStatuses) {
			continue
		}
		if Overlaps(booking.Start, booking.End, b.Start, b.End) {
			return bookingRepo.ErrSlotTaken
		}
	}
	f.bookings[booking.ID] = *booking
	return nil
}

func (f *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	return &b, nil
}

func (f *fakeBookingRepo) ListForProviderDate(_ context.Context, providerID, date string, statuses []string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.ProviderID == providerID && b.Date == date && statusIn(b.Status, statuses) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (f *fakeBookingRepo) ListForActor(_ context.Context, actorID string) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.ClientID == actorID || b.ProviderID == actorID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeBookingRepo) CountOverlapping(_ context.Context, providerID, date string, start, end int, statuses []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.bookings {
		if b.ProviderID == providerID && b.Date == date && statusIn(b.Status, statuses) && Overlaps(start, end, b.Start, b.End) {
			n++
		}
	}
	return n, nil
}

func (f *fakeBookingRepo) UpdateStatus(_ context.Context, id, from, to string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return nil, bookingRepo.ErrStaleStatus
	}
	b.Status = to
	b.UpdatedAt = testNow
	f.bookings[id] = b
	return &b, nil
}

func (f *fakeBookingRepo) UpdatePaymentStatus(_ context.Context, id, from, to string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.PaymentStatus != from {
		return nil, bookingRepo.ErrStaleStatus
	}
	b.PaymentStatus = to
	b.UpdatedAt = testNow
	f.bookings[id] = b
	return &b, nil
}

func (f *fakeBookingRepo) EnsureIndexes() error { return nil }

// fakeRequestRepo is an in-memory RequestRepository.
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]models.BookingRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]models.BookingRequest)}
}

func (f *fakeRequestRepo) put(r models.BookingRequest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[r.ID] = r
}

func (f *fakeRequestRepo) Create(_ context.Context, req *models.BookingRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[req.ID] = *req
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (*models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, requestRepo.ErrNotFound
	}
	return &r, nil
}

func (f *fakeRequestRepo) ListForActor(_ context.Context, actorID string) ([]models.BookingRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.BookingRequest
	for _, r := range f.requests {
		if r.ClientID == actorID || r.ProviderID == actorID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeRequestRepo) UpdateFromStatus(_ context.Context, req *models.BookingRequest, expectStatus string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.requests[req.ID]
	if !ok || cur.Status != expectStatus {
		return requestRepo.ErrStaleStatus
	}
	f.requests[req.ID] = *req
	return nil
}

func (f *fakeRequestRepo) MarkExpired(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.Status != models.RequestPending {
		return requestRepo.ErrStaleStatus
	}
	r.Status = models.RequestExpired
	f.requests[id] = r
	return nil
}

func (f *fakeRequestRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var moved int64
	for id, r := range f.requests {
		if r.Status == models.RequestPending && !now.Before(r.ExpiresAt) {
			r.Status = models.RequestExpired
			f.requests[id] = r
			moved++
		}
	}
	return moved, nil
}

func (f *fakeRequestRepo) EnsureIndexes() error { return nil }

// fakeWindowRepo is an in-memory AvailabilityRepository.
type fakeWindowRepo struct {
	mu      sync.Mutex
	windows []models.WeeklyWindow
}

func (f *fakeWindowRepo) GetWindowsForDay(_ context.Context, providerID string, weekday time.Weekday) ([]models.WeeklyWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WeeklyWindow
	for _, w := range f.windows {
		if w.ProviderID == providerID && w.Weekday == weekday {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (f *fakeWindowRepo) GetWeeklyTemplate(_ context.Context, providerID string) ([]models.WeeklyWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WeeklyWindow
	for _, w := range f.windows {
		if w.ProviderID == providerID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWindowRepo) ReplaceDayWindows(_ context.Context, providerID string, days map[time.Weekday][]models.WeeklyWindow) ([]models.WeeklyWindow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var kept, superseded []models.WeeklyWindow
	for _, w := range f.windows {
		if _, replaced := days[w.Weekday]; replaced && w.ProviderID == providerID {
			superseded = append(superseded, w)
			continue
		}
		kept = append(kept, w)
	}
	for _, ws := range days {
		kept = append(kept, ws...)
	}
	f.windows = kept
	return superseded, nil
}

func (f *fakeWindowRepo) EnsureIndexes() error { return nil }

// fakeAuditRepo records appended entries for assertions.
type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []models.AuditEntry
}

func (f *fakeAuditRepo) Append(_ context.Context, entry *models.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) ListByProvider(_ context.Context, providerID string, limit int64) ([]models.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.AuditEntry
	for _, e := range f.entries {
		if e.ProviderID == providerID {
			out = append(out, e)
		}
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeAuditRepo) EnsureIndexes() error { return nil }

// noopNotifier satisfies the notification interface without a queue.
type noopNotifier struct{}

func (noopNotifier) BookingCreated(context.Context, models.Booking) error { return nil }

func (noopNotifier) BookingStatusChanged(context.Context, models.Booking, string) error { return nil }

func (noopNotifier) RequestCreated(context.Context, models.BookingRequest) error { return nil }

func (noopNotifier) RequestResponded(context.Context, models.BookingRequest) error { return nil }
