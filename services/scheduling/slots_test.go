package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"companify/models"
)

func newSlotFixture() (*SlotEngine, *fakeWindowRepo, *fakeBookingRepo) {
	windows := &fakeWindowRepo{}
	bookings := newFakeBookingRepo()
	engine := &SlotEngine{
		Availability: windows,
		Bookings:     bookings,
		MaxRangeDays: 62,
		Now:          fixedNow,
	}
	return engine, windows, bookings
}

func mondayWindow(start, end int) models.WeeklyWindow {
	return models.WeeklyWindow{
		ID: "w1", ProviderID: "p1", Weekday: time.Monday,
		Start: start, End: end, Available: true,
	}
}

func TestGenerateDailySlotsSubtractsBookings(t *testing.T) {
	engine, windows, bookings := newSlotFixture()
	windows.windows = []models.WeeklyWindow{mondayWindow(540, 720)} // 09:00-12:00
	bookings.put(models.Booking{
		ID: "b1", ProviderID: "p1", Date: "2026-03-02",
		Start: 600, End: 660, Status: models.BookingConfirmed,
	})

	slots, err := engine.GenerateDailySlots(context.Background(), "p1", "2026-03-02")
	if err != nil {
		t.Fatalf("GenerateDailySlots returned error: %v", err)
	}

	want := []models.Slot{
		{Start: 540, End: 600, Label: "09:00 - 10:00", Status: models.SlotBookable},
		{Start: 600, End: 660, Label: "10:00 - 11:00", Status: models.SlotBooked},
		{Start: 660, End: 720, Label: "11:00 - 12:00", Status: models.SlotBookable},
	}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %+v", len(slots), len(want), slots)
	}
	for i, w := range want {
		got := slots[i]
		if got.Start != w.Start || got.End != w.End || got.Label != w.Label || got.Status != w.Status {
			t.Errorf("slot %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestGenerateDailySlotsCoalescesOverlappingBookings(t *testing.T) {
	engine, windows, bookings := newSlotFixture()
	windows.windows = []models.WeeklyWindow{mondayWindow(540, 720)}
	bookings.put(models.Booking{
		ID: "b1", ProviderID: "p1", Date: "2026-03-02",
		Start: 600, End: 660, Status: models.BookingConfirmed,
	})
	bookings.put(models.Booking{
		ID: "b2", ProviderID: "p1", Date: "2026-03-02",
		Start: 630, End: 690, Status: models.BookingPending,
	})

	slots, err := engine.GenerateDailySlots(context.Background(), "p1", "2026-03-02")
	if err != nil {
		t.Fatalf("GenerateDailySlots returned error: %v", err)
	}

	// Booked spans never double-count the overlapped stretch and bookable
	// gaps never intersect a booking.
	var bookedMins, bookableMins int
	prevEnd := 540
	for _, s := range slots {
		if s.Start < prevEnd {
			t.Errorf("slot %+v overlaps the previous slot", s)
		}
		prevEnd = s.End
		if s.Status == models.SlotBooked {
			bookedMins += s.End - s.Start
		} else {
			bookableMins += s.End - s.Start
		}
	}
	if bookedMins != 90 {
		t.Errorf("booked minutes = %d, want 90", bookedMins)
	}
	if bookableMins != 90 {
		t.Errorf("bookable minutes = %d, want 90", bookableMins)
	}
}

func TestGenerateDailySlotsEmptyForUnknownProvider(t *testing.T) {
	engine, _, _ := newSlotFixture()
	slots, err := engine.GenerateDailySlots(context.Background(), "nobody", "2026-03-02")
	if err != nil {
		t.Fatalf("expected no error for unknown provider, got %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("expected no slots, got %+v", slots)
	}
}

func TestGenerateDailySlotsSkipsDisabledWindows(t *testing.T) {
	engine, windows, _ := newSlotFixture()
	w := mondayWindow(540, 720)
	w.Available = false
	windows.windows = []models.WeeklyWindow{w}

	slots, err := engine.GenerateDailySlots(context.Background(), "p1", "2026-03-02")
	if err != nil {
		t.Fatalf("GenerateDailySlots returned error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("disabled window should yield no slots, got %+v", slots)
	}
}

func TestGenerateDailySlotsInvalidDate(t *testing.T) {
	engine, _, _ := newSlotFixture()
	_, err := engine.GenerateDailySlots(context.Background(), "p1", "03/02/2026")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestGenerateRangeSummaryAgreesWithDailySlots(t *testing.T) {
	engine, windows, bookings := newSlotFixture()
	windows.windows = []models.WeeklyWindow{mondayWindow(540, 720)}
	bookings.put(models.Booking{
		ID: "b1", ProviderID: "p1", Date: "2026-03-02",
		Start: 540, End: 720, Status: models.BookingConfirmed,
	})

	summary, err := engine.GenerateRangeSummary(context.Background(), "p1", "2026-03-02", "2026-03-04")
	if err != nil {
		t.Fatalf("GenerateRangeSummary returned error: %v", err)
	}
	if len(summary) != 3 {
		t.Fatalf("expected 3 days, got %d", len(summary))
	}

	// Monday is fully booked: one booked slot, nothing bookable.
	mon := summary["2026-03-02"]
	if mon.TotalSlots != 1 || mon.BookedCount != 1 || mon.BookableCount != 0 {
		t.Errorf("monday summary = %+v", mon)
	}
	if mon.IsAvailable {
		t.Error("a fully booked day must not report available")
	}

	// Tuesday and Wednesday have no template windows.
	for _, date := range []string{"2026-03-03", "2026-03-04"} {
		day := summary[date]
		if day.TotalSlots != 0 || day.IsAvailable {
			t.Errorf("%s summary = %+v, want empty and unavailable", date, day)
		}
	}

	// Each day's counts equal what the daily generator reports.
	for date, day := range summary {
		slots, err := engine.GenerateDailySlots(context.Background(), "p1", date)
		if err != nil {
			t.Fatalf("GenerateDailySlots(%s) returned error: %v", date, err)
		}
		if day.TotalSlots != len(slots) {
			t.Errorf("%s: summary counts %d slots, daily generator returns %d", date, day.TotalSlots, len(slots))
		}
	}
}

func TestGenerateRangeSummaryValidation(t *testing.T) {
	engine, _, _ := newSlotFixture()

	if _, err := engine.GenerateRangeSummary(context.Background(), "p1", "2026-03-04", "2026-03-02"); err == nil {
		t.Error("expected error when endDate precedes startDate")
	}
	if _, err := engine.GenerateRangeSummary(context.Background(), "p1", "2026-03-02", "2026-06-01"); err == nil {
		t.Error("expected error for a range wider than the cap")
	}
	var vErr *ValidationError
	_, err := engine.GenerateRangeSummary(context.Background(), "p1", "bad", "2026-03-02")
	if !errors.As(err, &vErr) {
		t.Errorf("expected ValidationError for a bad start date, got %v", err)
	}
}

func TestGenerateWeeklyPattern(t *testing.T) {
	engine, windows, _ := newSlotFixture()
	windows.windows = []models.WeeklyWindow{
		{ID: "w2", ProviderID: "p1", Weekday: time.Monday, Start: 780, End: 900, Available: true},
		{ID: "w1", ProviderID: "p1", Weekday: time.Monday, Start: 540, End: 720, Available: true},
		{ID: "w3", ProviderID: "p1", Weekday: time.Friday, Start: 600, End: 660, Available: false},
	}

	pattern, err := engine.GenerateWeeklyPattern(context.Background(), "p1")
	if err != nil {
		t.Fatalf("GenerateWeeklyPattern returned error: %v", err)
	}
	if len(pattern) != 2 {
		t.Fatalf("expected 2 weekdays, got %d", len(pattern))
	}
	mon := pattern[time.Monday]
	if len(mon) != 2 || mon[0].Start != 540 || mon[1].Start != 780 {
		t.Errorf("monday windows not sorted by start: %+v", mon)
	}
	if len(pattern[time.Friday]) != 1 {
		t.Errorf("friday windows = %+v", pattern[time.Friday])
	}
}
