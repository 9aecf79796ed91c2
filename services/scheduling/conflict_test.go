package scheduling

import (
	"context"
	"testing"

	"companify/models"
)

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{"identical", 600, 660, 600, 660, true},
		{"contained", 600, 720, 630, 660, true},
		{"partial left", 600, 660, 630, 720, true},
		{"partial right", 630, 720, 600, 660, true},
		{"touching end to start", 600, 660, 660, 720, false},
		{"touching start to end", 660, 720, 600, 660, false},
		{"disjoint", 540, 600, 660, 720, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.aStart, tc.aEnd, tc.bStart, tc.bEnd); got != tc.want {
				t.Errorf("Overlaps(%d,%d,%d,%d) = %v, want %v", tc.aStart, tc.aEnd, tc.bStart, tc.bEnd, got, tc.want)
			}
		})
	}
}

func TestHasConflict(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.put(models.Booking{
		ID: "b1", ProviderID: "p1", Date: "2026-03-02",
		Start: 600, End: 660, Status: models.BookingConfirmed,
	})
	repo.put(models.Booking{
		ID: "b2", ProviderID: "p1", Date: "2026-03-02",
		Start: 720, End: 780, Status: models.BookingCancelled,
	})
	resolver := &ConflictResolver{Bookings: repo}

	got, err := resolver.HasConflict(context.Background(), "p1", "2026-03-02", 630, 690)
	if err != nil {
		t.Fatalf("HasConflict returned error: %v", err)
	}
	if !got {
		t.Error("expected conflict with confirmed booking 10:00-11:00")
	}

	// Cancelled bookings do not block.
	got, err = resolver.HasConflict(context.Background(), "p1", "2026-03-02", 720, 780)
	if err != nil {
		t.Fatalf("HasConflict returned error: %v", err)
	}
	if got {
		t.Error("cancelled booking should not block the slot")
	}

	// Adjacent windows do not conflict.
	got, err = resolver.HasConflict(context.Background(), "p1", "2026-03-02", 660, 720)
	if err != nil {
		t.Fatalf("HasConflict returned error: %v", err)
	}
	if got {
		t.Error("back-to-back windows should not conflict")
	}
}
