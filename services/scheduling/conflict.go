package scheduling

import (
	"context"

	bookingRepo "companify/database/repository/booking"
	"companify/models"
)

// BlockingStatuses are the booking statuses that consume a slot. Cancelled,
// completed and no_show bookings never block.
var BlockingStatuses = []string{models.BookingPending, models.BookingConfirmed}

// Overlaps reports whether two half-open intervals [aStart,aEnd) and
// [bStart,bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// ConflictResolver answers whether a candidate window collides with an
// existing blocking booking. The same predicate runs inside the reservation
// transaction; this service-level check is advisory and must not be relied on
// for the final reservation decision.
type ConflictResolver struct {
	Bookings bookingRepo.BookingRepository
}

// HasConflict reports whether any pending or confirmed booking for the
// provider and date overlaps [start,end).
func (r *ConflictResolver) HasConflict(ctx context.Context, providerID, date string, start, end int) (bool, error) {
	n, err := r.Bookings.CountOverlapping(ctx, providerID, date, start, end, BlockingStatuses)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
