package scheduling

import (
	"context"
	"fmt"
	"sort"
	"time"

	availabilityRepo "companify/database/repository/availability"
	bookingRepo "companify/database/repository/booking"
	"companify/models"
)

// SlotEngine derives concrete, date-specific bookable slots from a provider's
// recurring weekly template and the bookings already on the calendar.
type SlotEngine struct {
	Availability availabilityRepo.AvailabilityRepository
	Bookings     bookingRepo.BookingRepository
	MaxRangeDays int
	Now          func() time.Time
}

func (se *SlotEngine) now() time.Time {
	if se.Now != nil {
		return se.Now()
	}
	return time.Now()
}

// GenerateDailySlots returns the bookable/booked slots for one provider and
// date, ordered by start time. An unknown provider or a disabled day yields
// an empty result, not an error.
func (se *SlotEngine) GenerateDailySlots(ctx context.Context, providerID, date string) ([]models.Slot, error) {
	day, err := models.ParseDate(date, se.now().Location())
	if err != nil {
		return nil, NewValidationError("%v", err)
	}

	windows, err := se.Availability.GetWindowsForDay(ctx, providerID, day.Weekday())
	if err != nil {
		return nil, fmt.Errorf("fetching template windows: %w", err)
	}

	var open []models.WeeklyWindow
	for _, w := range windows {
		if w.Available {
			open = append(open, w)
		}
	}
	if len(open) == 0 {
		return nil, nil
	}

	bookings, err := se.Bookings.ListForProviderDate(ctx, providerID, date, BlockingStatuses)
	if err != nil {
		return nil, fmt.Errorf("fetching bookings: %w", err)
	}

	var slots []models.Slot
	for _, w := range open {
		slots = append(slots, subtractBookings(w, bookings)...)
	}
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Start < slots[j].Start
	})
	return slots, nil
}

// subtractBookings splits one template window into bookable and booked
// sub-ranges. Sub-ranges may be unequal lengths; no minimum duration is
// imposed.
func subtractBookings(w models.WeeklyWindow, bookings []models.Booking) []models.Slot {
	// Clip overlapping bookings to the window bounds.
	type span struct{ start, end int }
	var taken []span
	for _, b := range bookings {
		if !Overlaps(w.Start, w.End, b.Start, b.End) {
			continue
		}
		s := b.Start
		if s < w.Start {
			s = w.Start
		}
		e := b.End
		if e > w.End {
			e = w.End
		}
		taken = append(taken, span{s, e})
	}
	sort.Slice(taken, func(i, j int) bool { return taken[i].start < taken[j].start })

	mkSlot := func(start, end int, status string) models.Slot {
		return models.Slot{
			Start:    start,
			End:      end,
			Label:    models.FormatClock(start) + " - " + models.FormatClock(end),
			Status:   status,
			Services: w.Services,
		}
	}

	var out []models.Slot
	cursor := w.Start
	for _, t := range taken {
		if t.start > cursor {
			out = append(out, mkSlot(cursor, t.start, models.SlotBookable))
		}
		// Coalesce bookings that overlap each other.
		if t.end > cursor {
			bookedStart := t.start
			if bookedStart < cursor {
				bookedStart = cursor
			}
			out = append(out, mkSlot(bookedStart, t.end, models.SlotBooked))
			cursor = t.end
		}
	}
	if cursor < w.End {
		out = append(out, mkSlot(cursor, w.End, models.SlotBookable))
	}
	return out
}

// GenerateRangeSummary aggregates per-date slot counts over an inclusive date
// range. Results agree exactly with GenerateDailySlots for each date.
func (se *SlotEngine) GenerateRangeSummary(ctx context.Context, providerID, startDate, endDate string) (map[string]models.DaySummary, error) {
	loc := se.now().Location()
	start, err := models.ParseDate(startDate, loc)
	if err != nil {
		return nil, NewValidationError("%v", err)
	}
	end, err := models.ParseDate(endDate, loc)
	if err != nil {
		return nil, NewValidationError("%v", err)
	}
	if end.Before(start) {
		return nil, NewValidationError("endDate %s precedes startDate %s", endDate, startDate)
	}
	maxDays := se.MaxRangeDays
	if maxDays <= 0 {
		maxDays = 62
	}
	if int(end.Sub(start).Hours()/24) >= maxDays {
		return nil, NewValidationError("date range wider than %d days", maxDays)
	}

	summary := make(map[string]models.DaySummary)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format(models.DateLayout)
		slots, err := se.GenerateDailySlots(ctx, providerID, dateStr)
		if err != nil {
			return nil, err
		}
		var s models.DaySummary
		for _, slot := range slots {
			s.TotalSlots++
			if slot.Status == models.SlotBooked {
				s.BookedCount++
			} else {
				s.BookableCount++
			}
		}
		s.IsAvailable = s.BookableCount > 0
		summary[dateStr] = s
	}
	return summary, nil
}

// GenerateWeeklyPattern projects the raw template grouped by weekday. It does
// not consult bookings.
func (se *SlotEngine) GenerateWeeklyPattern(ctx context.Context, providerID string) (models.WeeklyPattern, error) {
	windows, err := se.Availability.GetWeeklyTemplate(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("fetching weekly template: %w", err)
	}
	pattern := make(models.WeeklyPattern)
	for _, w := range windows {
		pattern[w.Weekday] = append(pattern[w.Weekday], w)
	}
	for wd := range pattern {
		ws := pattern[wd]
		sort.Slice(ws, func(i, j int) bool { return ws[i].Start < ws[j].Start })
		pattern[wd] = ws
	}
	return pattern, nil
}
