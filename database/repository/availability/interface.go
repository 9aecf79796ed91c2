package availabilityRepo

import (
	"context"
	"time"

	"companify/models"
)

// AvailabilityRepository owns a provider's recurring weekly template.
type AvailabilityRepository interface {
	// GetWindowsForDay returns the template windows for one weekday,
	// ordered by start time.
	GetWindowsForDay(ctx context.Context, providerID string, weekday time.Weekday) ([]models.WeeklyWindow, error)
	// GetWeeklyTemplate returns every template window for the provider.
	GetWeeklyTemplate(ctx context.Context, providerID string) ([]models.WeeklyWindow, error)
	// ReplaceDayWindows atomically replaces all windows for the weekdays
	// present in the given set and returns the windows they superseded.
	ReplaceDayWindows(ctx context.Context, providerID string, days map[time.Weekday][]models.WeeklyWindow) ([]models.WeeklyWindow, error)
	EnsureIndexes() error
}
