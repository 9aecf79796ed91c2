package scheduling

import (
	"context"
	"sort"
	"time"

	availabilityRepo "companify/database/repository/availability"
	auditRepo "companify/database/repository/audit"
	"companify/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TemplateService validates and applies weekly-template mutations, recording
// each successful mutation on the audit trail.
type TemplateService struct {
	Windows availabilityRepo.AvailabilityRepository
	Audit   auditRepo.AuditRepository
	Now     func() time.Time
	Logger  *zap.Logger
}

func (s *TemplateService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SetWeeklyTemplate replaces the provider's windows for every weekday named
// in the input, atomically per mutation: overlapping windows on the same
// weekday are rejected before any write, and the store swap is transactional
// so a partial state is never visible.
func (s *TemplateService) SetWeeklyTemplate(ctx context.Context, providerID string, actor Actor, inputs []models.WindowInput, meta models.RequestMeta) ([]models.WeeklyWindow, error) {
	if len(inputs) == 0 {
		return nil, NewValidationError("at least one window is required")
	}

	now := s.now()
	days := make(map[time.Weekday][]models.WeeklyWindow)
	for _, in := range inputs {
		if in.Weekday < 0 || in.Weekday > 6 {
			return nil, NewValidationError("weekday %d out of range", in.Weekday)
		}
		start, err := models.ParseClock(in.Start)
		if err != nil {
			return nil, NewValidationError("%v", err)
		}
		end, err := models.ParseClock(in.End)
		if err != nil {
			return nil, NewValidationError("%v", err)
		}
		if start >= end {
			return nil, NewValidationError("window %s-%s: start must precede end", in.Start, in.End)
		}
		available := true
		if in.Available != nil {
			available = *in.Available
		}
		wd := time.Weekday(in.Weekday)
		days[wd] = append(days[wd], models.WeeklyWindow{
			ID:         uuid.New().String(),
			ProviderID: providerID,
			Weekday:    wd,
			Start:      start,
			End:        end,
			Available:  available,
			Services:   in.Services,
			UpdatedAt:  now,
		})
	}

	// Reject overlapping windows within each weekday before touching the store.
	for wd, windows := range days {
		sort.Slice(windows, func(i, j int) bool { return windows[i].Start < windows[j].Start })
		for i := 1; i < len(windows); i++ {
			if windows[i].Start < windows[i-1].End {
				return nil, NewValidationError("%s windows %s-%s and %s-%s overlap",
					wd,
					models.FormatClock(windows[i-1].Start), models.FormatClock(windows[i-1].End),
					models.FormatClock(windows[i].Start), models.FormatClock(windows[i].End))
			}
		}
		days[wd] = windows
	}

	superseded, err := s.Windows.ReplaceDayWindows(ctx, providerID, days)
	if err != nil {
		return nil, err
	}

	var applied []models.WeeklyWindow
	for _, windows := range days {
		applied = append(applied, windows...)
	}
	sort.Slice(applied, func(i, j int) bool {
		if applied[i].Weekday != applied[j].Weekday {
			return applied[i].Weekday < applied[j].Weekday
		}
		return applied[i].Start < applied[j].Start
	})

	entry := &models.AuditEntry{
		ID:         uuid.New().String(),
		ProviderID: providerID,
		Action:     models.AuditTemplateUpdated,
		OldData:    superseded,
		NewData:    applied,
		ActorID:    actor.ID,
		Timestamp:  now,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
	}
	if err := s.Audit.Append(ctx, entry); err != nil {
		// The mutation committed; a lost audit row is logged loudly rather
		// than unwinding the template change.
		s.Logger.Error("failed to append template audit entry",
			zap.String("providerID", providerID), zap.Error(err))
	}

	return applied, nil
}
