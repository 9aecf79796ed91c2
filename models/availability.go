package models

import "time"

// WeeklyWindow is one contiguous availability range within a weekday of a
// provider's recurring template.
type WeeklyWindow struct {
	ID         string       `bson:"id" json:"id"`
	ProviderID string       `bson:"provider_id" json:"providerId"`
	Weekday    time.Weekday `bson:"weekday" json:"weekday"`
	Start      int          `bson:"start" json:"start"` // minutes from midnight
	End        int          `bson:"end" json:"end"`     // minutes from midnight
	Available  bool         `bson:"available" json:"available"`
	Services   []string     `bson:"services,omitempty" json:"services,omitempty"`
	UpdatedAt  time.Time    `bson:"updated_at" json:"updatedAt"`
}

// WeeklyPattern groups a provider's template windows by weekday.
type WeeklyPattern map[time.Weekday][]WeeklyWindow

// WindowInput is the wire shape for one template window ("HH:MM" clock times).
type WindowInput struct {
	Weekday   int      `json:"weekday" binding:"min=0,max=6"`
	Start     string   `json:"start" binding:"required"`
	End       string   `json:"end" binding:"required"`
	Available *bool    `json:"available"`
	Services  []string `json:"services"`
}

// SetTemplateRequest replaces the template windows for the weekdays it
// mentions. ProviderID is optional and, when present, must match the
// authenticated provider.
type SetTemplateRequest struct {
	ProviderID string        `json:"providerId"`
	Windows    []WindowInput `json:"windows" binding:"required,min=1"`
}
