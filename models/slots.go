package models

// Slot statuses.
const (
	SlotBookable = "bookable"
	SlotBooked   = "booked"
)

// Slot is a concrete, date-specific time range derived from a template window,
// tagged bookable or booked.
type Slot struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Label    string   `json:"label"` // e.g. "09:00 - 10:00"
	Status   string   `json:"status"`
	Services []string `json:"services,omitempty"`
}

// DaySummary is the per-date calendar rollup.
type DaySummary struct {
	TotalSlots    int  `json:"totalSlots"`
	BookableCount int  `json:"bookableCount"`
	BookedCount   int  `json:"bookedCount"`
	IsAvailable   bool `json:"isAvailable"`
}
