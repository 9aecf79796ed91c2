package models

import "time"

// Booking statuses. Cancelled, completed and no_show are terminal.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingCompleted = "completed"
	BookingNoShow    = "no_show"
)

// Payment sub-statuses.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Meeting types.
const (
	MeetingInPerson = "in_person"
	MeetingVirtual  = "virtual"
)

// Booking represents a confirmed-or-pending reservation of a specific slot.
type Booking struct {
	ID            string    `bson:"id" json:"id"`
	ClientID      string    `bson:"client_id" json:"clientId"`
	ProviderID    string    `bson:"provider_id" json:"providerId"`
	Date          string    `bson:"date" json:"date"`   // "YYYY-MM-DD"
	Start         int       `bson:"start" json:"start"` // minutes from midnight
	End           int       `bson:"end" json:"end"`     // minutes from midnight
	DurationHours float64   `bson:"duration_hours" json:"durationHours"`
	Status        string    `bson:"status" json:"status"`
	PaymentStatus string    `bson:"payment_status" json:"paymentStatus"`
	MeetingType   string    `bson:"meeting_type" json:"meetingType"`
	Service       string    `bson:"service,omitempty" json:"service,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// Terminal reports whether the booking can no longer change status.
func (b Booking) Terminal() bool {
	switch b.Status {
	case BookingCancelled, BookingCompleted, BookingNoShow:
		return true
	}
	return false
}

// CreateBookingRequest is the wire shape for POST /booking/create.
type CreateBookingRequest struct {
	ProviderID  string `json:"providerId" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Start       string `json:"start" binding:"required"` // "HH:MM"
	End         string `json:"end" binding:"required"`   // "HH:MM"
	MeetingType string `json:"meetingType"`
	Service     string `json:"service"`
}

// TransitionRequest is the wire shape for PUT /booking/:id/status.
type TransitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// PaymentUpdateRequest is the wire shape for PUT /booking/:id/payment.
type PaymentUpdateRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}
