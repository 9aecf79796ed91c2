package models

import "time"

// BookingRequest statuses. Accepted, rejected and expired are terminal,
// except that an accepted request with a counter-offer still awaits the
// client's confirmation before a booking materializes.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
	RequestExpired  = "expired"
)

// CounterOffer is a provider-suggested alternative window on a booking request.
type CounterOffer struct {
	Date    string `bson:"date" json:"date"`
	Start   int    `bson:"start" json:"start"`
	End     int    `bson:"end" json:"end"`
	Message string `bson:"message,omitempty" json:"message,omitempty"`
}

// BookingRequest is the negotiation record used when no bookable slot fits.
type BookingRequest struct {
	ID                 string        `bson:"id" json:"id"`
	ClientID           string        `bson:"client_id" json:"clientId"`
	ProviderID         string        `bson:"provider_id" json:"providerId"`
	Date               string        `bson:"date" json:"date"`
	Start              int           `bson:"start" json:"start"`
	End                int           `bson:"end" json:"end"`
	DurationHours      float64       `bson:"duration_hours" json:"durationHours"`
	Note               string        `bson:"note,omitempty" json:"note,omitempty"`
	Status             string        `bson:"status" json:"status"`
	Counter            *CounterOffer `bson:"counter,omitempty" json:"counter,omitempty"`
	RejectReason       string        `bson:"reject_reason,omitempty" json:"rejectReason,omitempty"`
	ResultingBookingID string        `bson:"resulting_booking_id,omitempty" json:"resultingBookingId,omitempty"`
	ExpiresAt          time.Time     `bson:"expires_at" json:"expiresAt"`
	CreatedAt          time.Time     `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updated_at" json:"updatedAt"`
}

// CreateRequestInput is the wire shape for POST /booking/requests/create.
type CreateRequestInput struct {
	ProviderID string `json:"providerId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	Start      string `json:"start" binding:"required"` // "HH:MM"
	End        string `json:"end" binding:"required"`   // "HH:MM"
	Note       string `json:"note"`
}

// RespondRequestInput is the wire shape for PUT /booking/requests/:id/status.
type RespondRequestInput struct {
	Decision string `json:"decision" binding:"required"` // "accept" or "reject"
	Reason   string `json:"reason"`
	Counter  *struct {
		Date    string `json:"date" binding:"required"`
		Start   string `json:"start" binding:"required"`
		End     string `json:"end" binding:"required"`
		Message string `json:"message"`
	} `json:"counter"`
}
