package handlers

import (
	"net/http"

	"companify/middleware"
	"companify/models"
	"companify/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking lifecycle over HTTP.
type BookingHandler struct {
	Engine *scheduling.BookingEngine
	Logger *zap.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(engine *scheduling.BookingEngine, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Engine: engine, Logger: logger}
}

// CreateBooking handles POST /booking/create.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input models.CreateBookingRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	start, err := models.ParseClock(input.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	end, err := models.ParseClock(input.End)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	actor := middleware.ActorFromContext(c)
	booking, err := h.Engine.CreateBooking(c.Request.Context(), scheduling.CreateBookingParams{
		ClientID:    actor.ID,
		ProviderID:  input.ProviderID,
		Date:        input.Date,
		Start:       start,
		End:         end,
		MeetingType: input.MeetingType,
		Service:     input.Service,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"booking": booking})
}

// MyBookings handles GET /booking/my-bookings.
func (h *BookingHandler) MyBookings(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	bookings, err := h.Engine.ListForActor(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// Transition handles PUT /booking/:id/status.
func (h *BookingHandler) Transition(c *gin.Context) {
	var input models.TransitionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	actor := middleware.ActorFromContext(c)
	booking, err := h.Engine.Transition(c.Request.Context(), c.Param("id"), actor, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// MarkPayment handles PUT /booking/:id/payment.
func (h *BookingHandler) MarkPayment(c *gin.Context) {
	var input models.PaymentUpdateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	actor := middleware.ActorFromContext(c)
	booking, err := h.Engine.MarkPayment(c.Request.Context(), c.Param("id"), actor, input.PaymentStatus)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"booking": booking})
}
