package handlers

import (
	"net/http"

	"companify/middleware"
	"companify/models"
	"companify/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestHandler exposes the booking-request negotiation workflow.
type RequestHandler struct {
	Engine *scheduling.NegotiationEngine
	Logger *zap.Logger
}

// NewRequestHandler constructs a RequestHandler.
func NewRequestHandler(engine *scheduling.NegotiationEngine, logger *zap.Logger) *RequestHandler {
	return &RequestHandler{Engine: engine, Logger: logger}
}

// CreateRequest handles POST /booking/requests/create.
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var input models.CreateRequestInput
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
	req, err := h.Engine.CreateRequest(c.Request.Context(), scheduling.CreateRequestParams{
		ClientID:   actor.ID,
		ProviderID: input.ProviderID,
		Date:       input.Date,
		Start:      start,
		End:        end,
		Note:       input.Note,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": req})
}

// MyRequests handles GET /booking/requests/my-requests.
func (h *RequestHandler) MyRequests(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	reqs, err := h.Engine.ListForActor(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	if reqs == nil {
		reqs = []models.BookingRequest{}
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// Respond handles PUT /booking/requests/:id/status.
func (h *RequestHandler) Respond(c *gin.Context) {
	var input models.RespondRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	var counter *models.CounterOffer
	if input.Counter != nil {
		start, err := models.ParseClock(input.Counter.Start)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		end, err := models.ParseClock(input.Counter.End)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}
		counter = &models.CounterOffer{
			Date:    input.Counter.Date,
			Start:   start,
			End:     end,
			Message: input.Counter.Message,
		}
	}

	actor := middleware.ActorFromContext(c)
	if actor.Role != scheduling.RoleProvider {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only providers respond to booking requests"})
		return
	}
	req, err := h.Engine.Respond(c.Request.Context(), c.Param("id"), actor.ID, input.Decision, counter, input.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req})
}

// ConfirmCounter handles PUT /booking/requests/:id/confirm.
func (h *RequestHandler) ConfirmCounter(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if actor.Role != scheduling.RoleClient {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only clients confirm counter-offers"})
		return
	}

	req, booking, err := h.Engine.ConfirmCounter(c.Request.Context(), c.Param("id"), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"request": req, "booking": booking})
}
