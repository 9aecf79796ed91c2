package handlers

import (
	"net/http"
	"time"

	auditRepo "companify/database/repository/audit"
	"companify/middleware"
	"companify/models"
	"companify/services/scheduling"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvailabilityHandler exposes slot generation and template management.
type AvailabilityHandler struct {
	Slots    *scheduling.SlotEngine
	Template *scheduling.TemplateService
	Audit    auditRepo.AuditRepository
	Gate     *middleware.OwnershipGate
	Logger   *zap.Logger
}

// NewAvailabilityHandler constructs an AvailabilityHandler.
func NewAvailabilityHandler(slots *scheduling.SlotEngine, template *scheduling.TemplateService, audit auditRepo.AuditRepository, gate *middleware.OwnershipGate, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Slots: slots, Template: template, Audit: audit, Gate: gate, Logger: logger}
}

// Availability handles GET /booking/availability/:providerId. With a date
// query it returns that day's slots, otherwise the rolling 7-day summary.
func (h *AvailabilityHandler) Availability(c *gin.Context) {
	providerID := c.Param("providerId")
	if date := c.Query("date"); date != "" {
		slots, err := h.Slots.GenerateDailySlots(c.Request.Context(), providerID, date)
		if err != nil {
			respondError(c, err)
			return
		}
		if slots == nil {
			slots = []models.Slot{}
		}
		c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
		return
	}

	today := time.Now()
	start := today.Format(models.DateLayout)
	end := today.AddDate(0, 0, 6).Format(models.DateLayout)
	summary, err := h.Slots.GenerateRangeSummary(c.Request.Context(), providerID, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"startDate": start, "endDate": end, "days": summary})
}

// DailySlots handles GET /booking/availability/:providerId/slots?date=.
func (h *AvailabilityHandler) DailySlots(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}
	slots, err := h.Slots.GenerateDailySlots(c.Request.Context(), c.Param("providerId"), date)
	if err != nil {
		respondError(c, err)
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots})
}

// WeeklyPattern handles GET /booking/availability/:providerId/weekly.
func (h *AvailabilityHandler) WeeklyPattern(c *gin.Context) {
	pattern, err := h.Slots.GenerateWeeklyPattern(c.Request.Context(), c.Param("providerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weekly": pattern})
}

// Calendar handles GET /booking/availability/:providerId/calendar?startDate&endDate.
func (h *AvailabilityHandler) Calendar(c *gin.Context) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "startDate and endDate query parameters are required"})
		return
	}
	summary, err := h.Slots.GenerateRangeSummary(c.Request.Context(), c.Param("providerId"), startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"startDate": startDate, "endDate": endDate, "days": summary})
}

// SetTemplate handles PUT /booking/availability/template. Providers mutate
// only their own template; the ownership gate audits anything else.
func (h *AvailabilityHandler) SetTemplate(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if actor.Role != scheduling.RoleProvider {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only providers manage availability templates"})
		return
	}

	var input models.SetTemplateRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.ProviderID != "" && !h.Gate.RequireOwner(c, input.ProviderID) {
		return
	}

	meta := models.RequestMeta{
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	windows, err := h.Template.SetWeeklyTemplate(c.Request.Context(), actor.ID, actor, input.Windows, meta)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

// TemplateAudit handles GET /booking/availability/template/audit, returning
// the provider's own audit trail.
func (h *AvailabilityHandler) TemplateAudit(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if actor.Role != scheduling.RoleProvider {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only providers read their audit trail"})
		return
	}
	entries, err := h.Audit.ListByProvider(c.Request.Context(), actor.ID, 100)
	if err != nil {
		h.Logger.Error("failed to list audit entries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
