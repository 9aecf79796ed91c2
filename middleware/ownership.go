package middleware

import (
	"context"
	"net/http"
	"time"

	auditRepo "companify/database/repository/audit"
	"companify/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OwnershipGate rejects cross-owner mutation attempts and records every
// violation on the audit trail. Ownership is enforced here, in the
// application layer, rather than by store-side procedures.
type OwnershipGate struct {
	Audit  auditRepo.AuditRepository
	Logger *zap.Logger
}

// NewOwnershipGate constructs the gate.
func NewOwnershipGate(audit auditRepo.AuditRepository, logger *zap.Logger) *OwnershipGate {
	return &OwnershipGate{Audit: audit, Logger: logger}
}

// RequireOwner aborts with 403 and audits the attempt when the authenticated
// actor is not the owner of the resource being mutated. Returns true when the
// request may proceed.
func (g *OwnershipGate) RequireOwner(c *gin.Context, ownerID string) bool {
	actor := ActorFromContext(c)
	if actor.ID == ownerID {
		return true
	}

	entry := &models.AuditEntry{
		ID:         uuid.New().String(),
		ProviderID: ownerID,
		Action:     models.AuditOwnershipViolated,
		NewData:    gin.H{"path": c.FullPath(), "method": c.Request.Method},
		ActorID:    actor.ID,
		Timestamp:  time.Now(),
		ClientIP:   getClientIP(c),
		UserAgent:  c.Request.UserAgent(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.Audit.Append(ctx, entry); err != nil {
		g.Logger.Error("failed to audit ownership violation",
			zap.String("actorID", actor.ID), zap.String("ownerID", ownerID), zap.Error(err))
	}
	g.Logger.Warn("ownership violation rejected",
		zap.String("actorID", actor.ID), zap.String("ownerID", ownerID), zap.String("path", c.FullPath()))

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not own this resource"})
	return false
}
