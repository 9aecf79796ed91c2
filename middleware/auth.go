package middleware

import (
	"net/http"
	"strings"

	"companify/services/scheduling"
	"companify/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxActorID   = "actorID"
	ctxActorRole = "actorRole"
)

// AuthMiddleware parses the bearer token into the actor identity used by the
// scheduling engine. Token issuance happens elsewhere; this only consumes it.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		id, role, err := utils.ExtractActorFromToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		if role != scheduling.RoleClient && role != scheduling.RoleProvider {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown actor role"})
			return
		}

		c.Set(ctxActorID, id)
		c.Set(ctxActorRole, role)
		c.Next()
	}
}

// ActorFromContext returns the authenticated actor for the request.
func ActorFromContext(c *gin.Context) scheduling.Actor {
	return scheduling.Actor{
		ID:   c.GetString(ctxActorID),
		Role: c.GetString(ctxActorRole),
	}
}
