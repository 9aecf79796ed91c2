package handlers

import (
	"errors"
	"net/http"

	"companify/services/scheduling"
	"companify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError maps the scheduling error taxonomy onto HTTP statuses:
// validation 400, conflict 409, authorization 403, not-found 404, illegal
// transition 409. Anything else is an unexpected store failure and surfaces
// as 500.
func respondError(c *gin.Context, err error) {
	var (
		vErr *scheduling.ValidationError
		cErr *scheduling.ConflictError
		aErr *scheduling.AuthorizationError
		nErr *scheduling.NotFoundError
		tErr *scheduling.IllegalTransitionError
	)
	switch {
	case errors.As(err, &vErr):
		utils.JSONError(c, http.StatusBadRequest, "Invalid request", vErr.Message)
	case errors.As(err, &cErr):
		utils.JSONError(c, http.StatusConflict, "Slot no longer available", cErr.Message)
	case errors.As(err, &aErr):
		utils.JSONError(c, http.StatusForbidden, "Not permitted", aErr.Message)
	case errors.As(err, &nErr):
		utils.JSONError(c, http.StatusNotFound, "Not found", nErr.Error())
	case errors.As(err, &tErr):
		utils.JSONError(c, http.StatusConflict, "Illegal state transition", tErr.Error())
	default:
		utils.GetLogger().Error("unexpected engine error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
