// Package api maps HTTP requests onto the service layer.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/validation"
)

// respondError writes the response for a service error. Field errors become
// {"field": ["message"]}, everything else {"errors": "message"}.
func respondError(c *gin.Context, err error) {
	if verrs, ok := service.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, verrs.Fields())
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrConflict):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		logging.Ctx(c.Request.Context()).Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(status, gin.H{"errors": "Internal Server Error"})
		return
	}
	c.JSON(status, gin.H{"errors": err.Error()})
}

// bindJSON decodes and validates the request body into req. It writes the
// 400 response itself and returns false when the body is unusable.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	if verrs, ok := service.AsValidation(validation.Translate(err)); ok {
		c.JSON(http.StatusBadRequest, verrs.Fields())
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": "Malformed request body."})
	return false
}

// idParam parses the :id path segment
func idParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": "Invalid id."})
		return uuid.Nil, false
	}
	return id, true
}
