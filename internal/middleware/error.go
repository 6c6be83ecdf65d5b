package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/logging"
)

// ErrorResponse is the body written for unexpected failures
type ErrorResponse struct {
	Errors string `json:"errors"`
}

// Recovery turns panics into a logged 500 with a JSON body
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logging.Ctx(c.Request.Context()).Error().
					Interface("panic", err).
					Str("stack", string(debug.Stack())).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				if !c.Writer.Written() {
					c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Errors: "Internal Server Error"})
					return
				}
				c.Abort()
			}
		}()
		c.Next()
	}
}

// NoRoute answers unknown paths in the API's error shape
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{Errors: "Not found."})
}
