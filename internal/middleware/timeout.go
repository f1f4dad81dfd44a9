package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"sigo-api/internal/models"
)

// TimeoutMiddleware puts a deadline on the request context. Handlers see it
// through c.Request.Context(); if one runs out without answering, the client
// gets a 504.
func TimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, models.ErrorResponse{
				Error: "Request timed out",
				Code:  "timeout",
			})
		}
	}
}
