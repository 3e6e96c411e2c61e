package middleware

import (
	"github.com/gin-gonic/gin"

	ierr "github.com/signalforge/signalforge/internal/errors"
)

// ErrorHandlerMiddleware renders errors recorded via c.Error as the
// standard error response. Handlers that already wrote a body are left
// alone.
func ErrorHandlerMiddleware(c *gin.Context) {
	c.Next()

	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	err := c.Errors.Last().Err
	c.JSON(ierr.HTTPStatusFromErr(err), ierr.NewErrorResponse(err))
}
