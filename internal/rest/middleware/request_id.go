package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/signalforge/signalforge/internal/types"
)

// RequestIDMiddleware attaches a request id to the context, reusing the
// caller's X-Request-ID when present.
func RequestIDMiddleware(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_REQUEST)
	}

	ctx := context.WithValue(c.Request.Context(), types.CtxRequestID, requestID)
	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Request-ID", requestID)
	c.Next()
}
