package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type traceKey struct{}

// TraceMiddleware reuses an inbound X-Trace-ID or mints one, stores it on the
// request context and echoes it in the response.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), traceKey{}, traceID))
		c.Writer.Header().Set("X-Trace-ID", traceID)
		c.Next()
	}
}

// TraceID returns the trace id stored by TraceMiddleware, or "".
func TraceID(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}
