package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/connectd/billing/pkg/logctx"
	"github.com/connectd/billing/pkg/tool"
)

// TraceMiddleware assigns each request a trace id, honoring a client-supplied
// X-Request-ID. The id is stored in gin.Context and the request context, and
// mirrored onto the response so callers can correlate webhooks and API calls.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Request-ID")
		if traceID == "" {
			traceID = tool.GenerateTraceID()
		}

		c.Set(logctx.GinKeyTraceID, traceID)
		c.Request = c.Request.WithContext(logctx.WithTraceID(c.Request.Context(), traceID))
		c.Writer.Header().Set("X-Request-ID", traceID)

		c.Next()
	}
}
