package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/connectd/billing/pkg/logctx"
)

// RequestLoggerMiddleware attaches a request-scoped logger enriched with the
// trace id to gin.Context and the request context. Runs after TraceMiddleware.
func RequestLoggerMiddleware(base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLogger := base
		if tid := c.GetString(logctx.GinKeyTraceID); tid != "" {
			reqLogger = base.With("trace_id", tid)
		}

		c.Set(logctx.GinKeyLogger, reqLogger)
		c.Request = c.Request.WithContext(logctx.WithLogger(c.Request.Context(), reqLogger))

		c.Next()
	}
}
