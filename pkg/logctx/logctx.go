package logctx

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gin context keys shared with the HTTP middleware.
const (
	GinKeyLogger  = "logger"
	GinKeyTraceID = "traceID"
)

type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeyTraceID
)

// WithLogger stores a request-scoped logger in the context.
func WithLogger(ctx context.Context, log *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, log)
}

// WithTraceID stores the request trace id in the context.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, ctxKeyTraceID, traceID)
}

// TraceID returns the trace id stored in the context, or "".
func TraceID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	tid, _ := ctx.Value(ctxKeyTraceID).(string)
	return tid
}

// FromGin returns the request-scoped logger from gin.Context if present,
// otherwise falls back to the context-based lookup.
func FromGin(c *gin.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if c == nil {
		return base
	}
	if l, ok := c.Get(GinKeyLogger); ok {
		if lg, ok := l.(*zap.SugaredLogger); ok && lg != nil {
			return lg
		}
	}
	return FromCtx(c.Request.Context(), base)
}

// FromCtx returns the logger stored in ctx if set, otherwise enriches base
// with the trace id when one is present.
func FromCtx(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	if ctx == nil {
		return base
	}
	if lg, ok := ctx.Value(ctxKeyLogger).(*zap.SugaredLogger); ok && lg != nil {
		return lg
	}
	if tid := TraceID(ctx); tid != "" && base != nil {
		return base.With("trace_id", tid)
	}
	return base
}
