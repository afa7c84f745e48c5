package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EchoKey is the echo.Context key holding the request-scoped logger
const EchoKey = "logger"

type ctxKey struct{}

// WithLogger stores l in ctx for code that only sees a context.Context
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger set by the request id middleware, then the one carried
// by the request context, then the global logger.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get(EchoKey).(*zap.Logger); ok {
		return l
	}
	return FromGoContext(c.Request().Context())
}

// FromGoContext returns the logger stored by WithLogger, or the global one
func FromGoContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return GetLogger()
}
