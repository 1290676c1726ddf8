package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// EchoKey is the echo context key the request-scoped logger is stored
// under. RequestID and Middleware both write it; handlers read it through
// FromEcho.
const EchoKey = "logger"

// FromContext retrieves the logger from a plain context, falling back to
// the global logger
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger
	}
	return GetLogger()
}

// WithContext stores the logger in a plain context
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromEcho retrieves the request-scoped logger set by the middleware chain.
// The returned logger carries the request id and, on tenant-scoped routes,
// the tenant slug. Always usable, even before InitLogger has run.
func FromEcho(c echo.Context) *zap.Logger {
	if logger, ok := c.Get(EchoKey).(*zap.Logger); ok {
		return logger
	}
	return GetLogger()
}
