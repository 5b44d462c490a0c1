package logger

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestIDKey is the header and echo context key carrying the request id.
// The request-id middleware reads and writes it; declared here so both
// packages share one definition.
const RequestIDKey = "X-Request-ID"

// FromContext returns the request-scoped logger set by Middleware. When none
// is present it falls back to the global logger tagged with whatever request
// id the context or headers carry.
func FromContext(c echo.Context) *zap.Logger {
	if l, ok := c.Get("logger").(*zap.Logger); ok {
		return l
	}

	requestID, ok := c.Get(RequestIDKey).(string)
	if !ok {
		requestID = c.Request().Header.Get(RequestIDKey)
	}
	if requestID == "" {
		requestID = "unknown"
	}

	return GetLogger().With(zap.String("request_id", requestID))
}
