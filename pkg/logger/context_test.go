package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newEchoContext(req *http.Request) echo.Context {
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestFromContextPrefersScopedLogger(t *testing.T) {
	c := newEchoContext(httptest.NewRequest(http.MethodGet, "/", nil))
	scoped := zap.NewNop()
	c.Set("logger", scoped)

	assert.Same(t, scoped, FromContext(c))
}

func TestFromContextFallsBackToRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := log
	log = zap.New(core)
	defer func() { log = prev }()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDKey, "req-123")
	c := newEchoContext(req)

	FromContext(c).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-123", entries[0].ContextMap()["request_id"])
}

func TestFromContextUnknownRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := log
	log = zap.New(core)
	defer func() { log = prev }()

	c := newEchoContext(httptest.NewRequest(http.MethodGet, "/", nil))
	FromContext(c).Info("hello")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "unknown", entries[0].ContextMap()["request_id"])
}
