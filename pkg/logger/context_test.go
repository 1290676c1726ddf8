package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromEchoIsUsableBeforeInit(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	got := FromEcho(c)
	require.NotNil(t, got)
	got.Info("must not panic")
}

func TestMiddlewareScopesLoggerToRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := log
	log = zap.New(core)
	defer func() { log = prev }()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/acme/leads", nil)
	req.Header.Set("X-Request-ID", "req-1")
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("tenant")
	c.SetParamValues("acme")

	handler := Middleware()(func(c echo.Context) error {
		FromEcho(c).Info("handling")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	entries := logs.All()
	require.NotEmpty(t, entries)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "acme", fields["tenant"])
}

func TestMiddlewareOmitsTenantOffTenantRoutes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := log
	log = zap.New(core)
	defer func() { log = prev }()

	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), httptest.NewRecorder())

	handler := Middleware()(func(c echo.Context) error {
		FromEcho(c).Info("handling")
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, handler(c))

	entries := logs.All()
	require.NotEmpty(t, entries)
	_, hasTenant := entries[0].ContextMap()["tenant"]
	assert.False(t, hasTenant)
}
