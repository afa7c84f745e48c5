package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	c := qt.New(t)

	c.Assert(ParseLevel("debug"), qt.Equals, zapcore.DebugLevel)
	c.Assert(ParseLevel("warn"), qt.Equals, zapcore.WarnLevel)
	c.Assert(ParseLevel("error"), qt.Equals, zapcore.ErrorLevel)
	c.Assert(ParseLevel("verbose"), qt.Equals, zapcore.InfoLevel)
}

func TestFromContextPrefersEchoLogger(t *testing.T) {
	c := qt.New(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := e.NewContext(req, httptest.NewRecorder())

	c.Assert(FromContext(ctx), qt.Equals, GetLogger())

	fromGo := zap.NewNop()
	ctx.SetRequest(req.WithContext(WithLogger(req.Context(), fromGo)))
	c.Assert(FromContext(ctx), qt.Equals, fromGo)

	fromEcho := zap.NewExample()
	ctx.Set(EchoKey, fromEcho)
	c.Assert(FromContext(ctx), qt.Equals, fromEcho)
}

func TestFromGoContext(t *testing.T) {
	c := qt.New(t)

	l := zap.NewNop()
	c.Assert(FromGoContext(WithLogger(context.Background(), l)), qt.Equals, l)
	c.Assert(FromGoContext(context.Background()), qt.Equals, GetLogger())
}

func TestMiddlewareLogsRequest(t *testing.T) {
	c := qt.New(t)

	core, logs := observer.New(zapcore.InfoLevel)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/Products", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.Set(EchoKey, zap.New(core))

	h := Middleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	c.Assert(h(ctx), qt.IsNil)

	entries := logs.FilterMessage("HTTP Request").All()
	c.Assert(entries, qt.HasLen, 1)
	c.Assert(entries[0].ContextMap()["path"], qt.Equals, "/Products")
	c.Assert(entries[0].ContextMap()["status"], qt.Equals, int64(http.StatusNoContent))
}
