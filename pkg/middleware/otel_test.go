package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/strand-dev/strand/pkg/server"
)

func TestOpenTelemetryPassesThrough(t *testing.T) {
	mw := OpenTelemetry()

	called := false
	err := mw.Handle(metricsCtx("/x"), func() error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !called {
		t.Error("next was not called")
	}
}

func TestOpenTelemetryPropagatesError(t *testing.T) {
	mw := OpenTelemetry()

	boom := errors.New("boom")
	if err := mw.Handle(metricsCtx("/x"), func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Handle() error = %v, want %v", err, boom)
	}
}

func TestOpenTelemetryFilter(t *testing.T) {
	mw := OpenTelemetry(WithRequestFilter(func(ctx *server.Ctx) bool {
		return ctx.Path() != "/healthz"
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	ctx := server.NewCtx(req, make(http.Header), nil, nil)

	called := false
	if err := mw.Handle(ctx, func() error { called = true; return nil }); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !called {
		t.Error("filtered request never reached next")
	}
}
