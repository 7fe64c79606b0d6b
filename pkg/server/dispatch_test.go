package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/strand-dev/strand/pkg/markup"
	"github.com/strand-dev/strand/pkg/render"
	"github.com/strand-dev/strand/pkg/routes"
)

func testManifest(t *testing.T, pathnames ...string) *routes.Manifest {
	t.Helper()
	var rs []routes.Route
	for _, p := range pathnames {
		r, err := compileTestRoute(p)
		if err != nil {
			t.Fatalf("compiling %q: %v", p, err)
		}
		rs = append(rs, r)
	}
	return routes.FromRoutes(rs)
}

// compileTestRoute converts router notation back to bracket notation and
// compiles it through the manifest builder's own path.
func compileTestRoute(pathname string) (routes.Route, error) {
	logical := pathname
	for {
		i := strings.Index(logical, "/:")
		if i == -1 {
			break
		}
		j := strings.IndexByte(logical[i+2:], '/')
		if j == -1 {
			logical = logical[:i+1] + "[" + logical[i+2:] + "]"
		} else {
			logical = logical[:i+1] + "[" + logical[i+2:i+2+j] + "]" + logical[i+2+j:]
		}
	}
	if i := strings.Index(logical, "/*"); i != -1 {
		logical = logical[:i+1] + "[..." + logical[i+2:] + "]"
	}

	name := strings.TrimPrefix(logical, "/")
	if name == "" {
		name = "index"
	}
	fsys := fstest.MapFS{
		name + ".go": &fstest.MapFile{Data: []byte("package p\n\nfunc HandlerPage() {}\n")},
	}

	built, err := routes.Build(fsys)
	if err != nil {
		return routes.Route{}, err
	}
	return built[0], nil
}

func TestDispatcherServesMatchedRoute(t *testing.T) {
	manifest := testManifest(t, "/blog/:slug")
	registry := NewRegistry()
	registry.Handle("/blog/:slug", func(ctx *Ctx) (*markup.Node, error) {
		return markup.Group(
			markup.Raw("<h1>"),
			markup.Text(ctx.Param("slug")),
			markup.Raw("</h1>"),
		), nil
	})

	d := NewDispatcher(manifest, registry)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/blog/hello", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "<h1>hello</h1>" {
		t.Errorf("body = %q", got)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestDispatcherNotFoundRoute(t *testing.T) {
	manifest := testManifest(t, "/", routes.NotFoundPathname)
	registry := NewRegistry()
	registry.Handle("/", func(ctx *Ctx) (*markup.Node, error) {
		return markup.Text("home"), nil
	})
	registry.Handle(routes.NotFoundPathname, func(ctx *Ctx) (*markup.Node, error) {
		return markup.Text("custom not found"), nil
	})

	d := NewDispatcher(manifest, registry)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "custom not found") {
		t.Errorf("body = %q, want the registered not-found page", rec.Body.String())
	}
}

func TestDispatcherFixedFallback(t *testing.T) {
	manifest := testManifest(t, "/")
	registry := NewRegistry()
	registry.Handle("/", func(ctx *Ctx) (*markup.Node, error) {
		return markup.Text("home"), nil
	})

	d := NewDispatcher(manifest, registry)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "404 Not Found") {
		t.Errorf("body = %q, want the fixed fallback", rec.Body.String())
	}
}

func TestDispatcherUnregisteredHandlerIsFatal(t *testing.T) {
	manifest := testManifest(t, "/orphan")
	d := NewDispatcher(manifest, NewRegistry())

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orphan", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestDispatcherHandlerError(t *testing.T) {
	manifest := testManifest(t, "/boom")
	registry := NewRegistry()
	registry.Handle("/boom", func(ctx *Ctx) (*markup.Node, error) {
		return nil, errors.New("kaput")
	})

	d := NewDispatcher(manifest, registry)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestDispatcherStatusOverride(t *testing.T) {
	manifest := testManifest(t, "/gone")
	registry := NewRegistry()
	registry.Handle("/gone", func(ctx *Ctx) (*markup.Node, error) {
		ctx.SetStatus(http.StatusGone)
		return markup.Text("moved on"), nil
	})

	d := NewDispatcher(manifest, registry)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/gone", nil))

	if rec.Code != http.StatusGone {
		t.Errorf("status = %d, want 410", rec.Code)
	}
}

func TestDispatcherMiddlewareShortCircuit(t *testing.T) {
	manifest := testManifest(t, "/admin")
	registry := NewRegistry()
	registry.Handle("/admin", func(ctx *Ctx) (*markup.Node, error) {
		t.Fatal("handler ran despite middleware stop")
		return nil, nil
	})

	guard := MiddlewareFunc(func(ctx *Ctx, next func() error) error {
		return nil
	})

	d := NewDispatcher(manifest, registry, WithMiddleware(guard))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	// The middleware owns the response; the dispatcher writes nothing.
	if rec.Body.Len() != 0 {
		t.Errorf("dispatcher wrote %q after short circuit", rec.Body.String())
	}
}

func TestDispatcherStatsHook(t *testing.T) {
	manifest := testManifest(t, "/")
	registry := NewRegistry()
	registry.Handle("/", func(ctx *Ctx) (*markup.Node, error) {
		return markup.Text("home"), nil
	})

	var got render.Stats
	d := NewDispatcher(manifest, registry, WithStatsHook(func(s render.Stats) {
		got = s
	}))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got.BytesWritten == 0 {
		t.Error("stats hook saw no bytes")
	}
}

func TestDispatcherBoundaryDelaysReachSuspend(t *testing.T) {
	manifest := testManifest(t, "/")
	registry := NewRegistry()
	registry.Handle("/", func(ctx *Ctx) (*markup.Node, error) {
		return ctx.Suspend(func(c context.Context) (*markup.Node, error) {
			time.Sleep(30 * time.Millisecond)
			return markup.Text("inline after all"), nil
		}), nil
	})

	// A minimum delay far above the computation's settle time must keep
	// the content inline; no placeholder, no out-of-order chunk.
	d := NewDispatcher(manifest, registry,
		WithBoundaryDelays(time.Hour, 2*time.Hour))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if strings.Contains(body, "data-strand-slot") {
		t.Errorf("boundary deferred despite configured min delay: %q", body)
	}
	if !strings.Contains(body, "inline after all") {
		t.Errorf("body missing inline content: %q", body)
	}
}

func TestDispatcherBoundaryTimeoutHook(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	manifest := testManifest(t, "/")
	registry := NewRegistry()
	registry.Handle("/", func(ctx *Ctx) (*markup.Node, error) {
		return ctx.Suspend(func(c context.Context) (*markup.Node, error) {
			<-block
			return markup.Text("never"), nil
		}), nil
	})

	timeouts := make(chan struct{}, 1)
	d := NewDispatcher(manifest, registry,
		WithBoundaryDelays(time.Millisecond, 20*time.Millisecond),
		WithBoundaryTimeoutHook(func() { timeouts <- struct{}{} }))

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	select {
	case <-timeouts:
	default:
		t.Error("timeout hook never fired")
	}
	if !strings.Contains(rec.Body.String(), "data-strand-slot") {
		t.Errorf("expected a deferred placeholder, got %q", rec.Body.String())
	}
}

func TestDispatcherStreamsDeferredContent(t *testing.T) {
	manifest := testManifest(t, "/")
	registry := NewRegistry()
	registry.Handle("/", func(ctx *Ctx) (*markup.Node, error) {
		return markup.Group(
			markup.Raw("<main>"),
			markup.Deferred("d1", func(c context.Context) (*markup.Node, error) {
				return markup.Text("later"), nil
			}),
			markup.Raw("</main>"),
		), nil
	})

	d := NewDispatcher(manifest, registry)

	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `data-strand-slot="d1"`) {
		t.Errorf("body missing placeholder: %q", body)
	}
	if !strings.Contains(body, `data-strand-chunk="d1"`) {
		t.Errorf("body missing payload: %q", body)
	}
}
