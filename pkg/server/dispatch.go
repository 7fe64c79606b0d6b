package server

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/strand-dev/strand/internal/errors"
	"github.com/strand-dev/strand/pkg/markup"
	"github.com/strand-dev/strand/pkg/render"
	"github.com/strand-dev/strand/pkg/routes"
)

// fallbackNotFoundBody is served when even the reserved not-found route
// is absent from the manifest.
const fallbackNotFoundBody = "<!DOCTYPE html><html><body><h1>404 Not Found</h1></body></html>"

// Dispatcher resolves requests against the route manifest and streams
// handler output. It implements http.Handler.
type Dispatcher struct {
	manifest   *routes.Manifest
	registry   *Registry
	middleware []Middleware
	stream     render.Config
	logger     *slog.Logger
	onStats    func(render.Stats)

	boundaryMin       time.Duration
	boundaryMax       time.Duration
	onBoundaryTimeout func()
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMiddleware appends middleware to the dispatch chain.
func WithMiddleware(mws ...Middleware) DispatcherOption {
	return func(d *Dispatcher) {
		d.middleware = append(d.middleware, mws...)
	}
}

// WithStreamConfig sets the stream encoder configuration.
func WithStreamConfig(cfg render.Config) DispatcherOption {
	return func(d *Dispatcher) {
		d.stream = cfg
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithStatsHook registers a callback receiving the stream encoder stats
// of every completed response. Used to feed metrics.
func WithStatsHook(fn func(render.Stats)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onStats = fn
	}
}

// WithBoundaryDelays sets the default minimum and maximum delays for
// boundaries handlers create through Ctx.Suspend. Zero keeps the
// suspense package defaults.
func WithBoundaryDelays(min, max time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.boundaryMin = min
		d.boundaryMax = max
	}
}

// WithBoundaryTimeoutHook registers a callback invoked whenever a
// Ctx.Suspend boundary times out. Used to feed metrics.
func WithBoundaryTimeoutHook(fn func()) DispatcherOption {
	return func(d *Dispatcher) {
		d.onBoundaryTimeout = fn
	}
}

// NewDispatcher creates a dispatcher over a manifest and a handler
// registry.
func NewDispatcher(manifest *routes.Manifest, registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		manifest: manifest,
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.stream.Logger == nil {
		d.stream.Logger = d.logger
	}
	return d
}

// Manifest returns the manifest this dispatcher resolves against.
func (d *Dispatcher) Manifest() *routes.Manifest {
	return d.manifest
}

// ServeHTTP resolves, loads, invokes, and streams one request.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Lookups queue here until the manifest build completes.
	match, ok, err := d.manifest.Resolve(ctx, r.URL.Path)
	if err != nil {
		d.logger.Error("route resolution failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", errors.FromError(err, "E103")))
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}

	status := http.StatusOK
	if !ok {
		// Recoverable: substitute the reserved not-found pathname and
		// re-resolve exactly once.
		match, ok, err = d.manifest.Resolve(ctx, routes.NotFoundPathname)
		if err != nil || !ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, fallbackNotFoundBody)
			return
		}
		status = http.StatusNotFound
	}

	handler, err := d.registry.Load(match.Route.Pathname)
	if err != nil {
		d.logger.Error("handler load failed",
			slog.String("route", match.Route.Pathname),
			slog.String("location", match.Route.HandlerLocation),
			slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	reqCtx := NewCtx(r, w.Header(), match.Params, d.logger.With(
		slog.String("route", match.Route.Pathname),
	))
	reqCtx.boundaryMin = d.boundaryMin
	reqCtx.boundaryMax = d.boundaryMax
	reqCtx.onBoundaryTimeout = d.onBoundaryTimeout

	var tree *markup.Node
	ranHandler, err := RunMiddleware(reqCtx, d.middleware, func() error {
		node, handlerErr := handler(reqCtx)
		if handlerErr != nil {
			return errors.FromError(handlerErr, "E202")
		}
		tree = node
		return nil
	})
	if err != nil {
		d.logger.Error("handler failed",
			slog.String("route", match.Route.Pathname),
			slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if !ranHandler {
		// The chain stopped cleanly; the middleware owns the response.
		return
	}

	if reqCtx.Status() != 0 {
		status = reqCtx.Status()
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.WriteHeader(status)

	if tree == nil {
		return
	}

	enc := render.NewEncoder(w, d.stream)
	if err := enc.Render(ctx, tree); err != nil {
		// The status line is gone; all we can do is log and stop.
		d.logger.Error("stream encoding failed",
			slog.String("route", match.Route.Pathname),
			slog.Any("error", errors.FromError(err, "E301")))
	}
	if d.onStats != nil {
		d.onStats(enc.Stats())
	}
}
