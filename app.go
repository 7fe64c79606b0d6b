// Package strand is a streaming HTML server. Route files under a pages
// directory compile into a manifest; each request resolves to a handler
// that returns a content tree, which is flattened into ordered chunks and
// streamed to the client. Slow subtrees wrapped in a suspense boundary
// emit a placeholder in order and their payload out of order.
//
// Create an App with strand.New(), register handlers, and serve:
//
//	app := strand.New(strand.Config{Pages: "pages"})
//	app.Handle("/blog/:slug", blog.PostPage)
//	http.ListenAndServe(":3000", app)
package strand

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strand-dev/strand/internal/dev"
	"github.com/strand-dev/strand/pkg/middleware"
	"github.com/strand-dev/strand/pkg/render"
	"github.com/strand-dev/strand/pkg/routes"
	"github.com/strand-dev/strand/pkg/server"
)

// App is the main strand application entry point. It wraps the route
// manifest, handler registry, and dispatcher into a single http.Handler.
type App struct {
	mux      *chi.Mux
	registry *server.Registry

	// dispatcher is swapped atomically when dev mode rebuilds the manifest.
	dispatcher atomic.Pointer[server.Dispatcher]

	reload *dev.ReloadServer

	config Config
	logger *slog.Logger
}

// New creates a new strand application with the given configuration.
// The route manifest builds asynchronously; requests arriving before it
// completes wait on it.
func New(cfg Config) *App {
	cfg.applyDefaults()

	app := &App{
		mux:      chi.NewRouter(),
		registry: server.NewRegistry(),
		config:   cfg,
		logger:   cfg.Logger,
	}

	manifest := routes.BuildAsync(os.DirFS(cfg.Pages))
	app.dispatcher.Store(app.newDispatcher(manifest))

	if cfg.Metrics {
		app.mux.Handle("/metrics", promhttp.Handler())
	}
	if cfg.Dev.HotReload {
		app.reload = dev.NewReloadServer()
		app.mux.Get("/_strand/reload", app.reload.HandleWebSocket)
	}
	if cfg.Static.Dir != "" {
		prefix := cfg.Static.Prefix
		fileServer := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.Static.Dir)))
		app.mux.Handle(prefix+"/*", fileServer)
	}
	// Everything not claimed above routes through the dispatcher.
	app.mux.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.dispatcher.Load().ServeHTTP(w, r)
	}))

	return app
}

func (a *App) newDispatcher(manifest *routes.Manifest) *server.Dispatcher {
	opts := []server.DispatcherOption{
		server.WithMiddleware(a.config.Middleware...),
		server.WithStreamConfig(render.Config{
			ChunkDelay: a.config.Stream.ChunkDelay,
			Logger:     a.logger,
		}),
		server.WithBoundaryDelays(a.config.Stream.MinDelay, a.config.Stream.MaxDelay),
		server.WithLogger(a.logger),
	}
	if a.config.Metrics {
		opts = append(opts,
			server.WithStatsHook(middleware.RecordStream),
			server.WithBoundaryTimeoutHook(middleware.RecordBoundaryTimeout),
		)
	}
	return server.NewDispatcher(manifest, a.registry, opts...)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Handle registers a handler for the given route pathname. The pathname
// uses the manifest's notation, e.g. "/blog/:slug" or "/docs/*rest".
func (a *App) Handle(pathname string, h server.HandlerFunc) {
	a.registry.Handle(pathname, h)
}

// Manifest returns the current route manifest.
func (a *App) Manifest() *routes.Manifest {
	return a.dispatcher.Load().Manifest()
}

// Router exposes the underlying mux for mounting additional handlers.
func (a *App) Router() chi.Router {
	return a.mux
}

// Watch runs the dev-mode file watcher until ctx is canceled. On each
// change it rebuilds the route manifest and broadcasts a reload message
// to connected browsers. It is a no-op unless Dev.HotReload is set.
func (a *App) Watch(ctx context.Context) error {
	if !a.config.Dev.HotReload {
		return nil
	}

	dirs := a.config.Dev.Watch
	if len(dirs) == 0 {
		dirs = []string{a.config.Pages}
	}

	watcher, err := dev.NewWatcher(dev.WatcherConfig{
		Dirs:     dirs,
		Debounce: 100 * time.Millisecond,
	}, func(path string) {
		a.logger.Info("route file changed, rebuilding manifest", "file", path)
		manifest := routes.BuildAsync(os.DirFS(a.config.Pages))
		a.dispatcher.Store(a.newDispatcher(manifest))
		if a.reload != nil {
			a.reload.Broadcast(dev.ReloadMessage{Type: dev.ReloadTypeFull, File: path})
		}
	})
	if err != nil {
		return err
	}
	return watcher.Run(ctx)
}
