package strand

import (
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/strand-dev/strand/internal/config"
	"github.com/strand-dev/strand/pkg/server"
)

// Re-exports so applications can depend on the root package alone.
type (
	// Ctx is the per-request context handlers receive.
	Ctx = server.Ctx

	// HandlerFunc is the route handler signature.
	HandlerFunc = server.HandlerFunc

	// Middleware runs around matched handlers.
	Middleware = server.Middleware
)

// StaticConfig configures static file serving.
type StaticConfig struct {
	// Dir is the directory to serve static files from.
	// Empty disables static serving.
	Dir string

	// Prefix is the URL prefix for static files (default "/static").
	Prefix string
}

// StreamConfig tunes the streaming renderer and deferred boundaries.
// MinDelay and MaxDelay apply to boundaries handlers create through
// Ctx.Suspend; suspense.New called directly keeps the package defaults.
type StreamConfig struct {
	// MinDelay is how long a boundary waits before deferring (default 20ms).
	MinDelay time.Duration

	// MaxDelay is how long a deferred boundary may run before it times
	// out and renders through the error renderer (default 5s).
	MaxDelay time.Duration

	// ChunkDelay inserts an artificial pause between chunks. Zero in
	// production; useful for demos and throttling tests.
	ChunkDelay time.Duration
}

// DevConfig enables development-mode features.
type DevConfig struct {
	// HotReload serves a websocket endpoint at /_strand/reload and
	// broadcasts when watched files change.
	HotReload bool

	// Watch lists directories to watch for changes. Defaults to the
	// pages directory.
	Watch []string
}

// Config configures a strand App.
type Config struct {
	// Host is the address Addr() reports for listening (default "localhost").
	Host string

	// Port is the port Addr() reports for listening (default 3000).
	Port int

	// Pages is the directory containing route files (default "pages").
	Pages string

	// Static configures static file serving.
	Static StaticConfig

	// Stream tunes the streaming renderer.
	Stream StreamConfig

	// Dev enables development-mode features.
	Dev DevConfig

	// Middleware runs around every matched handler, in order.
	Middleware []server.Middleware

	// Metrics exposes a Prometheus endpoint at /metrics when true.
	Metrics bool

	// Logger receives structured logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Addr returns the host:port pair the application should listen on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() Config {
	return Config{
		Host:  config.DefaultHost,
		Port:  config.DefaultPort,
		Pages: config.DefaultPagesDir,
		Static: StaticConfig{
			Prefix: "/static",
		},
		Stream: StreamConfig{
			MinDelay: 20 * time.Millisecond,
			MaxDelay: 5 * time.Second,
		},
	}
}

// LoadConfig reads strand.json from dir and converts it to a Config.
// A missing file yields DefaultConfig().
func LoadConfig(dir string) (Config, error) {
	fileCfg, err := config.Load(dir)
	if err != nil {
		return Config{}, err
	}
	return fromFileConfig(fileCfg), nil
}

func fromFileConfig(fc *config.Config) Config {
	cfg := DefaultConfig()
	cfg.Host = fc.Host
	cfg.Port = fc.Port
	cfg.Pages = fc.Pages
	cfg.Static.Dir = fc.Static.Dir
	if fc.Static.Prefix != "" {
		cfg.Static.Prefix = fc.Static.Prefix
	}
	if fc.Stream.MinDelayMs > 0 {
		cfg.Stream.MinDelay = time.Duration(fc.Stream.MinDelayMs) * time.Millisecond
	}
	if fc.Stream.MaxDelayMs > 0 {
		cfg.Stream.MaxDelay = time.Duration(fc.Stream.MaxDelayMs) * time.Millisecond
	}
	if fc.Stream.ChunkDelayMs > 0 {
		cfg.Stream.ChunkDelay = time.Duration(fc.Stream.ChunkDelayMs) * time.Millisecond
	}
	cfg.Dev.HotReload = fc.Dev.HotReload
	cfg.Dev.Watch = fc.Dev.Watch
	return cfg
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Host == "" {
		c.Host = def.Host
	}
	if c.Port == 0 {
		c.Port = def.Port
	}
	if c.Pages == "" {
		c.Pages = def.Pages
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = def.Static.Prefix
	}
	if c.Stream.MinDelay == 0 {
		c.Stream.MinDelay = def.Stream.MinDelay
	}
	if c.Stream.MaxDelay == 0 {
		c.Stream.MaxDelay = def.Stream.MaxDelay
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
