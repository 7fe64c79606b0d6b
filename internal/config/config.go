// Package config loads strand.json project configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/strand-dev/strand/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "strand.json"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultPagesDir is the default pages (route files) directory.
	DefaultPagesDir = "pages"
)

// Config represents the complete strand.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Port is the server port.
	Port int `json:"port,omitempty"`

	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Pages is the path to the pages directory.
	Pages string `json:"pages,omitempty"`

	// Static contains static file serving configuration.
	Static StaticConfig `json:"static,omitempty"`

	// Stream contains stream encoder configuration.
	Stream StreamConfig `json:"stream,omitempty"`

	// Dev contains development server configuration.
	Dev DevConfig `json:"dev,omitempty"`

	// configPath stores the path the config was loaded from.
	configPath string
}

// StaticConfig contains static file serving configuration.
type StaticConfig struct {
	// Dir is the directory containing static files.
	Dir string `json:"dir,omitempty"`

	// Prefix is the URL prefix for static files (default: "/static").
	Prefix string `json:"prefix,omitempty"`
}

// StreamConfig contains stream encoder settings.
type StreamConfig struct {
	// MinDelayMs is the default boundary minimum delay in milliseconds.
	MinDelayMs int `json:"minDelayMs,omitempty"`

	// MaxDelayMs is the default boundary maximum delay in milliseconds.
	MaxDelayMs int `json:"maxDelayMs,omitempty"`

	// ChunkDelayMs throttles the main stream. Testing only.
	ChunkDelayMs int `json:"chunkDelayMs,omitempty"`
}

// DevConfig contains development server settings.
type DevConfig struct {
	// HotReload enables the file watcher and reload endpoint.
	HotReload bool `json:"hotReload,omitempty"`

	// Watch contains extra paths to watch for changes.
	Watch []string `json:"watch,omitempty"`
}

// Default returns a configuration with default values applied.
func Default() *Config {
	return &Config{
		Port:   DefaultPort,
		Host:   DefaultHost,
		Pages:  DefaultPagesDir,
		Static: StaticConfig{Prefix: "/static"},
	}
}

// Load reads strand.json from dir. A missing file returns defaults; a
// malformed file is an error.
func Load(dir string) (*Config, error) {
	cfg := Default()

	path := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.New("E401").Wrap(err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E401").Wrap(err).
			WithSuggestion("check " + path + " for JSON syntax errors")
	}

	cfg.applyDefaults()
	cfg.configPath = path
	return cfg, nil
}

// Path returns the path the config was loaded from, or empty if it came
// from defaults.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills zero-valued fields after unmarshalling.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Pages == "" {
		c.Pages = DefaultPagesDir
	}
	if c.Static.Prefix == "" {
		c.Static.Prefix = "/static"
	}
}
