// Package config loads the handlink YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ayusman/handlink/internal/logging"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// DefaultServiceURL is where the tracking service listens by default.
const DefaultServiceURL = "ws://127.0.0.1:9739/connect"

// Service configures the tracking service connection.
type Service struct {
	URL              string        `yaml:"url"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	APIVersion       string        `yaml:"api_version"`
}

// Loop configures the dispatch loop.
type Loop struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

// Plugins configures plugin discovery.
type Plugins struct {
	Dir string `yaml:"dir"`
}

// Store configures analytics persistence.
type Store struct {
	// Path is the SQLite file. Empty disables analytics.
	Path          string        `yaml:"path"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// Server configures the debug HTTP server.
type Server struct {
	// Addr is the listen address. Empty disables the server.
	Addr string `yaml:"addr"`
}

// Tray configures the system tray icon.
type Tray struct {
	Enabled bool `yaml:"enabled"`
}

// Config is the whole configuration file.
type Config struct {
	Service Service        `yaml:"service"`
	Loop    Loop           `yaml:"loop"`
	Plugins Plugins        `yaml:"plugins"`
	Store   Store          `yaml:"store"`
	Server  Server         `yaml:"server"`
	Logging logging.Config `yaml:"logging"`
	Tray    Tray           `yaml:"tray"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Service: Service{
			URL:              DefaultServiceURL,
			HandshakeTimeout: 10 * time.Second,
		},
		Loop:    Loop{TickInterval: 16 * time.Millisecond},
		Plugins: Plugins{Dir: "plugins"},
		Store:   Store{FlushInterval: 30 * time.Second},
		Logging: logging.Config{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults, expanding $VAR and ${VAR} references,
// and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Service.URL)
	if err != nil {
		return fmt.Errorf("%w: service.url: %v", ErrInvalid, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("%w: service.url must use ws or wss, got %q", ErrInvalid, c.Service.URL)
	}
	if c.Service.HandshakeTimeout < 0 {
		return fmt.Errorf("%w: service.handshake_timeout must not be negative", ErrInvalid)
	}
	if c.Loop.TickInterval <= 0 {
		return fmt.Errorf("%w: loop.tick_interval must be positive", ErrInvalid)
	}
	if c.Store.Path != "" && c.Store.FlushInterval <= 0 {
		return fmt.Errorf("%w: store.flush_interval must be positive", ErrInvalid)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: logging.format must be text or json, got %q", ErrInvalid, c.Logging.Format)
	}
	return nil
}
