// Package config loads the uia-provider configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddr           = "127.0.0.1:9277"
	defaultMCPPort        = 8080
	defaultBackend        = "sim"
	defaultMinInterval    = 1100 * time.Millisecond
	defaultJPEGQuality    = 90
	defaultScale          = 1.0
	defaultConfigDirName  = "uia-provider"
	defaultConfigFileName = "config.yaml"
)

// Config is the effective configuration.
type Config struct {
	Log        LogConfig        `yaml:"log"        toml:"log"`
	Server     ServerConfig     `yaml:"server"     toml:"server"`
	Backend    BackendConfig    `yaml:"backend"    toml:"backend"`
	Screenshot ScreenshotConfig `yaml:"screenshot" toml:"screenshot"`
	Journal    JournalConfig    `yaml:"journal"    toml:"journal"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"`
	JSON  bool   `yaml:"json"  toml:"json"`
}

// ServerConfig controls the remote call surface.
type ServerConfig struct {
	Addr           string   `yaml:"addr"             toml:"addr"`
	MCP            string   `yaml:"mcp"              toml:"mcp"` // off, stdio, streamable-http
	MCPPort        int      `yaml:"mcp_port"         toml:"mcp_port"`
	CallTimeout    Duration `yaml:"call_timeout"     toml:"call_timeout"`
	CallsPerSecond float64  `yaml:"calls_per_second" toml:"calls_per_second"` // 0 = unlimited
	Token          string   `yaml:"token"            toml:"token"`
}

// BackendConfig selects the UI host.
type BackendConfig struct {
	Kind    string `yaml:"kind"    toml:"kind"` // sim, x11
	Fixture string `yaml:"fixture" toml:"fixture"`
	Display string `yaml:"display" toml:"display"`
}

// ScreenshotConfig controls capture pacing and encoding.
type ScreenshotConfig struct {
	MinInterval Duration `yaml:"min_interval" toml:"min_interval"`
	JPEGQuality int      `yaml:"jpeg_quality" toml:"jpeg_quality"`
	Scale       float64  `yaml:"scale"        toml:"scale"`
}

// JournalConfig controls the call journal. An empty path disables it.
type JournalConfig struct {
	Path      string   `yaml:"path"      toml:"path"`
	Retention Duration `yaml:"retention" toml:"retention"` // 0 keeps everything
}

// Duration is a time.Duration written as a string such as "1100ms".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.UnmarshalText([]byte(s))
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler (used by toml).
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" || s == "0" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if v < 0 {
		return fmt.Errorf("invalid duration %q: must not be negative", s)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr:    defaultAddr,
			MCP:     "off",
			MCPPort: defaultMCPPort,
		},
		Backend: BackendConfig{Kind: defaultBackend},
		Screenshot: ScreenshotConfig{
			MinInterval: Duration{defaultMinInterval},
			JPEGQuality: defaultJPEGQuality,
			Scale:       defaultScale,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, defaultConfigDirName, defaultConfigFileName), nil
}

// Load reads path over the defaults. A missing file yields the defaults.
// Files ending in .toml are decoded as TOML, everything else as YAML.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and fills zero values with defaults.
func (c *Config) Validate() error {
	def := Default()
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.MCP == "" {
		c.Server.MCP = def.Server.MCP
	}
	switch c.Server.MCP {
	case "off", "stdio", "streamable-http":
	default:
		return fmt.Errorf("server.mcp: unsupported value %q (use off, stdio, streamable-http)", c.Server.MCP)
	}
	if c.Server.MCPPort == 0 {
		c.Server.MCPPort = def.Server.MCPPort
	}
	if c.Server.CallsPerSecond < 0 {
		return fmt.Errorf("server.calls_per_second must not be negative")
	}
	if c.Backend.Kind == "" {
		c.Backend.Kind = def.Backend.Kind
	}
	if c.Screenshot.JPEGQuality == 0 {
		c.Screenshot.JPEGQuality = def.Screenshot.JPEGQuality
	}
	if c.Screenshot.JPEGQuality < 1 || c.Screenshot.JPEGQuality > 100 {
		return fmt.Errorf("screenshot.jpeg_quality %d out of range 1-100", c.Screenshot.JPEGQuality)
	}
	if c.Screenshot.Scale == 0 {
		c.Screenshot.Scale = def.Screenshot.Scale
	}
	if c.Screenshot.Scale < 0.1 || c.Screenshot.Scale > 1.0 {
		return fmt.Errorf("screenshot.scale %v out of range 0.1-1.0", c.Screenshot.Scale)
	}
	return nil
}
