package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != defaultAddr {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr, defaultAddr)
	}
	if cfg.Screenshot.MinInterval.Duration != 1100*time.Millisecond {
		t.Errorf("min interval = %v, want 1.1s", cfg.Screenshot.MinInterval)
	}
	if cfg.Screenshot.JPEGQuality != 90 {
		t.Errorf("jpeg quality = %d, want 90", cfg.Screenshot.JPEGQuality)
	}
	if cfg.Server.CallTimeout.Duration != 0 {
		t.Errorf("call timeout = %v, want 0 (wait forever)", cfg.Server.CallTimeout)
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend.Kind != "sim" {
		t.Errorf("backend = %q, want sim", cfg.Backend.Kind)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
log:
  level: debug
  json: true
server:
  addr: 0.0.0.0:7000
  mcp: stdio
  call_timeout: 30s
  token: abc
backend:
  kind: x11
screenshot:
  min_interval: 2s
  jpeg_quality: 75
journal:
  path: /tmp/calls.db
  retention: 168h
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("log = %+v", cfg.Log)
	}
	if cfg.Server.Addr != "0.0.0.0:7000" || cfg.Server.MCP != "stdio" {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.Token != "abc" {
		t.Errorf("token = %q", cfg.Server.Token)
	}
	if cfg.Server.CallTimeout.Duration != 30*time.Second {
		t.Errorf("call timeout = %v", cfg.Server.CallTimeout)
	}
	if cfg.Server.MCPPort != defaultMCPPort {
		t.Errorf("mcp port default not applied: %d", cfg.Server.MCPPort)
	}
	if cfg.Backend.Kind != "x11" {
		t.Errorf("backend = %q", cfg.Backend.Kind)
	}
	if cfg.Screenshot.MinInterval.Duration != 2*time.Second || cfg.Screenshot.JPEGQuality != 75 {
		t.Errorf("screenshot = %+v", cfg.Screenshot)
	}
	if cfg.Screenshot.Scale != 1.0 {
		t.Errorf("scale default not kept: %v", cfg.Screenshot.Scale)
	}
	if cfg.Journal.Path != "/tmp/calls.db" {
		t.Errorf("journal = %q", cfg.Journal.Path)
	}
	if cfg.Journal.Retention.Duration != 168*time.Hour {
		t.Errorf("journal retention = %v", cfg.Journal.Retention)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[server]
addr = "127.0.0.1:9999"
calls_per_second = 50.0

[backend]
kind = "sim"
fixture = "tree.yaml"

[screenshot]
min_interval = "1500ms"
scale = 0.5
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" || cfg.Server.CallsPerSecond != 50 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Backend.Fixture != "tree.yaml" {
		t.Errorf("fixture = %q", cfg.Backend.Fixture)
	}
	if cfg.Screenshot.MinInterval.Duration != 1500*time.Millisecond || cfg.Screenshot.Scale != 0.5 {
		t.Errorf("screenshot = %+v", cfg.Screenshot)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"bad mcp":      "server:\n  mcp: grpc\n",
		"bad quality":  "screenshot:\n  jpeg_quality: 101\n",
		"bad scale":    "screenshot:\n  scale: 2.5\n",
		"bad duration": "screenshot:\n  min_interval: soon\n",
		"bad yaml":     "server: [\n",
	}
	for name, data := range tests {
		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
