package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"info", zerolog.InfoLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Error("ParseLevel(\"verbose\") should fail")
	}
}

func TestNew_JSONFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Config{Level: "warn", JSON: true, Out: &buf})
	if err != nil {
		t.Fatal(err)
	}
	l.Info().Msg("hidden")
	l.Warn().Str("method", "performClick").Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if entry["method"] != "performClick" || entry["level"] != "warn" {
		t.Errorf("unexpected entry: %v", entry)
	}
}

func TestFor_AddsModule(t *testing.T) {
	var buf bytes.Buffer
	orig := Logger
	defer func() { Logger = orig }()

	if err := Init(Config{JSON: true, Out: &buf}); err != nil {
		t.Fatal(err)
	}
	log := For("forwarder")
	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), `"module":"forwarder"`) {
		t.Errorf("module field missing: %s", buf.String())
	}
}
