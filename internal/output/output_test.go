package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mj1618/uia-provider/internal/model"
	"gopkg.in/yaml.v3"
)

func capture(t *testing.T, fn func() error) string {
	t.Helper()
	var buf bytes.Buffer
	old := Writer
	Writer = &buf
	defer func() { Writer = old }()
	if err := fn(); err != nil {
		t.Fatal(err)
	}
	return buf.String()
}

func sampleHierarchy() HierarchyResult {
	return HierarchyResult{
		Activity: "com.example.notes.MainActivity",
		TS:       1707500000,
		Count:    2,
		Root: &model.Node{
			Class:   "android.widget.FrameLayout",
			Package: "com.example.notes",
			Bounds:  "[0,0][720,1280]",
			Children: []model.Node{
				{Class: "android.widget.Button", Text: "Save", Bounds: "[10,20][110,60]", Clickable: true},
			},
		},
	}
}

func TestPrintYAML(t *testing.T) {
	out := capture(t, func() error { return PrintYAML(sampleHierarchy()) })

	if bytes.Count([]byte(out), []byte("\n")) <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", out)
	}

	var decoded HierarchyResult
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.Activity != "com.example.notes.MainActivity" {
		t.Errorf("activity: got %q", decoded.Activity)
	}
	if decoded.Root == nil || len(decoded.Root.Children) != 1 {
		t.Fatalf("root children not preserved: %+v", decoded.Root)
	}
	if decoded.Root.Children[0].Text != "Save" {
		t.Errorf("child text: got %q, want %q", decoded.Root.Children[0].Text, "Save")
	}
}

func TestPrintJSON_Compact(t *testing.T) {
	out := capture(t, func() error { return PrintJSON(sampleHierarchy(), false) })

	// Compact output should be a single line (plus newline from Encode)
	if bytes.Count([]byte(out), []byte("\n")) > 1 {
		t.Errorf("compact output should be single line, got:\n%s", out)
	}
	var decoded HierarchyResult
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Count != 2 {
		t.Errorf("count: got %d, want 2", decoded.Count)
	}
}

func TestPrintJSON_Pretty(t *testing.T) {
	out := capture(t, func() error { return PrintJSON(ActionResult{OK: true, Action: "tap", X: 1, Y: 2}, true) })
	if bytes.Count([]byte(out), []byte("\n")) <= 1 {
		t.Errorf("pretty output should be multi-line, got:\n%s", out)
	}
}

func TestPrintUsesOutputFormat(t *testing.T) {
	old := OutputFormat
	defer func() { OutputFormat = old }()

	OutputFormat = FormatJSON
	out := capture(t, func() error { return Print(StatusResult{Addr: "127.0.0.1:7912", Enabled: true}) })
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("json format produced non-JSON output %q: %v", out, err)
	}

	OutputFormat = "xml"
	if err := Print(StatusResult{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestActionResult_OmitEmpty(t *testing.T) {
	data, err := yaml.Marshal(ActionResult{OK: false, Action: "global"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := yaml.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"x", "y", "target", "path"} {
		if _, ok := m[key]; ok {
			t.Errorf("empty %s should be omitted", key)
		}
	}
	// ok is always present, even when false
	if _, ok := m["ok"]; !ok {
		t.Error("ok should always be present")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
