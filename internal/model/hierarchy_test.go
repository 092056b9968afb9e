package model

import (
	"errors"
	"testing"
)

const testHierarchyXML = `<?xml version='1.0' encoding='UTF-8' standalone='yes' ?>
<node class="android.widget.FrameLayout" package="com.app" content-desc="" text="" resource-id="" bounds="[0,0][1080,1920]" clickable="false" focused="false">
  <node class="android.widget.TextView" package="com.app" content-desc="Title label" text="Hello" resource-id="com.app:id/title" bounds="[0,0][540,100]" clickable="true" focused="false" />
  <node class="android.widget.LinearLayout" package="com.app" content-desc="" text="" resource-id="" bounds="[0,100][1080,400]" clickable="false" focused="false">
    <node class="android.widget.EditText" package="com.app" content-desc="" text="name" resource-id="com.app:id/input" bounds="[0,100][1080,200]" clickable="true" focused="true" />
  </node>
</node>`

func TestParseHierarchy(t *testing.T) {
	root, err := ParseHierarchy(testHierarchyXML)
	if err != nil {
		t.Fatalf("ParseHierarchy: %v", err)
	}
	if root.Class != "android.widget.FrameLayout" {
		t.Errorf("root class = %q", root.Class)
	}
	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}

	title := root.Children[0]
	if title.Text != "Hello" || title.ContentDesc != "Title label" || title.ResourceID != "com.app:id/title" {
		t.Errorf("title attributes wrong: %+v", title)
	}
	if !title.Clickable || title.Focused {
		t.Errorf("title flags: clickable=%v focused=%v", title.Clickable, title.Focused)
	}

	input := root.Children[1].Children[0]
	if !input.Focused || input.Bounds != "[0,100][1080,200]" {
		t.Errorf("input attributes wrong: %+v", input)
	}
	if root.Count() != 4 {
		t.Errorf("Count = %d, want 4", root.Count())
	}
}

func TestParseHierarchy_Empty(t *testing.T) {
	_, err := ParseHierarchy("  \n")
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestParseHierarchy_Malformed(t *testing.T) {
	if _, err := ParseHierarchy(`<node class="a"><node></node>`); err == nil {
		t.Error("expected error for truncated document")
	}
}

func TestNode_FindByBounds(t *testing.T) {
	root, err := ParseHierarchy(testHierarchyXML)
	if err != nil {
		t.Fatal(err)
	}
	n := root.FindByBounds("[0,100][1080,200]")
	if n == nil || n.Class != "android.widget.EditText" {
		t.Fatalf("FindByBounds returned %+v", n)
	}
	if root.FindByBounds("[1,1][2,2]") != nil {
		t.Error("expected nil for unknown bounds")
	}
}

func TestFlattenHierarchy(t *testing.T) {
	root, err := ParseHierarchy(testHierarchyXML)
	if err != nil {
		t.Fatal(err)
	}
	flat := FlattenHierarchy(root)
	if len(flat) != 4 {
		t.Fatalf("flat length = %d, want 4", len(flat))
	}
	wantPaths := []string{
		"FrameLayout",
		"FrameLayout > TextView",
		"FrameLayout > LinearLayout",
		"FrameLayout > LinearLayout > EditText",
	}
	for i, want := range wantPaths {
		if flat[i].Path != want {
			t.Errorf("flat[%d].Path = %q, want %q", i, flat[i].Path, want)
		}
		if flat[i].Index != i {
			t.Errorf("flat[%d].Index = %d", i, flat[i].Index)
		}
	}
	if flat[3].Depth != 2 {
		t.Errorf("EditText depth = %d, want 2", flat[3].Depth)
	}
	if FlattenHierarchy(nil) != nil {
		t.Error("FlattenHierarchy(nil) should be nil")
	}
}

func TestShortClassName(t *testing.T) {
	tests := map[string]string{
		"android.widget.EditText": "EditText",
		"View":                    "View",
		"":                        "",
		"trailing.":               "",
	}
	for in, want := range tests {
		if got := ShortClassName(in); got != want {
			t.Errorf("ShortClassName(%q) = %q, want %q", in, got, want)
		}
	}
}
