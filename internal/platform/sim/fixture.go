package sim

import (
	"errors"
	"fmt"
	"os"

	"github.com/mj1618/uia-provider/internal/model"
	"gopkg.in/yaml.v3"
)

// DefaultVersion is the host version reported when a fixture does not set one.
const DefaultVersion = 33

// Fixture describes a simulated screen.
type Fixture struct {
	Version    int      `yaml:"version"`
	Foreground string   `yaml:"foreground"`
	Focus      Focus    `yaml:"focus"`
	Root       *Element `yaml:"root"`
}

// Focus names the bounds of the focused elements, if any.
type Focus struct {
	Input         string `yaml:"input"`
	Accessibility string `yaml:"accessibility"`
}

// Element is one simulated UI element.
type Element struct {
	Class       string `yaml:"class"`
	Package     string `yaml:"package"`
	ContentDesc string `yaml:"content-desc"`
	Text        string `yaml:"text"`
	ResourceID  string `yaml:"resource-id"`
	Bounds      string `yaml:"bounds"`
	Clickable   bool   `yaml:"clickable"`
	Focused     bool   `yaml:"focused"`
	Editable    bool   `yaml:"editable"`
	// Stale makes every attribute read panic, like a node the UI has
	// already recycled.
	Stale    bool       `yaml:"stale"`
	Children []*Element `yaml:"children"`

	rect model.Rect
}

// LoadFixture reads a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	f, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	return f, nil
}

// ParseFixture decodes and validates a YAML fixture.
func ParseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.prepare(); err != nil {
		return nil, err
	}
	return &f, nil
}

// prepare fills defaults and parses every bounds string.
func (f *Fixture) prepare() error {
	if f.Version == 0 {
		f.Version = DefaultVersion
	}
	if f.Root == nil {
		return nil
	}
	return f.Root.prepare("root")
}

func (e *Element) prepare(path string) error {
	if e == nil {
		return errors.New(path + ": empty element")
	}
	r, err := model.ParseRect(e.Bounds)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	e.rect = r
	e.Bounds = r.ShortString()
	for i, c := range e.Children {
		if err := c.prepare(fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// walk visits e and its descendants in pre-order until fn returns false.
func (e *Element) walk(fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

// find returns the first element in pre-order matching fn.
func (e *Element) find(fn func(*Element) bool) *Element {
	if e == nil {
		return nil
	}
	var found *Element
	e.walk(func(c *Element) bool {
		if fn(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// DefaultFixture is the screen shown when no fixture file is configured.
func DefaultFixture() *Fixture {
	f := &Fixture{
		Foreground: "com.example.notes.EditNoteActivity",
		Focus:      Focus{Input: "[32,240][688,336]"},
		Root: &Element{
			Class:   "android.widget.FrameLayout",
			Package: "com.example.notes",
			Bounds:  "[0,0][720,1280]",
			Children: []*Element{
				{
					Class:      "android.widget.TextView",
					Package:    "com.example.notes",
					Text:       "New note",
					ResourceID: "com.example.notes:id/title",
					Bounds:     "[32,96][688,192]",
				},
				{
					Class:      "android.widget.FrameLayout",
					Package:    "com.example.notes",
					ResourceID: "com.example.notes:id/body_container",
					Bounds:     "[32,240][688,336]",
					Children: []*Element{
						{
							Class:      "android.widget.EditText",
							Package:    "com.example.notes",
							ResourceID: "com.example.notes:id/body",
							Bounds:     "[32,240][688,336]",
							Clickable:  true,
							Focused:    true,
							Editable:   true,
						},
					},
				},
				{
					Class:       "android.widget.Button",
					Package:     "com.example.notes",
					ContentDesc: "Save",
					Text:        "SAVE",
					ResourceID:  "com.example.notes:id/save",
					Bounds:      "[480,1120][688,1216]",
					Clickable:   true,
				},
			},
		},
	}
	if err := f.prepare(); err != nil {
		panic(err)
	}
	return f
}
