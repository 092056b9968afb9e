package model

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDocument is returned when a hierarchy document has no content.
var ErrEmptyDocument = errors.New("empty hierarchy document")

// Node is one element of a serialized hierarchy document. The document root
// and every descendant are <node> elements.
type Node struct {
	XMLName     xml.Name `xml:"node"                 yaml:"-"                     json:"-"`
	Class       string   `xml:"class,attr"           yaml:"class"                 json:"class"`
	Package     string   `xml:"package,attr"         yaml:"package"               json:"package"`
	ContentDesc string   `xml:"content-desc,attr"    yaml:"content-desc,omitempty" json:"contentDesc,omitempty"`
	Text        string   `xml:"text,attr"            yaml:"text,omitempty"        json:"text,omitempty"`
	ResourceID  string   `xml:"resource-id,attr"     yaml:"resource-id,omitempty" json:"resourceId,omitempty"`
	Bounds      string   `xml:"bounds,attr"          yaml:"bounds"                json:"bounds"`
	Clickable   bool     `xml:"clickable,attr"       yaml:"clickable"             json:"clickable"`
	Focused     bool     `xml:"focused,attr"         yaml:"focused"               json:"focused"`
	Children    []Node   `xml:"node"                 yaml:"children,omitempty"    json:"children,omitempty"`
}

// ParseHierarchy decodes a hierarchy document into its root node.
func ParseHierarchy(doc string) (*Node, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, ErrEmptyDocument
	}
	var root Node
	if err := xml.Unmarshal([]byte(doc), &root); err != nil {
		return nil, fmt.Errorf("parse hierarchy: %w", err)
	}
	return &root, nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// stops the walk.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Walk(fn) {
			return false
		}
	}
	return true
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	count := 0
	n.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// FindByBounds returns the first node in document order whose bounds equal id.
func (n *Node) FindByBounds(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Bounds == id {
			found = c
			return false
		}
		return true
	})
	return found
}
