// Package tree serializes the live element tree and resolves node
// identifiers back to live nodes.
//
// Every platform.Node handed out by a host is a counted reference. The
// functions here release each reference they obtain on every path,
// including panics raised by the host while reading attributes.
package tree

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mj1618/uia-provider/internal/platform"
)

// ErrEmptyTree is returned when the host has no active window to capture.
var ErrEmptyTree = errors.New("no active window")

// Source provides the root of the live tree.
type Source interface {
	RootInActiveWindow() platform.Node
}

var header = xml.ProcInst{
	Target: "xml",
	Inst:   []byte(`version="1.0" encoding="UTF-8" standalone="yes"`),
}

// Capture serializes the active window as a hierarchy document. Any failure,
// including a panic while reading a node, yields an empty document and an error;
// a partially written document is never returned.
//
// Attribute values are lossy: invalid UTF-8 and characters XML 1.0 cannot
// carry (C0 controls other than tab, newline and carriage return) are written
// as U+FFFD.
func Capture(src Source) (doc string, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc, err = "", fmt.Errorf("capture: %v", r)
		}
	}()

	root := src.RootInActiveWindow()
	if root == nil {
		return "", ErrEmptyTree
	}

	var buf bytes.Buffer
	if err := Serialize(&buf, root); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Serialize writes the subtree rooted at n to buf. It takes ownership of n
// and releases it, along with every child it obtains.
func Serialize(buf *bytes.Buffer, n platform.Node) error {
	enc := xml.NewEncoder(buf)
	if err := enc.EncodeToken(header); err != nil {
		n.Release()
		return fmt.Errorf("write header: %w", err)
	}
	if err := writeNode(enc, n); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// writeNode emits n and its descendants in pre-order, then releases n.
func writeNode(enc *xml.Encoder, n platform.Node) error {
	defer n.Release()

	start := xml.StartElement{
		Name: xml.Name{Local: "node"},
		Attr: []xml.Attr{
			attr("class", n.ClassName()),
			attr("package", n.PackageName()),
			attr("content-desc", n.ContentDescription()),
			attr("text", n.Text()),
			attr("resource-id", n.ViewIDResourceName()),
			attr("bounds", n.BoundsInScreen().ShortString()),
			attr("clickable", strconv.FormatBool(n.IsClickable())),
			attr("focused", strconv.FormatBool(n.IsFocused())),
		},
	}
	if err := enc.EncodeToken(start); err != nil {
		return fmt.Errorf("write node: %w", err)
	}

	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child == nil {
			// Removed since ChildCount was read.
			continue
		}
		if err := writeNode(enc, child); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(start.End()); err != nil {
		return fmt.Errorf("write node end: %w", err)
	}
	return nil
}

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: xmlSafe(value)}
}

// xmlSafe replaces every rune outside the XML 1.0 Char production with
// U+FFFD. Values that need no change are returned as is.
func xmlSafe(s string) string {
	clean := true
	for _, r := range s {
		if !isXMLChar(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if !isXMLChar(r) {
			r = utf8.RuneError
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isXMLChar(r rune) bool {
	switch {
	case r == utf8.RuneError:
		// Invalid bytes decode as RuneError.
		return false
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}
