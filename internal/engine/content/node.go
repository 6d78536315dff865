package content

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// NodeID identifies a node within one Arena.
type NodeID uint64

// Kind is the kind of a top-level node.
type Kind uint8

const (
	// KindText is a plain text run.
	KindText Kind = iota
	// KindElement is a structural or embedded element.
	KindElement
)

// String returns a string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindElement:
		return "element"
	default:
		return "unknown"
	}
}

// Node is one top-level inline item of a page.
type Node struct {
	ID   NodeID
	Kind Kind

	// Text is the unescaped text of a text run.
	Text string

	// Tag is the lower-case element name (for example "img" or "table").
	Tag string

	// Attrs are the element attributes, excluding the size, which lives in
	// Width and Height.
	Attrs []html.Attribute

	// Inner is the serialized markup of the element's children.
	Inner string

	// Width and Height are the element size in device-independent units.
	// Zero means unsized.
	Width  int
	Height int
}

// IsText returns true if the node is a text run.
func (n *Node) IsText() bool {
	return n.Kind == KindText
}

// Len returns the length of a text run in grapheme clusters.
// Elements have length zero.
func (n *Node) Len() int {
	if n.Kind != KindText {
		return 0
	}
	return GraphemeLen(n.Text)
}

// Resizable returns true if the node can be wrapped for resizing.
func (n *Node) Resizable() bool {
	return n.Kind == KindElement && (n.Tag == "img" || n.Tag == "table")
}

// SetSize sets the element size.
func (n *Node) SetSize(width, height int) {
	n.Width = width
	n.Height = height
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HTML returns the serialized form of the node.
func (n *Node) HTML() string {
	var sb strings.Builder
	writeNode(&sb, n)
	return sb.String()
}

// String returns a short description for debugging.
func (n *Node) String() string {
	if n.Kind == KindText {
		return fmt.Sprintf("Text(%d:%q)", n.ID, n.Text)
	}
	if n.Width > 0 || n.Height > 0 {
		return fmt.Sprintf("Element(%d:<%s> %dx%d)", n.ID, n.Tag, n.Width, n.Height)
	}
	return fmt.Sprintf("Element(%d:<%s>)", n.ID, n.Tag)
}

// clone returns a copy of the node with the given id.
func (n *Node) clone(id NodeID) *Node {
	c := *n
	c.ID = id
	if n.Attrs != nil {
		c.Attrs = append([]html.Attribute(nil), n.Attrs...)
	}
	return &c
}
