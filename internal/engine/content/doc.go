// Package content provides the inline content model shared by pages.
//
// A page holds an ordered list of top-level Nodes. A Node is either a text
// run or an opaque element (image, table, formatting span, line break).
// Nested markup inside an element is kept as serialized HTML and is never
// interpreted beyond the element's tag and its width/height.
//
// Nodes are allocated from an Arena and carry a stable NodeID that is never
// reused, so hosts can refer to a node (for selection or resizing) without
// holding a pointer into the page.
//
// # Text Length
//
// Text lengths are measured in grapheme clusters, not bytes or runes, so a
// text run can be split at its midpoint without breaking a user-perceived
// character apart:
//
//	left, right := content.SplitMidpoint("héllo")
//	// left == "hé", right == "llo"
//
// # Serialization
//
// Render and Parse convert between a node list and an HTML fragment using
// golang.org/x/net/html. An empty node list serializes as "<br>", which is
// how an empty editable page is represented on the wire.
package content
