// Package measure lays out page content to find how much room it needs.
//
// Text runs are broken into lines at Unicode line-break opportunities and
// wrapped to the page width. Images and tables are laid out as blocks of
// their own size. The same flow drives two measurers: Cells for a terminal grid and
// Font for proportional text in pixels. Both satisfy pagination.Measurer.
package measure

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/dshills/folio/internal/engine/content"
)

// Box is the placement of an element within a page.
type Box struct {
	Node   content.NodeID
	X, Y   int
	Width  int
	Height int
}

// Contains returns true if (x, y) is inside the box.
func (b Box) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Run is a piece of text placed on a line. A run wider than the page
// starts at the left edge and continues at the left edge of the following
// lines.
type Run struct {
	Node  content.NodeID
	X, Y  int
	Width int
	Text  string
	// Offset is the grapheme index of the run's first cluster within the
	// node's text.
	Offset int
}

// Layout is the flowed arrangement of a page's content.
type Layout struct {
	// Height is the total height the content needs.
	Height int
	// Elements are the resizable element boxes in document order.
	Elements []Box
	// Runs are the placed text runs in document order.
	Runs []Run
}

// ElementAt returns the element box containing (x, y).
func (l Layout) ElementAt(x, y int) (Box, bool) {
	for _, b := range l.Elements {
		if b.Contains(x, y) {
			return b, true
		}
	}
	return Box{}, false
}

// flow holds the metrics a layout pass needs.
type flow struct {
	width      int
	lineHeight int
	advance    func(cluster string) int
	element    func(n *content.Node) (w, h int)
}

// lay flows nodes top to bottom. Resizable elements are blocks; any other
// element flows as the text it contains. A width of zero disables wrapping.
func (f flow) lay(nodes []*content.Node) Layout {
	var (
		out  Layout
		x, y int
		open bool
		// broken is set after a hard line break until the next segment.
		broken bool
	)

	newline := func() {
		y += f.lineHeight
		x = 0
	}
	// place puts a segment that cannot be broken on the current line, or
	// on the next one if it does not fit. Trailing whitespace may hang
	// past the edge. Segments wider than a line are broken anywhere.
	place := func(id content.NodeID, text string, off, w, trail int) {
		open = true
		if broken {
			newline()
			broken = false
		}
		if f.width > 0 && x > 0 && x+w-trail > f.width {
			newline()
		}
		if text != "" {
			out.Runs = append(out.Runs, Run{Node: id, X: x, Y: y, Width: w, Text: text, Offset: off})
		}
		x += w
		for f.width > 0 && x-trail > f.width {
			y += f.lineHeight
			x -= f.width
		}
	}

	for _, n := range nodes {
		if n.Resizable() {
			if open {
				newline()
				open, broken = false, false
			}
			w, h := f.element(n)
			out.Elements = append(out.Elements, Box{Node: n.ID, Y: y, Width: w, Height: h})
			y += h
			continue
		}

		s := inlineText(n)
		state := -1
		seg, trail := 0, 0
		off, start := 0, 0
		var sb strings.Builder
		for len(s) > 0 {
			var (
				cluster    string
				boundaries int
			)
			cluster, s, boundaries, state = uniseg.StepString(s, state)
			off++

			w := 0
			if !isLineBreak(cluster) {
				w = f.advance(cluster)
				sb.WriteString(cluster)
			}
			if isSpace(cluster) {
				trail += w
			} else {
				trail = 0
			}
			seg += w

			lb := boundaries & uniseg.MaskLine
			if lb == uniseg.LineDontBreak && len(s) > 0 {
				continue
			}
			place(n.ID, sb.String(), start, seg, trail)
			start = off
			sb.Reset()
			seg, trail = 0, 0
			if isLineBreak(cluster) {
				broken = true
			}
		}
	}

	if open {
		y += f.lineHeight
	}
	out.Height = y
	return out
}

// inlineText is the text a node contributes to the flow.
func inlineText(n *content.Node) string {
	switch {
	case n.IsText():
		return n.Text
	case n.Tag == "br":
		return "\n"
	default:
		return content.StripMarkup(n.Inner)
	}
}

func isLineBreak(cluster string) bool {
	switch cluster {
	case "\n", "\r", "\r\n", "\u2028", "\u2029":
		return true
	}
	return false
}

func isSpace(cluster string) bool {
	r, _ := utf8.DecodeRuneInString(cluster)
	return unicode.IsSpace(r)
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
