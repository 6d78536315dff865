package measure

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/folio/internal/engine/content"
)

// CaretAt returns the text position at cell (x, y) of l: the node and the
// grapheme offset before the cluster under x. Past the end of a line it
// returns the end of the line's last run.
func (c *Cells) CaretAt(l Layout, x, y int) (content.NodeID, int, bool) {
	return caretAt(l, x, y, runewidth.StringWidth)
}

// CaretPos returns the cell where a caret at offset within node sits.
func (c *Cells) CaretPos(l Layout, node content.NodeID, offset int) (x, y int, ok bool) {
	return caretPos(l, node, offset, runewidth.StringWidth)
}

func caretAt(l Layout, x, y int, advance func(string) int) (content.NodeID, int, bool) {
	var last *Run
	for i := range l.Runs {
		r := &l.Runs[i]
		if r.Y != y {
			continue
		}
		if x < r.X {
			if last == nil {
				return r.Node, r.Offset, true
			}
			break
		}
		last = r
		if x >= r.X+r.Width {
			continue
		}
		k, cx := 0, r.X
		g := uniseg.NewGraphemes(r.Text)
		for g.Next() {
			w := advance(g.Str())
			if x < cx+w {
				break
			}
			cx += w
			k++
		}
		return r.Node, r.Offset + k, true
	}
	if last == nil {
		return 0, 0, false
	}
	return last.Node, last.Offset + uniseg.GraphemeClusterCount(last.Text), true
}

func caretPos(l Layout, node content.NodeID, offset int, advance func(string) int) (x, y int, ok bool) {
	for i, r := range l.Runs {
		if r.Node != node {
			continue
		}
		n := uniseg.GraphemeClusterCount(r.Text)
		if offset < r.Offset || offset > r.Offset+n {
			continue
		}
		// The end of a wrapped run is the start of the next line.
		if offset == r.Offset+n && i+1 < len(l.Runs) && l.Runs[i+1].Node == node && l.Runs[i+1].Offset == offset {
			continue
		}
		x = r.X
		g := uniseg.NewGraphemes(r.Text)
		for k := 0; k < offset-r.Offset && g.Next(); k++ {
			x += advance(g.Str())
		}
		return x, r.Y, true
	}
	return 0, 0, false
}
