package app

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/dshills/folio/internal/engine/content"
	"github.com/dshills/folio/internal/engine/pagination"
	"github.com/dshills/folio/internal/engine/selection"
)

// Surface is the editable surface of the terminal editor. It owns the live
// selection, resolves it against the engine's pages and applies edits at
// it. Surface implements selection.Host.
//
// A point on an element has offset 0 (before it) or 1 (after it). A zero
// node means the start of the container page.
type Surface struct {
	engine *pagination.Engine
	ranges []*liveRange
}

type liveRange struct {
	r selection.Range
}

func (l *liveRange) Range() selection.Range {
	return l.r
}

// NewSurface creates a surface editing the pages of e.
func NewSurface(e *pagination.Engine) *Surface {
	return &Surface{engine: e}
}

// RangeCount returns the number of live ranges.
func (s *Surface) RangeCount() int {
	return len(s.ranges)
}

// RangeAt returns the i-th live range.
func (s *Surface) RangeAt(i int) selection.LiveRange {
	return s.ranges[i]
}

// RemoveAllRanges clears the live selection.
func (s *Surface) RemoveAllRanges() {
	s.ranges = nil
}

// AddRange adds a copy of r to the live selection.
func (s *Surface) AddRange(r selection.Range) {
	s.ranges = append(s.ranges, &liveRange{r: r})
}

// Contains reports whether both ends of r lie on the page r names.
func (s *Surface) Contains(r selection.Range) bool {
	p, ok := s.engine.Page(pagination.PageID(r.Container))
	if !ok {
		return false
	}
	return onPage(p, r.Anchor) && onPage(p, r.Focus)
}

func onPage(p *pagination.Page, pt selection.Point) bool {
	return pt.Node == 0 || p.IndexOf(content.NodeID(pt.Node)) >= 0
}

// Current returns the first live range.
func (s *Surface) Current() (selection.Range, bool) {
	if len(s.ranges) == 0 {
		return selection.Range{}, false
	}
	return s.ranges[0].r, true
}

// Page returns the page holding the live selection, or the active page.
func (s *Surface) Page() *pagination.Page {
	if r, ok := s.Current(); ok {
		if p, ok := s.engine.Page(pagination.PageID(r.Container)); ok {
			return p
		}
	}
	return s.engine.Active()
}

// Collapse replaces the selection with a caret.
func (s *Surface) Collapse(p *pagination.Page, pt selection.Point) {
	s.Select(p, pt, pt)
}

// Select replaces the selection with a range on p.
func (s *Surface) Select(p *pagination.Page, anchor, focus selection.Point) {
	s.ranges = []*liveRange{{r: selection.Range{Container: uint64(p.ID), Anchor: anchor, Focus: focus}}}
	s.engine.SetActive(p)
}

// Extend moves the focus of the selection to pt on p. A focus on another
// page than the anchor collapses the selection there.
func (s *Surface) Extend(p *pagination.Page, pt selection.Point) {
	r, ok := s.Current()
	if !ok || r.Container != uint64(p.ID) {
		s.Collapse(p, pt)
		return
	}
	s.Select(p, r.Anchor, pt)
}

// CaretStart puts the caret before the first node of p.
func (s *Surface) CaretStart(p *pagination.Page) {
	s.Collapse(p, startOf(p))
}

// CaretEnd puts the caret after the last node of p.
func (s *Surface) CaretEnd(p *pagination.Page) {
	s.Collapse(p, endOf(p))
}

// PlaceAt puts the caret at a position reported by the view. Offsets
// inside an element snap to its nearer side.
func (s *Surface) PlaceAt(p *pagination.Page, node content.NodeID, off int, extend bool) {
	pt := selection.Point{Node: uint64(node), Offset: off}
	if n, ok := s.engine.Node(node); ok && !n.IsText() {
		pt.Offset = 0
		if off*2 >= max(content.GraphemeLen(inlineText(n)), 1) {
			pt.Offset = 1
		}
	}
	if node == 0 {
		pt = startOf(p)
	}
	if extend {
		s.Extend(p, pt)
		return
	}
	s.Collapse(p, pt)
}

// Caret returns the focus as a node and the grapheme offset a view draws
// it at. An element's far side is the end of its text; the far side of a
// line break is the start of whatever follows it.
func (s *Surface) Caret() (content.NodeID, int) {
	r, ok := s.Current()
	if !ok {
		return 0, 0
	}
	p := s.Page()
	pt := r.Focus
	if pt.Node == 0 {
		if nodes := p.Nodes(); len(nodes) > 0 {
			return nodes[0].ID, 0
		}
		return 0, 0
	}
	n, ok := s.engine.Node(content.NodeID(pt.Node))
	if !ok || n.IsText() || pt.Offset == 0 {
		return content.NodeID(pt.Node), pt.Offset
	}
	if n.Tag == "br" || n.Resizable() {
		nodes := p.Nodes()
		if i := p.IndexOf(n.ID); i >= 0 && i+1 < len(nodes) {
			return nodes[i+1].ID, 0
		}
		return n.ID, 0
	}
	return n.ID, content.GraphemeLen(inlineText(n))
}

// SelectedText returns the text covered by the selection.
func (s *Surface) SelectedText() string {
	r, ok := s.Current()
	if !ok || r.IsCollapsed() {
		return ""
	}
	p := s.Page()
	start, end := ordered(p, r)
	nodes := p.Nodes()

	var sb strings.Builder
	for i := max(start.idx, 0); i <= end.idx && i < len(nodes); i++ {
		n := nodes[i]
		from, to := 0, nodeLen(n)
		if i == start.idx {
			from = start.off
		}
		if i == end.idx {
			to = end.off
		}
		if from >= to {
			continue
		}
		if n.IsText() {
			sb.WriteString(slice(n.Text, from, to))
			continue
		}
		sb.WriteString(inlineText(n))
	}
	return sb.String()
}

// InsertText replaces the selection with text and leaves the caret after
// it. Line breaks in text become <br> elements. It returns the edited page.
func (s *Surface) InsertText(text string) *pagination.Page {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if !strings.Contains(text, "\n") {
		return s.insertRun(text)
	}
	var p *pagination.Page
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			p = s.InsertBreak()
		}
		if line != "" {
			p = s.insertRun(line)
		}
	}
	return p
}

// insertRun inserts text without line breaks.
func (s *Surface) insertRun(text string) *pagination.Page {
	p, pt := s.collapseForEdit()
	if text == "" {
		return p
	}

	nodes := p.Nodes()
	var n *content.Node
	idx := -1
	if pt.Node != 0 {
		idx = p.IndexOf(content.NodeID(pt.Node))
	}
	switch {
	case idx < 0:
		if len(nodes) > 0 && nodes[0].IsText() {
			n = nodes[0]
			n.Text = text + n.Text
			s.Collapse(p, selection.Point{Node: uint64(n.ID), Offset: content.GraphemeLen(text)})
			break
		}
		n = s.engine.Insert(p, 0, s.engine.Arena().NewText(text))
		s.Collapse(p, pointAfter(n))
	case nodes[idx].IsText():
		n = nodes[idx]
		a, b := content.SplitAt(n.Text, pt.Offset)
		n.Text = a + text + b
		s.Collapse(p, selection.Point{Node: uint64(n.ID), Offset: pt.Offset + content.GraphemeLen(text)})
	default:
		at := idx + pt.Offset
		if at < len(nodes) && pt.Offset == 1 && nodes[at].IsText() {
			n = nodes[at]
			n.Text = text + n.Text
			s.Collapse(p, selection.Point{Node: uint64(n.ID), Offset: content.GraphemeLen(text)})
			break
		}
		if at > 0 && pt.Offset == 0 && nodes[at-1].IsText() {
			n = nodes[at-1]
			n.Text += text
			s.Collapse(p, pointAfter(n))
			break
		}
		n = s.engine.Insert(p, at, s.engine.Arena().NewText(text))
		s.Collapse(p, pointAfter(n))
	}
	s.tidy(p)
	return p
}

// InsertNode puts n at the caret, splitting a text run around it, and
// leaves the caret after it. It returns the stored node.
func (s *Surface) InsertNode(n *content.Node) (*pagination.Page, *content.Node) {
	p, pt := s.collapseForEdit()
	nodes := p.Nodes()
	at := 0
	if pt.Node != 0 {
		idx := p.IndexOf(content.NodeID(pt.Node))
		switch {
		case idx < 0:
			at = len(nodes)
		case nodes[idx].IsText():
			t := nodes[idx]
			a, b := content.SplitAt(t.Text, pt.Offset)
			at = idx + 1
			switch {
			case a == "":
				at = idx
			case b != "":
				t.Text = a
				s.engine.Insert(p, idx+1, s.engine.Arena().NewText(b))
			}
		default:
			at = idx + pt.Offset
		}
	}
	stored := s.engine.Insert(p, at, n)
	s.Collapse(p, pointAfter(stored))
	s.tidy(p)
	return p, stored
}

// InsertBreak inserts a line break at the caret.
func (s *Surface) InsertBreak() *pagination.Page {
	p, _ := s.InsertNode(s.engine.Arena().NewElement("br", nil, ""))
	return p
}

// Backspace deletes the selection, or the grapheme or element before the
// caret. It returns the page and whether anything changed. Nothing before
// the start of a page is deleted.
func (s *Surface) Backspace() (*pagination.Page, bool) {
	r, ok := s.Current()
	if !ok {
		return s.engine.Active(), false
	}
	p := s.Page()
	if !r.IsCollapsed() {
		s.deleteSelection(p, r)
		s.tidy(p)
		return p, true
	}

	pt := r.Focus
	if pt.Node == 0 {
		return p, false
	}
	nodes := p.Nodes()
	idx := p.IndexOf(content.NodeID(pt.Node))
	if idx < 0 {
		return p, false
	}
	n := nodes[idx]
	switch {
	case n.IsText() && pt.Offset > 0:
		a, b := content.SplitAt(n.Text, pt.Offset-1)
		_, b = content.SplitAt(b, 1)
		n.Text = a + b
		s.Collapse(p, selection.Point{Node: pt.Node, Offset: pt.Offset - 1})
	case !n.IsText() && pt.Offset > 0:
		s.engine.Remove(n.ID)
		s.Collapse(p, pointNear(p, idx))
	case idx == 0:
		return p, false
	default:
		prev := nodes[idx-1]
		if prev.IsText() && prev.Len() > 0 {
			a, _ := content.SplitAt(prev.Text, prev.Len()-1)
			prev.Text = a
			s.Collapse(p, pointAfter(prev))
			break
		}
		s.engine.Remove(prev.ID)
	}
	s.tidy(p)
	return p, true
}

// Move moves the focus by delta graphemes in document order. Without
// extend the selection collapses; a collapsed caret crosses page
// boundaries.
func (s *Surface) Move(delta int, extend bool) {
	r, ok := s.Current()
	if !ok {
		s.CaretEnd(s.engine.Active())
		return
	}
	p := s.Page()
	if !extend && !r.IsCollapsed() {
		start, end := ordered(p, r)
		target := start
		if delta > 0 {
			target = end
		}
		s.Collapse(p, pointAt(p, target))
		return
	}

	pt := r.Focus
	step := 1
	if delta < 0 {
		step = -1
	}
	for i := 0; i != delta; i += step {
		np, next, ok := s.step(p, pt, step, !extend)
		if !ok {
			break
		}
		p, pt = np, next
	}
	if extend {
		s.Extend(p, pt)
		return
	}
	s.Collapse(p, pt)
}

func (s *Surface) step(p *pagination.Page, pt selection.Point, dir int, cross bool) (*pagination.Page, selection.Point, bool) {
	nodes := p.Nodes()
	pos := position(p, pt)
	if len(nodes) > 0 && pos.idx >= 0 && pos.idx < len(nodes) {
		n := nodes[pos.idx]
		if off := pos.off + dir; off >= 0 && off <= nodeLen(n) {
			return p, selection.Point{Node: uint64(n.ID), Offset: off}, true
		}
		next := pos.idx + dir
		if next >= 0 && next < len(nodes) {
			m := nodes[next]
			off := 1
			if dir < 0 {
				off = nodeLen(m) - 1
			}
			return p, selection.Point{Node: uint64(m.ID), Offset: max(off, 0)}, true
		}
	}
	if !cross {
		return p, pt, false
	}
	pages := s.engine.Pages()
	i := s.engine.IndexOf(p) + dir
	if i < 0 || i >= len(pages) {
		return p, pt, false
	}
	if dir > 0 {
		return pages[i], startOf(pages[i]), true
	}
	return pages[i], endOf(pages[i]), true
}

// Wrap wraps each selected run in a new tag element. Whole elements in
// the selection are nested inside the new tag. It returns how many nodes
// were wrapped and selects them.
func (s *Surface) Wrap(tag string, attrs []html.Attribute) (*pagination.Page, int) {
	r, ok := s.Current()
	if !ok || r.IsCollapsed() {
		return s.Page(), 0
	}
	p := s.Page()
	start, end := ordered(p, r)
	arena := s.engine.Arena()

	var first, last *content.Node
	count := 0
	for i := min(end.idx, p.Len()-1); i >= max(start.idx, 0); i-- {
		n := p.Nodes()[i]
		from, to := 0, nodeLen(n)
		if i == start.idx {
			from = start.off
		}
		if i == end.idx {
			to = end.off
		}
		if from >= to {
			continue
		}

		var el *content.Node
		if n.IsText() {
			a, rest := content.SplitAt(n.Text, from)
			mid, b := content.SplitAt(rest, to-from)
			el = arena.NewElement(tag, cloneAttrs(attrs), content.EscapeText(mid))
			n.Text = a
			if b != "" {
				s.engine.Insert(p, i+1, arena.NewText(b))
			}
			s.engine.Insert(p, i+1, el)
		} else {
			if n.Tag == "br" || n.Resizable() {
				continue
			}
			el = arena.NewElement(tag, cloneAttrs(attrs), n.HTML())
			s.engine.Insert(p, i, el)
			s.engine.Remove(n.ID)
		}
		if last == nil {
			last = el
		}
		first = el
		count++
	}
	if count == 0 {
		return p, 0
	}
	s.Select(p, selection.Point{Node: uint64(first.ID)}, selection.Point{Node: uint64(last.ID), Offset: 1})
	s.tidy(p)
	return p, count
}

// Unwrap replaces every element in the selection whose tag matches with
// its children, repeatedly, so nested matches go too. A caret unwraps the
// element it sits on. It returns the number of elements removed.
func (s *Surface) Unwrap(match func(tag string) bool) (*pagination.Page, int, error) {
	r, ok := s.Current()
	if !ok {
		return s.Page(), 0, nil
	}
	p := s.Page()
	start, end := ordered(p, r)
	lo, hi := max(start.idx, 0), min(end.idx, p.Len()-1)

	var first, last *content.Node
	count := 0
	for i := hi; i >= lo; i-- {
		n := p.Nodes()[i]
		if n.IsText() || !match(n.Tag) {
			continue
		}
		if i == end.idx && end.off == 0 && !r.IsCollapsed() {
			continue
		}
		if i == start.idx && start.off == 1 && !r.IsCollapsed() {
			continue
		}
		hoisted, removed, err := s.unwrap(p, i, n, match)
		if err != nil {
			return p, count, err
		}
		count += removed
		if len(hoisted) > 0 {
			if last == nil {
				last = hoisted[len(hoisted)-1]
			}
			first = hoisted[0]
		}
	}
	if count == 0 {
		return p, 0, nil
	}
	switch {
	case first == nil:
		s.Collapse(p, pointNear(p, lo))
	default:
		s.Select(p, selection.Point{Node: uint64(first.ID)}, pointAfter(last))
	}
	s.tidy(p)
	return p, count, nil
}

func (s *Surface) unwrap(p *pagination.Page, i int, n *content.Node, match func(string) bool) ([]*content.Node, int, error) {
	children, err := content.Parse(s.engine.Arena(), n.Inner)
	if err != nil {
		return nil, 0, err
	}
	s.engine.Remove(n.ID)
	removed := 1
	out := make([]*content.Node, 0, len(children))
	for _, c := range children {
		c = s.engine.Insert(p, i, c)
		i++
		if c.IsText() || !match(c.Tag) {
			out = append(out, c)
			continue
		}
		inner, k, err := s.unwrap(p, i-1, c, match)
		if err != nil {
			return nil, removed, err
		}
		removed += k
		i += len(inner) - 1
		out = append(out, inner...)
	}
	return out, removed, nil
}

// Normalize re-resolves the selection after content moved between pages.
// A caret past the end of a split run follows the run's tail onto the
// pages that received it.
func (s *Surface) Normalize() {
	r, ok := s.Current()
	if !ok {
		return
	}
	fp, focus := s.resolve(r.Container, r.Focus)
	ap, anchor := s.resolve(r.Container, r.Anchor)
	if ap != fp {
		s.Collapse(fp, focus)
		return
	}
	s.Select(fp, anchor, focus)
}

func (s *Surface) resolve(container uint64, pt selection.Point) (*pagination.Page, selection.Point) {
	if pt.Node == 0 {
		p, ok := s.engine.Page(pagination.PageID(container))
		if !ok {
			p = s.engine.Active()
		}
		return p, startOf(p)
	}
	p, idx := s.engine.Locate(content.NodeID(pt.Node))
	if p == nil {
		p = s.engine.Active()
		return p, endOf(p)
	}
	n := p.Nodes()[idx]
	if !n.IsText() || pt.Offset <= n.Len() {
		return p, pt
	}

	rest := pt.Offset - n.Len()
	pages := s.engine.Pages()
	for i := s.engine.IndexOf(p) + 1; i < len(pages); i++ {
		nodes := pages[i].Nodes()
		if len(nodes) == 0 || !nodes[0].IsText() {
			break
		}
		head := nodes[0]
		if rest <= head.Len() {
			return pages[i], selection.Point{Node: uint64(head.ID), Offset: rest}
		}
		rest -= head.Len()
		p, n = pages[i], head
	}
	return p, pointAfter(n)
}

// collapseForEdit deletes a non-empty selection and returns the caret.
func (s *Surface) collapseForEdit() (*pagination.Page, selection.Point) {
	r, ok := s.Current()
	if !ok {
		p := s.engine.Active()
		s.CaretEnd(p)
		r, _ = s.Current()
	}
	p := s.Page()
	if !r.IsCollapsed() {
		s.deleteSelection(p, r)
		r, _ = s.Current()
	}
	if !onPage(p, r.Focus) {
		s.CaretEnd(p)
		r, _ = s.Current()
	}
	return p, r.Focus
}

func (s *Surface) deleteSelection(p *pagination.Page, r selection.Range) {
	start, end := ordered(p, r)
	nodes := p.Nodes()
	if len(nodes) == 0 || start.idx < 0 {
		s.CaretStart(p)
		return
	}
	end.idx = min(end.idx, len(nodes)-1)

	ids := make([]content.NodeID, 0, end.idx-start.idx+1)
	for i := start.idx; i <= end.idx; i++ {
		ids = append(ids, nodes[i].ID)
	}
	head, _ := s.engine.Node(ids[0])

	if len(ids) == 1 {
		if head.IsText() {
			a, _ := content.SplitAt(head.Text, start.off)
			_, b := content.SplitAt(head.Text, end.off)
			head.Text = a + b
			s.Collapse(p, selection.Point{Node: uint64(head.ID), Offset: start.off})
			return
		}
		if start.off == 0 && end.off > 0 {
			s.engine.Remove(head.ID)
			s.Collapse(p, pointNear(p, start.idx))
		}
		return
	}

	if tail, ok := s.engine.Node(ids[len(ids)-1]); ok {
		switch {
		case tail.IsText():
			_, tail.Text = content.SplitAt(tail.Text, end.off)
		case end.off > 0:
			s.engine.Remove(tail.ID)
		}
	}
	for _, id := range ids[1 : len(ids)-1] {
		s.engine.Remove(id)
	}
	switch {
	case head.IsText():
		head.Text, _ = content.SplitAt(head.Text, start.off)
		s.Collapse(p, selection.Point{Node: uint64(head.ID), Offset: start.off})
	case start.off == 0:
		s.engine.Remove(head.ID)
		s.Collapse(p, pointNear(p, start.idx))
	default:
		s.Collapse(p, selection.Point{Node: uint64(head.ID), Offset: 1})
	}
}

// tidy merges adjacent text runs and drops empty ones, keeping the
// selection on the same text. A page left with nothing serializes as an
// empty page.
func (s *Surface) tidy(p *pagination.Page) {
	r, ok := s.Current()
	if !ok {
		return
	}
	anchor, focus := r.Anchor, r.Focus
	remap := func(pt *selection.Point, from, to *content.Node, shift int) {
		if pt.Node == uint64(from.ID) {
			pt.Node = uint64(to.ID)
			pt.Offset += shift
		}
	}

	for i := 0; i < p.Len(); {
		nodes := p.Nodes()
		n := nodes[i]
		if !n.IsText() {
			i++
			continue
		}
		if i+1 < len(nodes) && nodes[i+1].IsText() {
			next := nodes[i+1]
			shift := n.Len()
			n.Text += next.Text
			remap(&anchor, next, n, shift)
			remap(&focus, next, n, shift)
			s.engine.Remove(next.ID)
			continue
		}
		if n.Text == "" {
			id := uint64(n.ID)
			s.engine.Remove(n.ID)
			near := pointNear(p, i)
			if anchor.Node == id {
				anchor = near
			}
			if focus.Node == id {
				focus = near
			}
			continue
		}
		i++
	}
	s.Select(p, anchor, focus)
}

// pos is a point resolved to an index within a page.
type pos struct {
	idx, off int
}

func position(p *pagination.Page, pt selection.Point) pos {
	if pt.Node == 0 {
		return pos{idx: 0}
	}
	return pos{idx: p.IndexOf(content.NodeID(pt.Node)), off: pt.Offset}
}

func pointAt(p *pagination.Page, at pos) selection.Point {
	nodes := p.Nodes()
	if at.idx < 0 || at.idx >= len(nodes) {
		return startOf(p)
	}
	return selection.Point{Node: uint64(nodes[at.idx].ID), Offset: at.off}
}

// ordered returns the ends of r in document order.
func ordered(p *pagination.Page, r selection.Range) (start, end pos) {
	a, f := position(p, r.Anchor), position(p, r.Focus)
	if f.idx < a.idx || f.idx == a.idx && f.off < a.off {
		return f, a
	}
	return a, f
}

func startOf(p *pagination.Page) selection.Point {
	if nodes := p.Nodes(); len(nodes) > 0 {
		return selection.Point{Node: uint64(nodes[0].ID)}
	}
	return selection.Point{}
}

func endOf(p *pagination.Page) selection.Point {
	nodes := p.Nodes()
	if len(nodes) == 0 {
		return selection.Point{}
	}
	return pointAfter(nodes[len(nodes)-1])
}

func pointAfter(n *content.Node) selection.Point {
	return selection.Point{Node: uint64(n.ID), Offset: nodeLen(n)}
}

// pointNear returns the position that was before index idx once the node
// there is gone: the end of the previous node, or the start of the page.
func pointNear(p *pagination.Page, idx int) selection.Point {
	nodes := p.Nodes()
	if idx > 0 && idx-1 < len(nodes) {
		return pointAfter(nodes[idx-1])
	}
	return startOf(p)
}

func nodeLen(n *content.Node) int {
	if n.IsText() {
		return n.Len()
	}
	return 1
}

func slice(s string, from, to int) string {
	_, rest := content.SplitAt(s, from)
	mid, _ := content.SplitAt(rest, to-from)
	return mid
}

func cloneAttrs(attrs []html.Attribute) []html.Attribute {
	if attrs == nil {
		return nil
	}
	return append([]html.Attribute(nil), attrs...)
}

// inlineText is the text an element shows in the flow.
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
