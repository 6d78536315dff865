package renderer

import (
	"fmt"
	"sync"

	"github.com/dshills/folio/internal/engine/content"
	"github.com/dshills/folio/internal/engine/pagination"
	"github.com/dshills/folio/internal/input/mouse"
	"github.com/dshills/folio/internal/input/resize"
	"github.com/dshills/folio/internal/renderer/backend"
	"github.com/dshills/folio/internal/renderer/core"
	"github.com/dshills/folio/internal/renderer/measure"
)

// Document is the paged content a View draws.
type Document interface {
	Pages() []*pagination.Page
	Node(id content.NodeID) (*content.Node, bool)
}

// Styles used by the view.
var (
	deskStyle    = core.DefaultStyle().WithBackground(core.ColorGray)
	paperStyle   = core.DefaultStyle().WithBackground(core.ColorPaper).WithForeground(core.ColorBlack)
	frameStyle   = paperStyle.WithForeground(core.ColorGray)
	labelStyle   = frameStyle.Bold()
	elementStyle = paperStyle.WithForeground(core.ColorBlue)
	wrapperStyle = paperStyle.WithForeground(core.ColorBlue).Dim()
	handleStyle  = core.DefaultStyle().WithBackground(core.ColorBlue).WithForeground(core.ColorWhite)
)

// frame is one page as placed in the view. Rows are document rows, before
// scrolling.
type frame struct {
	page   *pagination.Page
	outer  core.ScreenRect
	inner  core.ScreenRect
	layout measure.Layout
}

// View draws a document as a column of pages and resolves pointer
// positions against what it drew.
//
// Pointer positions are in pixels: a cell at (col, row) spans the pixels
// starting at the measurer's ToPixels(col, row). View satisfies
// pagination.Focuser, resize.Decorator and resize.HitTester.
type View struct {
	mu      sync.Mutex
	backend backend.Backend
	cells   *measure.Cells
	area    core.ScreenRect
	scroll  int
	frames  []frame

	wrapped resize.ElementID
	handles []resize.Handle

	focus *pagination.Page

	caret    content.NodeID
	caretOff int
}

// NewView creates a view drawing into area of b, laying pages out with
// cells.
func NewView(b backend.Backend, cells *measure.Cells, area core.ScreenRect) *View {
	return &View{backend: b, cells: cells, area: area}
}

// SetArea moves the view to a new screen region.
func (v *View) SetArea(area core.ScreenRect) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.area = area
}

// Scroll moves the view by rows; negative scrolls up.
func (v *View) Scroll(rows int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scroll = max(0, v.scroll+rows)
}

// ScrollOffset returns the number of document rows above the view.
func (v *View) ScrollOffset() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scroll
}

// Focus scrolls p into view on the next Render.
func (v *View) Focus(p *pagination.Page) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.focus = p
}

// Wrap draws a resize wrapper around the element from the next Render.
func (v *View) Wrap(id resize.ElementID, handles []resize.Handle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wrapped = id
	v.handles = append(v.handles[:0], handles...)
}

// Unwrap removes the wrapper.
func (v *View) Unwrap(id resize.ElementID) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.wrapped == id {
		v.wrapped = 0
		v.handles = v.handles[:0]
	}
}

// ToPixels converts a pointer event in screen cells to pixels.
func (v *View) ToPixels(ev mouse.Event) mouse.Event {
	ev.Position.X, ev.Position.Y = v.cells.ToPixels(ev.Position.X, ev.Position.Y)
	return ev
}

// Render lays out and draws doc.
func (v *View) Render(doc Document) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.layout(doc.Pages())
	if v.focus != nil {
		for _, f := range v.frames {
			if f.page == v.focus {
				v.scroll = f.outer.Top
			}
		}
		v.focus = nil
	}

	v.backend.Fill(v.area, core.Cell{Rune: ' ', Width: 1, Style: deskStyle})
	for i, f := range v.frames {
		v.drawFrame(i, f, doc)
	}
	v.drawCaret()
}

func (v *View) layout(pages []*pagination.Page) {
	v.frames = v.frames[:0]
	width := v.cells.Columns + 2
	height := v.cells.Rows + 2
	left := v.area.Left + max(0, (v.area.Width()-width)/2)

	top := 0
	for _, p := range pages {
		outer := core.RectFromSize(top, left, height, width)
		inner := core.RectFromSize(top+1, left+1, v.cells.Rows, v.cells.Columns)
		v.frames = append(v.frames, frame{
			page:   p,
			outer:  outer,
			inner:  inner,
			layout: v.cells.Layout(p.Nodes()),
		})
		top += height + 1
	}
}

func (v *View) drawFrame(index int, f frame, doc Document) {
	o := f.outer
	v.fill(f.inner, core.Cell{Rune: ' ', Width: 1, Style: paperStyle})

	for col := o.Left + 1; col < o.Right-1; col++ {
		v.set(col, o.Top, '─', frameStyle)
		v.set(col, o.Bottom-1, '─', frameStyle)
	}
	for row := o.Top + 1; row < o.Bottom-1; row++ {
		v.set(o.Left, row, '│', frameStyle)
		v.set(o.Right-1, row, '│', frameStyle)
	}
	v.set(o.Left, o.Top, '┌', frameStyle)
	v.set(o.Right-1, o.Top, '┐', frameStyle)
	v.set(o.Left, o.Bottom-1, '└', frameStyle)
	v.set(o.Right-1, o.Bottom-1, '┘', frameStyle)
	v.text(o.Left+2, o.Top, o.Right-1, fmt.Sprintf(" Page %d ", index+1), labelStyle)

	for _, r := range f.layout.Runs {
		v.run(f.inner, r)
	}
	for _, b := range f.layout.Elements {
		rect := boxRect(f.inner, b)
		v.fill(rect, core.Cell{Rune: '░', Width: 1, Style: elementStyle})
		if n, ok := doc.Node(b.Node); ok {
			v.text(rect.Left, rect.Top, rect.Right, fmt.Sprintf("[%s %dx%d]", n.Tag, n.Width, n.Height), elementStyle)
		}
		if resize.ElementID(b.Node) == v.wrapped {
			v.drawWrapper(rect)
		}
	}
}

// run draws a text run, wrapping at the right edge of inner and clipping
// at its bottom.
func (v *View) run(inner core.ScreenRect, r measure.Run) {
	col, row := inner.Left+r.X, inner.Top+r.Y
	for _, ch := range r.Text {
		w := core.RuneWidth(ch)
		if w == 0 {
			continue
		}
		if col+w > inner.Right {
			col = inner.Left
			row++
		}
		if row >= inner.Bottom {
			return
		}
		v.set(col, row, ch, paperStyle)
		if w == 2 {
			v.setCell(col+1, row, core.Cell{Style: paperStyle})
		}
		col += w
	}
}

func (v *View) drawWrapper(rect core.ScreenRect) {
	for col := rect.Left - 1; col <= rect.Right; col++ {
		v.set(col, rect.Top-1, '┄', wrapperStyle)
		v.set(col, rect.Bottom, '┄', wrapperStyle)
	}
	for row := rect.Top; row < rect.Bottom; row++ {
		v.set(rect.Left-1, row, '┆', wrapperStyle)
		v.set(rect.Right, row, '┆', wrapperStyle)
	}
	for _, h := range v.handles {
		col, row := handleCell(rect, h)
		v.set(col, row, '■', handleStyle)
	}
}

// HitTest resolves a pointer position in pixels.
func (v *View) HitTest(p mouse.Position) resize.Hit {
	v.mu.Lock()
	defer v.mu.Unlock()

	col, row := p.X/v.cells.CellWidth, p.Y/v.cells.CellHeight
	if !v.area.Contains(col, row) {
		return resize.Hit{Kind: resize.HitOutside}
	}
	row = row - v.area.Top + v.scroll

	if v.wrapped != 0 {
		if rect, ok := v.elementRect(content.NodeID(v.wrapped)); ok {
			for _, h := range v.handles {
				if hc, hr := handleCell(rect, h); hc == col && hr == row {
					return resize.Hit{Kind: resize.HitHandle, Element: v.wrapped, Handle: h}
				}
			}
			around := core.ScreenRect{Top: rect.Top - 1, Left: rect.Left - 1, Bottom: rect.Bottom + 1, Right: rect.Right + 1}
			if around.Contains(col, row) && !rect.Contains(col, row) {
				return resize.Hit{Kind: resize.HitWrapper}
			}
		}
	}

	for _, f := range v.frames {
		if !f.inner.Contains(col, row) {
			continue
		}
		if b, ok := f.layout.ElementAt(col-f.inner.Left, row-f.inner.Top); ok {
			return resize.Hit{Kind: resize.HitElement, Element: resize.ElementID(b.Node)}
		}
		return resize.Hit{Kind: resize.HitSurface}
	}
	return resize.Hit{Kind: resize.HitOutside}
}

// PageAt returns the page under a pointer position in pixels.
func (v *View) PageAt(p mouse.Position) (*pagination.Page, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	col, row := p.X/v.cells.CellWidth, p.Y/v.cells.CellHeight
	row = row - v.area.Top + v.scroll
	for _, f := range v.frames {
		if f.outer.Contains(col, row) {
			return f.page, true
		}
	}
	return nil, false
}

func (v *View) elementRect(id content.NodeID) (core.ScreenRect, bool) {
	for _, f := range v.frames {
		for _, b := range f.layout.Elements {
			if b.Node == id {
				return boxRect(f.inner, b), true
			}
		}
	}
	return core.ScreenRect{}, false
}

func boxRect(inner core.ScreenRect, b measure.Box) core.ScreenRect {
	return core.RectFromSize(inner.Top+b.Y, inner.Left+b.X, b.Height, b.Width)
}

// handleCell returns where handle h sits around rect: corners diagonally
// outside, edges at the middle of each side.
func handleCell(rect core.ScreenRect, h resize.Handle) (col, row int) {
	left, right := rect.Left-1, rect.Right
	top, bottom := rect.Top-1, rect.Bottom
	midX := (rect.Left + rect.Right - 1) / 2
	midY := (rect.Top + rect.Bottom - 1) / 2

	switch h {
	case resize.HandleNW:
		return left, top
	case resize.HandleNE:
		return right, top
	case resize.HandleSW:
		return left, bottom
	case resize.HandleSE:
		return right, bottom
	case resize.HandleN:
		return midX, top
	case resize.HandleS:
		return midX, bottom
	case resize.HandleW:
		return left, midY
	default:
		return right, midY
	}
}

// set draws a rune at a document position.
func (v *View) set(col, row int, r rune, style core.Style) {
	v.setCell(col, row, core.NewStyledCell(r, style))
}

func (v *View) setCell(col, row int, c core.Cell) {
	row = row - v.scroll + v.area.Top
	if v.area.Contains(col, row) {
		v.backend.SetCell(col, row, c)
	}
}

func (v *View) fill(rect core.ScreenRect, c core.Cell) {
	for row := rect.Top; row < rect.Bottom; row++ {
		for col := rect.Left; col < rect.Right; col++ {
			v.setCell(col, row, c)
		}
	}
}

// text draws s from col, stopping before limit.
func (v *View) text(col, row, limit int, s string, style core.Style) {
	for _, r := range s {
		w := core.RuneWidth(r)
		if col+w > limit {
			return
		}
		v.set(col, row, r, style)
		col += w
	}
}

// SetCaret places the terminal cursor at a grapheme offset within node
// from the next Render. A zero node hides it.
func (v *View) SetCaret(node content.NodeID, offset int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.caret, v.caretOff = node, offset
}

// CaretAt resolves a pointer position in pixels to the page under it and
// the text position nearest to it. A page without text resolves to the
// page alone, with a zero node.
func (v *View) CaretAt(p mouse.Position) (*pagination.Page, content.NodeID, int, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	col, row := p.X/v.cells.CellWidth, p.Y/v.cells.CellHeight
	row = row - v.area.Top + v.scroll
	for _, f := range v.frames {
		if !f.outer.Contains(col, row) {
			continue
		}
		x := min(max(col-f.inner.Left, 0), f.inner.Width())
		y := min(max(row-f.inner.Top, 0), f.inner.Height()-1)
		for ; y >= 0; y-- {
			if id, off, ok := v.cells.CaretAt(f.layout, x, y); ok {
				return f.page, id, off, true
			}
			x = f.inner.Width()
		}
		return f.page, 0, 0, true
	}
	return nil, 0, 0, false
}

func (v *View) drawCaret() {
	if v.caret == 0 {
		v.backend.HideCursor()
		return
	}
	for _, f := range v.frames {
		if f.page.IndexOf(v.caret) < 0 {
			continue
		}
		x, y, ok := v.cells.CaretPos(f.layout, v.caret, v.caretOff)
		if !ok {
			x, y = 0, min(f.layout.Height, f.inner.Height()-1)
		}
		col := f.inner.Left + min(x, f.inner.Width()-1)
		row := f.inner.Top + min(y, f.inner.Height()-1) - v.scroll + v.area.Top
		if v.area.Contains(col, row) {
			v.backend.ShowCursor(col, row)
			return
		}
	}
	v.backend.HideCursor()
}
