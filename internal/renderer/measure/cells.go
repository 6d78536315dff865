package measure

import (
	"github.com/mattn/go-runewidth"

	"github.com/dshills/folio/internal/engine/content"
	"github.com/dshills/folio/internal/engine/pagination"
)

// Default pixel size of one terminal cell, used to convert element sizes.
const (
	DefaultCellWidth  = 8
	DefaultCellHeight = 16
)

// Cells measures pages laid out on a terminal grid. Sizes are in cells.
type Cells struct {
	// Columns and Rows are the page size in cells.
	Columns int
	Rows    int

	// CellWidth and CellHeight are the pixel size of one cell.
	CellWidth  int
	CellHeight int
}

// NewCells creates a grid measurer for pages of the given size.
func NewCells(columns, rows int) *Cells {
	return &Cells{
		Columns:    columns,
		Rows:       rows,
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
	}
}

// Layout flows nodes onto the grid.
func (c *Cells) Layout(nodes []*content.Node) Layout {
	return flow{
		width:      c.Columns,
		lineHeight: 1,
		advance:    runewidth.StringWidth,
		element:    c.elementSize,
	}.lay(nodes)
}

// Measure implements pagination.Measurer.
func (c *Cells) Measure(p *pagination.Page) pagination.Metrics {
	return pagination.Metrics{
		ContentSize: c.Layout(p.Nodes()).Height,
		Capacity:    c.Rows,
	}
}

// ToPixels converts a cell position to pixels.
func (c *Cells) ToPixels(col, row int) (x, y int) {
	return col * c.CellWidth, row * c.CellHeight
}

// elementSize returns the element size in cells. Unsized elements take one
// cell; nothing is wider than the page.
func (c *Cells) elementSize(n *content.Node) (w, h int) {
	w = max(1, ceilDiv(n.Width, c.CellWidth))
	h = max(1, ceilDiv(n.Height, c.CellHeight))
	if c.Columns > 0 && w > c.Columns {
		w = c.Columns
	}
	return w, h
}
