package measure

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/dshills/folio/internal/engine/content"
	"github.com/dshills/folio/internal/engine/pagination"
)

// Font measures pages set in a proportional font. Sizes are in pixels.
type Font struct {
	face       font.Face
	width      int
	height     int
	lineHeight int
}

// NewFont creates a measurer for pages of width by height pixels set in
// Go Regular at size points (72 DPI, so one point is one pixel).
func NewFont(size float64, width, height int) (*Font, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create face: %w", err)
	}
	return newFont(face, width, height), nil
}

// NewBasicFont creates a measurer using the fixed 7x13 bitmap face.
func NewBasicFont(width, height int) *Font {
	return newFont(basicfont.Face7x13, width, height)
}

func newFont(face font.Face, width, height int) *Font {
	return &Font{
		face:       face,
		width:      width,
		height:     height,
		lineHeight: face.Metrics().Height.Ceil(),
	}
}

// LineHeight returns the height of one line of text.
func (f *Font) LineHeight() int {
	return f.lineHeight
}

// TextWidth returns the advance width of s.
func (f *Font) TextWidth(s string) int {
	return font.MeasureString(f.face, s).Ceil()
}

// Layout flows nodes onto the page.
func (f *Font) Layout(nodes []*content.Node) Layout {
	return flow{
		width:      f.width,
		lineHeight: f.lineHeight,
		advance:    f.TextWidth,
		element:    f.elementSize,
	}.lay(nodes)
}

// Measure implements pagination.Measurer.
func (f *Font) Measure(p *pagination.Page) pagination.Metrics {
	return pagination.Metrics{
		ContentSize: f.Layout(p.Nodes()).Height,
		Capacity:    f.height,
	}
}

// Close releases the font face.
func (f *Font) Close() error {
	return f.face.Close()
}

// elementSize uses the element's own size. Unsized elements take one line.
func (f *Font) elementSize(n *content.Node) (w, h int) {
	w, h = n.Width, n.Height
	if h <= 0 {
		h = f.lineHeight
	}
	return w, h
}
