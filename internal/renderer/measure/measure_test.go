package measure

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/dshills/folio/internal/engine/content"
	"github.com/dshills/folio/internal/engine/pagination"
)

func textNodes(a *content.Arena, texts ...string) []*content.Node {
	nodes := make([]*content.Node, len(texts))
	for i, s := range texts {
		nodes[i] = a.NewText(s)
	}
	return nodes
}

func TestCellsLayoutText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"fits", "abcde", 1},
		{"word wrap", "hello world", 2},
		{"trailing space hangs", "abcd ", 1},
		{"long word", "abcdefghijkl", 3},
		{"hard break", "a\nb", 2},
		{"blank line", "a\n\nb", 3},
		{"trailing newline", "a\n", 1},
		{"wide", "日本語", 2},
	}

	c := NewCells(5, 10)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := content.NewArena()
			got := c.Layout(textNodes(a, tt.text)).Height
			if got != tt.want {
				t.Errorf("Layout(%q).Height = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestCellsLayoutElements(t *testing.T) {
	a := content.NewArena()
	img := a.NewElement("img", nil, "")
	img.SetSize(80, 32)
	nodes := []*content.Node{a.NewText("ab"), img, a.NewText("c")}

	c := NewCells(5, 10)
	l := c.Layout(nodes)

	if l.Height != 4 {
		t.Errorf("Height = %d, want 4", l.Height)
	}
	if len(l.Elements) != 1 {
		t.Fatalf("len(Elements) = %d, want 1", len(l.Elements))
	}
	want := Box{Node: img.ID, X: 0, Y: 1, Width: 5, Height: 2}
	if l.Elements[0] != want {
		t.Errorf("Elements[0] = %+v, want %+v", l.Elements[0], want)
	}

	if b, ok := l.ElementAt(2, 2); !ok || b.Node != img.ID {
		t.Errorf("ElementAt(2, 2) = %+v, %v", b, ok)
	}
	if _, ok := l.ElementAt(0, 0); ok {
		t.Error("ElementAt(0, 0) should miss")
	}
}

func TestCellsUnsizedElement(t *testing.T) {
	a := content.NewArena()
	table := a.NewElement("table", nil, "<tbody></tbody>")

	l := NewCells(40, 10).Layout([]*content.Node{table})
	if l.Height != 1 || l.Elements[0].Width != 1 {
		t.Errorf("unsized element = %+v, want 1x1", l.Elements[0])
	}
}

func TestCellsMeasure(t *testing.T) {
	c := NewCells(5, 2)
	e := pagination.New(c)
	p := e.Active()

	e.AppendText(p, "abcde")
	if m := c.Measure(p); m.ContentSize != 1 || m.Capacity != 2 || m.Overflows() {
		t.Errorf("Measure() = %+v", m)
	}

	e.AppendText(p, "fghijklmno")
	if m := c.Measure(p); !m.Overflows() {
		t.Errorf("Measure() = %+v, want overflow", m)
	}
}

func TestCellsPaginates(t *testing.T) {
	c := NewCells(10, 3)
	e := pagination.New(c)
	e.AppendText(e.Active(), "one two three four five six seven eight nine ten eleven twelve")
	e.Reflow()

	for i, p := range e.Pages() {
		if m := c.Measure(p); m.Overflows() {
			t.Errorf("page %d overflows: %+v", i, m)
		}
	}
	if e.PageCount() < 2 {
		t.Errorf("PageCount() = %d, want at least 2", e.PageCount())
	}
}

func TestCellsToPixels(t *testing.T) {
	c := NewCells(80, 24)
	if x, y := c.ToPixels(3, 2); x != 24 || y != 32 {
		t.Errorf("ToPixels(3, 2) = (%d, %d), want (24, 32)", x, y)
	}
}

func TestBasicFontLayout(t *testing.T) {
	f := NewBasicFont(35, 100)
	defer f.Close()

	if f.LineHeight() != 13 {
		t.Fatalf("LineHeight() = %d, want 13", f.LineHeight())
	}
	if w := f.TextWidth("hello"); w != 35 {
		t.Errorf("TextWidth(hello) = %d, want 35", w)
	}

	a := content.NewArena()
	if h := f.Layout(textNodes(a, "hello world")).Height; h != 26 {
		t.Errorf("Layout(hello world).Height = %d, want 26", h)
	}

	img := a.NewElement("img", nil, "")
	img.SetSize(200, 40)
	l := f.Layout([]*content.Node{a.NewText("hi"), img})
	if l.Height != 53 {
		t.Errorf("Height = %d, want 53", l.Height)
	}
	if l.Elements[0].Y != 13 || l.Elements[0].Width != 200 {
		t.Errorf("Elements[0] = %+v", l.Elements[0])
	}
}

func TestNewFont(t *testing.T) {
	f, err := NewFont(16, 400, 600)
	if err != nil {
		t.Fatalf("NewFont() error = %v", err)
	}
	defer f.Close()

	if f.LineHeight() <= 0 {
		t.Errorf("LineHeight() = %d", f.LineHeight())
	}
	if narrow, wide := f.TextWidth("iiii"), f.TextWidth("WWWW"); narrow >= wide {
		t.Errorf("TextWidth(iiii) = %d, TextWidth(WWWW) = %d, want proportional", narrow, wide)
	}
}

func TestSniffImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatal(err)
	}
	var bmpBuf bytes.Buffer
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		data   []byte
		format string
	}{
		{"png", pngBuf.Bytes(), "png"},
		{"bmp", bmpBuf.Bytes(), "bmp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := SniffImage(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("SniffImage() error = %v", err)
			}
			if info.Format != tt.format || info.Width != 3 || info.Height != 2 {
				t.Errorf("SniffImage() = %+v", info)
			}
			if got := info.MIMEType(); got != "image/"+tt.format {
				t.Errorf("MIMEType() = %q", got)
			}
		})
	}

	if _, err := SniffImage(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Error("SniffImage(garbage) should fail")
	}
}

func TestCellsLayoutRuns(t *testing.T) {
	a := content.NewArena()
	nodes := []*content.Node{
		a.NewText("hello world"),
		a.NewElement("br", nil, ""),
		a.NewElement("b", nil, "bold"),
	}

	l := NewCells(8, 10).Layout(nodes)
	want := []Run{
		{Node: nodes[0].ID, X: 0, Y: 0, Width: 6, Text: "hello "},
		{Node: nodes[0].ID, X: 0, Y: 1, Width: 5, Text: "world", Offset: 6},
		{Node: nodes[2].ID, X: 0, Y: 2, Width: 4, Text: "bold"},
	}
	if len(l.Runs) != len(want) {
		t.Fatalf("Runs = %+v, want %+v", l.Runs, want)
	}
	for i := range want {
		if l.Runs[i] != want[i] {
			t.Errorf("Runs[%d] = %+v, want %+v", i, l.Runs[i], want[i])
		}
	}
	if l.Height != 3 {
		t.Errorf("Height = %d, want 3", l.Height)
	}
	if len(l.Elements) != 0 {
		t.Errorf("inline elements should not be boxes: %+v", l.Elements)
	}
}
