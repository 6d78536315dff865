package pagination

import (
	"github.com/dshills/folio/internal/engine/content"
)

// PageID identifies a page for the lifetime of a document.
type PageID uint64

// Page is one unit of the paginated document: an ordered run of
// top-level content nodes.
type Page struct {
	ID    PageID
	nodes []*content.Node
}

// Nodes returns the page's nodes in order. The slice must not be modified.
func (p *Page) Nodes() []*content.Node {
	return p.nodes
}

// Len returns the number of top-level nodes.
func (p *Page) Len() int {
	return len(p.nodes)
}

// IsEmpty returns true if the page has no content.
func (p *Page) IsEmpty() bool {
	return len(p.nodes) == 0
}

// HTML returns the page content serialized as an HTML fragment.
func (p *Page) HTML() string {
	return content.Render(p.nodes)
}

// Text returns the concatenated text of the page's text runs.
func (p *Page) Text() string {
	var n int
	for _, node := range p.nodes {
		n += len(node.Text)
	}
	buf := make([]byte, 0, n)
	for _, node := range p.nodes {
		if node.IsText() {
			buf = append(buf, node.Text...)
		}
	}
	return string(buf)
}

// IndexOf returns the index of the node with the given id, or -1.
func (p *Page) IndexOf(id content.NodeID) int {
	for i, n := range p.nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (p *Page) last() *content.Node {
	if len(p.nodes) == 0 {
		return nil
	}
	return p.nodes[len(p.nodes)-1]
}

func (p *Page) popLast() *content.Node {
	n := p.last()
	if n != nil {
		p.nodes[len(p.nodes)-1] = nil
		p.nodes = p.nodes[:len(p.nodes)-1]
	}
	return n
}

func (p *Page) prepend(n *content.Node) {
	p.nodes = append(p.nodes, nil)
	copy(p.nodes[1:], p.nodes)
	p.nodes[0] = n
}

func (p *Page) insert(index int, n *content.Node) {
	if index < 0 || index >= len(p.nodes) {
		p.nodes = append(p.nodes, n)
		return
	}
	p.nodes = append(p.nodes, nil)
	copy(p.nodes[index+1:], p.nodes[index:])
	p.nodes[index] = n
}

func (p *Page) remove(index int) *content.Node {
	n := p.nodes[index]
	copy(p.nodes[index:], p.nodes[index+1:])
	p.nodes[len(p.nodes)-1] = nil
	p.nodes = p.nodes[:len(p.nodes)-1]
	return n
}

// migratable reports whether the page's tail can be moved to another page
// without leaving the page empty to no effect. A sole element or a sole
// text run too short to split stays where it is.
func (p *Page) migratable() bool {
	switch len(p.nodes) {
	case 0:
		return false
	case 1:
		n := p.nodes[0]
		return n.IsText() && n.Len() > 1
	default:
		return true
	}
}

// Metrics is the measured size of a page.
type Metrics struct {
	// ContentSize is the size the page's content occupies.
	ContentSize int
	// Capacity is the visible size available to the page.
	Capacity int
}

// Overflows returns true if the content exceeds the capacity.
func (m Metrics) Overflows() bool {
	return m.ContentSize > m.Capacity
}

// Measurer measures pages. It is supplied by the host rendering layer.
type Measurer interface {
	Measure(p *Page) Metrics
}

// MeasureFunc adapts a function to the Measurer interface.
type MeasureFunc func(p *Page) Metrics

// Measure calls f(p).
func (f MeasureFunc) Measure(p *Page) Metrics {
	return f(p)
}

// Focuser gives input focus to a page.
type Focuser interface {
	Focus(p *Page)
}
