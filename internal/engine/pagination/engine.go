package pagination

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/folio/internal/engine/content"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/topic"
)

// PageBreak separates pages in the serialized document.
const PageBreak = "\n\n---PAGE BREAK---\n\n"

// Logger receives diagnostic messages.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

type nopFocuser struct{}

func (nopFocuser) Focus(*Page) {}

// Engine owns the ordered page sequence of one document and keeps every
// page within its capacity by migrating overflowing content forward.
//
// Engine is not safe for concurrent use. It is driven synchronously from
// the editor's event loop.
type Engine struct {
	arena    *content.Arena
	pages    []*Page
	active   *Page
	nextID   PageID
	measurer Measurer
	focuser  Focuser
	logger   Logger
	events   event.Publisher
}

// Option configures an Engine.
type Option func(*Engine)

// WithFocuser sets the capability used to focus newly created pages.
func WithFocuser(f Focuser) Option {
	return func(e *Engine) {
		e.focuser = f
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithPublisher sets where page lifecycle events are published.
func WithPublisher(p event.Publisher) Option {
	return func(e *Engine) {
		e.events = p
	}
}

// WithArena shares a node arena with the engine.
func WithArena(a *content.Arena) Option {
	return func(e *Engine) {
		e.arena = a
	}
}

// New creates a document with a single empty page.
func New(m Measurer, opts ...Option) *Engine {
	e := &Engine{
		measurer: m,
		focuser:  nopFocuser{},
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.arena == nil {
		e.arena = content.NewArena()
	}
	e.CreatePage(nil)
	return e
}

// Arena returns the node arena backing the document.
func (e *Engine) Arena() *content.Arena {
	return e.arena
}

// Pages returns the pages in document order.
func (e *Engine) Pages() []*Page {
	out := make([]*Page, len(e.pages))
	copy(out, e.pages)
	return out
}

// Page returns the page with the given id.
func (e *Engine) Page(id PageID) (*Page, bool) {
	for _, p := range e.pages {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// IndexOf returns the ordinal of p in the document, or -1.
func (e *Engine) IndexOf(p *Page) int {
	for i, q := range e.pages {
		if q == p {
			return i
		}
	}
	return -1
}

// Active returns the page that last received focus.
func (e *Engine) Active() *Page {
	return e.active
}

// SetActive marks p as the active page. Pages not in the document are ignored.
func (e *Engine) SetActive(p *Page) {
	if e.IndexOf(p) >= 0 {
		e.active = p
	}
}

// CreatePage inserts a new empty page immediately after after, or at the
// end when after is nil or not part of the document. The new page receives
// focus and becomes the active page.
func (e *Engine) CreatePage(after *Page) *Page {
	e.nextID++
	p := &Page{ID: e.nextID}

	idx := e.IndexOf(after)
	if idx < 0 || idx == len(e.pages)-1 {
		e.pages = append(e.pages, p)
	} else {
		e.pages = append(e.pages, nil)
		copy(e.pages[idx+2:], e.pages[idx+1:])
		e.pages[idx+1] = p
	}

	e.focuser.Focus(p)
	e.active = p
	e.publish(event.TopicPageCreated, p)
	return p
}

// CheckOverflow migrates content off the tail of p while p overflows.
//
// Each iteration creates a page right after p and moves p's last node to
// the front of it. A text run is split at its grapheme midpoint and only
// the second half moves. The loop stops when p fits, or when p has nothing
// left worth migrating; an oversized sole element stays put and remains
// overflowed.
func (e *Engine) CheckOverflow(p *Page) {
	if e.IndexOf(p) < 0 {
		return
	}

	for e.measurer.Measure(p).Overflows() {
		if !p.migratable() {
			e.logger.Debug("overflow stall", "page", p.ID, "nodes", p.Len())
			return
		}

		last := p.last()
		if last.IsText() && last.Text == "" {
			p.popLast()
			e.arena.Release(last.ID)
			continue
		}

		next := e.CreatePage(p)
		if last.IsText() {
			left, right := content.SplitMidpoint(last.Text)
			if left != "" {
				last.Text = left
				next.prepend(e.arena.NewText(right))
				continue
			}
		}
		next.prepend(p.popLast())
	}
}

// Reflow checks every page for overflow in document order, including the
// pages created along the way.
func (e *Engine) Reflow() {
	for i := 0; i < len(e.pages); i++ {
		e.CheckOverflow(e.pages[i])
	}
}

// DocumentContent serializes every page in order, joined by PageBreak.
func (e *Engine) DocumentContent() string {
	parts := make([]string, len(e.pages))
	for i, p := range e.pages {
		parts[i] = p.HTML()
	}
	return strings.Join(parts, PageBreak)
}

// PageCount returns the number of pages.
func (e *Engine) PageCount() int {
	return len(e.pages)
}

// WordCount returns the number of whitespace-delimited words across all
// pages, ignoring markup and page breaks.
func (e *Engine) WordCount() int {
	total := 0
	for _, p := range e.pages {
		total += content.WordCount(p.HTML())
	}
	return total
}

// Reset discards every page and starts over with one empty page.
func (e *Engine) Reset() {
	e.arena.Reset()
	e.pages = nil
	e.active = nil
	e.CreatePage(nil)
	e.publish(event.TopicDocumentReset, e.pages[0])
}

// Load replaces the document with a serialized one. Each PageBreak
// separated part becomes a page; an empty string yields one empty page.
func (e *Engine) Load(serialized string) error {
	parts := strings.Split(serialized, PageBreak)
	arena := content.NewArena()
	pages := make([][]*content.Node, 0, len(parts))
	for i, part := range parts {
		nodes, err := content.Parse(arena, part)
		if err != nil {
			return fmt.Errorf("load page %d: %w", i+1, err)
		}
		pages = append(pages, nodes)
	}

	e.arena.Reset()
	e.pages = nil
	e.active = nil
	for _, nodes := range pages {
		p := e.CreatePage(nil)
		for _, n := range nodes {
			p.nodes = append(p.nodes, e.arena.Adopt(n))
		}
	}
	e.SetActive(e.pages[0])
	e.publish(event.TopicDocumentReset, e.pages[0])
	return nil
}

// Insert adds n to p at index; an out-of-range index appends. A node not
// allocated from the document's arena is adopted first, and the node
// actually stored is returned.
func (e *Engine) Insert(p *Page, index int, n *content.Node) *content.Node {
	if known, ok := e.arena.Get(n.ID); !ok || known != n {
		n = e.arena.Adopt(n)
	}
	p.insert(index, n)
	return n
}

// AppendText appends text to p, extending a trailing text run if there is
// one. It returns the text node that received the text.
func (e *Engine) AppendText(p *Page, text string) *content.Node {
	if last := p.last(); last != nil && last.IsText() {
		last.Text += text
		return last
	}
	n := e.arena.NewText(text)
	p.nodes = append(p.nodes, n)
	return n
}

// Remove deletes the node with the given id from whichever page holds it.
func (e *Engine) Remove(id content.NodeID) bool {
	p, idx := e.Locate(id)
	if p == nil {
		return false
	}
	p.remove(idx)
	e.arena.Release(id)
	return true
}

// Locate returns the page holding the node and its index within the page.
func (e *Engine) Locate(id content.NodeID) (*Page, int) {
	for _, p := range e.pages {
		if i := p.IndexOf(id); i >= 0 {
			return p, i
		}
	}
	return nil, -1
}

// Node resolves a node id.
func (e *Engine) Node(id content.NodeID) (*content.Node, bool) {
	return e.arena.Get(id)
}

// FindReplace replaces find with replace in every text run of every page
// and returns the number of replacements.
func (e *Engine) FindReplace(find, replace string) int {
	total := 0
	for _, p := range e.pages {
		total += content.ReplaceText(p.nodes, find, replace)
	}
	return total
}

// HandleContentChanged is an event handler that checks the changed page
// for overflow. Subscribe it to event.TopicContentChanged.
func (e *Engine) HandleContentChanged(_ context.Context, ev event.Event) error {
	p, ok := ev.Payload.(*Page)
	if !ok {
		return fmt.Errorf("%s: unexpected payload %T", ev.Topic, ev.Payload)
	}
	e.CheckOverflow(p)
	return nil
}

func (e *Engine) publish(t topic.Topic, p *Page) {
	if e.events == nil {
		return
	}
	if err := e.events.Publish(context.Background(), event.Event{Topic: t, Payload: p}); err != nil {
		e.logger.Debug("publish failed", "topic", t, "error", err)
	}
}
