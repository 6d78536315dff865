package app

import (
	"context"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/dshills/folio/internal/command"
	"github.com/dshills/folio/internal/engine/content"
	"github.com/dshills/folio/internal/engine/pagination"
	"github.com/dshills/folio/internal/engine/selection"
	"github.com/dshills/folio/internal/event"
	"github.com/dshills/folio/internal/event/topic"
	"github.com/dshills/folio/internal/input/mouse"
	"github.com/dshills/folio/internal/input/resize"
	"github.com/dshills/folio/internal/storage"
)

// DefaultTitle names a document that was never given a title.
const DefaultTitle = "Untitled"

// Zoom limits, in percent.
const (
	MinZoom     = 25
	MaxZoom     = 400
	DefaultZoom = 100
	ZoomStep    = 10
)

// Store persists documents.
type Store interface {
	Save(ctx context.Context, doc storage.Document) (storage.Document, error)
	Load(ctx context.Context, id string) (storage.Document, error)
	List(ctx context.Context) ([]storage.Summary, error)
	Delete(ctx context.Context, id string) error
}

// Host is the rendering side of a session: it focuses pages, resolves
// pointer positions and draws resize wrappers.
type Host interface {
	pagination.Focuser
	resize.HitTester
	resize.Decorator
	// CaretAt resolves a pointer position to a page and a text position.
	CaretAt(p mouse.Position) (*pagination.Page, content.NodeID, int, bool)
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithStore sets where documents are saved.
func WithStore(st Store) Option {
	return func(s *Session) {
		s.store = st
	}
}

// WithMinSize sets the smallest size a resize drag may produce.
func WithMinSize(min resize.Size) Option {
	return func(s *Session) {
		s.minSize = min
	}
}

// WithExportDir sets the directory exported files are written to.
func WithExportDir(dir string) Option {
	return func(s *Session) {
		s.exportDir = dir
	}
}

// WithLanguage sets the language readouts are formatted for.
func WithLanguage(tag language.Tag) Option {
	return func(s *Session) {
		s.printer = message.NewPrinter(tag)
	}
}

// WithHistorySize sets the number of undo steps kept.
func WithHistorySize(n int) Option {
	return func(s *Session) {
		s.history = NewHistory(n)
	}
}

// WithScriptTimeout bounds each Lua command run.
func WithScriptTimeout(d time.Duration) Option {
	return func(s *Session) {
		s.scriptTimeout = d
	}
}

// Session is one open document in the editor. It wires the pagination
// engine, the selection store and the resize controller to the command
// surface, persistence and export, and turns host input into edits.
//
// Session is not safe for concurrent use; drive it from the event loop.
type Session struct {
	bus       *event.Bus
	engine    *pagination.Engine
	surface   *Surface
	selection *selection.Store
	resizer   *resize.Controller
	commands  *command.Registry
	scripts   *command.Scripts
	history   *History
	host      Host
	store     Store
	logger    *Logger
	printer   *message.Printer

	minSize       resize.Size
	exportDir     string
	scriptTimeout time.Duration

	docID     string
	title     string
	modified  bool
	zoom      int
	pressed   bool
	restoring bool
}

// NewSession creates a session with one empty page measured by m.
func NewSession(m pagination.Measurer, host Host, opts ...Option) (*Session, error) {
	s := &Session{
		host:          host,
		logger:        NullLogger,
		printer:       message.NewPrinter(language.English),
		history:       NewHistory(DefaultHistorySize),
		minSize:       resize.Size{Width: 50, Height: 30},
		scriptTimeout: command.DefaultScriptTimeout,
		title:         DefaultTitle,
		zoom:          DefaultZoom,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.bus = event.NewBus(event.WithPanicHandler(func(ev event.Event, recovered any, stack []byte) {
		s.logger.Error("event handler panic", "topic", ev.Topic,
			"error", &RecoveredPanicError{Value: recovered, Stack: string(stack)})
	}))
	s.engine = pagination.New(m,
		pagination.WithFocuser(host),
		pagination.WithLogger(s.logger.WithComponent("pagination")),
		pagination.WithPublisher(s.bus),
	)
	s.surface = NewSurface(s.engine)
	s.selection = selection.NewStore(s.surface,
		selection.WithLogger(s.logger.WithComponent("selection")),
		selection.OnCapture(s.onCapture),
	)
	s.resizer = resize.NewController(resize.NewManager(host), host, s,
		resize.WithMinSize(s.minSize),
		resize.WithLogger(s.logger.WithComponent("resize")),
		resize.OnStart(s.onResizeStart),
		resize.OnEnd(s.onResizeEnd),
	)
	s.commands = command.NewRegistry(command.WithLogger(s.logger.WithComponent("command")))

	subs := []struct {
		topic   topic.Topic
		handler event.Handler
	}{
		{event.TopicContentChanged, s.engine.HandleContentChanged},
		{event.TopicContentChanged, s.afterContentChanged},
		{event.TopicDocumentReset, s.afterDocumentReset},
	}
	for _, sub := range subs {
		if _, err := s.bus.Subscribe(sub.topic, sub.handler); err != nil {
			return nil, NewOperationError("subscribe", sub.topic.String(), err)
		}
	}
	if err := s.registerBuiltins(); err != nil {
		return nil, err
	}

	s.surface.CaretStart(s.engine.Active())
	s.selection.Capture()
	return s, nil
}

// Engine returns the pagination engine.
func (s *Session) Engine() *pagination.Engine {
	return s.engine
}

// Surface returns the editing surface.
func (s *Session) Surface() *Surface {
	return s.surface
}

// Selection returns the selection store.
func (s *Session) Selection() *selection.Store {
	return s.selection
}

// Resizer returns the resize controller.
func (s *Session) Resizer() *resize.Controller {
	return s.resizer
}

// Commands returns the command registry.
func (s *Session) Commands() *command.Registry {
	return s.commands
}

// Bus returns the session event bus.
func (s *Session) Bus() *event.Bus {
	return s.bus
}

// Title returns the document title.
func (s *Session) Title() string {
	return s.title
}

// SetTitle renames the document.
func (s *Session) SetTitle(title string) {
	if title == "" {
		title = DefaultTitle
	}
	if title != s.title {
		s.title = title
		s.modified = true
	}
}

// DocumentID returns the stored document id, empty before the first save.
func (s *Session) DocumentID() string {
	return s.docID
}

// Modified returns true if the document changed since it was saved or
// opened.
func (s *Session) Modified() bool {
	return s.modified
}

// Caret returns where the host should draw the caret.
func (s *Session) Caret() (content.NodeID, int) {
	return s.surface.Caret()
}

// Close releases the Lua state, if scripts were loaded.
func (s *Session) Close() error {
	if s.scripts == nil {
		return nil
	}
	return s.scripts.Close()
}

// LoadScripts loads every Lua file in dir as scripted commands and
// returns how many files ran.
func (s *Session) LoadScripts(ctx context.Context, dir string) (int, error) {
	if s.scripts == nil {
		s.scripts = command.NewScripts(s.commands,
			command.WithScriptTimeout(s.scriptTimeout),
			command.WithSelectedText(s.surface.SelectedText),
			command.WithScriptLogger(s.logger.WithComponent("script")),
		)
	}
	n, err := s.scripts.LoadDir(ctx, dir)
	if err != nil {
		return n, NewOperationError("load-scripts", dir, err)
	}
	s.logger.Info("scripts loaded", "dir", dir, "files", n, "commands", len(s.scripts.Names()))
	return n, nil
}

// Size reports the size of a resizable element.
func (s *Session) Size(id resize.ElementID) (resize.Size, bool) {
	n, ok := s.engine.Node(content.NodeID(id))
	if !ok || !n.Resizable() {
		return resize.Size{}, false
	}
	return resize.Size{Width: n.Width, Height: n.Height}, true
}

// SetSize applies a size during a resize drag. Overflow is checked when
// the drag ends.
func (s *Session) SetSize(id resize.ElementID, size resize.Size) {
	n, ok := s.engine.Node(content.NodeID(id))
	if !ok {
		return
	}
	n.SetSize(size.Width, size.Height)
	s.modified = true
}

func (s *Session) onResizeStart(rs resize.Session) {
	s.history.Record("", s.engine.DocumentContent())
	s.publish(event.TopicResizeStarted, rs)
}

func (s *Session) onResizeEnd(rs resize.Session) {
	s.publish(event.TopicResizeEnded, rs)
	if p, _ := s.engine.Locate(content.NodeID(rs.Target)); p != nil {
		s.contentChanged(p)
	}
}

func (s *Session) onCapture(r selection.Range) {
	s.publish(event.TopicSelectionCaptured, r)
}

// afterContentChanged runs after the engine has moved overflow: the caret
// follows its text and its page is brought into view.
func (s *Session) afterContentChanged(context.Context, event.Event) error {
	s.surface.Normalize()
	s.host.Focus(s.surface.Page())
	return nil
}

func (s *Session) afterDocumentReset(context.Context, event.Event) error {
	s.resizer.Wrappers().Teardown()
	s.selection.Clear()
	pages := s.engine.Pages()
	last := pages[len(pages)-1]
	s.surface.CaretEnd(last)
	s.host.Focus(last)
	return nil
}

func (s *Session) publish(t topic.Topic, payload any) {
	if err := s.bus.Publish(context.Background(), event.Event{Topic: t, Payload: payload}); err != nil {
		s.logger.Warn("event handler failed", "topic", t, "error", err)
	}
}

// contentChanged marks the document modified and runs the overflow check
// for p.
func (s *Session) contentChanged(p *pagination.Page) {
	s.modified = true
	s.publish(event.TopicContentChanged, p)
}

// edit runs a surface edit and records the previous document state when
// it changed something.
func (s *Session) edit(kind string, fn func() (*pagination.Page, bool)) {
	before := s.engine.DocumentContent()
	p, changed := fn()
	if !changed {
		return
	}
	s.history.Record(kind, before)
	s.contentChanged(p)
}

// TypeText inserts text at the caret, replacing any selection.
func (s *Session) TypeText(text string) {
	s.edit("type", func() (*pagination.Page, bool) {
		return s.surface.InsertText(text), text != ""
	})
	s.selection.Observe(selection.TriggerKeyUp)
}

// Newline inserts a line break at the caret.
func (s *Session) Newline() {
	s.edit("", func() (*pagination.Page, bool) {
		return s.surface.InsertBreak(), true
	})
	s.selection.Observe(selection.TriggerKeyUp)
}

// Backspace deletes the selection or the grapheme before the caret.
func (s *Session) Backspace() {
	s.edit("delete", s.surface.Backspace)
	s.selection.Observe(selection.TriggerKeyUp)
}

// MoveCaret moves the caret by delta graphemes, extending the selection
// when extend is set.
func (s *Session) MoveCaret(delta int, extend bool) {
	s.surface.Move(delta, extend)
	s.host.Focus(s.surface.Page())
	s.selection.Observe(selection.TriggerKeyUp)
}

// CaretHome moves the caret to the start of its page.
func (s *Session) CaretHome() {
	s.surface.CaretStart(s.surface.Page())
	s.selection.Observe(selection.TriggerKeyUp)
}

// CaretEnd moves the caret to the end of its page.
func (s *Session) CaretEnd() {
	s.surface.CaretEnd(s.surface.Page())
	s.selection.Observe(selection.TriggerKeyUp)
}

// HandlePointer routes a pointer event, in pixels, to the resize
// controller and the caret. A press places the caret, motion with the
// button held extends the selection and the release captures it.
func (s *Session) HandlePointer(ev mouse.Event) {
	wasDragging := s.resizer.Dragging()
	s.resizer.Handle(ev)

	switch ev.Action {
	case mouse.ActionDown:
		if s.resizer.Dragging() {
			return
		}
		s.pressed = true
		if p, node, off, ok := s.host.CaretAt(ev.Position); ok {
			s.surface.PlaceAt(p, node, off, false)
		}
	case mouse.ActionMove:
		if !s.pressed || s.resizer.Dragging() {
			return
		}
		if p, node, off, ok := s.host.CaretAt(ev.Position); ok {
			s.surface.PlaceAt(p, node, off, true)
		}
	case mouse.ActionUp:
		s.pressed = false
		if wasDragging {
			return
		}
		s.selection.Observe(selection.TriggerPointerUp)
	}
}

// SelectionChanged captures the live selection if it is on a page.
func (s *Session) SelectionChanged() {
	s.selection.Observe(selection.TriggerSelectionChange)
}

// Blur captures the selection as the surface loses focus.
func (s *Session) Blur() {
	s.selection.Observe(selection.TriggerBlur)
}

// Zoom returns the zoom level in percent.
func (s *Session) Zoom() int {
	return s.zoom
}

// SetZoom sets the zoom level, clamped to [MinZoom, MaxZoom], and returns
// the level applied.
func (s *Session) SetZoom(percent int) int {
	s.zoom = min(max(percent, MinZoom), MaxZoom)
	return s.zoom
}

// Readouts returns the status readouts: page count, word count and zoom.
func (s *Session) Readouts() []string {
	return []string{
		s.printer.Sprintf("Pages: %d", s.engine.PageCount()),
		s.printer.Sprintf("Words: %d", s.engine.WordCount()),
		s.printer.Sprintf("Zoom: %d%%", s.zoom),
	}
}
