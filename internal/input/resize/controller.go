package resize

import (
	"github.com/dshills/folio/internal/input/mouse"
)

// Default minimum size an element can be dragged down to.
const (
	DefaultMinWidth  = 50
	DefaultMinHeight = 30
)

// HitKind classifies what lies under the pointer.
type HitKind uint8

const (
	// HitOutside is anywhere outside the editable surface and any wrapper.
	HitOutside HitKind = iota
	// HitSurface is editable content that is not a resizable element.
	HitSurface
	// HitWrapper is the wrapper itself, away from its element and handles.
	HitWrapper
	// HitElement is a resizable element.
	HitElement
	// HitHandle is one of the wrapper's handles.
	HitHandle
)

// String returns a string representation of the hit kind.
func (k HitKind) String() string {
	switch k {
	case HitOutside:
		return "outside"
	case HitSurface:
		return "surface"
	case HitWrapper:
		return "wrapper"
	case HitElement:
		return "element"
	case HitHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// Hit is the result of a hit test.
type Hit struct {
	Kind HitKind
	// Element is the resizable element that was hit, or for a handle the
	// element its wrapper surrounds. Zero when none resolves.
	Element ElementID
	// Handle is set when Kind is HitHandle.
	Handle Handle
}

// HitTester resolves a pointer position against the host layout.
type HitTester interface {
	HitTest(p mouse.Position) Hit
}

// Geometry reads and writes element sizes.
type Geometry interface {
	Size(id ElementID) (Size, bool)
	SetSize(id ElementID, s Size)
}

// Session is the state of one drag gesture.
type Session struct {
	Target    ElementID
	Handle    Handle
	Start     mouse.Position
	StartSize Size
	// Current is the size most recently applied.
	Current Size
}

// Logger receives diagnostic messages.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Controller turns pointer events into element resizes.
//
// It is Idle until a pointer-down lands on a handle, Dragging until the
// next pointer-up, and Idle again afterwards. Move events are ignored
// while Idle. There is no other way out of Dragging.
type Controller struct {
	wrappers *Manager
	hits     HitTester
	geometry Geometry
	min      Size
	session  *Session
	logger   Logger
	onStart  func(Session)
	onEnd    func(Session)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithMinSize sets the smallest size a drag can produce.
func WithMinSize(min Size) ControllerOption {
	return func(c *Controller) {
		c.min = min
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = l
	}
}

// OnStart sets a function called when a drag begins.
func OnStart(fn func(Session)) ControllerOption {
	return func(c *Controller) {
		c.onStart = fn
	}
}

// OnEnd sets a function called when a drag ends.
func OnEnd(fn func(Session)) ControllerOption {
	return func(c *Controller) {
		c.onEnd = fn
	}
}

// NewController creates an idle controller.
func NewController(wrappers *Manager, hits HitTester, geometry Geometry, opts ...ControllerOption) *Controller {
	c := &Controller{
		wrappers: wrappers,
		hits:     hits,
		geometry: geometry,
		min:      Size{Width: DefaultMinWidth, Height: DefaultMinHeight},
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wrappers returns the wrapper manager.
func (c *Controller) Wrappers() *Manager {
	return c.wrappers
}

// Dragging returns true while a drag is in progress.
func (c *Controller) Dragging() bool {
	return c.session != nil
}

// Session returns the active drag session.
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Handle routes ev to the matching handler. Move and up events only reach
// the controller while dragging, as if their listeners were attached for
// the duration of the drag.
func (c *Controller) Handle(ev mouse.Event) {
	switch ev.Action {
	case mouse.ActionDown:
		c.OnPointerDown(ev)
	case mouse.ActionMove:
		if c.Dragging() {
			c.OnPointerMove(ev)
		}
	case mouse.ActionUp:
		if c.Dragging() {
			c.OnPointerUp(ev)
		}
	}
}

// OnPointerDown handles a press. Outside any wrapper it tears the wrapper
// down; on a resizable element it wraps that element; on a handle it
// starts a drag.
func (c *Controller) OnPointerDown(ev mouse.Event) {
	if c.session != nil {
		c.end()
	}

	hit := c.hits.HitTest(ev.Position)
	switch hit.Kind {
	case HitOutside, HitSurface:
		c.wrappers.Teardown()
	case HitElement:
		c.wrappers.Setup(hit.Element)
	case HitHandle:
		c.begin(hit, ev.Position)
	}
}

func (c *Controller) begin(hit Hit, at mouse.Position) {
	if hit.Element == 0 {
		c.logger.Debug("no active resize target", "handle", hit.Handle)
		return
	}
	if !hit.Handle.Valid() {
		c.logger.Debug("unknown resize handle", "handle", hit.Handle)
		return
	}
	size, ok := c.geometry.Size(hit.Element)
	if !ok {
		c.logger.Debug("no active resize target", "element", hit.Element)
		return
	}

	c.session = &Session{
		Target:    hit.Element,
		Handle:    hit.Handle,
		Start:     at,
		StartSize: size,
		Current:   size,
	}
	if c.onStart != nil {
		c.onStart(*c.session)
	}
}

// OnPointerMove applies the drag offset to the target. It does nothing
// while Idle.
func (c *Controller) OnPointerMove(ev mouse.Event) {
	if c.session == nil {
		return
	}
	d := ev.Position.Sub(c.session.Start)
	dw, dh := c.session.Handle.Delta(d.X, d.Y)
	size := Size{
		Width:  c.session.StartSize.Width + dw,
		Height: c.session.StartSize.Height + dh,
	}.Clamp(c.min)

	c.geometry.SetSize(c.session.Target, size)
	c.session.Current = size
}

// OnPointerUp ends the drag. A release without any motion is a valid
// zero-delta resize.
func (c *Controller) OnPointerUp(mouse.Event) {
	if c.session == nil {
		return
	}
	c.end()
}

func (c *Controller) end() {
	s := *c.session
	c.session = nil
	if c.onEnd != nil {
		c.onEnd(s)
	}
}
