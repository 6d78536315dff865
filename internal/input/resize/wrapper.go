package resize

// ElementID identifies a resizable element in the host document.
type ElementID uint64

// Decorator renders and removes the resize affordance around an element.
type Decorator interface {
	// Wrap surrounds the element with a wrapper carrying the given handles.
	Wrap(id ElementID, handles []Handle)
	// Unwrap removes the wrapper and puts the element back in its place.
	Unwrap(id ElementID)
}

// Wrapper is the active resize affordance.
type Wrapper struct {
	Target  ElementID
	Handles [8]Handle
}

// Manager keeps at most one wrapper in the document.
type Manager struct {
	decorator Decorator
	current   *Wrapper
}

// NewManager creates a manager that draws wrappers through d.
func NewManager(d Decorator) *Manager {
	return &Manager{decorator: d}
}

// Setup wraps target, tearing down any wrapper around a different element
// first. It does nothing if target is already wrapped.
func (m *Manager) Setup(target ElementID) {
	if m.current != nil {
		if m.current.Target == target {
			return
		}
		m.Teardown()
	}
	w := &Wrapper{Target: target, Handles: Handles}
	m.decorator.Wrap(target, w.Handles[:])
	m.current = w
}

// Teardown removes the current wrapper, if any.
func (m *Manager) Teardown() {
	if m.current == nil {
		return
	}
	m.decorator.Unwrap(m.current.Target)
	m.current = nil
}

// Current returns the active wrapper.
func (m *Manager) Current() (Wrapper, bool) {
	if m.current == nil {
		return Wrapper{}, false
	}
	return *m.current, true
}
