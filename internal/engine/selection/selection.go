// Package selection keeps the user's caret or range alive across focus loss.
//
// Toolbar clicks, dialogs and page creation all move focus away from the
// editable surface, and with it the host's live selection. Store captures
// the selection continuously while the surface has it and puts it back
// right before a formatting command runs:
//
//	store.Restore()
//	executor.Exec(ctx, "bold", "")
//	store.Capture()
//
// Only one snapshot is kept. Every capture overwrites the previous one.
package selection

import "fmt"

// Point is a position inside the content: a node and an offset within it.
// For text runs the offset counts grapheme clusters; for elements it is 0
// (before) or 1 (after).
type Point struct {
	Node   uint64
	Offset int
}

// Range is an anchor/focus pair resolved against a container (a page).
// Anchor is where the selection started; Focus is where it ends.
type Range struct {
	Container uint64
	Anchor    Point
	Focus     Point
}

// Caret returns a collapsed range at p.
func Caret(container uint64, p Point) Range {
	return Range{Container: container, Anchor: p, Focus: p}
}

// IsCollapsed returns true if the range is a caret.
func (r Range) IsCollapsed() bool {
	return r.Anchor == r.Focus
}

// String returns a short description for debugging.
func (r Range) String() string {
	if r.IsCollapsed() {
		return fmt.Sprintf("Caret(%d:%d@%d)", r.Container, r.Focus.Node, r.Focus.Offset)
	}
	return fmt.Sprintf("Range(%d:%d@%d→%d@%d)", r.Container,
		r.Anchor.Node, r.Anchor.Offset, r.Focus.Node, r.Focus.Offset)
}

// LiveRange is a range object owned by the host. The host may mutate it
// at any time after handing it out.
type LiveRange interface {
	Range() Range
}

// Host is the text-selection capability of the editing surface.
type Host interface {
	// RangeCount returns the number of live ranges.
	RangeCount() int
	// RangeAt returns the i-th live range.
	RangeAt(i int) LiveRange
	// RemoveAllRanges clears the live selection.
	RemoveAllRanges()
	// AddRange makes r part of the live selection.
	AddRange(r Range)
	// Contains reports whether r lies inside the editable surface.
	Contains(r Range) bool
}

// Trigger is an input event that causes a capture.
type Trigger uint8

const (
	// TriggerPointerUp is a pointer release inside the surface.
	TriggerPointerUp Trigger = iota
	// TriggerKeyUp is a key release inside the surface.
	TriggerKeyUp
	// TriggerBlur is the surface losing focus.
	TriggerBlur
	// TriggerSelectionChange is a document-wide selection change.
	TriggerSelectionChange
)

// String returns a string representation of the trigger.
func (t Trigger) String() string {
	switch t {
	case TriggerPointerUp:
		return "pointerup"
	case TriggerKeyUp:
		return "keyup"
	case TriggerBlur:
		return "blur"
	case TriggerSelectionChange:
		return "selectionchange"
	default:
		return "unknown"
	}
}
