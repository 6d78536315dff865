package app

import "time"

// DefaultHistorySize is the number of undo entries kept when none is
// configured.
const DefaultHistorySize = 200

// snapshot is the serialized document before an edit, plus what the edit
// was for coalescing.
type snapshot struct {
	content   string
	kind      string
	timestamp time.Time
}

// History keeps undo/redo state as whole-document snapshots.
//
// Consecutive edits of the same kind within the coalesce window share one
// entry, so a typed word undoes at once.
type History struct {
	undoStack []snapshot
	redoStack []snapshot

	maxEntries int
	window     time.Duration
	now        func() time.Time
}

// NewHistory creates a history holding at most maxEntries snapshots.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultHistorySize
	}
	return &History{
		maxEntries: maxEntries,
		window:     time.Second,
		now:        time.Now,
	}
}

// Record saves the document state before an edit of the given kind.
// An empty kind never coalesces.
// Clears the redo stack.
func (h *History) Record(kind, content string) {
	now := h.now()
	if n := len(h.undoStack); n > 0 && kind != "" {
		top := &h.undoStack[n-1]
		if top.kind == kind && now.Sub(top.timestamp) < h.window {
			top.timestamp = now
			h.redoStack = nil
			return
		}
	}

	h.undoStack = append(h.undoStack, snapshot{content: content, kind: kind, timestamp: now})
	h.redoStack = nil

	// Enforce max entries
	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo returns the state to restore, given the current one.
func (h *History) Undo(current string) (string, error) {
	if len(h.undoStack) == 0 {
		return "", ErrNothingToUndo
	}
	entry := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, snapshot{content: current, timestamp: h.now()})
	return entry.content, nil
}

// Redo returns the state to restore after an Undo, given the current one.
func (h *History) Redo(current string) (string, error) {
	if len(h.redoStack) == 0 {
		return "", ErrNothingToRedo
	}
	entry := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, snapshot{content: current, timestamp: h.now()})
	return entry.content, nil
}

// CanUndo returns true if undo is available.
func (h *History) CanUndo() bool {
	return len(h.undoStack) > 0
}

// CanRedo returns true if redo is available.
func (h *History) CanRedo() bool {
	return len(h.redoStack) > 0
}

// Clear discards all history.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}
