// Package mouse defines pointer events delivered to the editor core.
//
// Hosts translate their native pointer input (terminal mouse reports,
// browser pointer events) into Event values. Coordinates are in the same
// device-independent units the host uses for element geometry, so a drag
// delta can be applied directly to an element's size.
package mouse

import "time"

// Button represents a pointer button.
type Button uint8

const (
	// ButtonNone indicates no button.
	ButtonNone Button = iota
	// ButtonPrimary is the primary (left) button.
	ButtonPrimary
	// ButtonMiddle is the middle button.
	ButtonMiddle
	// ButtonSecondary is the secondary (right) button.
	ButtonSecondary
)

// String returns a string representation of the button.
func (b Button) String() string {
	switch b {
	case ButtonPrimary:
		return "primary"
	case ButtonMiddle:
		return "middle"
	case ButtonSecondary:
		return "secondary"
	default:
		return "none"
	}
}

// Action is the kind of pointer event.
type Action uint8

const (
	// ActionNone indicates no action.
	ActionNone Action = iota
	// ActionDown is a button press.
	ActionDown
	// ActionMove is pointer motion, with or without a button held.
	ActionMove
	// ActionUp is a button release.
	ActionUp
)

// String returns a string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionDown:
		return "down"
	case ActionMove:
		return "move"
	case ActionUp:
		return "up"
	default:
		return "none"
	}
}

// Position is a pointer coordinate.
type Position struct {
	X int
	Y int
}

// Sub returns the offset from other to p.
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}

// Equal returns true if two positions are equal.
func (p Position) Equal(other Position) bool {
	return p == other
}

// Event is one pointer event.
type Event struct {
	Position  Position
	Button    Button
	Action    Action
	Timestamp time.Time
}

// Down returns a primary-button press at (x, y).
func Down(x, y int) Event {
	return Event{Position: Position{X: x, Y: y}, Button: ButtonPrimary, Action: ActionDown}
}

// Move returns a primary-button motion to (x, y).
func Move(x, y int) Event {
	return Event{Position: Position{X: x, Y: y}, Button: ButtonPrimary, Action: ActionMove}
}

// Up returns a primary-button release at (x, y).
func Up(x, y int) Event {
	return Event{Position: Position{X: x, Y: y}, Button: ButtonPrimary, Action: ActionUp}
}
