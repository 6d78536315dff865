package event

import "errors"

// Errors returned by the bus.
var (
	// ErrInvalidTopic is returned for empty or malformed topics, and when
	// publishing to a wildcard pattern.
	ErrInvalidTopic = errors.New("invalid topic")

	// ErrNilHandler is returned when subscribing a nil handler.
	ErrNilHandler = errors.New("nil handler")

	// ErrHandlerPanic wraps a recovered handler panic.
	ErrHandlerPanic = errors.New("handler panicked")
)
