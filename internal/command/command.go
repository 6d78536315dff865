// Package command is the editor's command-execution surface.
//
// Commands are named operations with an optional string value, modelled on
// the browser editing commands ("bold", "foreColor", "createLink"). A
// Registry maps names to handlers and normalizes values before they reach
// a handler. Scripts adds commands written in Lua.
package command

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Command names understood by the editor.
const (
	Bold                = "bold"
	Italic              = "italic"
	Underline           = "underline"
	StrikeThrough       = "strikeThrough"
	Subscript           = "subscript"
	Superscript         = "superscript"
	JustifyLeft         = "justifyLeft"
	JustifyCenter       = "justifyCenter"
	JustifyRight        = "justifyRight"
	JustifyFull         = "justifyFull"
	InsertOrderedList   = "insertOrderedList"
	InsertUnorderedList = "insertUnorderedList"
	Indent              = "indent"
	Outdent             = "outdent"
	FontName            = "fontName"
	FontSize            = "fontSize"
	ForeColor           = "foreColor"
	HiliteColor         = "hiliteColor"
	CreateLink          = "createLink"
	Unlink              = "unlink"
	RemoveFormat        = "removeFormat"
	InsertText          = "insertText"
	InsertLineBreak     = "insertLineBreak"
	Undo                = "undo"
	Redo                = "redo"
)

// Errors returned by command execution.
var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrInvalidValue   = errors.New("invalid command value")
	ErrInvalidName    = errors.New("invalid command name")
	ErrNilHandler     = errors.New("nil command handler")
)

// Executor runs named commands against the current selection.
type Executor interface {
	Exec(ctx context.Context, name, value string) error
}

// ExecFunc adapts a function to the Executor interface.
type ExecFunc func(ctx context.Context, name, value string) error

// Exec calls f(ctx, name, value).
func (f ExecFunc) Exec(ctx context.Context, name, value string) error {
	return f(ctx, name, value)
}

// Handler runs one command with its normalized value.
type Handler func(ctx context.Context, value string) error

// Logger receives diagnostic messages.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}

// Registry maps command names to handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
	logger   Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the diagnostic logger.
func WithLogger(l Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		handlers: make(map[string]Handler),
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds name to h, replacing any previous handler.
func (r *Registry) Register(name string, h Handler) error {
	if name == "" {
		return ErrInvalidName
	}
	if h == nil {
		return ErrNilHandler
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[name]; ok {
		r.logger.Debug("command replaced", "name", name)
	}
	r.handlers[name] = h
	return nil
}

// Unregister removes the handler for name.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[name]; !ok {
		return false
	}
	delete(r.handlers, name)
	return true
}

// Has returns true if name has a handler.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

// Names returns the registered command names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exec normalizes value and runs the handler registered for name.
func (r *Registry) Exec(ctx context.Context, name, value string) error {
	r.mu.RLock()
	h, ok := r.handlers[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	value, err := NormalizeValue(name, value)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.logger.Debug("exec command", "name", name, "value", value)
	return h(ctx, value)
}
