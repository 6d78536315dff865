package command

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultScriptTimeout bounds a single top-level script call.
const DefaultScriptTimeout = 5 * time.Second

// Errors returned by Scripts.
var (
	ErrScriptsClosed = errors.New("scripts closed")
	ErrScriptTimeout = errors.New("script timed out")
)

type scriptKey struct{}

// Scripts runs Lua-defined commands in a sandboxed state.
//
// Scripts see a "folio" table:
//
//	folio.register(name, fn)  -- fn(value) runs when the command executes
//	folio.exec(name, value)   -- runs another command
//	folio.text()              -- the selected text
//	folio.log(msg)            -- writes a debug log line
//
// gopher-lua states are not goroutine-safe, so every entry point takes mu.
// A command run from inside a script reuses the caller's lock.
type Scripts struct {
	L  *lua.LState
	mu sync.Mutex

	registry *Registry
	text     func() string
	timeout  time.Duration
	logger   Logger
	names    []string
	closed   bool
}

// ScriptsOption configures Scripts.
type ScriptsOption func(*Scripts)

// WithScriptTimeout bounds each top-level script call.
func WithScriptTimeout(d time.Duration) ScriptsOption {
	return func(s *Scripts) {
		s.timeout = d
	}
}

// WithSelectedText supplies the text returned by folio.text().
func WithSelectedText(fn func() string) ScriptsOption {
	return func(s *Scripts) {
		s.text = fn
	}
}

// WithScriptLogger sets the logger behind folio.log.
func WithScriptLogger(l Logger) ScriptsOption {
	return func(s *Scripts) {
		s.logger = l
	}
}

// NewScripts creates a sandboxed Lua state whose commands register into r.
func NewScripts(r *Registry, opts ...ScriptsOption) *Scripts {
	s := &Scripts{
		registry: r,
		text:     func() string { return "" },
		timeout:  DefaultScriptTimeout,
		logger:   nopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(s.L)
	lua.OpenTable(s.L)
	lua.OpenString(s.L)
	lua.OpenMath(s.L)
	sandbox(s.L)
	s.installModule()
	return s
}

// sandbox removes the base functions that load code from outside the state.
func sandbox(L *lua.LState) {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

func (s *Scripts) installModule() {
	mod := s.L.NewTable()
	s.L.SetFuncs(mod, map[string]lua.LGFunction{
		"register": s.luaRegister,
		"exec":     s.luaExec,
		"text":     s.luaText,
		"log":      s.luaLog,
	})
	s.L.SetGlobal("folio", mod)
}

func (s *Scripts) luaRegister(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if err := s.registry.Register(name, s.handler(fn)); err != nil {
		L.RaiseError("register %s: %v", name, err)
		return 0
	}
	s.names = append(s.names, name)
	return 0
}

func (s *Scripts) luaExec(L *lua.LState) int {
	name := L.CheckString(1)
	value := L.OptString(2, "")
	ctx := L.Context()
	if ctx == nil {
		ctx = context.WithValue(context.Background(), scriptKey{}, true)
	}
	if err := s.registry.Exec(ctx, name, value); err != nil {
		L.RaiseError("exec %s: %v", name, err)
	}
	return 0
}

func (s *Scripts) luaText(L *lua.LState) int {
	L.Push(lua.LString(s.text()))
	return 1
}

func (s *Scripts) luaLog(L *lua.LState) int {
	s.logger.Debug("script", "msg", L.CheckString(1))
	return 0
}

// handler adapts a Lua function to a command Handler.
func (s *Scripts) handler(fn *lua.LFunction) Handler {
	return func(ctx context.Context, value string) error {
		return s.run(ctx, func() error {
			s.L.Push(fn)
			s.L.Push(lua.LString(value))
			return s.L.PCall(1, 0, nil)
		})
	}
}

// run executes fn with the state locked and ctx installed. Calls made from
// inside a running script already hold the lock.
func (s *Scripts) run(ctx context.Context, fn func() error) error {
	if nested, _ := ctx.Value(scriptKey{}).(bool); nested {
		return recovered(fn)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrScriptsClosed
	}

	ctx = context.WithValue(ctx, scriptKey{}, true)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	err := recovered(fn)
	if err != nil {
		switch ctx.Err() {
		case context.DeadlineExceeded:
			return fmt.Errorf("%w: %v", ErrScriptTimeout, err)
		case context.Canceled:
			return context.Canceled
		}
	}
	return err
}

func recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// DoString runs a chunk of Lua, typically one that registers commands.
func (s *Scripts) DoString(ctx context.Context, code string) error {
	return s.run(ctx, func() error {
		return s.L.DoString(code)
	})
}

// DoFile runs a Lua file.
func (s *Scripts) DoFile(ctx context.Context, path string) error {
	return s.run(ctx, func() error {
		return s.L.DoFile(path)
	})
}

// LoadDir runs every *.lua file in dir in name order. A missing directory
// loads nothing.
func (s *Scripts) LoadDir(ctx context.Context, dir string) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return 0, err
	}
	sort.Strings(paths)
	for i, path := range paths {
		if err := s.DoFile(ctx, path); err != nil {
			return i, fmt.Errorf("load %s: %w", filepath.Base(path), err)
		}
	}
	return len(paths), nil
}

// Names returns the commands registered by scripts, in registration order.
func (s *Scripts) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.names...)
}

// Close unregisters script commands and releases the Lua state.
func (s *Scripts) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, name := range s.names {
		s.registry.Unregister(name)
	}
	s.names = nil
	s.L.Close()
	return nil
}
