package script

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// DefaultTimeout bounds a single chunk, drain or call.
const DefaultTimeout = 5 * time.Second

// State wraps a sandboxed gopher-lua state.
//
// LState is not goroutine-safe; every access goes through Do, which holds
// the state's mutex for the duration of the call.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	log     zerolog.Logger
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithTimeout sets the execution timeout. Long-running Lua code is
// interrupted at the next VM instruction after the deadline.
func WithTimeout(d time.Duration) StateOption {
	return func(s *State) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithStateLogger sets the logger that receives print output.
func WithStateLogger(l zerolog.Logger) StateOption {
	return func(s *State) {
		s.log = l
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.sandbox()

	return s
}

// openSafeLibraries opens only the libraries without file, process or
// debug access.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes the loaders and redirects print.
func (s *State) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}

	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		s.log.Info().Str("source", "lua").Msg(strings.Join(parts, "\t"))
		return 0
	}))
}

// Do runs fn with exclusive access to the Lua state.
// Execution is interrupted when ctx is done or the state's timeout expires.
func (s *State) Do(ctx context.Context, fn func(L *lua.LState) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrHostClosed
	}

	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.L.SetContext(cctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
		if err != nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}()

	return fn(s.L)
}

// DoString executes a Lua chunk.
func (s *State) DoString(ctx context.Context, code string) error {
	return s.Do(ctx, func(L *lua.LState) error {
		return L.DoString(code)
	})
}

// GetGlobal returns a global variable converted to a Go value.
func (s *State) GetGlobal(name string) any {
	var v any
	_ = s.Do(context.Background(), func(L *lua.LState) error {
		v = toGo(L.GetGlobal(name))
		return nil
	})
	return v
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close releases the Lua state. Later calls return ErrHostClosed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
