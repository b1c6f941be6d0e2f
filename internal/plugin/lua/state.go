package lua

import (
	"context"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a gopher-lua state for one code unit.
//
// gopher-lua's LState is not goroutine-safe. The mutex serializes access
// from Go; the Lua side is single-threaded anyway.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithContext attaches ctx to the state. Running code stops with an error
// once ctx is done.
func WithContext(ctx context.Context) StateOption {
	return func(s *State) {
		if ctx != nil {
			s.L.SetContext(ctx)
		}
	}
}

// WithPreload registers a module loadable with require(name).
func WithPreload(name string, loader lua.LGFunction) StateOption {
	return func(s *State) {
		s.L.PreloadModule(name, loader)
	}
}

// NewState creates a Lua state with every standard library opened.
func NewState(opts ...StateOption) *State {
	s := &State{L: lua.NewState()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetContext replaces the context attached to the state.
func (s *State) SetContext(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || ctx == nil {
		return
	}
	s.L.SetContext(ctx)
}

// DoFile executes a Lua file. The call blocks until the chunk returns.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	return recoverLua(func() error {
		return s.L.DoFile(path)
	})
}

// Call calls a global Lua function and returns its results.
func (s *State) Call(name string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	fn := s.L.GetGlobal(name)
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotFunction, name, fn.Type())
	}

	top := s.L.GetTop()
	s.L.Push(fn)
	for _, arg := range args {
		s.L.Push(arg)
	}

	err := recoverLua(func() error {
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		s.L.SetTop(top)
		return nil, err
	}

	n := s.L.GetTop() - top
	results := make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		results = append(results, s.L.Get(top+i))
	}
	s.L.Pop(n)
	return results, nil
}

// Globals returns a snapshot of the global table keyed by name. It is nil
// once the state is closed.
func (s *State) Globals() map[string]lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	globals := make(map[string]lua.LValue)
	s.L.G.Global.ForEach(func(k, v lua.LValue) {
		if name, ok := k.(lua.LString); ok {
			globals[string(name)] = v
		}
	})
	return globals
}

// Close releases the Lua state. It is safe to call more than once.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}

func recoverLua(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}
