package lua

import (
	"context"
	"fmt"
	"log/slog"

	lua "github.com/yuin/gopher-lua"

	"github.com/claytechnologie/toolsdk/internal/dispatcher/execctx"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
)

// Extension is the file extension served by Loader.
const Extension = ".lua"

// Loader loads Lua code units. Every Load creates a fresh State.
type Loader struct {
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the logger used for load diagnostics.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a Lua unit loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load runs the file at location and returns the resulting unit. The
// unit's top-level code has already run when Load returns.
func (l *Loader) Load(ctx context.Context, location string, ec *execctx.Context) (handler.Unit, error) {
	mod := NewModule(ec)
	state := NewState(
		WithContext(ctx),
		WithPreload(ModuleName, mod.Loader),
	)

	before := state.Globals()
	if err := state.DoFile(location); err != nil {
		state.Close()
		return nil, err
	}

	l.logger.Debug("lua unit loaded", "location", location)
	return &Unit{state: state, location: location, entries: definedFunctions(before, state.Globals())}, nil
}

// definedFunctions lists the global functions a chunk added or replaced.
// Library functions it left alone are not entry points.
func definedFunctions(before, after map[string]lua.LValue) map[string]bool {
	defined := make(map[string]bool)
	for name, v := range after {
		if v.Type() == lua.LTFunction && before[name] != v {
			defined[name] = true
		}
	}
	return defined
}

// Unit is a loaded Lua code unit. Global functions defined by the unit file
// are its entry points.
type Unit struct {
	state    *State
	location string
	entries  map[string]bool
}

// Location returns the file the unit was loaded from.
func (u *Unit) Location() string {
	return u.location
}

// Entry returns the global function name as a handler. The tool module
// stays bound to the context passed to Load.
func (u *Unit) Entry(name string) (handler.Handler, bool) {
	if !u.entries[name] {
		return nil, false
	}
	return handler.HandlerFunc(func(ctx context.Context, _ *execctx.Context) error {
		u.state.SetContext(ctx)
		if _, err := u.state.Call(name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}), true
}

// Close releases the unit's state.
func (u *Unit) Close() error {
	return u.state.Close()
}
