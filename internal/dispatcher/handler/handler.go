// Package handler defines the contract between the dispatcher and the code
// it runs: loaders produce units, units expose named entry points, and entry
// points are handlers.
package handler

import (
	"context"
	"errors"
	"io"

	"github.com/claytechnologie/toolsdk/internal/dispatcher/execctx"
)

// ErrNilHandler is returned when running a nil handler function.
var ErrNilHandler = errors.New("handler function is nil")

// Handler is one entry point. Run blocks until the entry point returns.
type Handler interface {
	Run(ctx context.Context, ec *execctx.Context) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, ec *execctx.Context) error

// Run implements Handler.
func (f HandlerFunc) Run(ctx context.Context, ec *execctx.Context) error {
	if f == nil {
		return ErrNilHandler
	}
	return f(ctx, ec)
}

// Unit is a loaded code unit.
type Unit interface {
	// Entry returns the entry point called name.
	Entry(name string) (Handler, bool)
}

// Loader loads the code unit at location. The execution context is the one
// the unit's entry point will run with.
type Loader interface {
	Load(ctx context.Context, location string, ec *execctx.Context) (Unit, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, location string, ec *execctx.Context) (Unit, error)

// Load implements Loader.
func (f LoaderFunc) Load(ctx context.Context, location string, ec *execctx.Context) (Unit, error) {
	return f(ctx, location, ec)
}

// Entries is a compiled-in unit: a fixed set of named handlers.
type Entries map[string]Handler

// Entry implements Unit.
func (e Entries) Entry(name string) (Handler, bool) {
	h, ok := e[name]
	if !ok || h == nil {
		return nil, false
	}
	return h, true
}

// Close releases the unit if it holds resources.
func Close(u Unit) error {
	if c, ok := u.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
