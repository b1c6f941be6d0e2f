// Package execctx provides the execution context handed to dispatched code.
package execctx

import (
	"context"
	"log/slog"

	"github.com/claytechnologie/toolsdk/internal/config"
	"github.com/claytechnologie/toolsdk/internal/menu"
)

// Console abstracts line-oriented terminal IO for handlers.
type Console interface {
	Println(a ...any)
	Printf(format string, a ...any)

	// ReadLine prints prompt and blocks until a line is read or ctx is done.
	ReadLine(ctx context.Context, prompt string) (string, error)

	// Clear clears the screen when the output is a terminal.
	Clear()
}

// Catalog abstracts the translation catalog for handlers.
type Catalog interface {
	Translate(key string) string
	Language() string
	Available() []string
	Keys() []string
	AddPackage(code, path string) error
}

// Settings abstracts the configuration store for handlers.
type Settings interface {
	Path() string
	Current() config.Config
	Entries() ([]config.Entry, error)
	Set(key string, value any) error
}

// Context provides everything dispatched code may use from the host.
// Handlers run with full host privileges; nothing here is a boundary.
type Context struct {
	// Console provides terminal IO.
	Console Console

	// Catalog provides translations.
	Catalog Catalog

	// Settings provides the configuration store.
	Settings Settings

	// Config is the configuration applied when the dispatch started.
	Config config.Config

	// Logger is scoped to the dispatch.
	Logger *slog.Logger

	// Descriptor is the menu entry being dispatched.
	Descriptor menu.Descriptor

	// Location is the resolved code unit path.
	Location string

	// RunID identifies the dispatch in logs.
	RunID string
}

// New creates an empty execution context with a discard logger.
func New() *Context {
	return &Context{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithConsole returns the context with the console set.
func (c *Context) WithConsole(console Console) *Context {
	c.Console = console
	return c
}

// WithCatalog returns the context with the catalog set.
func (c *Context) WithCatalog(catalog Catalog) *Context {
	c.Catalog = catalog
	return c
}

// WithSettings returns the context with the settings store set. The applied
// configuration is snapshotted from it.
func (c *Context) WithSettings(settings Settings) *Context {
	c.Settings = settings
	if settings != nil {
		c.Config = settings.Current()
	}
	return c
}

// WithLogger returns the context with the logger set.
func (c *Context) WithLogger(logger *slog.Logger) *Context {
	if logger != nil {
		c.Logger = logger
	}
	return c
}

// WithDescriptor returns the context with the dispatch target set.
func (c *Context) WithDescriptor(d menu.Descriptor, location, runID string) *Context {
	c.Descriptor = d
	c.Location = location
	c.RunID = runID
	return c
}

// Translate translates key, or returns key when no catalog is set.
func (c *Context) Translate(key string) string {
	if c.Catalog == nil {
		return key
	}
	return c.Catalog.Translate(key)
}

// Validate checks that the context can drive interactive handlers.
func (c *Context) Validate() error {
	if c.Console == nil {
		return ErrMissingConsole
	}
	if c.Catalog == nil {
		return ErrMissingCatalog
	}
	return nil
}

// ValidateForSettings additionally requires the settings store.
func (c *Context) ValidateForSettings() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Settings == nil {
		return ErrMissingSettings
	}
	return nil
}
