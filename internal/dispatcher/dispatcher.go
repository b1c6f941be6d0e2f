package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/claytechnologie/toolsdk/internal/dispatcher/execctx"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
	"github.com/claytechnologie/toolsdk/internal/menu"
)

// Result is the outcome of one Select.
type Result = handler.Result

// State is the dispatcher lifecycle state.
type State int

const (
	// StateRunning accepts selections.
	StateRunning State = iota
	// StateExited is terminal.
	StateExited
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Table is the read-only view of the menu the dispatcher selects from.
type Table interface {
	Len() int
	At(i int) (menu.Descriptor, bool)
}

// Dispatcher resolves selections against a Table and runs entry points.
type Dispatcher struct {
	mu sync.RWMutex

	config Config
	table  Table
	units  *Registry

	loaders map[string]handler.Loader

	// Host services handed to dispatched code
	console  execctx.Console
	catalog  execctx.Catalog
	settings execctx.Settings
	logger   *slog.Logger

	metrics   *Metrics
	postHooks []PostDispatchHook

	state State
}

// New creates a dispatcher selecting from table.
func New(config Config, table Table) *Dispatcher {
	if config.LibRoot == "" {
		config.LibRoot = DefaultLibRoot
	}
	d := &Dispatcher{
		config:  config,
		table:   table,
		units:   NewRegistry(),
		loaders: make(map[string]handler.Loader),
		logger:  slog.New(slog.DiscardHandler),
	}
	if config.EnableMetrics {
		d.metrics = NewMetrics()
	}
	return d
}

// SetConsole sets the console handed to dispatched code.
func (d *Dispatcher) SetConsole(console execctx.Console) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.console = console
}

// SetCatalog sets the translation catalog handed to dispatched code.
func (d *Dispatcher) SetCatalog(catalog execctx.Catalog) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.catalog = catalog
}

// SetSettings sets the configuration store handed to dispatched code.
func (d *Dispatcher) SetSettings(settings execctx.Settings) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.settings = settings
}

// SetLogger sets the logger.
func (d *Dispatcher) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
}

// RegisterUnit registers a compiled-in unit under "method/path/source".
func (d *Dispatcher) RegisterUnit(key string, u handler.Unit) {
	d.units.Register(key, u)
}

// RegisterLoader registers the loader for files with extension ext
// (including the dot, e.g. ".lua").
func (d *Dispatcher) RegisterLoader(ext string, l handler.Loader) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loaders[strings.ToLower(ext)] = l
}

// RegisterPostHook registers a hook called after every selection.
func (d *Dispatcher) RegisterPostHook(hook PostDispatchHook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.postHooks = append(d.postHooks, hook)
}

// Metrics returns the metrics collector (nil if disabled).
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// Config returns the dispatcher configuration.
func (d *Dispatcher) Config() Config {
	return d.config
}

// State returns the lifecycle state.
func (d *Dispatcher) State() State {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// Exited reports whether the exit sentinel has been selected.
func (d *Dispatcher) Exited() bool {
	return d.State() == StateExited
}

// Select dispatches one selection and reports the outcome.
func (d *Dispatcher) Select(ctx context.Context, sel Selection) Result {
	if d.Exited() {
		return d.finish(sel, menu.Descriptor{}, handler.Exited())
	}

	if sel.Exit {
		d.mu.Lock()
		d.state = StateExited
		d.mu.Unlock()
		d.logger.Info("exit selected")
		return d.finish(sel, menu.Descriptor{}, handler.Exit())
	}

	desc, ok := d.table.At(sel.Index)
	if !ok {
		return d.finish(sel, menu.Descriptor{}, handler.NoSelection(sel.Index))
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := d.logger.With("entry", desc.Name, "run", runID)

	result := d.dispatch(ctx, desc, runID, logger)
	result.Name = desc.Name
	result.RunID = runID
	result.Duration = time.Since(start)

	switch {
	case result.Status == handler.StatusRuntimeError:
		logger.Error("dispatch failed", "status", result.Status.String(), "location", result.Location, "error", result.Err)
	case result.IsFailure():
		logger.Warn("dispatch failed", "status", result.Status.String(), "location", result.Location, "message", result.Message)
	default:
		logger.Info("dispatch finished", "location", result.Location, "duration", result.Duration)
	}

	if d.metrics != nil {
		d.metrics.RecordDispatch(desc.Name, result.Duration, result.Status)
		if em := d.metrics.EntryStats(desc.Name); em != nil && em.FailureCount > 0 {
			logger.Debug("entry has failed before", "failures", em.FailureCount, "dispatches", em.DispatchCount)
		}
	}
	return d.finish(sel, desc, result)
}

func (d *Dispatcher) finish(sel Selection, desc menu.Descriptor, result Result) Result {
	d.mu.RLock()
	hooks := make([]PostDispatchHook, len(d.postHooks))
	copy(hooks, d.postHooks)
	d.mu.RUnlock()

	for _, h := range hooks {
		h.PostDispatch(sel, desc, result)
	}
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, desc menu.Descriptor, runID string, logger *slog.Logger) Result {
	if !desc.Build.Complete() {
		return handler.InvalidDescriptor(fmt.Sprintf("%s: missing path, action, or source", desc.Name))
	}

	location, key, err := d.Resolve(desc)
	if err != nil {
		return handler.InvalidDescriptor(err.Error())
	}

	ec := d.buildContext(desc, location, runID, logger)

	unit, compiled := d.units.Get(key)
	if !compiled {
		info, err := os.Stat(location)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return handler.NotFound(location)
			}
			return handler.RuntimeError(err).WithTarget(desc.Name, location)
		}
		if info.IsDir() {
			return handler.NotFound(location)
		}

		loader, ok := d.loaderFor(location)
		if !ok {
			err := fmt.Errorf("%w %q", ErrNoLoader, filepath.Ext(location))
			return handler.RuntimeError(err).WithTarget(desc.Name, location)
		}

		err = d.protect(desc.Name, logger, func() error {
			var loadErr error
			unit, loadErr = loader.Load(ctx, location, ec)
			return loadErr
		})
		if err != nil {
			return handler.RuntimeError(fmt.Errorf("load %s: %w", location, err)).WithTarget(desc.Name, location)
		}
		defer func() {
			if err := handler.Close(unit); err != nil {
				logger.Warn("closing code unit", "location", location, "error", err)
			}
		}()
	}

	h, ok := unit.Entry(desc.Build.Action)
	if !ok {
		return handler.EntryMissing(location, desc.Build.Action)
	}

	if err := d.protect(desc.Name, logger, func() error { return h.Run(ctx, ec) }); err != nil {
		return handler.RuntimeError(err).WithTarget(desc.Name, location)
	}
	return handler.Success().WithTarget(desc.Name, location)
}

// Resolve returns the filesystem location and compiled-in unit key for a
// descriptor. It fails when the location would leave the lib root.
func (d *Dispatcher) Resolve(desc menu.Descriptor) (location, key string, err error) {
	method := desc.Build.Method
	if method == "" {
		method = DefaultMethod
	}

	root := filepath.Clean(d.config.LibRoot)
	location = filepath.Join(root, filepath.FromSlash(method), filepath.FromSlash(desc.Build.Path), filepath.FromSlash(desc.Build.Source))

	rel, relErr := filepath.Rel(root, location)
	if relErr != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", "", fmt.Errorf("%w: %s resolves to %s", ErrOutsideRoot, desc.Name, location)
	}

	return location, UnitKey(filepath.ToSlash(rel)), nil
}

func (d *Dispatcher) loaderFor(location string) (handler.Loader, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	l, ok := d.loaders[strings.ToLower(filepath.Ext(location))]
	return l, ok
}

// protect runs fn, converting a panic into an ErrPanic error.
func (d *Dispatcher) protect(name string, logger *slog.Logger, fn func() error) (err error) {
	if !d.config.RecoverFromPanic {
		return fn()
	}
	defer func() {
		if r := recover(); r != nil {
			stack := make([]byte, 4096)
			n := runtime.Stack(stack, false)
			logger.Error("dispatched code panicked", "panic", r, "stack", string(stack[:n]))

			err = fmt.Errorf("%w: %v", ErrPanic, r)
			if d.metrics != nil {
				d.metrics.RecordPanic(name)
			}
		}
	}()
	return fn()
}

func (d *Dispatcher) buildContext(desc menu.Descriptor, location, runID string, logger *slog.Logger) *execctx.Context {
	d.mu.RLock()
	defer d.mu.RUnlock()

	ec := execctx.New().
		WithConsole(d.console).
		WithCatalog(d.catalog).
		WithLogger(logger).
		WithDescriptor(desc, location, runID)
	if d.settings != nil {
		ec.WithSettings(d.settings)
	}
	return ec
}
