package app

import (
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/claytechnologie/toolsdk/internal/config"
	"github.com/claytechnologie/toolsdk/internal/config/notify"
	"github.com/claytechnologie/toolsdk/internal/config/watcher"
	"github.com/claytechnologie/toolsdk/internal/console"
	"github.com/claytechnologie/toolsdk/internal/dispatcher"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handlers/packages"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/handlers/settings"
	"github.com/claytechnologie/toolsdk/internal/i18n"
	"github.com/claytechnologie/toolsdk/internal/menu"
	"github.com/claytechnologie/toolsdk/internal/plugin"
	"github.com/claytechnologie/toolsdk/internal/plugin/lua"
)

// DefaultConfigPath is the configuration record used when none is given.
const DefaultConfigPath = "data/assets/manager/settings.json"

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration record.
	ConfigPath string

	// LibRoot is the directory code units resolve below.
	LibRoot string

	// Watch enables the config file watcher that wakes an idle prompt.
	Watch bool

	// Logger receives structured logs. Nil discards them.
	Logger *slog.Logger

	// In and Out are the console streams. They default to stdin and stdout.
	In  io.Reader
	Out io.Writer

	// Console options, e.g. forcing terminal mode.
	ConsoleOptions []console.Option

	// Interrupts delivers interrupt signals. When nil, Run listens for
	// os.Interrupt itself.
	Interrupts <-chan os.Signal
}

// Application is the host: it owns the configuration store, the menu table
// and the dispatcher, and runs the interactive loop.
//
// Only the loop goroutine mutates application state. Helper goroutines
// deliver input lines, signals and file hints, or cancel contexts.
type Application struct {
	opts   Options
	base   *slog.Logger
	logger *slog.Logger

	store    *config.Store
	cfg      config.Config
	sub      *notify.Subscription[config.Config]
	pending  *notify.Change[config.Config]
	catalog  *i18n.Catalog
	registry *plugin.Registry
	scanned  bool

	table      *menu.Table
	dispatcher *dispatcher.Dispatcher
	console    *console.Console
	watcher    *watcher.Watcher

	interrupts <-chan os.Signal
	notices    []string
	metrics    *Metrics
	running    atomic.Bool
}

// New loads the configuration and wires all components. Only an unreadable
// or malformed configuration record fails startup.
func New(opts Options) (*Application, error) {
	if opts.ConfigPath == "" {
		opts.ConfigPath = DefaultConfigPath
	}
	if opts.LibRoot == "" {
		opts.LibRoot = dispatcher.DefaultLibRoot
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	a := &Application{
		opts:    opts,
		base:    logger,
		logger:  WithComponent(logger, "app"),
		metrics: NewMetrics(),
	}

	a.store = config.NewStore(opts.ConfigPath, config.WithLogger(WithComponent(logger, "config")))
	cfg, err := a.store.Load()
	if err != nil {
		return nil, NewComponentError("config", "load", err)
	}
	a.cfg = cfg
	a.sub = a.store.Subscribe(a.observe)

	a.console = console.New(opts.In, opts.Out, opts.ConsoleOptions...)

	a.catalog = a.newCatalog(cfg)
	for _, msg := range cfg.Errors {
		a.console.Println(a.catalog.Translate(LabelWarning), msg)
	}

	a.table = menu.NewTable(nil)
	a.dispatcher = a.newDispatcher()

	if cfg.ModsEnabled {
		a.extensions()
	}
	if opts.Watch {
		a.startWatcher()
	}

	a.rebuild()
	a.logger.Info("application ready",
		"config", a.store.Path(),
		"lib_root", opts.LibRoot,
		"language", a.catalog.Language(),
		"entries", a.table.Len())
	return a, nil
}

func (a *Application) newCatalog(cfg config.Config) *i18n.Catalog {
	catalog := i18n.New(cfg.LanguageRoot,
		i18n.WithFallback(config.DefaultLanguage),
		i18n.WithLogger(WithComponent(a.base, "i18n")))
	if err := catalog.Reload(cfg.Language); err != nil {
		a.logger.Warn("no translation table loaded", "root", cfg.LanguageRoot, "language", cfg.Language, "error", err)
	}
	return catalog
}

func (a *Application) newDispatcher() *dispatcher.Dispatcher {
	logger := a.base
	dcfg := dispatcher.DefaultConfig().
		WithLibRoot(a.opts.LibRoot).
		WithMetrics().
		WithPanicRecovery(true)

	d := dispatcher.New(dcfg, a.table)
	d.SetLogger(WithComponent(logger, "dispatcher"))
	d.SetConsole(a.console)
	d.SetCatalog(a.catalog)
	d.SetSettings(a.store)

	d.RegisterLoader(lua.Extension, lua.NewLoader(lua.WithLogger(WithComponent(logger, "lua"))))
	d.RegisterUnit(dispatcher.UnitKey(settings.Method, settings.Path, settings.Source), settings.Unit())
	d.RegisterUnit(dispatcher.UnitKey(packages.Method, packages.Path, packages.Source), packages.New(extensionSource{a}).Unit())

	d.RegisterPostHook(dispatcher.PostDispatchFunc(func(sel dispatcher.Selection, desc menu.Descriptor, res dispatcher.Result) {
		a.metrics.RecordSelection()
	}))
	return d
}

func (a *Application) startWatcher() {
	w, err := watcher.New(a.store.Path(), watcher.WithLogger(WithComponent(a.base, "watcher")))
	if err != nil {
		a.logger.Warn("config watcher unavailable, polling only", "path", a.store.Path(), "error", err)
		return
	}
	a.watcher = w
}

// extensions returns the extension registry, scanning the mod root the
// first time it is needed. Extensions are install-time only: later calls
// never re-scan.
func (a *Application) extensions() *plugin.Registry {
	if !a.scanned {
		a.scanned = true
		a.registry = plugin.NewRegistry(a.cfg.ModRoot, a.cfg.AuthorizedIDs,
			plugin.WithLogger(WithComponent(a.base, "registry")))
	}
	return a.registry
}

// rebuild resets the table to the built-ins, appends the extensions that
// are still authorized, and rebuilds the label cache.
func (a *Application) rebuild() {
	a.table.Reset(Builtins())
	if a.cfg.ModsEnabled {
		var allowed []menu.Descriptor
		for _, d := range a.extensions().Descriptors() {
			if a.cfg.IsAuthorized(d.ID) {
				allowed = append(allowed, d)
			}
		}
		added := a.table.AppendExtensions(allowed)
		a.logger.Debug("extensions appended", "count", added)
	}
	a.table.RebuildLabelCache(a.catalog)
	a.logger.Debug("menu rebuilt", "labels", a.table.Labels())
}

// observe records reload events for the loop to act on.
func (a *Application) observe(change notify.Change[config.Config]) {
	a.logger.Debug("config change", "type", change.Type.String(), "key", change.Key, "source", change.Source)
	if change.Type == notify.ChangeReload {
		c := change
		a.pending = &c
	}
}

// Config returns the applied configuration.
func (a *Application) Config() config.Config {
	return a.cfg.Clone()
}

// Table returns the menu table.
func (a *Application) Table() *menu.Table {
	return a.table
}

// Dispatcher returns the dispatcher.
func (a *Application) Dispatcher() *dispatcher.Dispatcher {
	return a.dispatcher
}

// Catalog returns the active translation catalog.
func (a *Application) Catalog() *i18n.Catalog {
	return a.catalog
}

// Metrics returns the loop metrics.
func (a *Application) Metrics() *Metrics {
	return a.metrics
}

// extensionSource exposes the lazily scanned registry to the package
// manager.
type extensionSource struct {
	a *Application
}

func (s extensionSource) Root() string {
	return s.a.extensions().Root()
}

func (s extensionSource) Descriptors() []menu.Descriptor {
	return s.a.extensions().Descriptors()
}

func (s extensionSource) Rejections() []plugin.Rejection {
	return s.a.extensions().Rejections()
}

func (s extensionSource) Problems() []plugin.Problem {
	return s.a.extensions().Problems()
}
