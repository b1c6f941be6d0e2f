// Package watcher turns filesystem events on the configuration record into
// wake-up hints for the host loop.
//
// Hints are advisory. The record's update flag stays the source of truth;
// a hint only shortens the time until the next CheckForExternalUpdate.
package watcher

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation represents the type of file operation behind a hint.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates the file was created or replaced.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove

	// OpRename indicates the file was renamed away.
	OpRename
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Hint reports that the watched file probably changed.
type Hint struct {
	Path string
	Op   Operation
	Time time.Time
}

// Watcher watches a single file through its parent directory, so atomic
// replace-by-rename edits are seen as well as in-place writes.
type Watcher struct {
	mu sync.Mutex

	path     string
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	hints  chan Hint
	done   chan struct{}
	wg     sync.WaitGroup
	closed bool
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long events must be quiet before a hint is sent.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger for watch errors.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// New starts watching path. The parent directory must exist.
func New(path string, opts ...Option) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:     absPath,
		debounce: 100 * time.Millisecond,
		logger:   slog.New(slog.DiscardHandler),
		hints:    make(chan Hint, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(absPath)); err != nil {
		fsw.Close()
		return nil, err
	}
	w.fsw = fsw

	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// Hints returns the hint channel. At most one hint is pending at a time;
// bursts of events collapse into a single hint.
func (w *Watcher) Hints() <-chan Hint {
	return w.hints
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	err := w.fsw.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending *Hint
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			hint, relevant := w.translate(ev)
			if !relevant {
				continue
			}
			pending = coalesce(pending, hint)

			if w.debounce == 0 {
				w.emit(*pending)
				pending = nil
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case <-timerC:
			timerC = nil
			if pending != nil {
				w.emit(*pending)
				pending = nil
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watch error", "path", w.path, "error", err)
		}
	}
}

func (w *Watcher) translate(ev fsnotify.Event) (Hint, bool) {
	if filepath.Clean(ev.Name) != w.path {
		return Hint{}, false
	}

	hint := Hint{Path: w.path, Time: time.Now()}
	switch {
	case ev.Has(fsnotify.Remove):
		hint.Op = OpRemove
	case ev.Has(fsnotify.Rename):
		hint.Op = OpRename
	case ev.Has(fsnotify.Create):
		hint.Op = OpCreate
	case ev.Has(fsnotify.Write):
		hint.Op = OpWrite
	default:
		return Hint{}, false
	}
	return hint, true
}

// coalesce merges a new hint into the pending one:
//   - any + remove => remove
//   - create + write => create
//   - otherwise the latest operation wins
func coalesce(pending *Hint, next Hint) *Hint {
	if pending == nil {
		return &next
	}
	merged := next
	switch {
	case next.Op == OpRemove:
	case pending.Op == OpCreate && next.Op == OpWrite:
		merged.Op = OpCreate
	}
	return &merged
}

// emit delivers a hint without blocking. A hint already waiting in the
// channel is enough to wake the reader.
func (w *Watcher) emit(h Hint) {
	select {
	case w.hints <- h:
	default:
	}
}
