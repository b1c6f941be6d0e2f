package config

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/claytechnologie/toolsdk/internal/config/notify"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Change is a configuration change event.
type Change = notify.Change[Config]

// Entry is one top-level key of the durable record, in file order.
type Entry struct {
	Key   string
	Value any
}

// Store owns the durable configuration record and its applied Config.
type Store struct {
	mu sync.RWMutex

	path     string
	current  Config
	logger   *slog.Logger
	notifier *notify.Notifier[Config]
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for non-fatal problems.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a store for the record at path. Nothing is read until
// Load is called.
func NewStore(path string, opts ...StoreOption) *Store {
	s := &Store{
		path:    path,
		current: Default(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.notifier = notify.New(notify.WithPanicHandler[Config](func(r any) {
		s.logger.Error("config observer panicked", "panic", r)
	}))
	return s
}

// Path returns the record path.
func (s *Store) Path() string {
	return s.path
}

// Current returns a copy of the applied configuration.
func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Subscribe registers an observer for reload and set events.
func (s *Store) Subscribe(observer notify.Observer[Config]) *notify.Subscription[Config] {
	return s.notifier.Subscribe(observer)
}

// Load reads and applies the durable record. It returns an *IOError if the
// record cannot be read and a *ParseError if it is malformed.
func (s *Store) Load() (Config, error) {
	_, raw, err := s.read()
	if err != nil {
		return Config{}, err
	}
	return s.Apply(raw), nil
}

// Apply maps raw record fields to the typed Config, stores it as current and
// returns a copy.
func (s *Store) Apply(raw map[string]any) Config {
	cfg, warnings := Decode(raw)
	for _, w := range warnings {
		s.logger.Warn("config value ignored", "path", s.path, "detail", w)
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()

	return cfg.Clone()
}

// CheckForExternalUpdate re-reads the record and reports whether an external
// edit was applied. When the record's update flag is set, the flag is cleared
// in durable storage first and the rewritten record is applied, so each edit
// is observed exactly once. Read, parse and write failures are logged and
// reported as "no update".
func (s *Store) CheckForExternalUpdate() bool {
	data, raw, err := s.read()
	if err != nil {
		s.logger.Warn("config check skipped", "path", s.path, "error", err)
		return false
	}

	flag, _ := CoerceBool(raw[KeyUpdate])
	if !flag {
		return false
	}

	cleared, err := sjson.SetBytes(data, KeyUpdate, false)
	if err != nil {
		s.logger.Warn("config check skipped", "path", s.path, "error", err)
		return false
	}
	if err := s.write(cleared); err != nil {
		s.logger.Warn("config update flag not cleared", "path", s.path, "error", err)
		return false
	}
	raw[KeyUpdate] = false

	previous := s.Current()
	current := s.Apply(raw)
	s.logger.Info("config update applied", "path", s.path)
	s.notifier.NotifyReload(previous, current, s.path)
	return true
}

// Set writes one key into the durable record and raises the update flag, so
// the change is picked up by the next CheckForExternalUpdate like any
// external edit. The applied Config is not changed by Set.
func (s *Store) Set(key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, _, err := s.read()
	if err != nil {
		return err
	}

	updated, err := sjson.SetBytes(data, escapeKey(key), value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if key != KeyUpdate {
		updated, err = sjson.SetBytes(updated, KeyUpdate, true)
		if err != nil {
			return fmt.Errorf("set %s: %w", KeyUpdate, err)
		}
	}
	if err := s.write(updated); err != nil {
		return err
	}

	s.notifier.NotifySet(key, s.Current(), s.path)
	return nil
}

// keyEscaper quotes sjson path syntax so a key always names one top-level
// field.
var keyEscaper = strings.NewReplacer(`\`, `\\`, ".", `\.`, "*", `\*`, "?", `\?`)

func escapeKey(key string) string {
	return keyEscaper.Replace(key)
}

// Entries returns the top-level record keys and values in file order.
func (s *Store) Entries() ([]Entry, error) {
	data, _, err := s.read()
	if err != nil {
		return nil, err
	}

	var entries []Entry
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		entries = append(entries, Entry{Key: key.String(), Value: value.Value()})
		return true
	})
	return entries, nil
}

// Close drops all subscriptions.
func (s *Store) Close() {
	s.notifier.Close()
}

// read loads the raw bytes and their decoded object.
func (s *Store) read() ([]byte, map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, nil, &IOError{Path: s.path, Op: "read", Err: err}
	}

	if !gjson.ValidBytes(data) {
		return nil, nil, &ParseError{Path: s.path, Message: ErrInvalidJSON.Error(), Err: ErrInvalidJSON}
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, nil, &ParseError{Path: s.path, Message: ErrNotObject.Error(), Err: ErrNotObject}
	}
	raw, ok := result.Value().(map[string]any)
	if !ok {
		return nil, nil, &ParseError{Path: s.path, Message: ErrNotObject.Error(), Err: ErrNotObject}
	}
	return data, raw, nil
}

// write replaces the record atomically so a concurrent reader never sees a
// partially written file.
func (s *Store) write(data []byte) error {
	perm := fs.FileMode(0o644)
	if info, err := os.Stat(s.path); err == nil {
		perm = info.Mode().Perm()
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return &IOError{Path: s.path, Op: "write", Err: err}
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Path: s.path, Op: "write", Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Path: s.path, Op: "write", Err: err}
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		os.Remove(tmpName)
		return &IOError{Path: s.path, Op: "write", Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return &IOError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}
