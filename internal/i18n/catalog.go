// Package i18n loads translation tables and maps label keys to display
// text. Translation never fails: an unknown key translates to itself.
package i18n

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// FallbackLanguage is loaded when the requested language has no table.
const FallbackLanguage = "de"

// ErrNoTable is returned by Reload when no table could be loaded for the
// requested language or the fallback. The catalog is then empty.
var ErrNoTable = errors.New("no translation table")

// extensions lists the supported table formats in lookup order.
var extensions = []string{".json", ".toml", ".yaml", ".yml"}

type languagePackage struct {
	code     string
	path     string
	messages map[string]string
}

// Catalog holds the active translation table.
type Catalog struct {
	mu sync.RWMutex

	root     string
	fallback string
	logger   *slog.Logger

	active   string
	messages map[string]string
	packages []languagePackage
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithFallback overrides the fallback language.
func WithFallback(code string) Option {
	return func(c *Catalog) {
		if code != "" {
			c.fallback = code
		}
	}
}

// WithLogger sets the logger for load problems.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty catalog reading tables from root. Call Reload to
// load a language.
func New(root string, opts ...Option) *Catalog {
	c := &Catalog{
		root:     root,
		fallback: FallbackLanguage,
		logger:   slog.New(slog.DiscardHandler),
		messages: map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Translate returns the text for key, or key itself when the active table
// has no entry.
func (c *Catalog) Translate(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v, ok := c.messages[key]; ok {
		return v
	}
	return key
}

// Language returns the code of the loaded table, or "" if none loaded.
func (c *Catalog) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

// Keys returns the keys of the active table in sorted order.
func (c *Catalog) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.messages))
	for k := range c.messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Available lists the language codes that have a table under the root.
func (c *Catalog) Available() []string {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		c.logger.Warn("list languages", "root", c.root, "error", err)
		return nil
	}

	var codes []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if !slices.Contains(extensions, ext) {
			continue
		}
		code := strings.TrimSuffix(e.Name(), ext)
		if !slices.Contains(codes, code) {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// Reload loads the table for code. Candidates are tried in order: the code
// as given, its canonical form, its base language, then the fallback. When
// none loads the catalog becomes empty and ErrNoTable is returned; Translate
// keeps working as the identity.
func (c *Catalog) Reload(code string) error {
	for _, candidate := range c.candidates(code) {
		messages, err := c.loadTable(candidate)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				c.logger.Warn("translation table skipped", "language", candidate, "error", err)
			}
			continue
		}

		c.mu.Lock()
		for _, pkg := range c.packages {
			if pkg.code == candidate {
				for k, v := range pkg.messages {
					messages[k] = v
				}
			}
		}
		c.active = candidate
		c.messages = messages
		c.mu.Unlock()

		if candidate != code {
			c.logger.Info("translation fallback", "requested", code, "loaded", candidate)
		}
		return nil
	}

	c.mu.Lock()
	c.active = ""
	c.messages = map[string]string{}
	c.mu.Unlock()
	return fmt.Errorf("%w for %q in %s", ErrNoTable, code, c.root)
}

// AddPackage registers an extra key set for a language. It is merged over
// the base table now if code is active, and again on every Reload of code.
func (c *Catalog) AddPackage(code, path string) error {
	messages, err := readTable(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.packages = append(c.packages, languagePackage{code: code, path: path, messages: messages})
	if c.active == code {
		for k, v := range messages {
			c.messages[k] = v
		}
	}
	return nil
}

func (c *Catalog) candidates(code string) []string {
	var out []string
	add := func(s string) {
		if s != "" && !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	add(code)
	if tag, err := language.Parse(code); err == nil {
		add(tag.String())
		if base, conf := tag.Base(); conf != language.No {
			add(base.String())
		}
	}
	add(c.fallback)
	return out
}

func (c *Catalog) loadTable(code string) (map[string]string, error) {
	for _, ext := range extensions {
		path := filepath.Join(c.root, code+ext)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		return readTable(path)
	}
	return nil, fs.ErrNotExist
}

// readTable decodes a flat key/value table. Non-string values are rendered
// with fmt so numeric labels still show up.
func readTable(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}
	switch filepath.Ext(path) {
	case ".json":
		err = json.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported table format %q", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	messages := make(map[string]string, len(raw))
	for k, v := range raw {
		switch s := v.(type) {
		case string:
			messages[k] = s
		case nil:
		default:
			messages[k] = fmt.Sprint(s)
		}
	}
	return messages, nil
}
