package config

import (
	"fmt"
	"slices"
)

// Record keys recognized in the durable configuration.
const (
	KeyVersion       = "version"
	KeyLanguage      = "language"
	KeyModRoot       = "modpath"
	KeyLanguageRoot  = "languagepath"
	KeyTempRoot      = "temppath"
	KeyCacheRoot     = "cachepath"
	KeyLogRoot       = "logpath"
	KeyModsEnabled   = "mods_enabled"
	KeyAuthorizedIDs = "authorized_ids"
	KeyHeader        = "header"
	KeyErrors        = "errors"
	KeyInputPrompt   = "inputname"
	KeyUpdate        = "update"
)

// Defaults applied when a key is absent.
const (
	DefaultLanguage     = "de"
	DefaultModRoot      = "data/lib/mods"
	DefaultLanguageRoot = "data/assets/manager/lang"
	DefaultTempRoot     = "data/assets/temp"
	DefaultCacheRoot    = "data/assets/cache"
	DefaultLogRoot      = "data/assets/logs"
	DefaultInputPrompt  = "Eingabe"
	DefaultHeader       = "Meine Anwendung"
	DefaultAuthorizedID = "0-000exec"
)

// Config is the typed view of the durable configuration record.
type Config struct {
	Version       string
	Language      string
	AuthorizedIDs []string
	ModsEnabled   bool
	ModRoot       string
	LanguageRoot  string
	TempRoot      string
	CacheRoot     string
	LogRoot       string
	Header        string
	Errors        []string
	InputPrompt   string
	Update        bool
}

// Default returns the configuration produced by an empty record.
func Default() Config {
	cfg, _ := Decode(nil)
	return cfg
}

// Clone returns a copy that shares no slices with c.
func (c Config) Clone() Config {
	c.AuthorizedIDs = slices.Clone(c.AuthorizedIDs)
	c.Errors = slices.Clone(c.Errors)
	return c
}

// IsAuthorized reports whether id is on the allow-list.
func (c Config) IsAuthorized(id string) bool {
	return slices.Contains(c.AuthorizedIDs, id)
}

// Decode maps raw record fields to a Config, applying defaults.
// Values of the wrong type fall back to the default; each such fallback is
// described in the returned warnings.
func Decode(raw map[string]any) (Config, []string) {
	d := decoder{raw: raw}

	cfg := Config{
		Version:       d.str(KeyVersion, ""),
		Language:      d.str(KeyLanguage, DefaultLanguage),
		AuthorizedIDs: d.strs(KeyAuthorizedIDs, []string{DefaultAuthorizedID}),
		ModsEnabled:   d.boolean(KeyModsEnabled, true),
		ModRoot:       d.str(KeyModRoot, DefaultModRoot),
		LanguageRoot:  d.str(KeyLanguageRoot, DefaultLanguageRoot),
		TempRoot:      d.str(KeyTempRoot, DefaultTempRoot),
		CacheRoot:     d.str(KeyCacheRoot, DefaultCacheRoot),
		LogRoot:       d.str(KeyLogRoot, DefaultLogRoot),
		Header:        d.str(KeyHeader, DefaultHeader),
		Errors:        d.strs(KeyErrors, nil),
		InputPrompt:   d.str(KeyInputPrompt, DefaultInputPrompt),
		Update:        d.boolean(KeyUpdate, false),
	}

	return cfg, d.warnings
}

// CoerceBool converts a record value to a boolean. Real booleans pass
// through and the literal strings "True" and "False" are coerced. Any other
// value reports ok=false.
func CoerceBool(v any) (value bool, ok bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch b {
		case "True":
			return true, true
		case "False":
			return false, true
		}
	}
	return false, false
}

type decoder struct {
	raw      map[string]any
	warnings []string
}

func (d *decoder) lookup(key string) (any, bool) {
	if d.raw == nil {
		return nil, false
	}
	v, ok := d.raw[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (d *decoder) warn(key string, v any, def any) {
	d.warnings = append(d.warnings, fmt.Sprintf("%s: unexpected value %v (%T), using default %v", key, v, v, def))
}

func (d *decoder) str(key, def string) string {
	v, ok := d.lookup(key)
	if !ok {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// Versions are occasionally written as bare numbers.
		return fmt.Sprintf("%v", s)
	}
	d.warn(key, v, def)
	return def
}

func (d *decoder) boolean(key string, def bool) bool {
	v, ok := d.lookup(key)
	if !ok {
		return def
	}
	if b, ok := CoerceBool(v); ok {
		return b
	}
	d.warn(key, v, def)
	return def
}

func (d *decoder) strs(key string, def []string) []string {
	v, ok := d.lookup(key)
	if !ok {
		return slices.Clone(def)
	}
	list, ok := v.([]any)
	if !ok {
		if typed, ok := v.([]string); ok {
			return slices.Clone(typed)
		}
		d.warn(key, v, def)
		return slices.Clone(def)
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			d.warnings = append(d.warnings, fmt.Sprintf("%s: skipping non-string entry %v", key, item))
			continue
		}
		out = append(out, s)
	}
	return out
}
