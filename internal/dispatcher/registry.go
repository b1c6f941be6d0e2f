package dispatcher

import (
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
)

// Registry maps unit keys ("method/path/source") to compiled-in units.
type Registry struct {
	mu    sync.RWMutex
	units map[string]handler.Unit
}

// NewRegistry creates a new unit registry.
func NewRegistry() *Registry {
	return &Registry{
		units: make(map[string]handler.Unit),
	}
}

// UnitKey normalizes a unit key so "main/settings/settings.lua" and
// "main\settings\./settings.lua" register the same unit.
func UnitKey(parts ...string) string {
	joined := filepath.ToSlash(strings.Join(parts, "/"))
	return strings.TrimPrefix(path.Clean("/"+joined), "/")
}

// Register adds a unit under key, replacing any previous one.
func (r *Registry) Register(key string, u handler.Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[UnitKey(key)] = u
}

// Get returns the unit under key.
func (r *Registry) Get(key string) (handler.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[UnitKey(key)]
	return u, ok
}
