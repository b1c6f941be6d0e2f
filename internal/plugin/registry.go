package plugin

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/claytechnologie/toolsdk/internal/menu"
)

// RejectReason says why a parsed manifest was not registered.
type RejectReason int

const (
	// RejectUnauthorized means the id is not on the allow-list.
	RejectUnauthorized RejectReason = iota

	// RejectIncomplete means required build fields are missing.
	RejectIncomplete
)

// String returns the reason name.
func (r RejectReason) String() string {
	switch r {
	case RejectUnauthorized:
		return "unauthorized"
	case RejectIncomplete:
		return "incomplete"
	default:
		return "unknown"
	}
}

// Rejection records an extension that was parsed but not registered.
type Rejection struct {
	Name    string
	ID      string
	Reason  RejectReason
	Missing []string
}

func (r Rejection) String() string {
	if r.Reason == RejectIncomplete {
		return fmt.Sprintf("%s (%s): %s, missing %v", r.Name, r.ID, r.Reason, r.Missing)
	}
	return fmt.Sprintf("%s (%s): %s", r.Name, r.ID, r.Reason)
}

// Problem records an extension whose manifest could not be loaded.
type Problem struct {
	Name string
	Path string
	Err  error
}

// Registry is the snapshot of registered extensions taken at construction.
type Registry struct {
	root   string
	allow  []string
	logger *slog.Logger

	descriptors []menu.Descriptor
	rejections  []Rejection
	problems    []Problem
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger for scan diagnostics.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry scans root once. A missing root is created empty; if that
// fails, the registry logs the error and holds zero extensions. The scan
// never fails as a whole.
func NewRegistry(root string, allow []string, opts ...RegistryOption) *Registry {
	r := &Registry{
		root:   root,
		allow:  slices.Clone(allow),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		r.logger.Error("extension root unavailable", "root", root, "error", err)
		return r
	}

	r.scan()
	return r
}

func (r *Registry) scan() {
	candidates, err := discover(r.root)
	if err != nil {
		r.logger.Error("extension scan failed", "root", r.root, "error", err)
		return
	}

	for _, c := range candidates {
		if c.Err != nil {
			r.logger.Warn("extension manifest unreadable", "extension", c.Name, "error", c.Err)
			r.problems = append(r.problems, Problem{Name: c.Name, Path: c.Path, Err: c.Err})
			continue
		}

		m := c.Manifest
		if m.ID == "" || !slices.Contains(r.allow, m.ID) {
			r.logger.Debug("extension not authorized", "extension", c.Name, "id", m.ID)
			r.rejections = append(r.rejections, Rejection{Name: c.Name, ID: m.ID, Reason: RejectUnauthorized})
			continue
		}

		if missing := m.Missing(); len(missing) > 0 {
			r.logger.Warn("extension manifest incomplete", "extension", c.Name, "id", m.ID, "missing", missing)
			r.rejections = append(r.rejections, Rejection{Name: c.Name, ID: m.ID, Reason: RejectIncomplete, Missing: missing})
			continue
		}

		r.descriptors = append(r.descriptors, m.Descriptor(c.Name))
		r.logger.Debug("extension registered", "extension", c.Name, "id", m.ID)
	}

	r.logger.Info("extensions scanned",
		"root", r.root,
		"registered", len(r.descriptors),
		"rejected", len(r.rejections),
		"problems", len(r.problems))
}

// Root returns the scanned extension root.
func (r *Registry) Root() string {
	return r.root
}

// Descriptors returns the registered extensions in scan order.
func (r *Registry) Descriptors() []menu.Descriptor {
	return slices.Clone(r.descriptors)
}

// Len returns the number of registered extensions.
func (r *Registry) Len() int {
	return len(r.descriptors)
}

// Rejections returns the parsed but unregistered extensions.
func (r *Registry) Rejections() []Rejection {
	return slices.Clone(r.rejections)
}

// Problems returns the extensions whose manifests failed to load.
func (r *Registry) Problems() []Problem {
	return slices.Clone(r.problems)
}
