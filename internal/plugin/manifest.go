package plugin

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/claytechnologie/toolsdk/internal/menu"
)

// ManifestFile is the manifest file name inside an extension directory.
const ManifestFile = "package.json"

// Manifest describes one extension.
type Manifest struct {
	// ID gates authorization against the allow-list.
	ID string `json:"id"`

	Build BuildSpec `json:"build"`
}

// BuildSpec tells the host where the extension's entry point lives.
type BuildSpec struct {
	Source string `json:"source"` // Code unit file name
	Mesh   string `json:"mesh"`   // Translation key of the menu label
	Action string `json:"action"` // Entry point name
	Path   string `json:"path"`   // Directory below the method directory
	Method string `json:"method"` // Category directory, "mods" when empty
}

// LoadManifest reads and parses a manifest file. Completeness is not
// checked; see Missing.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Err: err}
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &ManifestError{Path: path, Err: fmt.Errorf("parse: %w", err)}
	}
	return &m, nil
}

// Missing lists the required build fields that are empty, in the order
// source, mesh, action, path.
func (m *Manifest) Missing() []string {
	var missing []string
	if m.Build.Source == "" {
		missing = append(missing, "source")
	}
	if m.Build.Mesh == "" {
		missing = append(missing, "mesh")
	}
	if m.Build.Action == "" {
		missing = append(missing, "action")
	}
	if m.Build.Path == "" {
		missing = append(missing, "path")
	}
	return missing
}

// Complete reports whether all required build fields are set.
func (m *Manifest) Complete() bool {
	return len(m.Missing()) == 0
}

// Descriptor converts the manifest into a menu entry named name. Build
// fields are copied verbatim; Method stays empty when the manifest omits it.
func (m *Manifest) Descriptor(name string) menu.Descriptor {
	return menu.Descriptor{
		Name: name,
		ID:   m.ID,
		Mesh: m.Build.Mesh,
		Build: menu.Build{
			Path:   m.Build.Path,
			Action: m.Build.Action,
			Source: m.Build.Source,
			Method: m.Build.Method,
		},
	}
}
