// Package menu holds the ordered action table shown to the user and the
// label cache rendered from it.
package menu

// Build locates the code unit an entry dispatches to.
type Build struct {
	// Path is the unit directory below the method directory.
	Path string `json:"path"`

	// Action names the entry point inside the unit.
	Action string `json:"action"`

	// Source is the unit file name.
	Source string `json:"source"`

	// Method is the top-level library directory. Empty means "mods".
	Method string `json:"method,omitempty"`
}

// Descriptor is one menu entry.
type Descriptor struct {
	// Name identifies the entry in logs. Extensions use their directory name.
	Name string

	// ID is the extension id. Built-in entries have none.
	ID string

	// Mesh is the translation key of the entry label.
	Mesh string

	Build Build
}

// IsExtension reports whether the entry was contributed by an extension.
func (d Descriptor) IsExtension() bool {
	return d.ID != ""
}

// Complete reports whether the build fields needed for dispatch are set.
func (b Build) Complete() bool {
	return b.Path != "" && b.Action != "" && b.Source != ""
}

// Translator maps a label key to display text.
type Translator interface {
	Translate(key string) string
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(key string) string

// Translate calls f(key).
func (f TranslatorFunc) Translate(key string) string {
	return f(key)
}
