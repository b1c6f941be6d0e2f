package menu

import (
	"errors"
	"fmt"
	"io"
	"slices"
)

// ErrStaleLabels is returned by Render when the label cache does not match
// the entries. Only RebuildLabelCache restores it.
var ErrStaleLabels = errors.New("menu: label cache out of date")

// Table is the ordered list of entries plus the label cache derived from
// them. A Table is owned by one goroutine; it has no internal locking.
type Table struct {
	entries []Descriptor
	labels  []string
}

// NewTable creates a table holding entries. The label cache starts empty.
func NewTable(entries []Descriptor) *Table {
	t := &Table{}
	t.Reset(entries)
	return t
}

// Reset replaces the entries and invalidates the label cache.
func (t *Table) Reset(entries []Descriptor) {
	t.entries = slices.Clone(entries)
	t.labels = nil
}

// AppendExtensions appends extension entries that are not already present
// and returns how many were added. Extensions are identified by name (their
// directory), since several may share an id. Appending the same list twice
// leaves the entries unchanged. The label cache is invalidated either way.
func (t *Table) AppendExtensions(ds []Descriptor) int {
	t.labels = nil

	seen := make(map[string]bool, len(t.entries))
	for _, e := range t.entries {
		if e.IsExtension() {
			seen[e.Name] = true
		}
	}

	added := 0
	for _, d := range ds {
		if d.IsExtension() {
			if seen[d.Name] {
				continue
			}
			seen[d.Name] = true
		}
		t.entries = append(t.entries, d)
		added++
	}
	return added
}

// RebuildLabelCache recomputes every label from the current entries.
func (t *Table) RebuildLabelCache(tr Translator) {
	labels := make([]string, len(t.entries))
	for i, e := range t.entries {
		labels[i] = tr.Translate(e.Mesh)
	}
	t.labels = labels
}

// Fresh reports whether the label cache matches the entries.
func (t *Table) Fresh() bool {
	return len(t.labels) == len(t.entries)
}

// Len returns the number of entries.
func (t *Table) Len() int {
	return len(t.entries)
}

// At returns the entry at index i.
func (t *Table) At(i int) (Descriptor, bool) {
	if i < 0 || i >= len(t.entries) {
		return Descriptor{}, false
	}
	return t.entries[i], true
}

// Entries returns a copy of the entries.
func (t *Table) Entries() []Descriptor {
	return slices.Clone(t.entries)
}

// Labels returns a copy of the label cache.
func (t *Table) Labels() []string {
	return slices.Clone(t.labels)
}

// Render writes one "index label" line per entry.
func (t *Table) Render(w io.Writer) error {
	if !t.Fresh() {
		return fmt.Errorf("%w: %d labels for %d entries", ErrStaleLabels, len(t.labels), len(t.entries))
	}
	for i, label := range t.labels {
		if _, err := fmt.Fprintf(w, "%d %s\n", i, label); err != nil {
			return err
		}
	}
	return nil
}
