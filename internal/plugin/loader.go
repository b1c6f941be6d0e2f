package plugin

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// candidate is one subdirectory of the extension root.
type candidate struct {
	Name     string
	Path     string
	Manifest *Manifest
	Err      error
}

// discover lists the immediate subdirectories of root in lexical order and
// loads each manifest. Directories without a manifest are skipped. A
// manifest that fails to load is returned with Err set so the caller can
// record it and move on.
func discover(root string) ([]candidate, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	var out []candidate
	for _, entry := range entries {
		if !isDir(root, entry) {
			continue
		}

		dir := filepath.Join(root, entry.Name())
		manifestPath := filepath.Join(dir, ManifestFile)
		if _, err := os.Stat(manifestPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			out = append(out, candidate{Name: entry.Name(), Path: dir, Err: &ManifestError{Path: manifestPath, Err: err}})
			continue
		}

		m, err := LoadManifest(manifestPath)
		out = append(out, candidate{Name: entry.Name(), Path: dir, Manifest: m, Err: err})
	}
	return out, nil
}

// isDir follows symlinks so linked extension directories are found too.
func isDir(root string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, entry.Name()))
	return err == nil && info.IsDir()
}
