package app

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// ClearDir removes everything inside dir and keeps dir itself. A missing
// dir is not an error. It returns the number of removed entries.
func ClearDir(dir string) (int, error) {
	if dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	var errs []error
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// clearTemp empties the configured temp root before each iteration.
func (a *Application) clearTemp() {
	n, err := ClearDir(a.cfg.TempRoot)
	if err != nil {
		a.logger.Warn("temp root not cleared", "root", a.cfg.TempRoot, "error", err)
	}
	if n > 0 {
		a.logger.Debug("temp root cleared", "root", a.cfg.TempRoot, "removed", n)
		a.metrics.RecordTempCleared(n)
	}
}
