package execctx

import "errors"

// Context validation errors.
var (
	// ErrMissingConsole indicates the console is required but not set.
	ErrMissingConsole = errors.New("execution context: console is required")

	// ErrMissingCatalog indicates the translation catalog is required but not set.
	ErrMissingCatalog = errors.New("execution context: catalog is required")

	// ErrMissingSettings indicates the settings store is required but not set.
	ErrMissingSettings = errors.New("execution context: settings are required")
)
