package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrInvalidSelection indicates input that is neither an index nor the
	// exit sentinel.
	ErrInvalidSelection = errors.New("dispatcher: invalid selection")

	// ErrNoLoader indicates no loader is registered for a file extension.
	ErrNoLoader = errors.New("dispatcher: no loader for file type")

	// ErrPanic indicates dispatched code panicked.
	ErrPanic = errors.New("dispatcher: handler panic")

	// ErrOutsideRoot indicates a descriptor resolves outside the lib root.
	ErrOutsideRoot = errors.New("dispatcher: location outside lib root")
)
