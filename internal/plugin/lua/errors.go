package lua

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction is returned when a global expected to be callable is not.
	ErrNotFunction = errors.New("lua global is not a function")

	// ErrVersionMismatch is raised by tool.require_version when major
	// versions differ.
	ErrVersionMismatch = errors.New("incompatible versions")

	// ErrOutsideRoot is returned when a file name leaves its data root.
	ErrOutsideRoot = errors.New("file name leaves its root")
)
