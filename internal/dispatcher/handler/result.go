package handler

import (
	"fmt"
	"time"
)

// Status is the outcome of one dispatch.
type Status uint8

const (
	// StatusOK indicates the entry point ran and returned.
	StatusOK Status = iota
	// StatusNoSelection indicates an index outside the table.
	StatusNoSelection
	// StatusExit indicates the exit sentinel was selected.
	StatusExit
	// StatusNotFound indicates the code unit does not exist.
	StatusNotFound
	// StatusEntryMissing indicates the unit has no such entry point.
	StatusEntryMissing
	// StatusRuntimeError indicates loading or running failed.
	StatusRuntimeError
	// StatusInvalidDescriptor indicates the entry cannot be resolved.
	StatusInvalidDescriptor
	// StatusExited indicates the dispatcher already left the running state.
	StatusExited
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNoSelection:
		return "no-selection"
	case StatusExit:
		return "exit"
	case StatusNotFound:
		return "not-found"
	case StatusEntryMissing:
		return "entry-missing"
	case StatusRuntimeError:
		return "runtime-error"
	case StatusInvalidDescriptor:
		return "invalid-descriptor"
	case StatusExited:
		return "exited"
	default:
		return "unknown"
	}
}

// Result represents the outcome of a dispatch. Failures are values, never
// panics.
type Result struct {
	// Status indicates the result status.
	Status Status

	// Err contains the underlying error for failures.
	Err error

	// Message is an actionable description for display.
	Message string

	// Name is the dispatched descriptor's name.
	Name string

	// Location is the resolved code unit path, when one was resolved.
	Location string

	// RunID identifies the dispatch in logs.
	RunID string

	// Duration is the time spent loading and running.
	Duration time.Duration
}

// IsOK returns true if the entry point ran successfully.
func (r Result) IsOK() bool {
	return r.Status == StatusOK
}

// IsFailure returns true for statuses that should be reported to the user.
func (r Result) IsFailure() bool {
	switch r.Status {
	case StatusNotFound, StatusEntryMissing, StatusRuntimeError, StatusInvalidDescriptor:
		return true
	}
	return false
}

// WithTarget returns the result with the descriptor name and location set.
func (r Result) WithTarget(name, location string) Result {
	r.Name = name
	r.Location = location
	return r
}

// Success creates a successful result.
func Success() Result {
	return Result{Status: StatusOK}
}

// NoSelection creates a result for an out-of-range index.
func NoSelection(index int) Result {
	return Result{Status: StatusNoSelection, Message: fmt.Sprintf("no entry at index %d", index)}
}

// Exit creates the result of selecting the exit sentinel.
func Exit() Result {
	return Result{Status: StatusExit}
}

// Exited creates the result for a selection made after exit.
func Exited() Result {
	return Result{Status: StatusExited, Message: "dispatcher has exited"}
}

// NotFound creates a result for a missing code unit.
func NotFound(location string) Result {
	return Result{Status: StatusNotFound, Location: location, Message: fmt.Sprintf("action file not found: %s", location)}
}

// EntryMissing creates a result for a missing entry point.
func EntryMissing(location, action string) Result {
	return Result{
		Status:   StatusEntryMissing,
		Location: location,
		Message:  fmt.Sprintf("function %q not found in %s", action, location),
	}
}

// RuntimeError creates a result for a failure while loading or running.
func RuntimeError(err error) Result {
	return Result{Status: StatusRuntimeError, Err: err, Message: fmt.Sprintf("error executing menu action: %v", err)}
}

// InvalidDescriptor creates a result for an entry that cannot be resolved.
func InvalidDescriptor(reason string) Result {
	return Result{Status: StatusInvalidDescriptor, Message: "invalid menu item configuration: " + reason}
}
