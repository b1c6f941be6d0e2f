// Package app runs the host loop: it owns the configuration store, the menu
// table and the dispatcher, and reacts to input, interrupts and reloads.
package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrInterrupted is the cancellation cause of an interrupted read or
	// dispatch.
	ErrInterrupted = errors.New("interrupted")

	// ErrConfigHint is the cancellation cause of a prompt woken by a
	// configuration file change.
	ErrConfigHint = errors.New("configuration file changed")

	// ErrAlreadyRunning indicates Run was called twice.
	ErrAlreadyRunning = errors.New("application already running")
)

// ComponentError represents a startup failure of one component.
type ComponentError struct {
	Component string // Component name (e.g., "config", "catalog")
	Action    string // Action being performed
	Err       error  // Underlying error
}

// NewComponentError creates a new ComponentError.
func NewComponentError(component, action string, err error) *ComponentError {
	return &ComponentError{
		Component: component,
		Action:    action,
		Err:       err,
	}
}

func (e *ComponentError) Error() string {
	if e == nil {
		return ""
	}

	if e.Action != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Component, e.Action, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Component, e.Action)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Component, e.Err)
	}

	return e.Component
}

func (e *ComponentError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
