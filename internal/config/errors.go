package config

import (
	"errors"
	"fmt"
)

// Errors returned by configuration operations.
var (
	// ErrNotObject indicates the record parsed but is not a JSON object.
	ErrNotObject = errors.New("config record is not an object")

	// ErrInvalidJSON indicates the record is not valid JSON.
	ErrInvalidJSON = errors.New("config record is not valid JSON")

	// ErrEmptyKey indicates Set was called without a key.
	ErrEmptyKey = errors.New("config key is empty")
)

// IOError represents a failure to read or write the durable record.
type IOError struct {
	// Path is the record path.
	Path string
	// Op is the failed operation ("read" or "write").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// ParseError represents a malformed durable record.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
