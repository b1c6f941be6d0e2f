package app

import (
	"errors"
	"testing"

	"github.com/claytechnologie/toolsdk/internal/config"
)

func TestComponentError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ComponentError
		expected string
	}{
		{"nil error", nil, ""},
		{"component only", &ComponentError{Component: "config"}, "config"},
		{"component and action", &ComponentError{Component: "config", Action: "load"}, "config: load"},
		{"component and err", &ComponentError{Component: "catalog", Err: errors.New("boom")}, "catalog: boom"},
		{"full", NewComponentError("config", "load", errors.New("boom")), "config: load: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = '%s', expected '%s'", got, tt.expected)
			}
		})
	}
}

func TestComponentError_Unwrap(t *testing.T) {
	inner := &config.IOError{Path: "settings.json", Op: "read", Err: errors.New("missing")}
	err := error(NewComponentError("config", "load", inner))

	var ioErr *config.IOError
	if !errors.As(err, &ioErr) {
		t.Fatal("errors.As did not find the config error")
	}
	if ioErr.Path != "settings.json" {
		t.Errorf("Path = %q", ioErr.Path)
	}

	var nilErr *ComponentError
	if nilErr.Unwrap() != nil {
		t.Error("expected nil from Unwrap() on nil receiver")
	}
}
