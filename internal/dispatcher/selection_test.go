package dispatcher

import (
	"errors"
	"testing"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in      string
		want    Selection
		wantErr bool
	}{
		{"0", Index(0), false},
		{" 12 \n", Index(12), false},
		{"-1", Index(-1), false},
		{"exit", ExitSelection(), false},
		{"EXIT", ExitSelection(), false},
		{"  Exit ", ExitSelection(), false},
		{"", Selection{}, true},
		{"one", Selection{}, true},
		{"1.5", Selection{}, true},
		{"exit now", Selection{}, true},
	}

	for _, tt := range tests {
		got, err := ParseSelection(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidSelection) {
				t.Errorf("ParseSelection(%q) error = %v, want ErrInvalidSelection", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseSelection(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSelection(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestSelectionString(t *testing.T) {
	if got := ExitSelection().String(); got != "exit" {
		t.Errorf("ExitSelection().String() = %q", got)
	}
	if got := Index(3).String(); got != "3" {
		t.Errorf("Index(3).String() = %q", got)
	}
}

func TestStateString(t *testing.T) {
	if StateRunning.String() != "running" || StateExited.String() != "exited" || State(9).String() != "unknown" {
		t.Error("unexpected state names")
	}
}
