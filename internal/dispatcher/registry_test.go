package dispatcher

import (
	"testing"

	"github.com/claytechnologie/toolsdk/internal/dispatcher/handler"
)

func TestUnitKey(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"main/settings/settings.lua"}, "main/settings/settings.lua"},
		{[]string{"main", "settings", "settings.lua"}, "main/settings/settings.lua"},
		{[]string{"main/./settings//settings.lua"}, "main/settings/settings.lua"},
		{[]string{"/main/settings/settings.lua"}, "main/settings/settings.lua"},
	}

	for _, tt := range tests {
		if got := UnitKey(tt.parts...); got != tt.want {
			t.Errorf("UnitKey(%v) = %q, want %q", tt.parts, got, tt.want)
		}
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	book := handler.Entries{}
	settings := handler.Entries{"main": nil}

	r.Register("main/book/book.lua", book)
	r.Register("main/./settings/settings.lua", settings)

	if _, ok := r.Get("main/settings/settings.lua"); !ok {
		t.Error("expected normalized key to be registered")
	}
	if _, ok := r.Get("main/missing/missing.lua"); ok {
		t.Error("unexpected unit for unknown key")
	}

	replacement := handler.Entries{"start": nil}
	r.Register("main/book/book.lua", replacement)
	got, ok := r.Get("main/book/book.lua")
	if !ok || len(got.(handler.Entries)) != 1 {
		t.Errorf("Get() = %v, want the replacement unit", got)
	}
}
