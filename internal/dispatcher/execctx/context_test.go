package execctx

import (
	"context"
	"errors"
	"testing"

	"github.com/claytechnologie/toolsdk/internal/config"
	"github.com/claytechnologie/toolsdk/internal/menu"
)

type stubCatalog struct{ messages map[string]string }

func (c stubCatalog) Translate(key string) string {
	if v, ok := c.messages[key]; ok {
		return v
	}
	return key
}
func (stubCatalog) Language() string             { return "de" }
func (stubCatalog) Available() []string          { return []string{"de"} }
func (stubCatalog) Keys() []string               { return nil }
func (stubCatalog) AddPackage(_, _ string) error { return nil }

type stubConsole struct{}

func (stubConsole) Println(...any)                                   {}
func (stubConsole) Printf(string, ...any)                            {}
func (stubConsole) ReadLine(context.Context, string) (string, error) { return "", nil }
func (stubConsole) Clear()                                           {}

type stubSettings struct{ cfg config.Config }

func (s stubSettings) Path() string                     { return "settings.json" }
func (s stubSettings) Current() config.Config           { return s.cfg }
func (s stubSettings) Entries() ([]config.Entry, error) { return nil, nil }
func (s stubSettings) Set(string, any) error            { return nil }

func TestNew(t *testing.T) {
	ctx := New()

	if ctx.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
	if ctx.Console != nil || ctx.Catalog != nil || ctx.Settings != nil {
		t.Error("collaborators should be unset")
	}
}

func TestWithBuilders(t *testing.T) {
	settings := stubSettings{cfg: config.Config{Language: "en", Version: "1.2.0"}}
	desc := menu.Descriptor{Name: "book", Mesh: "book"}

	ctx := New().
		WithConsole(stubConsole{}).
		WithCatalog(stubCatalog{}).
		WithSettings(settings).
		WithLogger(nil).
		WithDescriptor(desc, "data/lib/main/book/book.lua", "run-1")

	if ctx.Config.Language != "en" || ctx.Config.Version != "1.2.0" {
		t.Errorf("Config = %+v, want snapshot of settings", ctx.Config)
	}
	if ctx.Logger == nil {
		t.Error("WithLogger(nil) should keep the existing logger")
	}
	if ctx.Descriptor.Name != "book" {
		t.Errorf("Descriptor.Name = %q, want book", ctx.Descriptor.Name)
	}
	if ctx.Location != "data/lib/main/book/book.lua" {
		t.Errorf("Location = %q", ctx.Location)
	}
	if ctx.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", ctx.RunID)
	}
}

func TestTranslate(t *testing.T) {
	ctx := New()
	if got := ctx.Translate("header"); got != "header" {
		t.Errorf("Translate without catalog = %q, want key", got)
	}

	ctx.WithCatalog(stubCatalog{messages: map[string]string{"header": "Werkzeugkasten"}})
	if got := ctx.Translate("header"); got != "Werkzeugkasten" {
		t.Errorf("Translate = %q, want Werkzeugkasten", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		ctx         *Context
		wantErr     error
		wantSetting error
	}{
		{
			name:        "empty",
			ctx:         New(),
			wantErr:     ErrMissingConsole,
			wantSetting: ErrMissingConsole,
		},
		{
			name:        "console only",
			ctx:         New().WithConsole(stubConsole{}),
			wantErr:     ErrMissingCatalog,
			wantSetting: ErrMissingCatalog,
		},
		{
			name:        "no settings",
			ctx:         New().WithConsole(stubConsole{}).WithCatalog(stubCatalog{}),
			wantErr:     nil,
			wantSetting: ErrMissingSettings,
		},
		{
			name:        "complete",
			ctx:         New().WithConsole(stubConsole{}).WithCatalog(stubCatalog{}).WithSettings(stubSettings{}),
			wantErr:     nil,
			wantSetting: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.ctx.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
			if err := tt.ctx.ValidateForSettings(); !errors.Is(err, tt.wantSetting) {
				t.Errorf("ValidateForSettings() = %v, want %v", err, tt.wantSetting)
			}
		})
	}
}
