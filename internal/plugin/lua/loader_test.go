package lua

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/claytechnologie/toolsdk/internal/config"
	"github.com/claytechnologie/toolsdk/internal/console"
	"github.com/claytechnologie/toolsdk/internal/dispatcher/execctx"
	"github.com/claytechnologie/toolsdk/internal/i18n"
	"github.com/claytechnologie/toolsdk/internal/menu"
)

type fixture struct {
	dir   string
	out   *bytes.Buffer
	store *config.Store
	ec    *execctx.Context
}

// newFixture builds a dispatch context over real collaborators rooted in a
// temp dir. input is what the unit will read from the console.
func newFixture(t *testing.T, input string) *fixture {
	t.Helper()
	dir := t.TempDir()

	langDir := filepath.Join(dir, "lang")
	require.NoError(t, os.MkdirAll(langDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(langDir, "de.json"), []byte(`{"header":"Werkzeuge","exit":"Beenden"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(langDir, "en.json"), []byte(`{"header":"Tools","exit":"Exit"}`), 0o644))

	record := map[string]any{
		"version":      "3.1.0",
		"language":     "en",
		"languagepath": langDir,
		"temppath":     filepath.Join(dir, "temp"),
		"cachepath":    filepath.Join(dir, "cache"),
		"logpath":      filepath.Join(dir, "logs"),
		"update":       false,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	require.NoError(t, err)
	settingsPath := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(settingsPath, data, 0o644))

	store := config.NewStore(settingsPath)
	cfg, err := store.Load()
	require.NoError(t, err)

	catalog := i18n.New(cfg.LanguageRoot)
	require.NoError(t, catalog.Reload(cfg.Language))

	out := &bytes.Buffer{}
	con := console.New(strings.NewReader(input), out, console.WithTerminal(false))

	ec := execctx.New().
		WithConsole(con).
		WithCatalog(catalog).
		WithSettings(store).
		WithDescriptor(menu.Descriptor{Name: "TaskManager"}, "", "run-1")

	return &fixture{dir: dir, out: out, store: store, ec: ec}
}

func (f *fixture) writeUnit(t *testing.T, code string) string {
	t.Helper()
	path := filepath.Join(f.dir, "unit.lua")
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))
	return path
}

func (f *fixture) run(t *testing.T, code, entry string) error {
	t.Helper()
	ctx := context.Background()

	unit, err := NewLoader().Load(ctx, f.writeUnit(t, code), f.ec)
	require.NoError(t, err)
	defer unit.(*Unit).Close()

	h, ok := unit.Entry(entry)
	require.True(t, ok, "entry %q", entry)
	return h.Run(ctx, f.ec)
}

func TestLoaderRunsTopLevelAtLoad(t *testing.T) {
	f := newFixture(t, "")
	path := f.writeUnit(t, `
		local tool = require("tool")
		tool.print("loading")
		function start() tool.print("started") end
	`)

	unit, err := NewLoader().Load(context.Background(), path, f.ec)
	require.NoError(t, err)
	defer unit.(*Unit).Close()

	assert.Equal(t, "loading\n", f.out.String())
	assert.Equal(t, path, unit.(*Unit).Location())

	h, ok := unit.Entry("start")
	require.True(t, ok)
	require.NoError(t, h.Run(context.Background(), f.ec))
	assert.Equal(t, "loading\nstarted\n", f.out.String())
}

func TestLoaderEntryMissing(t *testing.T) {
	f := newFixture(t, "")
	path := f.writeUnit(t, `notafunction = 5`)

	unit, err := NewLoader().Load(context.Background(), path, f.ec)
	require.NoError(t, err)
	defer unit.(*Unit).Close()

	for _, name := range []string{"", "main", "notafunction"} {
		_, ok := unit.Entry(name)
		assert.False(t, ok, "Entry(%q)", name)
	}
}

func TestLoaderLibraryFunctionsAreNotEntries(t *testing.T) {
	f := newFixture(t, "")
	path := f.writeUnit(t, `
		function start() end
		function print(...) end
	`)

	unit, err := NewLoader().Load(context.Background(), path, f.ec)
	require.NoError(t, err)
	defer unit.(*Unit).Close()

	for _, name := range []string{"require", "error", "pairs", "tostring"} {
		_, ok := unit.Entry(name)
		assert.False(t, ok, "Entry(%q) resolves a library function", name)
	}
	for _, name := range []string{"start", "print"} {
		_, ok := unit.Entry(name)
		assert.True(t, ok, "Entry(%q) is defined by the unit", name)
	}
}

func TestLoaderLoadErrors(t *testing.T) {
	f := newFixture(t, "")

	_, err := NewLoader().Load(context.Background(), f.writeUnit(t, `this is not lua`), f.ec)
	assert.Error(t, err)

	_, err = NewLoader().Load(context.Background(), f.writeUnit(t, `error("top level failure")`), f.ec)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top level failure")
}

func TestLoaderFreshStatePerLoad(t *testing.T) {
	f := newFixture(t, "")
	path := f.writeUnit(t, `
		counter = (counter or 0) + 1
		function main() return counter end
	`)

	for range 2 {
		unit, err := NewLoader().Load(context.Background(), path, f.ec)
		require.NoError(t, err)
		results, err := unit.(*Unit).state.Call("main")
		require.NoError(t, err)
		assert.Equal(t, "1", results[0].String())
		require.NoError(t, unit.(*Unit).Close())
	}
}

func TestEntryRuntimeError(t *testing.T) {
	f := newFixture(t, "")
	err := f.run(t, `function main() error("kaputt") end`, "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaputt")
}

func TestEntryInterruptedWhileReading(t *testing.T) {
	f := newFixture(t, "")
	// Nothing is ever written to the pipe, so input blocks until cancel.
	pr, pw := io.Pipe()
	defer pw.Close()
	f.ec.Console = console.New(pr, f.out, console.WithTerminal(false))

	path := f.writeUnit(t, `
		local tool = require("tool")
		function main() tool.input("Name") end
	`)
	ctx, cancel := context.WithCancel(context.Background())
	unit, err := NewLoader().Load(ctx, path, f.ec)
	require.NoError(t, err)
	defer unit.(*Unit).Close()

	h, _ := unit.Entry("main")
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx, f.ec) }()
	cancel()

	err = <-done
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canceled")
}

func TestToolConsole(t *testing.T) {
	f := newFixture(t, "Ada\n")
	err := f.run(t, `
		local tool = require("tool")
		function main()
			local name = tool.input("Name")
			tool.clear()
			tool.print("hallo", name, 3)
		end
	`, "main")
	require.NoError(t, err)
	assert.Equal(t, "Name: hallo\tAda\t3\n", f.out.String())
}

func TestToolLanguage(t *testing.T) {
	f := newFixture(t, "")
	pkg := filepath.Join(f.dir, "pkg_en.json")
	require.NoError(t, os.WriteFile(pkg, []byte(`{"tasks":"Tasks"}`), 0o644))

	err := f.run(t, `
		local tool = require("tool")
		function main()
			tool.print(tool.translate("header"), tool.translate("unknown_key"), tool.language())
			tool.print(table.concat(tool.languages(), ","))
			assert(tool.add_language_package("en", "`+filepath.ToSlash(pkg)+`"))
			tool.print(tool.translate("tasks"))
		end
	`, "main")
	require.NoError(t, err)
	assert.Equal(t, "Tools\tunknown_key\ten\nde,en\nTasks\n", f.out.String())
}

func TestToolRequireVersion(t *testing.T) {
	f := newFixture(t, "")

	require.NoError(t, f.run(t, `
		local tool = require("tool")
		function main()
			assert(tool.version() == "3.1.0")
			tool.require_version("3.0.1")
		end
	`, "main"))

	err := f.run(t, `
		local tool = require("tool")
		function main() tool.require_version("2.9.0") end
	`, "main")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrVersionMismatch.Error())
}

func TestToolFiles(t *testing.T) {
	f := newFixture(t, "")
	err := f.run(t, `
		local tool = require("tool")
		function main()
			assert(tool.temp_write("a.txt", "one"))
			assert(tool.temp_append("a.txt", "two"))
			assert(tool.temp_exists("a.txt"))
			tool.print(tool.temp_read("a.txt"))
			assert(tool.temp_remove("a.txt"))
			assert(not tool.temp_exists("a.txt"))
			assert(tool.temp_remove("a.txt"))

			assert(tool.cache_write("tasks/list.txt", "milk"))
			tool.print(tool.cache_read("tasks/list.txt"))

			local v, err = tool.cache_read("missing.txt")
			assert(v == nil and err ~= nil)
			local ok, err2 = tool.cache_write("../escape.txt", "x")
			assert(ok == nil and err2 ~= nil)
			assert(not tool.cache_exists("../escape.txt"))

			assert(tool.log_write("tool.log", "hello log"))
		end
	`, "main")
	require.NoError(t, err)
	assert.Equal(t, "onetwo\n\nmilk\n", f.out.String())

	cached, err := os.ReadFile(filepath.Join(f.dir, "cache", "tasks", "list.txt"))
	require.NoError(t, err)
	assert.Equal(t, "milk", string(cached))
	assert.NoFileExists(t, filepath.Join(f.dir, "escape.txt"))

	logged, err := os.ReadFile(filepath.Join(f.dir, "logs", "tool.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), "] hello log\n")
}

func TestToolSettings(t *testing.T) {
	f := newFixture(t, "")
	err := f.run(t, `
		local tool = require("tool")
		function main()
			local s = tool.settings()
			tool.print(s.version, s.language)
			assert(tool.set_setting("language", "de"))
		end
	`, "main")
	require.NoError(t, err)
	assert.Equal(t, "3.1.0\ten\n", f.out.String())

	data, err := os.ReadFile(f.store.Path())
	require.NoError(t, err)
	assert.Equal(t, "de", gjson.GetBytes(data, "language").String())
	assert.True(t, gjson.GetBytes(data, "update").Bool())
	assert.Equal(t, "en", f.store.Current().Language)
}

func TestToolJSON(t *testing.T) {
	f := newFixture(t, "")
	err := f.run(t, `
		local tool = require("tool")
		function main()
			local text = tool.json_encode({ {id = 1, title = "Tag"} })
			local decoded = tool.json_decode(text)
			tool.print(decoded[1].title, decoded[1].id)

			tool.print(tool.json_get(text, "0.title"))
			local updated = tool.json_set(text, "0.title", "Neu")
			tool.print(tool.json_get(updated, "0.title"))
			assert(tool.json_get(text, "5.title") == nil)

			local v, err = tool.json_decode("{broken")
			assert(v == nil and err ~= nil)
		end
	`, "main")
	require.NoError(t, err)
	assert.Equal(t, "Tag\t1\nTag\nNeu\n", f.out.String())
}

func TestCheckCompatibility(t *testing.T) {
	tests := []struct {
		host, want string
		ok         bool
	}{
		{"3.0.0", "3.0.1", true},
		{"3.2", "v3.0.0", true},
		{"3.0.0", "4.0.0", false},
		{"", "1.0.0", false},
		{"1.0.0", "", false},
	}
	for _, tt := range tests {
		err := CheckCompatibility(tt.host, tt.want)
		assert.Equal(t, tt.ok, err == nil, "CheckCompatibility(%q, %q) = %v", tt.host, tt.want, err)
	}
}
