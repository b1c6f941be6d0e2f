package lua

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	lua "github.com/yuin/gopher-lua"

	"github.com/claytechnologie/toolsdk/internal/dispatcher/execctx"
)

// ModuleName is the name units pass to require.
const ModuleName = "tool"

// Module binds the tool module to one dispatch.
type Module struct {
	ec *execctx.Context
}

// NewModule creates the tool module for ec.
func NewModule(ec *execctx.Context) *Module {
	if ec == nil {
		ec = execctx.New()
	}
	return &Module{ec: ec}
}

// Loader is the require loader for the module.
func (m *Module) Loader(L *lua.LState) int {
	mod := L.SetFuncs(L.NewTable(), m.funcs())
	L.Push(mod)
	return 1
}

func (m *Module) funcs() map[string]lua.LGFunction {
	return map[string]lua.LGFunction{
		"print":                m.print,
		"input":                m.input,
		"clear":                m.clear,
		"translate":            m.translate,
		"language":             m.language,
		"languages":            m.languages,
		"add_language_package": m.addLanguagePackage,
		"version":              m.version,
		"require_version":      m.requireVersion,
		"settings":             m.settings,
		"set_setting":          m.setSetting,
		"temp_write":           m.write(m.tempRoot, false),
		"temp_append":          m.write(m.tempRoot, true),
		"temp_read":            m.read(m.tempRoot),
		"temp_exists":          m.exists(m.tempRoot),
		"temp_remove":          m.remove(m.tempRoot),
		"cache_write":          m.write(m.cacheRoot, false),
		"cache_append":         m.write(m.cacheRoot, true),
		"cache_read":           m.read(m.cacheRoot),
		"cache_exists":         m.exists(m.cacheRoot),
		"cache_remove":         m.remove(m.cacheRoot),
		"log":                  m.log,
		"log_write":            m.logWrite,
		"json_encode":          m.jsonEncode,
		"json_decode":          m.jsonDecode,
		"json_get":             m.jsonGet,
		"json_set":             m.jsonSet,
	}
}

func (m *Module) tempRoot() string  { return m.ec.Config.TempRoot }
func (m *Module) cacheRoot() string { return m.ec.Config.CacheRoot }

func (m *Module) print(L *lua.LState) int {
	parts := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	if m.ec.Console != nil {
		m.ec.Console.Println(strings.Join(parts, "\t"))
	}
	return 0
}

func (m *Module) input(L *lua.LState) int {
	prompt := L.OptString(1, "")
	if m.ec.Console == nil {
		L.RaiseError("%s", execctx.ErrMissingConsole)
		return 0
	}

	text, err := m.ec.Console.ReadLine(contextOf(L), prompt)
	if err != nil {
		L.RaiseError("input: %v", err)
		return 0
	}
	L.Push(lua.LString(text))
	return 1
}

func (m *Module) clear(L *lua.LState) int {
	if m.ec.Console != nil {
		m.ec.Console.Clear()
	}
	return 0
}

func (m *Module) translate(L *lua.LState) int {
	L.Push(lua.LString(m.ec.Translate(L.CheckString(1))))
	return 1
}

func (m *Module) language(L *lua.LState) int {
	lang := m.ec.Config.Language
	if m.ec.Catalog != nil && m.ec.Catalog.Language() != "" {
		lang = m.ec.Catalog.Language()
	}
	L.Push(lua.LString(lang))
	return 1
}

func (m *Module) languages(L *lua.LState) int {
	var codes []string
	if m.ec.Catalog != nil {
		codes = m.ec.Catalog.Available()
	}
	L.Push(NewBridge(L).ToLuaValue(codes))
	return 1
}

func (m *Module) addLanguagePackage(L *lua.LState) int {
	code, path := L.CheckString(1), L.CheckString(2)
	if m.ec.Catalog == nil {
		return pushError(L, execctx.ErrMissingCatalog)
	}
	if err := m.ec.Catalog.AddPackage(code, path); err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (m *Module) version(L *lua.LState) int {
	L.Push(lua.LString(m.ec.Config.Version))
	return 1
}

func (m *Module) requireVersion(L *lua.LState) int {
	want := L.CheckString(1)
	if err := CheckCompatibility(m.ec.Config.Version, want); err != nil {
		L.RaiseError("%s", err)
		return 0
	}
	L.Push(lua.LTrue)
	return 1
}

func (m *Module) settings(L *lua.LState) int {
	if m.ec.Settings == nil {
		return pushError(L, execctx.ErrMissingSettings)
	}
	entries, err := m.ec.Settings.Entries()
	if err != nil {
		return pushError(L, err)
	}
	b := NewBridge(L)
	t := L.CreateTable(0, len(entries))
	for _, e := range entries {
		t.RawSetString(e.Key, b.ToLuaValue(e.Value))
	}
	L.Push(t)
	return 1
}

func (m *Module) setSetting(L *lua.LState) int {
	key := L.CheckString(1)
	value := NewBridge(L).ToGoValue(L.CheckAny(2))
	if m.ec.Settings == nil {
		return pushError(L, execctx.ErrMissingSettings)
	}
	if err := m.ec.Settings.Set(key, value); err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (m *Module) write(root func() string, appendMode bool) lua.LGFunction {
	return func(L *lua.LState) int {
		name, content := L.CheckString(1), L.CheckString(2)
		path, err := resolveIn(root(), name)
		if err != nil {
			return pushError(L, err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return pushError(L, err)
		}

		if appendMode {
			err = appendLine(path, content)
		} else {
			err = os.WriteFile(path, []byte(content), 0o644)
		}
		if err != nil {
			return pushError(L, err)
		}
		L.Push(lua.LTrue)
		return 1
	}
}

func (m *Module) read(root func() string) lua.LGFunction {
	return func(L *lua.LState) int {
		path, err := resolveIn(root(), L.CheckString(1))
		if err != nil {
			return pushError(L, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return pushError(L, err)
		}
		L.Push(lua.LString(data))
		return 1
	}
}

func (m *Module) exists(root func() string) lua.LGFunction {
	return func(L *lua.LState) int {
		path, err := resolveIn(root(), L.CheckString(1))
		if err != nil {
			L.Push(lua.LFalse)
			return 1
		}
		_, err = os.Stat(path)
		L.Push(lua.LBool(err == nil))
		return 1
	}
}

func (m *Module) remove(root func() string) lua.LGFunction {
	return func(L *lua.LState) int {
		path, err := resolveIn(root(), L.CheckString(1))
		if err != nil {
			return pushError(L, err)
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return pushError(L, err)
		}
		L.Push(lua.LTrue)
		return 1
	}
}

func (m *Module) log(L *lua.LState) int {
	level := parseLevel(L.CheckString(1))
	msg := L.CheckString(2)
	if m.ec.Logger != nil {
		m.ec.Logger.Log(contextOf(L), level, msg, "entry", m.ec.Descriptor.Name, "run", m.ec.RunID)
	}
	return 0
}

func (m *Module) logWrite(L *lua.LState) int {
	name, msg := L.CheckString(1), L.CheckString(2)
	path, err := resolveIn(m.ec.Config.LogRoot, name)
	if err != nil {
		return pushError(L, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return pushError(L, err)
	}
	line := fmt.Sprintf("[%s] %s", time.Now().Format(time.RFC3339), msg)
	if err := appendLine(path, line); err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LTrue)
	return 1
}

func (m *Module) jsonEncode(L *lua.LState) int {
	v := NewBridge(L).ToGoValue(L.CheckAny(1))
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LString(data))
	return 1
}

func (m *Module) jsonDecode(L *lua.LState) int {
	text := L.CheckString(1)
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return pushError(L, err)
	}
	L.Push(NewBridge(L).ToLuaValue(v))
	return 1
}

func (m *Module) jsonGet(L *lua.LState) int {
	text, path := L.CheckString(1), L.CheckString(2)
	res := gjson.Get(text, path)
	if !res.Exists() {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(NewBridge(L).ToLuaValue(res.Value()))
	return 1
}

func (m *Module) jsonSet(L *lua.LState) int {
	text, path := L.CheckString(1), L.CheckString(2)
	value := NewBridge(L).ToGoValue(L.CheckAny(3))
	out, err := sjson.Set(text, path, value)
	if err != nil {
		return pushError(L, err)
	}
	L.Push(lua.LString(out))
	return 1
}

// CheckCompatibility compares the major components of the host and
// requested versions.
func CheckCompatibility(host, want string) error {
	hostMajor, wantMajor := major(host), major(want)
	if wantMajor == "" || hostMajor != wantMajor {
		return fmt.Errorf("%w: host %q, unit %q", ErrVersionMismatch, host, want)
	}
	return nil
}

func major(v string) string {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	head, _, _ := strings.Cut(v, ".")
	return head
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// resolveIn joins name below root, refusing names that leave it.
func resolveIn(root, name string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: no root for %q", ErrOutsideRoot, name)
	}
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, name)
	}
	path := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(filepath.Clean(root), path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrOutsideRoot, name)
	}
	return path, nil
}

func appendLine(path, line string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func contextOf(L *lua.LState) context.Context {
	if ctx := L.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// pushError returns nil, message in the usual Lua style.
func pushError(L *lua.LState, err error) int {
	L.Push(lua.LNil)
	L.Push(lua.LString(err.Error()))
	return 2
}
