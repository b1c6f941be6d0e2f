package lua

import (
	"reflect"
	"testing"

	glua "github.com/yuin/gopher-lua"
	"pgregory.net/rapid"
)

func TestBridgeToGoValue(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tests := []struct {
		name     string
		input    glua.LValue
		expected any
	}{
		{"nil", glua.LNil, nil},
		{"true", glua.LTrue, true},
		{"false", glua.LFalse, false},
		{"integer", glua.LNumber(42), int64(42)},
		{"negative", glua.LNumber(-7), int64(-7)},
		{"float", glua.LNumber(3.14), 3.14},
		{"string", glua.LString("hello"), "hello"},
		{"function", L.NewFunction(func(*glua.LState) int { return 0 }), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := bridge.ToGoValue(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("ToGoValue(%v) = %v (%T), want %v (%T)",
					tt.input, result, result, tt.expected, tt.expected)
			}
		})
	}
}

func TestBridgeToGoValueTable(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	t.Run("array", func(t *testing.T) {
		tbl := L.NewTable()
		tbl.Append(glua.LString("a"))
		tbl.Append(glua.LString("b"))

		want := []any{"a", "b"}
		if got := bridge.ToGoValue(tbl); !reflect.DeepEqual(got, want) {
			t.Errorf("ToGoValue(array) = %v, want %v", got, want)
		}
	})

	t.Run("map", func(t *testing.T) {
		tbl := L.NewTable()
		tbl.RawSetString("title", glua.LString("Tag 1"))
		tbl.RawSetString("id", glua.LNumber(1))

		want := map[string]any{"title": "Tag 1", "id": int64(1)}
		if got := bridge.ToGoValue(tbl); !reflect.DeepEqual(got, want) {
			t.Errorf("ToGoValue(map) = %v, want %v", got, want)
		}
	})

	t.Run("sparse", func(t *testing.T) {
		tbl := L.NewTable()
		tbl.RawSetInt(1, glua.LString("a"))
		tbl.RawSetInt(3, glua.LString("c"))

		got, ok := bridge.ToGoValue(tbl).(map[string]any)
		if !ok {
			t.Fatalf("ToGoValue(sparse) = %T, want map", bridge.ToGoValue(tbl))
		}
		if got["1"] != "a" || got["3"] != "c" {
			t.Errorf("ToGoValue(sparse) = %v", got)
		}
	})

	t.Run("cycle", func(t *testing.T) {
		tbl := L.NewTable()
		tbl.RawSetString("self", tbl)

		got := bridge.ToGoValue(tbl).(map[string]any)
		if got["self"] != nil {
			t.Errorf("cycle not cut: %v", got["self"])
		}
	})
}

func TestBridgeToLuaValue(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	tests := []struct {
		name     string
		input    any
		expected glua.LValue
	}{
		{"nil", nil, glua.LNil},
		{"bool", true, glua.LTrue},
		{"int", 42, glua.LNumber(42)},
		{"int64", int64(7), glua.LNumber(7)},
		{"float64", 1.5, glua.LNumber(1.5)},
		{"string", "hi", glua.LString("hi")},
		{"other", struct{ A int }{1}, glua.LString("{1}")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bridge.ToLuaValue(tt.input); got != tt.expected {
				t.Errorf("ToLuaValue(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestBridgeToLuaValueCollections(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	strs := bridge.ToLuaValue([]string{"de", "en"}).(*glua.LTable)
	if strs.Len() != 2 || strs.RawGetInt(2) != glua.LString("en") {
		t.Errorf("[]string table = %v", bridge.ToGoValue(strs))
	}

	nested := bridge.ToLuaValue(map[string]any{
		"ids":  []any{"0-000exec"},
		"name": "TaskManager",
	}).(*glua.LTable)
	ids, ok := nested.RawGetString("ids").(*glua.LTable)
	if !ok || ids.RawGetInt(1) != glua.LString("0-000exec") {
		t.Errorf("nested ids = %v", nested.RawGetString("ids"))
	}

	labels := bridge.ToLuaValue(map[string]string{"exit": "Beenden"}).(*glua.LTable)
	if labels.RawGetString("exit") != glua.LString("Beenden") {
		t.Errorf("map[string]string table = %v", bridge.ToGoValue(labels))
	}
}

func TestBridgeRoundTrip(t *testing.T) {
	L := glua.NewState()
	defer L.Close()
	bridge := NewBridge(L)

	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.String(), 1, 8).Draw(t, "words")
		fields := rapid.MapOf(rapid.StringMatching(`[a-z]{1,6}`), rapid.Int64Range(-1000, 1000)).Draw(t, "fields")

		in := map[string]any{"words": toAny(words)}
		for k, v := range fields {
			if k == "words" {
				continue
			}
			in[k] = v
		}

		out := bridge.ToGoValue(bridge.ToLuaValue(in))
		if !reflect.DeepEqual(out, in) {
			t.Fatalf("round trip = %v, want %v", out, in)
		}
	})
}

func toAny(words []string) []any {
	out := make([]any, len(words))
	for i, w := range words {
		out[i] = w
	}
	return out
}
