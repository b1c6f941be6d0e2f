package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		name    string
		pending *Hint
		next    Operation
		want    Operation
	}{
		{"first", nil, OpWrite, OpWrite},
		{"create then write", &Hint{Op: OpCreate}, OpWrite, OpCreate},
		{"write then remove", &Hint{Op: OpWrite}, OpRemove, OpRemove},
		{"remove then create", &Hint{Op: OpRemove}, OpCreate, OpCreate},
		{"write then write", &Hint{Op: OpWrite}, OpWrite, OpWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coalesce(tt.pending, Hint{Op: tt.next})
			assert.Equal(t, tt.want, got.Op)
		})
	}
}

func TestWatcher_HintOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	w, err := New(path, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte(`{"update": true}`), 0o644))

	select {
	case hint := <-w.Hints():
		assert.Equal(t, w.Path(), hint.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("no hint after writing the watched file")
	}
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	w, err := New(path, WithDebounce(10*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o644))

	select {
	case hint := <-w.Hints():
		t.Fatalf("unexpected hint %+v", hint)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_BurstCollapses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	w, err := New(path, WithDebounce(50*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte(`{"n": 1}`), 0o644))
	}

	select {
	case <-w.Hints():
	case <-time.After(2 * time.Second):
		t.Fatal("no hint after burst")
	}

	select {
	case hint := <-w.Hints():
		t.Fatalf("burst produced a second hint %+v", hint)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_MissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing", "settings.json"))
	assert.Error(t, err)
}

func TestWatcher_CloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	w, err := New(path)
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
