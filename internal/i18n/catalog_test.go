package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func writeTables(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	return root
}

func TestCatalog_TranslateKnownAndUnknown(t *testing.T) {
	root := writeTables(t, map[string]string{
		"de.json": `{"settings": "Einstellungen", "exit": "Beenden"}`,
	})
	c := New(root)
	require.NoError(t, c.Reload("de"))

	assert.Equal(t, "Einstellungen", c.Translate("settings"))
	assert.Equal(t, "TaskManager", c.Translate("TaskManager"))
	assert.Equal(t, "de", c.Language())
	assert.Equal(t, []string{"exit", "settings"}, c.Keys())
}

func TestCatalog_Fallbacks(t *testing.T) {
	root := writeTables(t, map[string]string{
		"de.json": `{"settings": "Einstellungen"}`,
		"en.toml": `settings = "Settings"`,
	})

	tests := []struct {
		requested string
		loaded    string
		want      string
	}{
		{"en", "en", "Settings"},
		{"en-US", "en", "Settings"},
		{"en-us", "en", "Settings"},
		{"fr", "de", "Einstellungen"},
		{"not a tag", "de", "Einstellungen"},
	}

	for _, tt := range tests {
		t.Run(tt.requested, func(t *testing.T) {
			c := New(root)
			require.NoError(t, c.Reload(tt.requested))
			assert.Equal(t, tt.loaded, c.Language())
			assert.Equal(t, tt.want, c.Translate("settings"))
		})
	}
}

func TestCatalog_YAMLTable(t *testing.T) {
	root := writeTables(t, map[string]string{
		"ru.yaml": "settings: Настройки\ncount: 3\n",
	})
	c := New(root, WithFallback("ru"))
	require.NoError(t, c.Reload("ru"))

	assert.Equal(t, "Настройки", c.Translate("settings"))
	assert.Equal(t, "3", c.Translate("count"))
}

func TestCatalog_NothingLoadsIsIdentity(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "missing"))

	err := c.Reload("en")
	assert.ErrorIs(t, err, ErrNoTable)
	assert.Equal(t, "", c.Language())
	assert.Equal(t, "settings", c.Translate("settings"))
	assert.Empty(t, c.Keys())
}

func TestCatalog_MalformedTableFallsBack(t *testing.T) {
	root := writeTables(t, map[string]string{
		"de.json": `{"settings": "Einstellungen"}`,
		"en.json": `{"settings": `,
	})
	c := New(root)
	require.NoError(t, c.Reload("en"))
	assert.Equal(t, "de", c.Language())
}

func TestCatalog_Available(t *testing.T) {
	root := writeTables(t, map[string]string{
		"de.json":   `{}`,
		"en.json":   `{}`,
		"en.toml":   ``,
		"notes.txt": `ignored`,
	})
	require.NoError(t, os.Mkdir(filepath.Join(root, "fr.json"), 0o755))

	assert.Equal(t, []string{"de", "en"}, New(root).Available())
}

func TestCatalog_AddPackage(t *testing.T) {
	root := writeTables(t, map[string]string{
		"de.json": `{"settings": "Einstellungen"}`,
		"en.json": `{"settings": "Settings"}`,
	})
	pkgPath := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(pkgPath, []byte(`{"task_add": "Aufgabe hinzufügen", "settings": "Optionen"}`), 0o644))

	c := New(root)
	require.NoError(t, c.Reload("de"))
	require.NoError(t, c.AddPackage("de", pkgPath))

	assert.Equal(t, "Aufgabe hinzufügen", c.Translate("task_add"))
	assert.Equal(t, "Optionen", c.Translate("settings"))

	require.NoError(t, c.Reload("en"))
	assert.Equal(t, "task_add", c.Translate("task_add"))

	require.NoError(t, c.Reload("de"))
	assert.Equal(t, "Aufgabe hinzufügen", c.Translate("task_add"), "packages survive reload")

	assert.Error(t, c.AddPackage("de", filepath.Join(t.TempDir(), "none.json")))
}

func TestCatalog_TranslateTotal(t *testing.T) {
	root := writeTables(t, map[string]string{"de.json": `{"a": "A"}`})
	c := New(root)
	require.NoError(t, c.Reload("de"))

	rapid.Check(t, func(t *rapid.T) {
		key := rapid.String().Draw(t, "key")
		got := c.Translate(key)
		if key == "a" {
			if got != "A" {
				t.Fatalf("Translate(a) = %q", got)
			}
			return
		}
		if got != key {
			t.Fatalf("Translate(%q) = %q, want identity", key, got)
		}
	})
}
