// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"importmap-cli/pkg/platform"
)

func TestMustSetenv_RestoresPrevious(t *testing.T) {
	const key = "IMPORTMAP_TESTUTIL_VAR"

	restoreOuter := MustSetenv(t, key, "outer")
	restoreInner := MustSetenv(t, key, "inner")
	if got := os.Getenv(key); got != "inner" {
		t.Errorf("%s = %q, want inner", key, got)
	}

	restoreInner()
	if got := os.Getenv(key); got != "outer" {
		t.Errorf("after restore %s = %q, want outer", key, got)
	}

	restoreOuter()
	if _, ok := os.LookupEnv(key); ok {
		t.Errorf("%s should be unset after the outer restore", key)
	}
}

func TestMustUnsetenv(t *testing.T) {
	const key = "IMPORTMAP_TESTUTIL_UNSET"

	t.Cleanup(MustSetenv(t, key, "value"))
	restore := MustUnsetenv(t, key)
	if _, ok := os.LookupEnv(key); ok {
		t.Fatalf("%s should be unset", key)
	}
	restore()
	if got := os.Getenv(key); got != "value" {
		t.Errorf("%s = %q after restore, want value", key, got)
	}
}

func TestMustWriteJSON(t *testing.T) {
	dir := t.TempDir()

	path := MustWriteJSON(t, dir, "import_map.json", map[string]any{
		"imports": map[string]any{"b": "/b.js", "a": nil},
	})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	want := "{\n  \"imports\": {\n    \"a\": null,\n    \"b\": \"/b.js\"\n  }\n}"
	if string(data) != want {
		t.Errorf("content = %q, want %q", data, want)
	}
}

func TestMustWriteFile(t *testing.T) {
	dir := t.TempDir()

	path := MustWriteFile(t, dir, filepath.Join("nested", "import_map.json"), `{"imports": {}}`)
	if path != filepath.Join(dir, "nested", "import_map.json") {
		t.Errorf("MustWriteFile() = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"imports": {}}` {
		t.Errorf("content = %q", data)
	}
}

func TestSetHomeDir(t *testing.T) {
	key := "HOME"
	if runtime.GOOS == platform.Windows {
		key = "USERPROFILE"
	}
	original := os.Getenv(key)

	dir := t.TempDir()
	cleanup := SetHomeDir(t, dir)
	if got := os.Getenv(key); got != dir {
		t.Errorf("%s = %q, want %q", key, got, dir)
	}

	cleanup()
	if got := os.Getenv(key); got != original {
		t.Errorf("after cleanup %s = %q, want %q", key, got, original)
	}
}
