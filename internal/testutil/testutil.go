// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// MustSetenv sets key to value and returns a function restoring the previous
// state of key.
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()
	restore := saveEnv(t, key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("set env %s: %v", key, err)
	}
	return restore
}

// MustUnsetenv unsets key and returns a function restoring its previous value.
func MustUnsetenv(t testing.TB, key string) func() {
	t.Helper()
	restore := saveEnv(t, key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unset env %s: %v", key, err)
	}
	return restore
}

func saveEnv(t testing.TB, key string) func() {
	old, had := os.LookupEnv(key)
	return func() {
		var err error
		if had {
			err = os.Setenv(key, old)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			t.Errorf("restore env %s: %v", key, err)
		}
	}
}

// MustWriteFile writes content to dir/name, creating parent directories, and
// returns the full path.
func MustWriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	MustMkdirAll(t, filepath.Dir(path), 0o755)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// MustWriteJSON writes v as indented JSON to dir/name and returns the path.
// Object keys come out sorted, so it suits maps without duplicate keys.
func MustWriteJSON(t testing.TB, dir, name string, v any) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	return MustWriteFile(t, dir, name, string(data))
}

// MustMkdirAll creates path along with any missing parents.
func MustMkdirAll(t testing.TB, path string, perm os.FileMode) {
	t.Helper()
	if err := os.MkdirAll(path, perm); err != nil {
		t.Fatalf("create directory %s: %v", path, err)
	}
}
