// SPDX-License-Identifier: MPL-2.0

// Package fspath provides typed wrappers around path/filepath and os functions
// that accept and return types.FilesystemPath, plus the conversion from a
// local path to the file: URL used as an import map base.
package fspath

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"importmap-cli/pkg/types"
)

// JoinStr wraps filepath.Join, accepting a typed base path and raw string
// segments. Use this when joining a validated path with literal constants
// (e.g., "deno.json") or a path read from a config file.
func JoinStr(base types.FilesystemPath, elem ...string) types.FilesystemPath {
	parts := make([]string, 1, 1+len(elem))
	parts[0] = string(base)
	parts = append(parts, elem...)
	return types.FilesystemPath(filepath.Join(parts...))
}

// Dir wraps filepath.Dir for FilesystemPath.
func Dir(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Dir(string(p)))
}

// Abs wraps filepath.Abs for FilesystemPath. Returns an error if the
// underlying OS call fails.
func Abs(p types.FilesystemPath) (types.FilesystemPath, error) {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}
	return types.FilesystemPath(abs), nil
}

// Clean wraps filepath.Clean for FilesystemPath.
func Clean(p types.FilesystemPath) types.FilesystemPath {
	return types.FilesystemPath(filepath.Clean(string(p)))
}

// IsAbs wraps filepath.IsAbs for FilesystemPath.
func IsAbs(p types.FilesystemPath) bool {
	return filepath.IsAbs(string(p))
}

// IsFile reports whether p exists and is not a directory.
func IsFile(p types.FilesystemPath) bool {
	info, err := os.Stat(string(p))
	return err == nil && !info.IsDir()
}

// ReadFile wraps os.ReadFile for FilesystemPath.
func ReadFile(p types.FilesystemPath) ([]byte, error) {
	return os.ReadFile(string(p))
}

// FileURL returns the file: URL of p, made absolute first. A trailing slash is
// kept, so a directory path yields a directory URL.
func FileURL(p types.FilesystemPath) (string, error) {
	abs, err := Abs(p)
	if err != nil {
		return "", err
	}
	slashed := filepath.ToSlash(string(abs))
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	if strings.HasSuffix(string(p), "/") || strings.HasSuffix(string(p), string(filepath.Separator)) {
		slashed = strings.TrimSuffix(slashed, "/") + "/"
	}
	u := url.URL{Scheme: "file", Path: slashed}
	return u.String(), nil
}
