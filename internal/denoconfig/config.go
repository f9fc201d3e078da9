// SPDX-License-Identifier: MPL-2.0

package denoconfig

import (
	"fmt"
	"path/filepath"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/token"

	"importmap-cli/pkg/cueutil"
	"importmap-cli/pkg/fspath"
	"importmap-cli/pkg/types"
)

const (
	// FileName is the preferred config file name.
	FileName = "deno.json"
	// JSONCFileName is the alternative config file name.
	JSONCFileName = "deno.jsonc"
	// LockFileName is the lock file used when "lock" is not set.
	LockFileName = "deno.lock"
)

type (
	// Config is a validated deno configuration file.
	Config struct {
		// Path is the absolute path of the file.
		Path string
		// URL is the file URL of Path, the base for inline import maps.
		URL string

		document []byte
		members  []cueutil.Member
	}

	// Lock is the "lock" setting: unset, a boolean, or a path.
	Lock struct {
		Set     bool
		Enabled bool
		Path    string
	}
)

// Parse validates a deno configuration document read from path. Comments and
// trailing commas are accepted in both deno.json and deno.jsonc.
func Parse(data []byte, path string) (*Config, error) {
	abs, err := fspath.Abs(types.FilesystemPath(path))
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	url, err := fspath.FileURL(abs)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	expr, err := cueutil.ExtractJSON(data, cueutil.WithJSONC(), cueutil.WithFilename(path))
	if err != nil {
		return nil, fmt.Errorf("%w: unable to parse config file JSON %q: %w", ErrInvalidConfig, url, err)
	}
	if cueutil.KindOf(expr) != cueutil.KindObject {
		return nil, fmt.Errorf("%w: config file JSON %q should be an object", ErrInvalidConfig, url)
	}
	members, err := cueutil.Members(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := validate(members); err != nil {
		return nil, err
	}

	return &Config{Path: string(abs), URL: url, document: data, members: members}, nil
}

// Dir returns the directory holding the config file.
func (c *Config) Dir() string { return filepath.Dir(c.Path) }

// IsJSONC reports whether the file uses the .jsonc extension.
func (c *Config) IsJSONC() bool { return types.FilesystemPath(c.Path).IsJSONC() }

// HasInlineImportMap reports whether the file itself has "imports" or "scopes".
func (c *Config) HasInlineImportMap() bool {
	_, imports := cueutil.Lookup(c.members, "imports")
	_, scopes := cueutil.Lookup(c.members, "scopes")
	return imports || scopes
}

// ImportMap returns the "importMap" path as written, or "".
func (c *Config) ImportMap() string {
	return c.stringField("importMap")
}

// Name returns the package "name", or "".
func (c *Config) Name() string { return c.stringField("name") }

// NodeModulesDir returns the "nodeModulesDir" setting and whether it is set.
func (c *Config) NodeModulesDir() (enabled, set bool) {
	m, ok := cueutil.Lookup(c.members, "nodeModulesDir")
	if !ok {
		return false, false
	}
	return isTrue(m.Value), true
}

// Lock returns the "lock" setting.
func (c *Config) Lock() Lock {
	m, ok := cueutil.Lookup(c.members, "lock")
	if !ok {
		return Lock{}
	}
	if m.Kind() == cueutil.KindString {
		s, _ := cueutil.StringValue(m.Value)
		return Lock{Set: true, Enabled: true, Path: s}
	}
	return Lock{Set: true, Enabled: isTrue(m.Value)}
}

// LockPath returns the lock file in use: a "lock" path resolved against the
// config directory, nothing when "lock" is false, else deno.lock in cwd.
func (c *Config) LockPath(cwd string) string {
	lock := c.Lock()
	switch {
	case lock.Path != "":
		return ResolvePath(lock.Path, c.Dir())
	case lock.Set && !lock.Enabled:
		return ""
	default:
		return filepath.Join(cwd, LockFileName)
	}
}

// Keys returns the top-level keys in source order.
func (c *Config) Keys() []string {
	out := make([]string, len(c.members))
	for i, m := range c.members {
		out[i] = m.Key
	}
	return out
}

func (c *Config) stringField(name string) string {
	m, ok := cueutil.Lookup(c.members, name)
	if !ok {
		return ""
	}
	s, _ := cueutil.StringValue(m.Value)
	return s
}

func isTrue(x ast.Expr) bool {
	lit, ok := x.(*ast.BasicLit)
	return ok && lit.Kind == token.TRUE
}

// ResolvePath returns path made absolute: an absolute path is cleaned,
// a relative one is joined to baseDir.
func ResolvePath(path, baseDir string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	abs, err := filepath.Abs(filepath.Join(baseDir, path))
	if err != nil {
		return filepath.Join(baseDir, path)
	}
	return abs
}
