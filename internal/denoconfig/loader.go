// SPDX-License-Identifier: MPL-2.0

package denoconfig

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"importmap-cli/pkg/fspath"
	"importmap-cli/pkg/importmap"
	"importmap-cli/pkg/types"
)

type (
	// Loader finds and reads deno configuration files and the import maps
	// they point to.
	Loader struct {
		logger  *log.Logger
		maxSize int64
	}

	// LoaderOption configures a Loader.
	LoaderOption func(*Loader)

	// Source is the import map document selected by a config file.
	Source struct {
		// Document is the raw JSON text.
		Document []byte
		// BaseURL is the URL relative addresses resolve against.
		BaseURL string
		// Path is the file the document was read from.
		Path string
		// Inline is set when the map is the config file's own "imports"/"scopes".
		Inline bool
		jsonc  bool
	}
)

// WithMaxSize limits the size of config and import map files in bytes.
func WithMaxSize(n int64) LoaderOption {
	return func(l *Loader) { l.maxSize = n }
}

// NewLoader creates a Loader. A nil logger discards debug output.
func NewLoader(logger *log.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	l := &Loader{logger: logger, maxSize: importmap.DefaultMaxSize}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Find looks for deno.json, then deno.jsonc, in dir and each of its parents.
// It returns ErrNotFound when the filesystem root is reached.
func (l *Loader) Find(dir string) (string, error) {
	abs, err := fspath.Abs(types.FilesystemPath(dir))
	if err != nil {
		return "", err
	}

	current := string(abs)
	for {
		for _, name := range []string{FileName, JSONCFileName} {
			candidate := fspath.JoinStr(types.FilesystemPath(current), name)
			if fspath.IsFile(candidate) {
				l.logger.Debug("found deno config", "path", candidate)
				return string(candidate), nil
			}
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrNotFound, dir)
		}
		current = parent
	}
}

// Read reads and validates the config file at path.
func (l *Loader) Read(path string) (*Config, error) {
	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("read deno config", "path", cfg.Path, "keys", len(cfg.members))
	return cfg, nil
}

// Source selects the import map of cfg. Inline "imports"/"scopes" win and
// use the config file URL as base; otherwise "importMap" is read relative to
// the config file and uses its own file URL as base. A config with neither
// yields nil.
func (l *Loader) Source(cfg *Config) (*Source, error) {
	if cfg.HasInlineImportMap() {
		l.logger.Debug("using inline import map", "base", cfg.URL)
		return &Source{Document: cfg.document, BaseURL: cfg.URL, Path: cfg.Path, Inline: true, jsonc: true}, nil
	}

	rel := cfg.ImportMap()
	if rel == "" {
		l.logger.Debug("deno config has no import map", "path", cfg.Path)
		return nil, nil
	}

	path := ResolvePath(rel, cfg.Dir())
	data, err := l.readFile(path)
	if err != nil {
		return nil, err
	}
	base, err := fspath.FileURL(types.FilesystemPath(path))
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	l.logger.Debug("using import map file", "path", path, "base", base)
	return &Source{Document: data, BaseURL: base, Path: path, jsonc: filepath.Ext(path) == ".jsonc"}, nil
}

// ParseOptions returns the importmap.Parse options that fit the source.
func (s *Source) ParseOptions(maxSize int64) []importmap.ParseOption {
	opts := []importmap.ParseOption{importmap.WithFilename(s.Path), importmap.WithMaxSize(maxSize)}
	if s.jsonc {
		opts = append(opts, importmap.WithJSONC())
	}
	if s.Inline {
		opts = append(opts, importmap.WithIgnoreUnknownKeys())
	}
	return opts
}

// Load finds the config file starting at dir (or uses path when set), then
// parses the import map it selects. The result is nil when the config has
// no import map.
func (l *Loader) Load(dir, path string) (*Config, *importmap.ParseResult, error) {
	if path == "" {
		found, err := l.Find(dir)
		if err != nil {
			return nil, nil, err
		}
		path = found
	} else {
		path = ResolvePath(path, dir)
	}

	cfg, err := l.Read(path)
	if err != nil {
		return nil, nil, err
	}
	src, err := l.Source(cfg)
	if err != nil || src == nil {
		return cfg, nil, err
	}

	res, err := importmap.Parse(src.Document, src.BaseURL, src.ParseOptions(l.maxSize)...)
	if err != nil {
		return cfg, nil, err
	}
	l.logger.Debug("parsed import map",
		"imports", res.ImportMap.Imports.Len(),
		"scopes", res.ImportMap.Scopes.Len(),
		"diagnostics", len(res.Diagnostics))
	return cfg, res, nil
}

func (l *Loader) readFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	if info.Size() > l.maxSize {
		return nil, &ReadError{Path: path, Err: fmt.Errorf("file is %d bytes, limit is %d", info.Size(), l.maxSize)}
	}
	data, err := fspath.ReadFile(types.FilesystemPath(path))
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	return data, nil
}
