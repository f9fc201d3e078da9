// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io"
	"os"

	"importmap-cli/internal/config"
	"importmap-cli/internal/issue"
	"importmap-cli/pkg/fspath"
	"importmap-cli/pkg/importmap"
	"importmap-cli/pkg/types"
)

// documentRequest describes an import map document named on the command line.
type documentRequest struct {
	// Path is the file to read, or "-" for standard input.
	Path string
	// BaseURL overrides the configured base URL.
	BaseURL                string
	JSONC                  bool
	IgnoreUnknownKeys      bool
	ExpandRegistryPrefixes bool
}

// parseDocument reads and parses the document described by req.
func (a *App) parseDocument(ctx context.Context, cfg *config.Config, req documentRequest) (*importmap.ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := a.readDocument(req.Path, cfg.MaxDocumentSize)
	if err != nil {
		return nil, err
	}

	base, err := documentBaseURL(cfg, req)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("parsing import map", "path", req.Path, "bytes", len(data), "base", base)

	opts := []importmap.ParseOption{
		importmap.WithMaxSize(cfg.MaxDocumentSize),
		importmap.WithFilename(types.FilesystemPath(req.Path).DisplayName()),
	}
	jsonc := req.JSONC || types.FilesystemPath(req.Path).IsJSONC()
	if jsonc {
		opts = append(opts, importmap.WithJSONC())
	}
	if req.IgnoreUnknownKeys {
		opts = append(opts, importmap.WithIgnoreUnknownKeys())
	}

	res, err := importmap.Parse(data, base, opts...)
	if err != nil {
		return nil, parseFailure(err, req.Path, jsonc)
	}

	if req.ExpandRegistryPrefixes || cfg.ExpandRegistryPrefixes {
		res = &importmap.ParseResult{
			ImportMap:   importmap.ExpandRegistryPrefixes(res.ImportMap),
			Diagnostics: res.Diagnostics,
		}
	}

	a.logger.Debug("parsed import map",
		"imports", res.ImportMap.Imports.Len(),
		"scopes", res.ImportMap.Scopes.Len(),
		"diagnostics", len(res.Diagnostics))
	return res, nil
}

func (a *App) readDocument(path string, maxSize int64) ([]byte, error) {
	if types.FilesystemPath(path).IsStdin() {
		data, err := io.ReadAll(io.LimitReader(a.stdin, maxSize+1))
		if err != nil {
			return nil, issue.WrapWithContext(err, "read import map", "standard input")
		}
		return data, nil
	}

	if !fspath.IsFile(types.FilesystemPath(path)) {
		return nil, issue.NewErrorContext().
			WithOperation("read import map").
			WithResource(path).
			WithSuggestion("Check the path, or pass - to read standard input").
			WithIssue(issue.FileNotFoundId).
			Wrap(os.ErrNotExist).
			BuildError()
	}
	data, err := fspath.ReadFile(types.FilesystemPath(path))
	if err != nil {
		return nil, issue.WrapWithContext(err, "read import map", path)
	}
	return data, nil
}

// documentBaseURL picks the base URL: the flag, then the configuration, then
// the file URL of the document.
func documentBaseURL(cfg *config.Config, req documentRequest) (string, error) {
	switch {
	case req.BaseURL != "":
		return req.BaseURL, nil
	case cfg.BaseURL != "":
		return cfg.BaseURL, nil
	case types.FilesystemPath(req.Path).IsStdin():
		return "", issue.NewErrorContext().
			WithOperation("determine base URL").
			WithResource("standard input").
			WithSuggestion("Pass --base-url, or set base_url in the configuration").
			WithIssue(issue.InvalidBaseURLId).
			Wrap(errors.New("a document read from standard input has no URL of its own")).
			BuildError()
	}

	u, err := fspath.FileURL(types.FilesystemPath(req.Path))
	if err != nil {
		return "", issue.WrapWithContext(err, "determine base URL", req.Path)
	}
	return u, nil
}

// parseFailure turns a fatal parse error into an ActionableError.
func parseFailure(err error, path string, jsonc bool) error {
	ec := issue.NewErrorContext().
		WithOperation("parse import map").
		WithResource(types.FilesystemPath(path).DisplayName()).
		Wrap(err)

	switch {
	case errors.Is(err, importmap.ErrInvalidURL):
		ec.WithIssue(issue.InvalidBaseURLId).
			WithSuggestion("Pass an absolute URL with --base-url")
	default:
		ec.WithIssue(issue.MalformedDocumentId)
		if !jsonc {
			ec.WithSuggestion("Pass --jsonc if the document contains comments or trailing commas")
		}
	}
	return ec.BuildError()
}

// strictCheck returns an ExitError when strict mode is on and res carries
// warnings.
func strictCheck(res *importmap.ParseResult, strict bool) error {
	n := res.WarningCount()
	if types.ExitCodeFor(n, strict).IsSuccess() {
		return nil
	}
	return warningsExit(n)
}
