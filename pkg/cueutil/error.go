// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// ErrInputTooLarge is returned when an input exceeds the configured size limit.
var ErrInputTooLarge = errors.New("input exceeds maximum size")

// ValidationError is a leaf error pointing at one value of a document.
type ValidationError struct {
	// File is the document name, if known.
	File string

	// Path is the JSON path or source position of the offending value,
	// e.g. "scopes.app" or "map.json:3:5".
	Path string

	Message string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.File, e.Path} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(append(parts, e.Message), ": ")
}

// FormatError prefixes a CUE error with the file name and rewrites each CUE
// path in JSON-path notation:
//
//	config.cue: ui.color_scheme: 3 errors in empty disjunction
//	config.cue: validation failed:
//	  output: ...
//	  max_document_size: ...
//
// Errors that do not come from CUE are wrapped unchanged.
func FormatError(err error, file string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", file, err)
	}

	lines := make([]string, len(list))
	for i, e := range list {
		lines[i] = describe(e)
	}
	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", file, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", file, strings.Join(lines, "\n  "))
}

// describe renders one CUE error as "<path>: <message>", dropping the path
// from the message when CUE already repeats it there.
func describe(e cueerrors.Error) string {
	path := jsonPath(cueerrors.Path(e))
	msg := e.Error()
	if path == "" {
		return msg
	}
	if rest, ok := strings.CutPrefix(msg, path); ok {
		msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
	}
	return path + ": " + msg
}

// jsonPath joins CUE path elements, writing numeric elements after the
// first as array indices: ["scopes", "0", "a"] becomes "scopes[0].a".
func jsonPath(elems []string) string {
	var b strings.Builder
	for i, el := range elems {
		if _, err := strconv.ParseUint(el, 10, 64); err == nil && i > 0 {
			b.WriteString("[" + el + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(el)
	}
	return b.String()
}

// CheckFileSize rejects data larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, file string) error {
	if n := int64(len(data)); n > maxSize {
		return fmt.Errorf("%s: %w: %d bytes exceeds maximum %d bytes", file, ErrInputTooLarge, n, maxSize)
	}
	return nil
}
