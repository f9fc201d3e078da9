// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Stdin is the document path that reads standard input.
const Stdin FilesystemPath = "-"

// ErrInvalidFilesystemPath is wrapped by FilesystemPath.Validate.
var ErrInvalidFilesystemPath = errors.New("invalid filesystem path")

// FilesystemPath names an import map document, a deno config file or the CLI
// config file.
type FilesystemPath string

func (p FilesystemPath) String() string { return string(p) }

// Validate rejects empty and whitespace-only paths.
func (p FilesystemPath) Validate() error {
	if strings.TrimSpace(string(p)) == "" {
		return fmt.Errorf("%w %q: must be non-empty", ErrInvalidFilesystemPath, string(p))
	}
	return nil
}

func (p FilesystemPath) IsStdin() bool { return p == Stdin }

// IsJSONC reports whether the path has the .jsonc extension, which permits
// comments and trailing commas.
func (p FilesystemPath) IsJSONC() bool { return filepath.Ext(string(p)) == ".jsonc" }

// DisplayName returns the path as shown in messages, with "<stdin>" for Stdin.
func (p FilesystemPath) DisplayName() string {
	if p.IsStdin() {
		return "<stdin>"
	}
	return string(p)
}
