// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"

	"importmap-cli/pkg/types"
)

func TestLoadOptions_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       LoadOptions
		wantErrors int
	}{
		{"all empty", LoadOptions{}, 0},
		{"all valid", LoadOptions{ConfigFilePath: "/tmp/config.cue", ConfigDirPath: "/tmp/config", BaseDir: "/tmp/base"}, 0},
		{"whitespace config file", LoadOptions{ConfigFilePath: types.FilesystemPath("   ")}, 1},
		{"whitespace config dir", LoadOptions{ConfigDirPath: types.FilesystemPath("\t")}, 1},
		{"whitespace base dir", LoadOptions{BaseDir: types.FilesystemPath("  \t  ")}, 1},
		{"mixed", LoadOptions{ConfigDirPath: types.FilesystemPath("   "), BaseDir: "/valid/path"}, 1},
		{"all invalid", LoadOptions{ConfigFilePath: " ", ConfigDirPath: "\t", BaseDir: "  "}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.opts.Validate()
			if tt.wantErrors == 0 {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, ErrInvalidLoadOptions) {
				t.Errorf("error should wrap ErrInvalidLoadOptions, got: %v", err)
			}
			var loadErr *InvalidLoadOptionsError
			if !errors.As(err, &loadErr) {
				t.Fatalf("error should be *InvalidLoadOptionsError, got: %T", err)
			}
			if len(loadErr.FieldErrors) != tt.wantErrors {
				t.Errorf("got %d field errors, want %d: %v", len(loadErr.FieldErrors), tt.wantErrors, loadErr.FieldErrors)
			}
			if !errors.Is(loadErr.FieldErrors[0], types.ErrInvalidFilesystemPath) {
				t.Errorf("field error should wrap types.ErrInvalidFilesystemPath, got: %v", loadErr.FieldErrors[0])
			}
		})
	}
}

func TestInvalidLoadOptionsError_Error(t *testing.T) {
	t.Parallel()

	single := &InvalidLoadOptionsError{FieldErrors: []error{errors.New("test error")}}
	if got := single.Error(); got != "invalid load options: test error" {
		t.Errorf("Error() = %q", got)
	}

	multi := &InvalidLoadOptionsError{FieldErrors: []error{errors.New("err1"), errors.New("err2")}}
	if got := multi.Error(); got != "invalid load options: 2 field errors" {
		t.Errorf("Error() = %q", got)
	}
}

func TestLoad_RejectsInvalidOptions(t *testing.T) {
	t.Parallel()

	_, err := load(t, LoadOptions{ConfigDirPath: "  "})
	if !errors.Is(err, ErrInvalidLoadOptions) {
		t.Errorf("Load() error = %v, want ErrInvalidLoadOptions", err)
	}
}
