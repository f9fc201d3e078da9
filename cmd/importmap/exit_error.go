// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"importmap-cli/pkg/types"
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// warningsExit reports that a strict run produced count warnings.
func warningsExit(count int) *ExitError {
	noun := "warnings"
	if count == 1 {
		noun = "warning"
	}
	return &ExitError{
		Code: types.ExitWarnings,
		Err:  fmt.Errorf("import map has %d %s and strict mode is on", count, noun),
	}
}
