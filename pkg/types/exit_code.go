// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// ExitOK means the command succeeded.
	ExitOK ExitCode = 0
	// ExitFailure means bad input, a fatal parse error or a failed resolution.
	ExitFailure ExitCode = 1
	// ExitWarnings means the import map was usable but had warnings and the
	// run was strict.
	ExitWarnings ExitCode = 2
)

// ErrInvalidExitCode is wrapped by ExitCode.Validate.
var ErrInvalidExitCode = errors.New("invalid exit code")

// ExitCode is a process exit status in the POSIX range 0-255.
type ExitCode int

// ExitCodeFor returns the status of a run that otherwise succeeded with the
// given number of warnings.
func ExitCodeFor(warnings int, strict bool) ExitCode {
	if strict && warnings > 0 {
		return ExitWarnings
	}
	return ExitOK
}

func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return fmt.Errorf("%w %d: must be in range 0-255", ErrInvalidExitCode, int(c))
	}
	return nil
}

func (c ExitCode) IsSuccess() bool { return c == ExitOK }

// String names the codes the CLI defines and prints others in decimal.
func (c ExitCode) String() string {
	switch c {
	case ExitOK:
		return "ok"
	case ExitFailure:
		return "failure"
	case ExitWarnings:
		return "warnings"
	default:
		return strconv.Itoa(int(c))
	}
}
