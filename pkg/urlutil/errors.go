// SPDX-License-Identifier: MPL-2.0

package urlutil

import (
	"errors"
	"fmt"
)

// ErrInvalidURL is the sentinel error wrapped by Error.
var ErrInvalidURL = errors.New("invalid URL")

// Error is returned when an input cannot be parsed as a URL, either on its own
// or against a base.
type Error struct {
	// Input is the raw text that failed to parse.
	Input string
	// Base is the serialized base URL, empty when none was supplied.
	Base string
	// Reason describes what was wrong with the input.
	Reason string
	// Err is the underlying parser error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("invalid URL %q", e.Input)
	if e.Base != "" {
		msg += fmt.Sprintf(" (base %q)", e.Base)
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns ErrInvalidURL and the underlying cause for errors.Is() compatibility.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidURL}
	}
	return []error{ErrInvalidURL, e.Err}
}

func newError(input string, base *URL, reason string, cause error) *Error {
	e := &Error{Input: input, Reason: reason, Err: cause}
	if base != nil {
		e.Base = base.String()
	}
	return e
}
