// SPDX-License-Identifier: MPL-2.0

package denoconfig

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no deno.json or deno.jsonc exists in the
	// directory or any of its parents.
	ErrNotFound = errors.New("deno config not found")
	// ErrInvalidConfig is the sentinel error wrapped by FieldError and by
	// documents that are not JSON objects.
	ErrInvalidConfig = errors.New("invalid deno config")
)

type (
	// FieldError reports a field of the wrong JSON type, such as
	// `Failed to parse "importMap" configuration` caused by
	// `invalid type: number, expected string`.
	FieldError struct {
		// Field is the dotted field name, e.g. "lock" or "exclude.2".
		Field string
		// Element is set when Field names an array element.
		Element bool
		// Got is the JSON type that was found.
		Got string
		// Want lists the accepted JSON types.
		Want []string
		// Pos is the "file:line:col" position of the field, if known.
		Pos string
	}

	// TypeError is the cause carried by a FieldError.
	TypeError struct {
		Got  string
		Want []string
	}

	// ReadError is returned when a config file cannot be read or decoded.
	ReadError struct {
		Path string
		Err  error
	}
)

func (e *FieldError) Error() string {
	if e.Element {
		return fmt.Sprintf("Failed to parse %q: %v", e.Field, e.cause())
	}
	return fmt.Sprintf("Failed to parse %q configuration: %v", e.Field, e.cause())
}

// Unwrap returns ErrInvalidConfig and the *TypeError cause.
func (e *FieldError) Unwrap() []error {
	return []error{ErrInvalidConfig, e.cause()}
}

func (e *FieldError) cause() *TypeError {
	return &TypeError{Got: e.Got, Want: e.Want}
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid type: %s, expected %s", e.Got, strings.Join(e.Want, " or "))
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Error reading config file %q: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }
