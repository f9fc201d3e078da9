// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"errors"
	"fmt"
)

const (
	// MalformedDocument means the document is not JSON, is not an object, or
	// has a non-object "imports" or "scopes" value.
	MalformedDocument ParseErrorKind = "MalformedDocument"
	// InvalidURL means the base URL passed to Parse is not an absolute URL.
	InvalidURL ParseErrorKind = "InvalidURL"
)

const (
	// Blocked means the best match maps the specifier to null.
	Blocked ResolveErrorKind = "Blocked"
	// Unmapped means no entry applies at any level.
	Unmapped ResolveErrorKind = "Unmapped"
	// InvalidResolution means a match was found but the result is not a
	// usable URL, or the specifier itself cannot be resolved.
	InvalidResolution ResolveErrorKind = "InvalidResolution"
)

var (
	// ErrMalformedDocument is the sentinel wrapped by MalformedDocument parse errors.
	ErrMalformedDocument = errors.New("malformed import map")
	// ErrInvalidURL is the sentinel wrapped by InvalidURL parse errors.
	ErrInvalidURL = errors.New("invalid base URL")

	// ErrBlocked is the sentinel wrapped by Blocked resolve errors.
	ErrBlocked = errors.New("specifier blocked")
	// ErrUnmapped is the sentinel wrapped by Unmapped resolve errors.
	ErrUnmapped = errors.New("specifier not mapped")
	// ErrInvalidResolution is the sentinel wrapped by InvalidResolution resolve errors.
	ErrInvalidResolution = errors.New("invalid resolution")
)

type (
	// ParseErrorKind classifies a fatal parse failure.
	ParseErrorKind string

	// ResolveErrorKind classifies a resolution failure.
	ResolveErrorKind string

	// ParseError is a fatal parse failure. When Parse returns one, no import
	// map is produced.
	ParseError struct {
		Kind    ParseErrorKind
		Message string
		Err     error
	}

	// ResolveError is returned by Resolve when a specifier does not resolve to
	// a URL.
	ResolveError struct {
		Kind      ResolveErrorKind
		Specifier string
		Referrer  string
		// Key is the map key that matched, empty for Unmapped.
		Key string
		// Fallback is the specifier parsed against the referrer when it is
		// URL-like. It is only set for Unmapped.
		Fallback string
		Err      error
	}
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

// Unwrap returns the kind's sentinel and the cause for errors.Is() compatibility.
func (e *ParseError) Unwrap() []error {
	sentinel := ErrMalformedDocument
	if e.Kind == InvalidURL {
		sentinel = ErrInvalidURL
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	switch e.Kind {
	case Blocked:
		return fmt.Sprintf("blocked by null entry for %q", e.Key)
	case Unmapped:
		return fmt.Sprintf("specifier %q is not mapped by the import map (referrer %q)", e.Specifier, e.Referrer)
	default:
		if e.Err != nil {
			return fmt.Sprintf("cannot resolve %q from %q: %v", e.Specifier, e.Referrer, e.Err)
		}
		return fmt.Sprintf("cannot resolve %q from %q", e.Specifier, e.Referrer)
	}
}

// Unwrap returns the kind's sentinel and the cause for errors.Is() compatibility.
func (e *ResolveError) Unwrap() []error {
	var sentinel error
	switch e.Kind {
	case Blocked:
		sentinel = ErrBlocked
	case Unmapped:
		sentinel = ErrUnmapped
	default:
		sentinel = ErrInvalidResolution
	}
	if e.Err == nil {
		return []error{sentinel}
	}
	return []error{sentinel, e.Err}
}

func malformed(err error, format string, args ...any) *ParseError {
	return &ParseError{Kind: MalformedDocument, Message: fmt.Sprintf(format, args...), Err: err}
}
