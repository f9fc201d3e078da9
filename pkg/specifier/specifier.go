// SPDX-License-Identifier: MPL-2.0

// Package specifier classifies module specifiers and implements the prefix
// matching rules shared by import map keys.
package specifier

import (
	"errors"
	"fmt"
	"strings"

	"importmap-cli/pkg/urlutil"
)

const (
	// Bare is a specifier such as "lodash" or "@std/assert/" that is neither an
	// absolute URL nor a path-like relative reference.
	Bare Kind = iota + 1
	// AbsoluteURL is a specifier that parses as an absolute URL on its own.
	AbsoluteURL
	// Relative is a specifier starting with "/", "./" or "../".
	Relative
)

var (
	// ErrEmpty is returned when a specifier is the empty string.
	ErrEmpty = errors.New("empty specifier")
	// ErrInvalidSpecifier is the sentinel error wrapped by InvalidSpecifierError.
	ErrInvalidSpecifier = errors.New("invalid specifier")
)

type (
	// Kind is the syntactic class of a specifier.
	Kind int

	// Specifier is a classified specifier. URL is set for AbsoluteURL and
	// Relative specifiers and nil for Bare ones.
	Specifier struct {
		Kind Kind
		Raw  string
		URL  *urlutil.URL
	}

	// InvalidSpecifierError is returned when a path-like specifier fails to
	// parse against its base.
	InvalidSpecifierError struct {
		Value string
		Err   error
	}
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case Bare:
		return "bare"
	case AbsoluteURL:
		return "absolute-url"
	case Relative:
		return "relative"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error implements the error interface for InvalidSpecifierError.
func (e *InvalidSpecifierError) Error() string {
	return fmt.Sprintf("invalid specifier %q: %v", e.Value, e.Err)
}

// Unwrap returns ErrInvalidSpecifier and the parse failure for errors.Is() compatibility.
func (e *InvalidSpecifierError) Unwrap() []error { return []error{ErrInvalidSpecifier, e.Err} }

// IsRelative reports whether raw is a path-like relative reference.
func IsRelative(raw string) bool {
	return strings.HasPrefix(raw, "/") ||
		strings.HasPrefix(raw, "./") ||
		strings.HasPrefix(raw, "../")
}

// Classify determines the kind of raw. Relative specifiers are resolved
// against base; a nil base makes every relative specifier invalid.
func Classify(raw string, base *urlutil.URL) (Specifier, error) {
	if raw == "" {
		return Specifier{}, ErrEmpty
	}

	if IsRelative(raw) {
		if base == nil {
			return Specifier{}, &InvalidSpecifierError{Value: raw, Err: errors.New("relative specifier without a base URL")}
		}
		u, err := urlutil.Resolve(base, raw)
		if err != nil {
			return Specifier{}, &InvalidSpecifierError{Value: raw, Err: err}
		}
		return Specifier{Kind: Relative, Raw: raw, URL: u}, nil
	}

	if u, err := urlutil.Parse(raw); err == nil {
		return Specifier{Kind: AbsoluteURL, Raw: raw, URL: u}, nil
	}
	return Specifier{Kind: Bare, Raw: raw}, nil
}

// Key returns the form of the specifier used for map lookups: the serialized
// URL for URL-like specifiers and the raw text for bare ones.
func (s Specifier) Key() string {
	if s.URL != nil {
		return s.URL.String()
	}
	return s.Raw
}

// IsURLLike reports whether the specifier carries a URL.
func (s Specifier) IsURLLike() bool { return s.Kind == AbsoluteURL || s.Kind == Relative }

// NormalizeKey returns the map key for a raw import map key.
func NormalizeKey(raw string, base *urlutil.URL) (string, error) {
	s, err := Classify(raw, base)
	if err != nil {
		return "", err
	}
	return s.Key(), nil
}

// IsPrefix reports whether key is a prefix entry (ends with "/").
func IsPrefix(key string) bool { return strings.HasSuffix(key, "/") }

// MatchesPrefix reports whether key applies to s: either an exact match, or key
// is a prefix entry and s starts with it.
func MatchesPrefix(key, s string) bool {
	if key == s {
		return true
	}
	return IsPrefix(key) && strings.HasPrefix(s, key)
}
