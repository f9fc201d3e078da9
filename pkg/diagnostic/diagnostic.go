// SPDX-License-Identifier: MPL-2.0

// Package diagnostic holds the non-fatal findings reported while parsing an
// import map, and the append-only collector that accumulates them.
package diagnostic

import (
	"fmt"
	"slices"
)

const (
	// InvalidSpecifier marks a key that is empty or a path-like key that fails to parse.
	InvalidSpecifier Kind = "InvalidSpecifier"
	// InvalidMappingValue marks an address that cannot be used as a mapping target.
	InvalidMappingValue Kind = "InvalidMappingValue"
	// InvalidScope marks a scope prefix that does not parse as a URL.
	InvalidScope Kind = "InvalidScope"
	// TypeMismatch marks a value of the wrong JSON type.
	TypeMismatch Kind = "TypeMismatch"
	// DuplicateKeyOverwritten marks a key that replaced an earlier definition.
	DuplicateKeyOverwritten Kind = "DuplicateKeyOverwritten"
	// UnknownKey marks an unsupported top-level key.
	UnknownKey Kind = "UnknownKey"
)

const (
	// Info is for findings that did not drop any entry.
	Info Severity = iota + 1
	// Warning is for findings that caused an entry to be skipped.
	Warning
)

type (
	// Kind classifies a diagnostic.
	Kind string

	// Severity ranks a diagnostic. The zero value means "use the kind's default".
	Severity int

	// Diagnostic is a single parse finding. It is a value and never changes
	// after creation.
	Diagnostic struct {
		Kind     Kind
		Severity Severity
		// Message is the human-readable text.
		Message string
		// Key is the specifier or scope key the finding is about, if any.
		Key string
		// Scope is the normalized scope prefix when the finding is inside "scopes".
		Scope string
		// Pos is the "file:line:col" source position, if known.
		Pos string
	}
)

// DefaultSeverity returns the severity used when a diagnostic does not set one.
func (k Kind) DefaultSeverity() Severity {
	if k == DuplicateKeyOverwritten {
		return Info
	}
	return Warning
}

// String returns the name of the severity.
func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// String returns the message, the form hosts display as a warning line.
func (d Diagnostic) String() string { return d.Message }

// Filter returns the diagnostics whose severity is at least minimum, in order.
func Filter(ds []Diagnostic, minimum Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range ds {
		if d.Severity >= minimum {
			out = append(out, d)
		}
	}
	return out
}

// Messages returns the message of every diagnostic, in order.
func Messages(ds []Diagnostic) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Message
	}
	return out
}

// Collector accumulates diagnostics in the order they are reported. The zero
// value is ready to use. A Collector is not safe for concurrent use.
type Collector struct {
	items []Diagnostic
}

// Add appends d, filling in the default severity when unset.
func (c *Collector) Add(d Diagnostic) {
	if d.Severity == 0 {
		d.Severity = d.Kind.DefaultSeverity()
	}
	c.items = append(c.items, d)
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int { return len(c.items) }

// All returns a copy of the collected diagnostics.
func (c *Collector) All() []Diagnostic { return slices.Clone(c.items) }
