// SPDX-License-Identifier: MPL-2.0

package importmap

import (
	"importmap-cli/pkg/diagnostic"
)

// ParseResult is the outcome of a successful Parse: the import map and the
// diagnostics reported while building it, in document order.
type ParseResult struct {
	ImportMap   *ImportMap
	Diagnostics []diagnostic.Diagnostic
}

// Warnings returns the diagnostic messages.
func (r *ParseResult) Warnings() []string {
	return diagnostic.Messages(r.Diagnostics)
}

// WarningCount returns the number of diagnostics of at least warning
// severity.
func (r *ParseResult) WarningCount() int {
	return len(diagnostic.Filter(r.Diagnostics, diagnostic.Warning))
}

// Value returns the result as plain nested maps:
//
//	{"import_map": {"imports": {...}, "scopes": {...}}, "warnings": [...]}
//
// Blocked entries are present with a nil value.
func (r *ParseResult) Value() map[string]any {
	scopes := make(map[string]any, r.ImportMap.Scopes.Len())
	for prefix, scope := range r.ImportMap.Scopes.All() {
		scopes[prefix] = record(scope, true)
	}
	return map[string]any{
		"import_map": map[string]any{
			"imports": record(&r.ImportMap.Imports, true),
			"scopes":  scopes,
		},
		"warnings": r.Warnings(),
	}
}

// MarshalJSON encodes the same shape as Value, keeping definition order.
func (r *ParseResult) MarshalJSON() ([]byte, error) {
	return marshalOrdered[any](func(yield func(string, any) bool) {
		if !yield("import_map", r.ImportMap) {
			return
		}
		yield("warnings", r.Warnings())
	})
}
