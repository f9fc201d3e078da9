// SPDX-License-Identifier: MPL-2.0

package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/format"
	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"

	"importmap-cli/internal/config"
	"importmap-cli/pkg/importmap"
)

const diagnosticsHeader = "Import map diagnostics:"

// ErrUnknownFormat is returned by Encode for an output format it cannot write.
var ErrUnknownFormat = errors.New("unknown output format")

// Styles colors the text encoder. The zero value is not usable; start from
// PlainStyles.
type Styles struct {
	Heading lipgloss.Style
	Key     lipgloss.Style
	Value   lipgloss.Style
	Blocked lipgloss.Style
	Muted   lipgloss.Style
}

// PlainStyles returns styles that leave text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Heading: plain, Key: plain, Value: plain, Blocked: plain, Muted: plain}
}

// FormatDiagnostics renders diagnostic messages as a bulleted list:
//
//	Import map diagnostics:
//	  - reason1
//	  - reason2
//
// An empty list renders the header followed by a newline.
func FormatDiagnostics(messages []string) string {
	if len(messages) == 0 {
		return diagnosticsHeader + "\n"
	}

	var b strings.Builder
	b.WriteString(diagnosticsHeader)
	for _, msg := range messages {
		b.WriteString("\n  - ")
		b.WriteString(msg)
	}
	return b.String()
}

// Encode writes res to w in the given format.
func Encode(w io.Writer, res *importmap.ParseResult, f config.OutputFormat, styles Styles) error {
	var (
		out []byte
		err error
	)
	switch f {
	case config.OutputText, "":
		out = []byte(Text(res, styles))
	case config.OutputJSON:
		out, err = JSON(res)
	case config.OutputTOML:
		out, err = TOML(res)
	case config.OutputCUE:
		out, err = CUE(res)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return err
	}

	_, err = w.Write(out)
	return err
}

// JSON encodes res indented by two spaces, keeping definition order.
func JSON(res *importmap.ParseResult) ([]byte, error) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode JSON: %w", err)
	}
	return append(out, '\n'), nil
}

// TOML encodes res as a TOML document. TOML has no null and sorts table
// keys, so blocked entries are written as false and definition order is lost.
func TOML(res *importmap.ParseResult) ([]byte, error) {
	scopes := make(map[string]any, res.ImportMap.Scopes.Len())
	for prefix, scope := range res.ImportMap.Scopes.All() {
		scopes[prefix] = tomlEntries(scope)
	}
	doc := map[string]any{
		"import_map": map[string]any{
			"imports": tomlEntries(&res.ImportMap.Imports),
			"scopes":  scopes,
		},
		"warnings": res.Warnings(),
	}

	var b strings.Builder
	enc := toml.NewEncoder(&b).SetIndentTables(true)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode TOML: %w", err)
	}
	return []byte(b.String()), nil
}

func tomlEntries(m *importmap.SpecifierMap) map[string]any {
	out := make(map[string]any, m.Len())
	for key, addr := range m.All() {
		if addr.IsBlocked() {
			out[key] = false
			continue
		}
		out[key] = addr.String()
	}
	return out
}

// CUE encodes res as CUE source in definition order, with null for blocked
// entries.
func CUE(res *importmap.ParseResult) ([]byte, error) {
	var scopes []any
	for prefix, scope := range res.ImportMap.Scopes.All() {
		scopes = append(scopes, prefix, cueEntries(scope))
	}

	warnings := make([]ast.Expr, 0, len(res.Diagnostics))
	for _, msg := range res.Warnings() {
		warnings = append(warnings, ast.NewString(msg))
	}

	root := ast.NewStruct(
		"import_map", ast.NewStruct(
			"imports", cueEntries(&res.ImportMap.Imports),
			"scopes", ast.NewStruct(scopes...),
		),
		"warnings", ast.NewList(warnings...),
	)

	out, err := format.Node(&ast.File{Decls: root.Elts}, format.Simplify())
	if err != nil {
		return nil, fmt.Errorf("encode CUE: %w", err)
	}
	return out, nil
}

func cueEntries(m *importmap.SpecifierMap) *ast.StructLit {
	fields := make([]any, 0, 2*m.Len())
	for key, addr := range m.All() {
		var value ast.Expr = ast.NewNull()
		if !addr.IsBlocked() {
			value = ast.NewString(addr.String())
		}
		fields = append(fields, key, value)
	}
	return ast.NewStruct(fields...)
}

// Text renders res for a terminal: imports, then scopes, then the
// diagnostics block when there are any.
func Text(res *importmap.ParseResult, styles Styles) string {
	var b strings.Builder

	b.WriteString(styles.Heading.Render("imports") + "\n")
	writeEntries(&b, &res.ImportMap.Imports, "  ", styles)

	b.WriteString(styles.Heading.Render("scopes") + "\n")
	if res.ImportMap.Scopes.Len() == 0 {
		b.WriteString("  " + styles.Muted.Render("(none)") + "\n")
	}
	for prefix, scope := range res.ImportMap.Scopes.All() {
		b.WriteString("  " + styles.Key.Render(prefix) + "\n")
		writeEntries(&b, scope, "    ", styles)
	}

	if warnings := res.Warnings(); len(warnings) > 0 {
		b.WriteString("\n" + FormatDiagnostics(warnings) + "\n")
	}
	return b.String()
}

func writeEntries(b *strings.Builder, m *importmap.SpecifierMap, indent string, styles Styles) {
	if m.Len() == 0 {
		b.WriteString(indent + styles.Muted.Render("(none)") + "\n")
		return
	}
	for key, addr := range m.All() {
		value := styles.Blocked.Render("(blocked)")
		if !addr.IsBlocked() {
			value = styles.Value.Render(addr.String())
		}
		fmt.Fprintf(b, "%s%s => %s\n", indent, styles.Key.Render(key), value)
	}
}
