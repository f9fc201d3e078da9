// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"slices"
	"strings"

	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/literal"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
	"github.com/tailscale/hujson"
)

const (
	KindNull    JSONKind = "null"
	KindBoolean JSONKind = "boolean"
	KindNumber  JSONKind = "number"
	KindString  JSONKind = "string"
	KindArray   JSONKind = "array"
	KindObject  JSONKind = "object"
	KindUnknown JSONKind = "unknown"
)

type (
	// JSONKind names the JSON type of a syntax node.
	JSONKind string

	// Member is one "key": value pair of a JSON object, in source order.
	// Repeated keys produce repeated members.
	Member struct {
		Key   string
		Value ast.Expr
		pos   token.Pos
	}
)

// ExtractJSON parses data as a JSON document and returns its syntax tree.
//
// Unlike decoding into Go maps, the tree keeps object members in source order
// and keeps repeated keys, so callers can report duplicates and honor
// definition order. With WithJSONC, line and block comments and trailing
// commas are blanked out before extraction, keeping byte offsets intact.
func ExtractJSON(data []byte, opts ...Option) (ast.Expr, error) {
	options := collectOptions(opts)
	filename := options.filename

	if err := CheckFileSize(data, options.maxFileSize, filename); err != nil {
		return nil, err
	}

	if options.jsonc {
		// A line comment must end in a newline, including on the last line.
		buf := append(slices.Clone(data), '\n')
		std, err := hujson.Standardize(buf)
		if err != nil {
			return nil, &ValidationError{File: filename, Message: strings.TrimPrefix(err.Error(), "hujson: ")}
		}
		data = std
	}

	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return nil, FormatError(err, filename)
	}
	return expr, nil
}

// KindOf returns the JSON type of x.
func KindOf(x ast.Expr) JSONKind {
	switch v := x.(type) {
	case *ast.BasicLit:
		switch v.Kind {
		case token.STRING:
			return KindString
		case token.NULL:
			return KindNull
		case token.TRUE, token.FALSE:
			return KindBoolean
		case token.INT, token.FLOAT:
			return KindNumber
		}
	case *ast.UnaryExpr:
		if _, ok := v.X.(*ast.BasicLit); ok && (v.Op == token.SUB || v.Op == token.ADD) {
			return KindNumber
		}
	case *ast.StructLit:
		return KindObject
	case *ast.ListLit:
		return KindArray
	case *ast.ParenExpr:
		return KindOf(v.X)
	}
	return KindUnknown
}

// Members returns the members of the object x in source order. It fails when
// x is not an object or has a member that is not a plain "key": value pair.
func Members(x ast.Expr) ([]Member, error) {
	obj, ok := x.(*ast.StructLit)
	if !ok {
		return nil, &ValidationError{Message: fmt.Sprintf("expected object, got %s", KindOf(x))}
	}

	members := make([]Member, 0, len(obj.Elts))
	for _, decl := range obj.Elts {
		switch d := decl.(type) {
		case *ast.Field:
			name, err := labelName(d.Label)
			if err != nil {
				return nil, &ValidationError{Path: d.Pos().String(), Message: "unsupported object key"}
			}
			members = append(members, Member{Key: name, Value: d.Value, pos: d.Pos()})
		default:
			return nil, &ValidationError{Path: decl.Pos().String(), Message: "unsupported declaration in object"}
		}
	}
	return members, nil
}

// labelName unquotes string labels with JSON escape rules; identifier labels
// come from keys that needed no quoting.
func labelName(l ast.Label) (string, error) {
	if lit, ok := l.(*ast.BasicLit); ok && lit.Kind == token.STRING {
		return literal.Unquote(lit.Value)
	}
	name, _, err := ast.LabelName(l)
	return name, err
}

// StringValue returns the unquoted value of a string literal.
func StringValue(x ast.Expr) (string, error) {
	lit, ok := x.(*ast.BasicLit)
	if !ok || lit.Kind != token.STRING {
		return "", &ValidationError{Message: fmt.Sprintf("expected string, got %s", KindOf(x))}
	}
	s, err := literal.Unquote(lit.Value)
	if err != nil {
		return "", &ValidationError{Path: lit.Pos().String(), Message: err.Error()}
	}
	return s, nil
}

// Kind returns the JSON type of the member value.
func (m Member) Kind() JSONKind { return KindOf(m.Value) }

// Pos returns the "file:line:col" position of the member key, or "" if unknown.
func (m Member) Pos() string {
	if !m.pos.IsValid() {
		return ""
	}
	return m.pos.String()
}

// Lookup returns the last member named key, matching JSON's last-wins rule.
func Lookup(members []Member, key string) (Member, bool) {
	for i := len(members) - 1; i >= 0; i-- {
		if members[i].Key == key {
			return members[i], true
		}
	}
	return Member{}, false
}
