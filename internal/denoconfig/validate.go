// SPDX-License-Identifier: MPL-2.0

package denoconfig

import (
	"fmt"
	"strconv"

	"cuelang.org/go/cue/ast"

	"importmap-cli/pkg/cueutil"
)

type fieldType struct {
	name  string
	kinds []cueutil.JSONKind
}

var (
	// rootTypes lists the top-level fields whose JSON type is checked, in
	// the order they are reported.
	rootTypes = []fieldType{
		{"compilerOptions", kinds(cueutil.KindObject)},
		{"importMap", kinds(cueutil.KindString)},
		{"imports", kinds(cueutil.KindObject)},
		{"scopes", kinds(cueutil.KindObject)},
		{"exclude", kinds(cueutil.KindArray)},
		{"lint", kinds(cueutil.KindObject)},
		{"fmt", kinds(cueutil.KindObject)},
		{"nodeModulesDir", kinds(cueutil.KindBoolean)},
		{"vendor", kinds(cueutil.KindBoolean)},
		{"tasks", kinds(cueutil.KindObject)},
		{"test", kinds(cueutil.KindObject)},
		{"publish", kinds(cueutil.KindObject)},
		{"bench", kinds(cueutil.KindObject)},
		{"lock", kinds(cueutil.KindBoolean, cueutil.KindString)},
		{"unstable", kinds(cueutil.KindArray)},
		{"name", kinds(cueutil.KindString)},
		{"version", kinds(cueutil.KindString)},
		{"exports", kinds(cueutil.KindString, cueutil.KindObject)},
		{"workspaces", kinds(cueutil.KindArray)},
	}

	rootStringArrays = []string{"exclude", "unstable", "workspaces"}

	compilerOptionTypes = map[string]cueutil.JSONKind{
		"jsx":                       cueutil.KindString,
		"jsxFactory":                cueutil.KindString,
		"jsxFragmentFactory":        cueutil.KindString,
		"jsxImportSource":           cueutil.KindString,
		"jsxImportSourceTypes":      cueutil.KindString,
		"jsxPrecompileSkipElements": cueutil.KindArray,
		"lib":                       cueutil.KindArray,
	}

	// Every other known compiler option is a boolean.
	booleanCompilerOptions = []string{
		"allowJs", "allowUnreachableCode", "allowUnusedLabels", "checkJs",
		"exactOptionalPropertyTypes", "experimentalDecorators", "keyofStringsOnly",
		"noErrorTruncation", "noFallthroughCasesInSwitch", "noImplicitAny",
		"noImplicitOverride", "noImplicitReturns", "noImplicitThis",
		"noImplicitUseStrict", "noStrictGenericChecks", "noUnusedLocals",
		"noUnusedParameters", "noUncheckedIndexedAccess", "strict",
		"strictBindCallApply", "strictFunctionTypes", "strictPropertyInitialization",
		"strictNullChecks", "suppressExcessPropertyErrors", "suppressImplicitAnyIndexErrors",
	}

	jsxModes = map[string]bool{"precompile": true, "react": true, "react-jsx": true, "react-jsxdev": true}
)

func init() {
	for _, name := range booleanCompilerOptions {
		compilerOptionTypes[name] = cueutil.KindBoolean
	}
}

func kinds(k ...cueutil.JSONKind) []cueutil.JSONKind { return k }

// validate checks the JSON types of the known fields of a config object.
// Unknown fields are accepted.
func validate(members []cueutil.Member) error {
	for _, ft := range rootTypes {
		m, ok := cueutil.Lookup(members, ft.name)
		if !ok {
			continue
		}
		if err := checkKind(ft.name, m, ft.kinds); err != nil {
			return err
		}
	}

	for _, name := range rootStringArrays {
		if m, ok := cueutil.Lookup(members, name); ok {
			if err := checkStringArray(name, m.Value); err != nil {
				return err
			}
		}
	}

	if m, ok := cueutil.Lookup(members, "compilerOptions"); ok {
		return validateCompilerOptions(m.Value)
	}
	return nil
}

func validateCompilerOptions(x ast.Expr) error {
	options, err := cueutil.Members(x)
	if err != nil {
		return err
	}
	for _, m := range options {
		want, known := compilerOptionTypes[m.Key]
		if !known {
			continue
		}
		if err := checkKind(m.Key, m, kinds(want)); err != nil {
			return err
		}
	}

	if m, ok := cueutil.Lookup(options, "jsx"); ok {
		mode, _ := cueutil.StringValue(m.Value)
		if !jsxModes[mode] {
			return fmt.Errorf("%w: unsupported 'jsx' compiler option value '%s'. Supported: 'react-jsx', 'react-jsxdev', 'react', 'precompile'", ErrInvalidConfig, mode)
		}
	}
	for _, name := range []string{"jsxPrecompileSkipElements", "lib"} {
		if m, ok := cueutil.Lookup(options, name); ok {
			if err := checkStringArray(name, m.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkKind(field string, m cueutil.Member, want []cueutil.JSONKind) error {
	got := m.Kind()
	for _, k := range want {
		if got == k {
			return nil
		}
	}
	return &FieldError{Field: field, Got: string(got), Want: kindNames(want), Pos: m.Pos()}
}

func checkStringArray(field string, x ast.Expr) error {
	list, ok := x.(*ast.ListLit)
	if !ok {
		return nil
	}
	for i, elt := range list.Elts {
		if got := cueutil.KindOf(elt); got != cueutil.KindString {
			return &FieldError{
				Field:   field + "." + strconv.Itoa(i),
				Element: true,
				Got:     string(got),
				Want:    []string{string(cueutil.KindString)},
				Pos:     elt.Pos().String(),
			}
		}
	}
	return nil
}

func kindNames(ks []cueutil.JSONKind) []string {
	out := make([]string, len(ks))
	for i, k := range ks {
		out[i] = string(k)
	}
	return out
}
