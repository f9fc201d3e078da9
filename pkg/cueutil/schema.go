// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Validate compiles data, unifies it with the named definition of schema and
// validates the result. The unified value is returned for decoding.
func Validate(schema, definition string, data []byte, opts ...Option) (cue.Value, error) {
	o := collectOptions(opts)
	if err := CheckFileSize(data, o.maxFileSize, o.filename); err != nil {
		return cue.Value{}, err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(schema)
	if err := schemaValue.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: compile schema: %w", err)
	}
	def := schemaValue.LookupPath(cue.ParsePath(definition))
	if err := def.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("internal error: schema definition %s: %w", definition, err)
	}

	user := ctx.CompileBytes(data, cue.Filename(o.filename))
	if err := user.Err(); err != nil {
		return cue.Value{}, FormatError(err, o.filename)
	}

	unified := def.Unify(user)
	if err := unified.Validate(cue.Concrete(o.concrete)); err != nil {
		return cue.Value{}, FormatError(err, o.filename)
	}
	return unified, nil
}
