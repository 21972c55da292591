// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// DecodeMap unifies data with the schema definition (e.g. "#Config") and
// decodes the result into a generic map. Fields may be left open, so the
// result only holds what the file actually sets; callers layer defaults
// underneath.
func DecodeMap(schema string, data []byte, definition, file string) (map[string]any, error) {
	if err := CheckFileSize(data, DefaultMaxFileSize, file); err != nil {
		return nil, err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(schema)
	if err := schemaValue.Err(); err != nil {
		return nil, fmt.Errorf("internal error: compiling schema: %w", err)
	}
	root := schemaValue.LookupPath(cue.ParsePath(definition))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("internal error: schema definition %s: %w", definition, err)
	}

	user := ctx.CompileBytes(data, cue.Filename(file))
	if err := user.Err(); err != nil {
		return nil, FormatError(err, file)
	}
	unified := root.Unify(user)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return nil, FormatError(err, file)
	}

	var out map[string]any
	if err := unified.Decode(&out); err != nil {
		return nil, FormatError(err, file)
	}
	return out, nil
}
