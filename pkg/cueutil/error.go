// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

// DefaultMaxFileSize bounds how much CUE a caller reads before giving up.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

// ErrFileTooLarge is wrapped by CheckFileSize failures.
var ErrFileTooLarge = errors.New("file too large")

type (
	// Problem is one schema violation.
	Problem struct {
		// Path is the offending field in JSON notation, e.g. "exclude[2]".
		Path    string
		Message string
	}

	// SchemaError lists every problem CUE reported for one file.
	SchemaError struct {
		File     string
		Problems []Problem
	}
)

func (e *SchemaError) Error() string {
	lines := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		if p.Path == "" {
			lines = append(lines, p.Message)
			continue
		}
		lines = append(lines, p.Path+": "+p.Message)
	}
	if len(lines) == 1 {
		return e.File + ": " + lines[0]
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.File, strings.Join(lines, "\n  "))
}

// FormatError converts a CUE error into a *SchemaError. Errors that carry no
// CUE detail are wrapped with the file name instead.
func FormatError(err error, file string) error {
	if err == nil {
		return nil
	}
	var ce cueerrors.Error
	if !errors.As(err, &ce) {
		return fmt.Errorf("%s: %w", file, err)
	}
	se := &SchemaError{File: file}
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		path := formatPath(cueerrors.Path(e))
		msg := fmt.Sprintf(format, args...)
		se.Problems = append(se.Problems, Problem{Path: path, Message: msg})
	}
	return se
}

// formatPath joins CUE path selectors, rendering list indices in brackets:
// ["#Config", "exclude", "2"] becomes "exclude[2]". Leading definition
// selectors name the schema, not the user's field, and are dropped.
func formatPath(path []string) string {
	for len(path) > 0 && strings.HasPrefix(path[0], "#") {
		path = path[1:]
	}
	var b strings.Builder
	for i, part := range path {
		if _, err := strconv.Atoi(part); err == nil && i > 0 {
			b.WriteString("[" + part + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}

// CheckFileSize fails when data is larger than maxSize bytes.
func CheckFileSize(data []byte, maxSize int64, file string) error {
	if size := int64(len(data)); size > maxSize {
		return fmt.Errorf("%s: %w: %d bytes exceeds maximum %d bytes", file, ErrFileTooLarge, size, maxSize)
	}
	return nil
}
