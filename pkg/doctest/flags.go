// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// DontAcceptBlankline disables the <BLANKLINE> marker in expected output.
	DontAcceptBlankline Flag = "DONT_ACCEPT_BLANKLINE"
	// NormalizeWhitespace treats all runs of whitespace as equal.
	NormalizeWhitespace Flag = "NORMALIZE_WHITESPACE"
	// Ellipsis lets "..." in expected output match any substring.
	Ellipsis Flag = "ELLIPSIS"
	// IgnoreExceptionDetail compares only the exception kind, not its message.
	IgnoreExceptionDetail Flag = "IGNORE_EXCEPTION_DETAIL"
	// Skip prevents the example from running at all.
	Skip Flag = "SKIP"
	// NormalizeUnicode compares outputs in Unicode normalization form C.
	NormalizeUnicode Flag = "NORMALIZE_UNICODE"
	// ReportUDiff renders multi-line mismatches as a unified diff.
	ReportUDiff Flag = "REPORT_UDIFF"
	// ReportCDiff renders multi-line mismatches as a context diff.
	ReportCDiff Flag = "REPORT_CDIFF"
	// ReportOnlyFirstFailure reports only the first failing example of a test.
	ReportOnlyFirstFailure Flag = "REPORT_ONLY_FIRST_FAILURE"
	// FailFast stops running a test after its first failing example.
	FailFast Flag = "FAIL_FAST"
)

// ErrUnknownFlag is returned when an option directive names a flag that does not exist.
var ErrUnknownFlag = errors.New("unknown option flag")

type (
	// Flag names one comparison or reporting option.
	Flag string

	// OptionFlags is a set of explicitly enabled or disabled flags.
	// A missing key means "inherit from the enclosing scope".
	OptionFlags map[Flag]bool

	// InvalidFlagError reports an option directive that could not be understood.
	InvalidFlagError struct {
		Directive string
		Reason    string
	}
)

var knownFlags = []Flag{
	DontAcceptBlankline,
	NormalizeWhitespace,
	Ellipsis,
	IgnoreExceptionDetail,
	Skip,
	NormalizeUnicode,
	ReportUDiff,
	ReportCDiff,
	ReportOnlyFirstFailure,
	FailFast,
}

func (e *InvalidFlagError) Error() string {
	return fmt.Sprintf("invalid option directive %q: %s", e.Directive, e.Reason)
}

func (e *InvalidFlagError) Unwrap() error {
	return ErrUnknownFlag
}

// KnownFlags returns every flag name the engine understands.
func KnownFlags() []Flag {
	return slices.Clone(knownFlags)
}

// ParseFlag resolves a flag name, case-insensitively.
func ParseFlag(name string) (Flag, error) {
	f := Flag(strings.ToUpper(strings.TrimSpace(name)))
	if !slices.Contains(knownFlags, f) {
		return "", &InvalidFlagError{Directive: name, Reason: "no such flag"}
	}
	return f, nil
}

// ParseOptions parses a directive body such as "+ELLIPSIS, -NORMALIZE_WHITESPACE".
// Items are separated by commas or whitespace and must carry a + or - sign.
func ParseOptions(directive string) (OptionFlags, error) {
	fields := strings.FieldsFunc(directive, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	opts := make(OptionFlags, len(fields))
	for _, field := range fields {
		if len(field) < 2 || (field[0] != '+' && field[0] != '-') {
			return nil, &InvalidFlagError{Directive: field, Reason: "expected +FLAG or -FLAG"}
		}
		f, err := ParseFlag(field[1:])
		if err != nil {
			return nil, err
		}
		opts[f] = field[0] == '+'
	}
	return opts, nil
}

// Enabled reports whether the flag is explicitly turned on.
func (o OptionFlags) Enabled(f Flag) bool {
	return o[f]
}

// Clone returns an independent copy. Cloning nil yields an empty set.
func (o OptionFlags) Clone() OptionFlags {
	out := make(OptionFlags, len(o))
	maps.Copy(out, o)
	return out
}

// String renders the set in directive syntax with a stable order.
func (o OptionFlags) String() string {
	keys := slices.Sorted(maps.Keys(o))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		sign := "-"
		if o[k] {
			sign = "+"
		}
		parts = append(parts, sign+string(k))
	}
	return strings.Join(parts, ", ")
}

// Merge layers option sets from the outermost scope to the innermost one.
// Later layers win on conflicting keys; the inputs are never modified.
func Merge(layers ...OptionFlags) OptionFlags {
	out := make(OptionFlags)
	for _, layer := range layers {
		maps.Copy(out, layer)
	}
	return out
}
