// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"regexp"
	"strings"
)

const (
	// KindSyntaxError is raised when a snippet cannot be parsed as shell source.
	KindSyntaxError = "SyntaxError"
	// KindExitError is raised in module mode when a script ends with a non-zero status.
	KindExitError = "ExitError"
	// KindRuntimeError is raised for any other fatal interpreter failure.
	KindRuntimeError = "RuntimeError"
)

// exceptionLine matches "<Kind>: <message>" where Kind is an identifier,
// optionally dotted, ending in Error or Exception.
var exceptionLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_.]*(?:Error|Exception)):(?: (.*))?$`)

type (
	// Example is a single snippet of shell source plus what it should produce.
	Example struct {
		// Source is the shell source, always newline-terminated.
		Source string
		// Want is the expected output; empty, or newline-terminated.
		Want string
		// Exception is non-nil when the snippet is expected to raise.
		Exception *ExpectedException
		// Line is the 1-based line of the example in its document.
		Line int
		// Options holds the fully resolved option flags.
		Options OptionFlags
	}

	// ExpectedException is a structural expectation that an example raises.
	ExpectedException struct {
		Kind    string
		Message string
	}

	// RaisedError is what executing a snippet raised. Compile failures, fatal
	// interpreter errors, module-mode exit statuses and the raise builtin all
	// surface as a RaisedError.
	RaisedError struct {
		Kind    string
		Message string
		// Err is the underlying cause, if any.
		Err error
	}
)

// String renders the expectation the way it appears in documentation.
func (e *ExpectedException) String() string {
	if e.Message == "" {
		return e.Kind + ":"
	}
	return e.Kind + ": " + e.Message
}

func (e *RaisedError) Error() string {
	if e.Message == "" {
		return e.Kind + ":"
	}
	return e.Kind + ": " + e.Message
}

func (e *RaisedError) Unwrap() error {
	return e.Err
}

// ParseException looks for an exception line at the end of output text.
// Only the final non-blank line is considered.
func ParseException(output string) (*ExpectedException, bool) {
	lines := strings.Split(strings.TrimRight(output, " \t\r\n"), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	m := exceptionLine.FindStringSubmatch(last)
	if m == nil {
		return nil, false
	}
	return &ExpectedException{Kind: m[1], Message: m[2]}, true
}

// shortKind drops a dotted qualifier, so "pkg.ValueError" compares as "ValueError".
func shortKind(kind string) string {
	if i := strings.LastIndexByte(kind, '.'); i >= 0 {
		return kind[i+1:]
	}
	return kind
}
