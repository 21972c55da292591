// SPDX-License-Identifier: MPL-2.0

package diagnostic

import (
	"errors"
	"fmt"
)

const (
	// SeverityWarning indicates a recoverable problem; the affected block or file is skipped.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a problem that prevented a whole directory from loading.
	SeverityError Severity = "error"

	// CodeBlockParseSkipped marks a transcript block dropped because it failed to parse.
	CodeBlockParseSkipped Code = "block_parse_skipped"
	// CodeBlockEmptySkipped marks a transcript block dropped because it held no examples.
	CodeBlockEmptySkipped Code = "block_empty_skipped"
	// CodeOrphanOutput marks a testoutput block with no preceding testcode block.
	CodeOrphanOutput Code = "orphan_output"
	// CodeDirectiveInvalid marks a fenced block whose directive attributes are malformed.
	CodeDirectiveInvalid Code = "directive_invalid"
	// CodeFrontMatterInvalid marks a document whose front matter could not be decoded.
	CodeFrontMatterInvalid Code = "front_matter_invalid"
	// CodeDocumentUnreadable marks a document that could not be read.
	CodeDocumentUnreadable Code = "document_unreadable"
	// CodeCacheDiscarded marks a doctree cache entry that failed validation and was rebuilt.
	CodeCacheDiscarded Code = "cache_discarded"
	// CodeConfigLoadFailed marks a configuration directory whose config could not be loaded.
	CodeConfigLoadFailed Code = "config_load_failed"
)

var (
	// ErrInvalidSeverity is returned when a Severity value is not recognized.
	ErrInvalidSeverity = errors.New("invalid diagnostic severity")
	// ErrInvalidCode is returned when a Code value is not recognized.
	ErrInvalidCode = errors.New("invalid diagnostic code")

	validCodes = map[Code]bool{
		CodeBlockParseSkipped:  true,
		CodeBlockEmptySkipped:  true,
		CodeOrphanOutput:       true,
		CodeDirectiveInvalid:   true,
		CodeFrontMatterInvalid: true,
		CodeDocumentUnreadable: true,
		CodeCacheDiscarded:     true,
		CodeConfigLoadFailed:   true,
	}
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Code is a machine-readable diagnostic identifier.
	Code string

	// Diagnostic is one structured, non-fatal problem.
	Diagnostic struct {
		// Severity is the diagnostic level (warning or error).
		Severity Severity
		// Code is a machine-readable identifier (e.g., "block_parse_skipped").
		Code Code
		// Message is the human-readable description.
		Message string
		// Path is the file path associated with this diagnostic (optional).
		Path string
		// Line is the 1-based line in Path, or 0 when unknown.
		Line int
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}
)

// IsValid returns whether the severity is one of the defined levels.
func (s Severity) IsValid() (bool, []error) {
	switch s {
	case SeverityWarning, SeverityError:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidSeverity, string(s))}
	}
}

// IsValid returns whether the code is one of the defined identifiers.
func (c Code) IsValid() (bool, []error) {
	if validCodes[c] {
		return true, nil
	}
	return false, []error{fmt.Errorf("%w: %q", ErrInvalidCode, string(c))}
}

// New builds a warning diagnostic.
func New(code Code, path string, line int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Path:     path,
		Line:     line,
	}
}

// WithCause returns a copy of d carrying cause.
func (d Diagnostic) WithCause(cause error) Diagnostic {
	d.Cause = cause
	return d
}

// Location renders "path:line", "path", or "" depending on what is known.
func (d Diagnostic) Location() string {
	switch {
	case d.Path == "":
		return ""
	case d.Line > 0:
		return fmt.Sprintf("%s:%d", d.Path, d.Line)
	default:
		return d.Path
	}
}

func (d Diagnostic) String() string {
	loc := d.Location()
	if loc == "" {
		return fmt.Sprintf("%s [%s] %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s: %s [%s] %s", loc, d.Severity, d.Code, d.Message)
}
