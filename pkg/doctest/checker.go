// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/unicode/norm"
)

const (
	// BlanklineMarker stands for an empty line in expected output.
	BlanklineMarker = "<BLANKLINE>"
	// EllipsisMarker matches any substring when ELLIPSIS is enabled.
	EllipsisMarker = "..."
)

const (
	diffContextLines  = 2
	minDiffableLines  = 3
	reportIndentation = "    "
)

var (
	blanklineRe      = regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(BlanklineMarker) + `[^\S\n]*$`)
	whitespaceOnlyRe = regexp.MustCompile(`(?m)^[^\S\n]+$`)
	emptyLineRe      = regexp.MustCompile(`(?m)^[^\S\n]*$`)
)

// OutputChecker decides whether actual output matches an example's
// expectation and explains the difference when it does not.
type OutputChecker struct{}

// CheckOutput reports whether got matches want under the given flags.
func (c *OutputChecker) CheckOutput(want, got string, opts OptionFlags) bool {
	if got == want {
		return true
	}
	if opts.Enabled(NormalizeUnicode) {
		want, got = norm.NFC.String(want), norm.NFC.String(got)
		if got == want {
			return true
		}
	}
	if !opts.Enabled(DontAcceptBlankline) {
		want = StripBlanklineMarkers(want)
		got = whitespaceOnlyRe.ReplaceAllString(got, "")
		if got == want {
			return true
		}
	}
	if opts.Enabled(NormalizeWhitespace) {
		want = strings.Join(strings.Fields(want), " ")
		got = strings.Join(strings.Fields(got), " ")
		if got == want {
			return true
		}
	}
	if opts.Enabled(Ellipsis) {
		return ellipsisMatch(want, got)
	}
	return false
}

// CheckException reports whether a raised error satisfies an expectation.
func (c *OutputChecker) CheckException(want *ExpectedException, got *RaisedError, opts OptionFlags) bool {
	if shortKind(want.Kind) != shortKind(got.Kind) {
		return false
	}
	if opts.Enabled(IgnoreExceptionDetail) {
		return true
	}
	return c.CheckOutput(want.Message+"\n", got.Message+"\n", opts)
}

// OutputDifference describes how got differs from the example's expectation.
func (c *OutputChecker) OutputDifference(ex *Example, got string, opts OptionFlags) string {
	want := ex.Want
	if !opts.Enabled(DontAcceptBlankline) {
		got = emptyLineRe.ReplaceAllString(strings.TrimSuffix(got, "\n"), BlanklineMarker)
		if got != "" {
			got += "\n"
		}
	}

	if diff, ok := c.diff(want, got, opts); ok {
		return diff
	}

	var b strings.Builder
	switch {
	case want != "" && got != "":
		fmt.Fprintf(&b, "Expected:\n%sGot:\n%s", indent(want), indent(got))
	case want != "":
		fmt.Fprintf(&b, "Expected:\n%sGot nothing\n", indent(want))
	case got != "":
		fmt.Fprintf(&b, "Expected nothing\nGot:\n%s", indent(got))
	default:
		b.WriteString("Expected nothing\nGot nothing\n")
	}
	return b.String()
}

func (c *OutputChecker) diff(want, got string, opts OptionFlags) (string, bool) {
	if opts.Enabled(NormalizeWhitespace) || opts.Enabled(Ellipsis) {
		return "", false
	}
	if strings.Count(want, "\n") < minDiffableLines && strings.Count(got, "\n") < minDiffableLines {
		return "", false
	}
	a, b := difflib.SplitLines(want), difflib.SplitLines(got)
	switch {
	case opts.Enabled(ReportUDiff):
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A: a, B: b, FromFile: "expected", ToFile: "got", Context: diffContextLines,
		})
		if err != nil {
			return "", false
		}
		return "Differences (unified diff with -expected +actual):\n" + indent(text), true
	case opts.Enabled(ReportCDiff):
		text, err := difflib.GetContextDiffString(difflib.ContextDiff{
			A: a, B: b, FromFile: "expected", ToFile: "got", Context: diffContextLines,
		})
		if err != nil {
			return "", false
		}
		return "Differences (context diff with expected followed by actual):\n" + indent(text), true
	default:
		return "", false
	}
}

// StripBlanklineMarkers empties every line of s that holds only the
// <BLANKLINE> marker.
func StripBlanklineMarkers(s string) string {
	return blanklineRe.ReplaceAllString(s, "")
}

// ellipsisMatch reports whether got matches want where every "..." in want
// matches any (possibly empty) substring.
func ellipsisMatch(want, got string) bool {
	if !strings.Contains(want, EllipsisMarker) {
		return want == got
	}
	pieces := strings.Split(want, EllipsisMarker)
	first, last := pieces[0], pieces[len(pieces)-1]
	if !strings.HasPrefix(got, first) || !strings.HasSuffix(got, last) {
		return false
	}
	start, end := len(first), len(got)-len(last)
	if start > end {
		return false
	}
	for _, piece := range pieces[1 : len(pieces)-1] {
		i := strings.Index(got[start:end], piece)
		if i < 0 {
			return false
		}
		start += i + len(piece)
	}
	return true
}

func indent(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line == "" {
			continue
		}
		b.WriteString(reportIndentation)
		b.WriteString(line)
	}
	if !strings.HasSuffix(s, "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}
