// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"
)

// ReportFile is the summary written into the build directory's doctest dir.
const ReportFile = "output.txt"

// RerunCommand returns a shell command line that reruns only the given case.
// args is the command prefix, e.g. ["docnose", "run", "docs"].
func RerunCommand(args []string, id TestID) string {
	var b commandBuilder
	b.add(args...)
	b.add("--run", "^"+regexp.QuoteMeta(id.String())+"$")
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}

// FormatReport renders results as plain text: totals, then every failure
// with its errors and a rerun command.
func FormatReport(r Results, rerun []string) string {
	passed, failed, skipped := r.Counts()
	var b strings.Builder
	fmt.Fprintf(&b, "Results of doctest builder run\n")
	fmt.Fprintf(&b, "==============================\n\n")
	fmt.Fprintf(&b, "%d passed, %d failed, %d skipped\n", passed, failed, skipped)
	if r.Interrupted {
		b.WriteString("run interrupted before all cases finished\n")
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "\n%s\n%s\n", f.TestID, strings.Repeat("-", len(f.TestID.String())))
		for _, err := range f.Errors {
			b.WriteString(strings.TrimRight(err.Error(), "\n"))
			b.WriteString("\n")
		}
		if len(rerun) > 0 {
			fmt.Fprintf(&b, "rerun: %s\n", RerunCommand(rerun, f.TestID))
		}
	}
	return b.String()
}

// WriteReport writes FormatReport's output to dir/output.txt.
func WriteReport(dir string, r Results, rerun []string) (string, error) {
	path := filepath.Join(dir, ReportFile)
	if err := os.WriteFile(path, []byte(FormatReport(r, rerun)), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
