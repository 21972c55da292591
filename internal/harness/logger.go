// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type (
	// TestLogger receives case lifecycle events.
	TestLogger interface {
		TestStarted(id TestID)
		TestError(id TestID, err error)
		TestFinished(id TestID, failed bool, elapsed time.Duration)
		TestSkipped(id TestID, reason string)
	}

	NullLogger struct{}

	// MultiLogger fans events out to several loggers.
	MultiLogger []TestLogger

	// ConsoleLogger prints results as they happen.
	ConsoleLogger struct {
		Out io.Writer
		// Verbose prints passing and skipped cases too.
		Verbose bool
	}
)

var (
	passStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	failStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	skipStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	idStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B82F6"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

func (NullLogger) TestStarted(TestID)                       {}
func (NullLogger) TestError(TestID, error)                  {}
func (NullLogger) TestFinished(TestID, bool, time.Duration) {}
func (NullLogger) TestSkipped(TestID, string)               {}

func (m MultiLogger) TestStarted(id TestID) {
	for _, l := range m {
		l.TestStarted(id)
	}
}

func (m MultiLogger) TestError(id TestID, err error) {
	for _, l := range m {
		l.TestError(id, err)
	}
}

func (m MultiLogger) TestFinished(id TestID, failed bool, elapsed time.Duration) {
	for _, l := range m {
		l.TestFinished(id, failed, elapsed)
	}
}

func (m MultiLogger) TestSkipped(id TestID, reason string) {
	for _, l := range m {
		l.TestSkipped(id, reason)
	}
}

func (c *ConsoleLogger) TestStarted(TestID) {}

func (c *ConsoleLogger) TestError(id TestID, err error) {
	fmt.Fprintf(c.Out, "%s %s\n", failStyle.Render("ERROR"), idStyle.Render(id.String()))
	for line := range strings.SplitSeq(strings.TrimRight(err.Error(), "\n"), "\n") {
		fmt.Fprintf(c.Out, "    %s\n", errorStyle.Render(line))
	}
}

func (c *ConsoleLogger) TestFinished(id TestID, failed bool, elapsed time.Duration) {
	switch {
	case failed:
		fmt.Fprintf(c.Out, "%s %s\n", failStyle.Render("FAIL"), idStyle.Render(id.String()))
	case c.Verbose:
		fmt.Fprintf(c.Out, "%s %s (%s)\n", passStyle.Render("PASS"), id, elapsed.Round(time.Millisecond))
	}
}

func (c *ConsoleLogger) TestSkipped(id TestID, reason string) {
	if !c.Verbose {
		return
	}
	if reason == "" {
		fmt.Fprintf(c.Out, "%s %s\n", skipStyle.Render("SKIP"), id)
		return
	}
	fmt.Fprintf(c.Out, "%s %s (%s)\n", skipStyle.Render("SKIP"), id, reason)
}

// Summary renders the one-line totals printed at the end of a run.
func Summary(r Results) string {
	passed, failed, skipped := r.Counts()
	parts := []string{passStyle.Render(fmt.Sprintf("%d passed", passed))}
	if failed > 0 {
		parts = append(parts, failStyle.Render(fmt.Sprintf("%d failed", failed)))
	}
	if skipped > 0 {
		parts = append(parts, skipStyle.Render(fmt.Sprintf("%d skipped", skipped)))
	}
	if r.Interrupted {
		parts = append(parts, failStyle.Render("interrupted"))
	}
	return strings.Join(parts, ", ")
}
