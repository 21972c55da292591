// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressLogger shows a spinner counting finished cases. It is meant to be
// combined with other loggers through MultiLogger.
type ProgressLogger struct {
	bar *progressbar.ProgressBar
}

// NewProgressLogger draws on w. The total is unknown up front because suites
// enumerate their cases lazily.
func NewProgressLogger(w io.Writer) *ProgressLogger {
	return &ProgressLogger{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("running examples"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)}
}

func (p *ProgressLogger) TestStarted(id TestID) {
	p.bar.Describe(id.Case)
}

func (p *ProgressLogger) TestError(TestID, error) {}

func (p *ProgressLogger) TestFinished(TestID, bool, time.Duration) {
	_ = p.bar.Add(1)
}

func (p *ProgressLogger) TestSkipped(TestID, string) {
	_ = p.bar.Add(1)
}

// Finish clears the spinner.
func (p *ProgressLogger) Finish() {
	_ = p.bar.Finish()
}
