// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"time"
)

type (
	// TestID names a case within its suite.
	TestID struct {
		Suite string
		Case  string
	}

	TestResult struct {
		TestID   TestID
		Errors   []error
		Skipped  bool
		Duration time.Duration
	}

	// Results accumulates the outcome of a run.
	Results struct {
		Tests    []TestResult
		Failures []TestResult
		// Interrupted is set when the run stopped early on cancellation.
		Interrupted bool
	}
)

func (t TestID) String() string {
	return t.Suite + "/" + t.Case
}

// Failed reports whether the case recorded any error.
func (r TestResult) Failed() bool {
	return len(r.Errors) > 0
}

// OK reports whether the run finished with no failures.
func (r Results) OK() bool {
	return len(r.Failures) == 0 && !r.Interrupted
}

// Counts returns the number of passed, failed and skipped cases.
func (r Results) Counts() (passed, failed, skipped int) {
	for _, t := range r.Tests {
		switch {
		case t.Skipped:
			skipped++
		case t.Failed():
			failed++
		default:
			passed++
		}
	}
	return passed, failed, skipped
}

func (r *Results) add(t TestResult) {
	r.Tests = append(r.Tests, t)
	if t.Failed() {
		r.Failures = append(r.Failures, t)
	}
}
