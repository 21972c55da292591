// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"runtime/debug"
	"time"
)

// ErrSkipped is reported for cases excluded by a filter.
var ErrSkipped = errors.New("excluded by filter parameters")

type (
	// Case is one independently reported test.
	Case interface {
		ID() string
		SetUp(ctx context.Context) error
		Run(ctx context.Context) error
		TearDown(ctx context.Context) error
	}

	// Suite is an ordered, lazily enumerated collection of cases.
	Suite interface {
		Name() string
		Cases() iter.Seq[Case]
	}

	// Harness runs suites sequentially.
	Harness struct {
		filter Filter
		logger TestLogger
		now    func() time.Time
	}

	// Option configures a Harness.
	Option func(*Harness)
)

// WithFilter restricts which cases run. Excluded cases are reported as skipped.
func WithFilter(f Filter) Option {
	return func(h *Harness) { h.filter = f }
}

// WithLogger sets the TestLogger that receives progress events.
func WithLogger(l TestLogger) Option {
	return func(h *Harness) { h.logger = l }
}

// New returns a harness.
func New(opts ...Option) *Harness {
	h := &Harness{logger: NullLogger{}, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes every case of every suite in order. Once ctx is cancelled no
// further case is started; the case already running still tears down.
func (h *Harness) Run(ctx context.Context, suites []Suite) Results {
	var results Results
	for _, s := range suites {
		for c := range s.Cases() {
			if ctx.Err() != nil {
				results.Interrupted = true
				return results
			}
			results.add(h.runCase(ctx, TestID{Suite: s.Name(), Case: c.ID()}, c))
		}
	}
	return results
}

func (h *Harness) runCase(ctx context.Context, id TestID, c Case) TestResult {
	h.logger.TestStarted(id)
	if h.filter != nil && !h.filter(id) {
		h.logger.TestSkipped(id, ErrSkipped.Error())
		return TestResult{TestID: id, Skipped: true}
	}

	start := h.now()
	var errs []error
	fail := func(phase string, err error) {
		if err == nil {
			return
		}
		err = &PhaseError{Phase: phase, Err: err}
		errs = append(errs, err)
		h.logger.TestError(id, err)
	}

	setUpErr := safely(func() error { return c.SetUp(ctx) })
	fail("setup", setUpErr)
	if setUpErr == nil {
		fail("run", safely(func() error { return c.Run(ctx) }))
	}
	fail("teardown", safely(func() error { return c.TearDown(ctx) }))

	res := TestResult{TestID: id, Errors: errs, Duration: h.now().Sub(start)}
	h.logger.TestFinished(id, res.Failed(), res.Duration)
	return res
}

// safely calls fn, turning a panic into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn()
}

// PhaseError is a failure in one phase of a case's lifecycle.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	if e.Phase == "run" {
		return e.Err.Error()
	}
	return e.Phase + ": " + e.Err.Error()
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}
