// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// FailureMismatch means the example ran but printed the wrong output.
	FailureMismatch FailureKind = iota
	// FailureUnexpectedException means the example raised when it should not have.
	FailureUnexpectedException
	// FailureWrongException means the example raised something other than expected.
	FailureWrongException
)

type (
	// DocTest is an ordered list of examples sharing one namespace.
	DocTest struct {
		// Name identifies the test in reports.
		Name string
		// Filename is the document the examples came from.
		Filename string
		// Line is the 1-based line of the first example.
		Line     int
		Examples []*Example
		// Globs is the namespace examples run in. A nil Globs gets a fresh
		// namespace on first run.
		Globs *Namespace
	}

	// FailureKind classifies a failed example.
	FailureKind int

	// Failure records one example that did not behave as documented.
	Failure struct {
		Kind    FailureKind
		Example *Example
		// Got is everything the example printed.
		Got string
		// Raised is set when the example raised.
		Raised *RaisedError
		// Report is a human readable explanation.
		Report string
	}

	// Result summarizes running one DocTest.
	Result struct {
		Attempted int
		Skipped   int
		Failures  []*Failure
	}

	// Runner executes DocTests. A Runner is not safe for concurrent use.
	Runner struct {
		compiler Compiler
		executor *Executor
		checker  *OutputChecker
		logger   *slog.Logger
	}

	// RunnerOption configures a Runner.
	RunnerOption func(*Runner)
)

// WithCompiler sets the initial compiler.
func WithCompiler(c Compiler) RunnerOption {
	return func(r *Runner) { r.compiler = c }
}

// WithExecutor sets the executor examples run with.
func WithExecutor(e *Executor) RunnerOption {
	return func(r *Runner) { r.executor = e }
}

// WithLogger sets the logger used for per-example debug output.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = l }
}

// NewRunner returns a runner using the Bash compiler and an executor rooted
// at the current directory, unless overridden by options.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		compiler: NewShellCompiler(),
		executor: &Executor{},
		checker:  &OutputChecker{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compiler returns the compiler currently in use.
func (r *Runner) Compiler() Compiler {
	return r.compiler
}

// SetCompiler replaces the compiler every subsequent example is compiled with.
func (r *Runner) SetCompiler(c Compiler) {
	r.compiler = c
}

// Executor returns the executor examples run with.
func (r *Runner) Executor() *Executor {
	return r.executor
}

// Checker returns the output checker.
func (r *Runner) Checker() *OutputChecker {
	return r.checker
}

// Run executes the examples of test in order. Examples are compiled in
// interactive mode unless the installed Compiler decides otherwise.
//
// Example failures are reported in the Result; the error is non-nil only
// when ctx was cancelled.
func (r *Runner) Run(ctx context.Context, test *DocTest) (*Result, error) {
	if test.Globs == nil {
		test.Globs = NewNamespace()
	}
	res := &Result{}
	for i, ex := range test.Examples {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		opts := ex.Options
		if opts.Enabled(Skip) {
			res.Skipped++
			continue
		}
		res.Attempted++

		failure, err := r.runExample(ctx, test, i, ex, opts)
		if err != nil {
			return res, err
		}
		if failure == nil {
			continue
		}
		if !opts.Enabled(ReportOnlyFirstFailure) || len(res.Failures) == 0 {
			res.Failures = append(res.Failures, failure)
		}
		if opts.Enabled(FailFast) {
			break
		}
	}
	return res, nil
}

func (r *Runner) runExample(ctx context.Context, test *DocTest, i int, ex *Example, opts OptionFlags) (*Failure, error) {
	name := fmt.Sprintf("<doctest %s[%d]>", test.Name, i)
	var out bytes.Buffer

	prog, err := r.compiler.Compile(ex.Source, name, ModeInteractive)
	if err == nil {
		r.logger.Debug("running example", "test", test.Name, "line", ex.Line, "mode", prog.Mode.String())
		err = r.executor.Exec(ctx, prog, test.Globs, &out)
	}
	got := out.String()

	var raised *RaisedError
	switch {
	case err == nil:
	case errors.As(err, &raised):
	case ctx.Err() != nil:
		return nil, err
	default:
		raised = &RaisedError{Kind: KindRuntimeError, Message: err.Error(), Err: err}
	}

	switch {
	case raised == nil:
		if r.checker.CheckOutput(ex.Want, got, opts) {
			return nil, nil
		}
		return &Failure{
			Kind: FailureMismatch, Example: ex, Got: got,
			Report: r.checker.OutputDifference(ex, got, opts),
		}, nil
	case ex.Exception == nil:
		return &Failure{
			Kind: FailureUnexpectedException, Example: ex, Got: got, Raised: raised,
			Report: "Exception raised:\n" + indent(raised.Error()),
		}, nil
	case r.checker.CheckException(ex.Exception, raised, opts):
		return nil, nil
	default:
		return &Failure{
			Kind: FailureWrongException, Example: ex, Got: got, Raised: raised,
			Report: fmt.Sprintf("Expected exception:\n%sGot exception:\n%s",
				indent(ex.Exception.String()), indent(raised.Error())),
		}, nil
	}
}

// Failed reports whether any example failed.
func (res *Result) Failed() bool {
	return len(res.Failures) > 0
}

// Err folds the failures into a single error, or nil when every example passed.
func (res *Result) Err(test *DocTest) error {
	if !res.Failed() {
		return nil
	}
	var b strings.Builder
	for _, f := range res.Failures {
		b.WriteString(f.Format(test))
	}
	return &TestFailedError{Name: test.Name, Failures: len(res.Failures), Details: b.String()}
}

// Format renders the failure the way a doctest report does.
func (f *Failure) Format(test *DocTest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File %q, line %d, in %s\n", test.Filename, f.Example.Line, test.Name)
	fmt.Fprintf(&b, "Failed example:\n%s", indent(f.Example.Source))
	b.WriteString(f.Report)
	return b.String()
}

// TestFailedError reports a DocTest with at least one failing example.
type TestFailedError struct {
	Name     string
	Failures int
	Details  string
}

func (e *TestFailedError) Error() string {
	return fmt.Sprintf("%s: %d example(s) failed\n%s", e.Name, e.Failures, e.Details)
}
