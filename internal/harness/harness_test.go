// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"errors"
	"iter"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCase struct {
	id       string
	setUp    error
	run      error
	tearDown error
	panicIn  string
	calls    *[]string
	onRun    func()
}

func (c *fakeCase) ID() string { return c.id }

func (c *fakeCase) step(phase string, err error) error {
	*c.calls = append(*c.calls, c.id+":"+phase)
	if c.panicIn == phase {
		panic("boom in " + phase)
	}
	return err
}

func (c *fakeCase) SetUp(context.Context) error { return c.step("setup", c.setUp) }

func (c *fakeCase) Run(context.Context) error {
	if c.onRun != nil {
		c.onRun()
	}
	return c.step("run", c.run)
}

func (c *fakeCase) TearDown(context.Context) error { return c.step("teardown", c.tearDown) }

type fakeSuite struct {
	name  string
	cases []Case
}

func (s *fakeSuite) Name() string { return s.name }

func (s *fakeSuite) Cases() iter.Seq[Case] { return slices.Values(s.cases) }

type recordingLogger struct {
	events []string
}

func (l *recordingLogger) TestStarted(id TestID)          { l.events = append(l.events, "start "+id.Case) }
func (l *recordingLogger) TestError(id TestID, err error) { l.events = append(l.events, "error "+id.Case) }
func (l *recordingLogger) TestFinished(id TestID, failed bool, _ time.Duration) {
	if failed {
		l.events = append(l.events, "fail "+id.Case)
		return
	}
	l.events = append(l.events, "pass "+id.Case)
}
func (l *recordingLogger) TestSkipped(id TestID, _ string) { l.events = append(l.events, "skip "+id.Case) }

func TestHarness_RunsLifecycleInOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	suite := &fakeSuite{name: "guide.md[default]", cases: []Case{
		&fakeCase{id: "a", calls: &calls},
		&fakeCase{id: "b", calls: &calls, run: errors.New("mismatch")},
	}}
	logger := &recordingLogger{}

	res := New(WithLogger(logger)).Run(context.Background(), []Suite{suite})

	assert.Equal(t, []string{
		"a:setup", "a:run", "a:teardown",
		"b:setup", "b:run", "b:teardown",
	}, calls)
	assert.Equal(t, []string{"start a", "pass a", "start b", "error b", "fail b"}, logger.events)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, TestID{Suite: "guide.md[default]", Case: "b"}, res.Failures[0].TestID)
	assert.False(t, res.OK())
}

func TestHarness_SetUpFailureSkipsRunButTearsDown(t *testing.T) {
	t.Parallel()

	var calls []string
	setUpErr := errors.New("setup exploded")
	suite := &fakeSuite{name: "s", cases: []Case{&fakeCase{id: "a", calls: &calls, setUp: setUpErr}}}

	res := New().Run(context.Background(), []Suite{suite})

	assert.Equal(t, []string{"a:setup", "a:teardown"}, calls)
	require.Len(t, res.Failures, 1)
	require.Len(t, res.Failures[0].Errors, 1)
	assert.ErrorIs(t, res.Failures[0].Errors[0], setUpErr)
	assert.Contains(t, res.Failures[0].Errors[0].Error(), "setup: ")
}

func TestHarness_PanicsBecomeFailures(t *testing.T) {
	t.Parallel()

	for _, phase := range []string{"setup", "run", "teardown"} {
		t.Run(phase, func(t *testing.T) {
			t.Parallel()

			var calls []string
			suite := &fakeSuite{name: "s", cases: []Case{
				&fakeCase{id: "a", calls: &calls, panicIn: phase},
				&fakeCase{id: "b", calls: &calls},
			}}

			res := New().Run(context.Background(), []Suite{suite})

			assert.Contains(t, calls, "a:teardown")
			assert.Contains(t, calls, "b:run")
			require.Len(t, res.Failures, 1)
			assert.Contains(t, res.Failures[0].Errors[0].Error(), "unexpected panic: boom in "+phase)
		})
	}
}

func TestHarness_TearDownErrorIsReported(t *testing.T) {
	t.Parallel()

	var calls []string
	suite := &fakeSuite{name: "s", cases: []Case{&fakeCase{id: "a", calls: &calls, tearDown: errors.New("cleanup")}}}

	res := New().Run(context.Background(), []Suite{suite})

	require.Len(t, res.Failures, 1)
	assert.EqualError(t, res.Failures[0].Errors[0], "teardown: cleanup")
}

func TestHarness_Filter(t *testing.T) {
	t.Parallel()

	var calls []string
	suite := &fakeSuite{name: "s", cases: []Case{
		&fakeCase{id: "keep", calls: &calls},
		&fakeCase{id: "drop", calls: &calls},
	}}
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("keep$"))

	res := New(WithFilter(filters.AsFilter)).Run(context.Background(), []Suite{suite})

	assert.Equal(t, []string{"keep:setup", "keep:run", "keep:teardown"}, calls)
	passed, failed, skipped := res.Counts()
	assert.Equal(t, [3]int{1, 0, 1}, [3]int{passed, failed, skipped})
	assert.True(t, res.OK())
}

func TestHarness_CancellationStopsNewCases(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var calls []string
	suite := &fakeSuite{name: "s", cases: []Case{
		&fakeCase{id: "a", calls: &calls, onRun: cancel},
		&fakeCase{id: "b", calls: &calls},
	}}

	res := New().Run(ctx, []Suite{suite})

	assert.Equal(t, []string{"a:setup", "a:run", "a:teardown"}, calls)
	assert.True(t, res.Interrupted)
	assert.False(t, res.OK())
}

func TestHarness_Duration(t *testing.T) {
	t.Parallel()

	var calls []string
	h := New()
	tick := time.Unix(0, 0)
	h.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	res := h.Run(context.Background(), []Suite{&fakeSuite{name: "s", cases: []Case{&fakeCase{id: "a", calls: &calls}}}})

	require.Len(t, res.Tests, 1)
	assert.Equal(t, time.Second, res.Tests[0].Duration)
}
