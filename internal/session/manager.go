// SPDX-License-Identifier: MPL-2.0

package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/invowk/docnose/internal/adapter"
	"github.com/invowk/docnose/internal/collect"
	"github.com/invowk/docnose/pkg/doctest"
)

const (
	phaseSetup   = "setup"
	phaseCleanup = "cleanup"
)

type (
	// Manager owns the shared namespace of every group seen during one run.
	// It is not safe for concurrent use; cases must run one at a time.
	Manager struct {
		session    *Session
		namespaces map[*collect.Group]*doctest.Namespace
		logger     *slog.Logger
	}

	// GroupCase is a case wrapped with its group's setup and cleanup.
	GroupCase struct {
		Case    adapter.Case
		manager *Manager
		live    *doctest.Namespace
		test    *doctest.DocTestCase
	}

	// SnippetError reports a setup or cleanup snippet that raised.
	SnippetError struct {
		Phase   string
		Snippet collect.Snippet
		Output  string
		Err     error
	}
)

// NewManager returns a manager running cases through s.
func NewManager(s *Session, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		session:    s,
		namespaces: make(map[*collect.Group]*doctest.Namespace),
		logger:     logger,
	}
}

func (e *SnippetError) Error() string {
	loc := e.Snippet.Filename
	if e.Snippet.Line > 0 {
		loc = fmt.Sprintf("%s:%d", loc, e.Snippet.Line)
	}
	msg := fmt.Sprintf("%s snippet at %s failed: %v", e.Phase, loc, e.Err)
	if e.Output != "" {
		msg += "\noutput:\n" + e.Output
	}
	return msg
}

func (e *SnippetError) Unwrap() error {
	return e.Err
}

// Namespace returns the shared namespace of g, creating it on first use.
// The namespace is persistent: Clear on it has no effect.
func (m *Manager) Namespace(g *collect.Group) *doctest.Namespace {
	ns, ok := m.namespaces[g]
	if !ok {
		ns = doctest.NewPersistentNamespace()
		m.namespaces[g] = ns
	}
	return ns
}

// Wrap returns the host-facing form of c.
func (m *Manager) Wrap(c adapter.Case) *GroupCase {
	gc := &GroupCase{Case: c, manager: m}
	gc.test = &doctest.DocTestCase{
		Test: &doctest.DocTest{
			Name:     c.ID.String(),
			Filename: c.Filename,
			Line:     c.ID.Line,
			Examples: c.Examples,
		},
		Runner:    m.session.Runner(),
		SetUpFunc: gc.runSetup,
	}
	return gc
}

// ID returns "group:document:line".
func (gc *GroupCase) ID() string {
	return gc.Case.ID.String()
}

// SetUp copies the group namespace into a fresh live namespace and runs the
// group's setup snippets in it.
func (gc *GroupCase) SetUp(ctx context.Context) error {
	gc.live = gc.manager.Namespace(gc.Case.Group).Clone()
	gc.test.Test.Globs = gc.live
	return gc.test.SetUp(ctx)
}

// Run executes the case's examples in the case's compile mode.
func (gc *GroupCase) Run(ctx context.Context) error {
	gc.manager.session.Switch().Set(gc.Case.Mode)
	return gc.test.Run(ctx)
}

// TearDown runs the group's cleanup snippets and copies the live namespace
// back into the group namespace. The copy happens even when cleanup fails or
// ctx is already cancelled. The namespace is never cleared.
func (gc *GroupCase) TearDown(ctx context.Context) error {
	if gc.live == nil {
		return nil
	}
	ctx = context.WithoutCancel(ctx)
	err := gc.runSnippets(ctx, phaseCleanup, gc.Case.Group.Cleanup)
	gc.manager.Namespace(gc.Case.Group).CopyFrom(gc.live)
	gc.live = nil
	return err
}

func (gc *GroupCase) runSetup(ctx context.Context, _ *doctest.DocTest) error {
	return gc.runSnippets(ctx, phaseSetup, gc.Case.Group.Setup)
}

// runSnippets runs snippets in order in module mode. Setup stops at the first
// failure; cleanup runs every snippet and joins the failures.
func (gc *GroupCase) runSnippets(ctx context.Context, phase string, snippets []collect.Snippet) error {
	runner := gc.manager.session.Runner()
	var errs []error
	for i, snippet := range snippets {
		name := fmt.Sprintf("<%s %s:%s[%d]>", phase, gc.Case.ID.Document, gc.Case.Group.Name, i)
		gc.manager.session.Switch().Set(doctest.ModeModule)

		var out bytes.Buffer
		prog, err := runner.Compiler().Compile(snippet.Code, name, doctest.ModeModule)
		if err == nil {
			err = runner.Executor().Exec(ctx, prog, gc.live, &out)
		}
		if err == nil {
			continue
		}

		serr := &SnippetError{Phase: phase, Snippet: snippet, Output: out.String(), Err: err}
		gc.manager.logger.Debug("snippet failed", "phase", phase, "case", gc.ID(), "error", err)
		if phase == phaseSetup {
			return serr
		}
		errs = append(errs, serr)
	}
	return errors.Join(errs...)
}
