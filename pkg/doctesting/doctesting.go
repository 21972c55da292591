// SPDX-License-Identifier: MPL-2.0

// Package doctesting runs a documentation tree's examples from go test.
//
//	func TestDocs(t *testing.T) {
//		doctesting.Run(t, "..")
//	}
//
// Every suite becomes a subtest, and every case a subtest of its suite, so
// -run selects cases the same way docnose run --run does.
package doctesting

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/invowk/docnose/internal/discovery"
	"github.com/invowk/docnose/internal/harness"
)

type (
	// Dirs locate the tree relative to the base directory passed to Run.
	// Empty fields keep docnose's defaults: "docs" for DocDir, the doc root
	// for ConfDir and "_build" inside the doc root for BuildDir.
	Dirs struct {
		DocDir   string
		ConfDir  string
		BuildDir string
	}

	// Option configures Run.
	Option func(*settings)

	settings struct {
		dirs    discovery.Options
		environ []string
		level   slog.Level
	}
)

// WithDirs overrides where the tree lives relative to the base directory.
func WithDirs(dirs Dirs) Option {
	return func(s *settings) {
		s.dirs = discovery.Options{DocDir: dirs.DocDir, ConfDir: dirs.ConfDir, BuildDir: dirs.BuildDir}
	}
}

// WithEnviron sets the environment examples start from. Defaults to
// os.Environ().
func WithEnviron(env []string) Option {
	return func(s *settings) { s.environ = env }
}

// WithLogLevel sets the level of collector and runner logs written to the
// test output. Defaults to warnings.
func WithLogLevel(level slog.Level) Option {
	return func(s *settings) { s.level = level }
}

// Run loads the tree under base and runs it. A base that holds no tree
// skips the test.
func Run(t *testing.T, base string, opts ...Option) {
	t.Helper()
	s := settings{level: slog.LevelWarn}
	for _, o := range opts {
		o(&s)
	}
	if s.environ == nil {
		s.environ = os.Environ()
	}

	logger := slog.New(slog.NewTextHandler(t.Output(), &slog.HandlerOptions{Level: s.level}))
	d := discovery.New(s.dirs, discovery.WithEnviron(s.environ), discovery.WithLogger(logger))
	dirs := d.Dirs(base)
	if !dirs.Accept() {
		t.Skipf("no documentation tree under %s", base)
	}

	ctx := context.Background()
	tree, err := d.Load(ctx, dirs)
	if err != nil {
		t.Fatalf("loading %s: %v", dirs.DocRoot, err)
	}
	t.Cleanup(tree.Close)
	for _, diag := range tree.Diagnostics {
		t.Log(diag.String())
	}

	for _, suite := range tree.HarnessSuites() {
		t.Run(suite.Name(), func(t *testing.T) {
			for c := range suite.Cases() {
				t.Run(c.ID(), func(t *testing.T) {
					runCase(ctx, t, c)
				})
			}
		})
	}
}

// runCase mirrors the harness lifecycle: run only after a successful setup,
// always tear down.
func runCase(ctx context.Context, t *testing.T, c harness.Case) {
	t.Helper()
	defer func() {
		if err := c.TearDown(ctx); err != nil {
			t.Errorf("teardown: %v", err)
		}
	}()
	if err := c.SetUp(ctx); err != nil {
		t.Errorf("setup: %v", err)
		return
	}
	if err := c.Run(ctx); err != nil {
		t.Error(err)
	}
}
