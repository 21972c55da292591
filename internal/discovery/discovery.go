// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"cmp"
	"context"
	"log/slog"
	"os"
	"slices"

	"github.com/invowk/docnose/internal/adapter"
	"github.com/invowk/docnose/internal/collect"
	"github.com/invowk/docnose/internal/config"
	"github.com/invowk/docnose/internal/diagnostic"
	"github.com/invowk/docnose/internal/issue"
	"github.com/invowk/docnose/internal/session"
	"github.com/invowk/docnose/pkg/doctest"
)

type (
	// Discovery loads documentation trees.
	Discovery struct {
		opts    Options
		environ []string
		logger  *slog.Logger
	}

	// Option configures a Discovery.
	Option func(*Discovery)

	// Tree is a loaded documentation tree. Its suites run through a session
	// that must be closed once the host is done with them.
	Tree struct {
		Dirs        Dirs
		Config      *config.Config
		Suites      []*Suite
		Diagnostics []diagnostic.Diagnostic
		session     *session.Session
	}
)

// WithEnviron sets the environment every example starts from, beneath the
// tree's env file. Defaults to os.Environ().
func WithEnviron(env []string) Option {
	return func(d *Discovery) { d.environ = env }
}

// WithLogger sets the logger passed down to the collector and runner.
func WithLogger(l *slog.Logger) Option {
	return func(d *Discovery) { d.logger = l }
}

// New creates a Discovery locating trees with opts.
func New(opts Options, options ...Option) *Discovery {
	d := &Discovery{opts: opts, logger: slog.Default()}
	for _, o := range options {
		o(d)
	}
	if d.environ == nil {
		d.environ = os.Environ()
	}
	return d
}

// Dirs resolves the tree under base.
func (d *Discovery) Dirs(base string) Dirs {
	return d.opts.Resolve(base)
}

// WantDirectory reports whether base holds an accepted tree.
func (d *Discovery) WantDirectory(base string) bool {
	return d.Dirs(base).Accept()
}

// Walk finds every accepted tree below root.
func (d *Discovery) Walk(ctx context.Context, root string) ([]Dirs, error) {
	return Walk(ctx, root, d.opts)
}

// Load prepares dirs' build directory, reads its configuration and builds
// one suite per (document, group). Collection and adaptation problems are
// returned as diagnostics; only an unusable build directory, configuration
// or doc root is an error.
func (d *Discovery) Load(ctx context.Context, dirs Dirs) (*Tree, error) {
	if err := collect.MakeBuildDirs(dirs.BuildDir); err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("prepare build directory").
			WithResource(dirs.BuildDir).
			WithSuggestion("Run 'docnose explain build-dir-unwritable'").
			Wrap(err).
			BuildError()
	}

	cfg, err := config.Load(ctx, dirs.ConfDir)
	if err != nil {
		return nil, err
	}
	flags, err := cfg.Flags()
	if err != nil {
		return nil, err
	}

	collector, err := collect.New(collect.Options{
		DocRoot:        dirs.DocRoot,
		BuildDir:       dirs.BuildDir,
		SourceSuffixes: cfg.Suffixes(),
		Exclude:        cfg.Exclude,
		DefaultGroup:   cfg.DefaultGroup,
		GlobalSetup:    cfg.GlobalSetup,
		GlobalCleanup:  cfg.GlobalCleanup,
		Logger:         d.logger,
	})
	if err != nil {
		return nil, err
	}
	collected, err := collector.Collect(ctx)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("collect documents").
			WithResource(dirs.DocRoot).
			Wrap(err).
			BuildError()
	}

	runner := doctest.NewRunner(
		doctest.WithCompiler(cfg.Compiler()),
		doctest.WithExecutor(doctest.NewExecutor(dirs.DocRoot, slices.Concat(d.environ, cfg.Env)...)),
		doctest.WithLogger(d.logger),
	)
	sess := session.Open(runner)
	manager := session.NewManager(sess, d.logger)
	adapt := adapter.New(flags)

	tree := &Tree{
		Dirs:        dirs,
		Config:      cfg,
		Diagnostics: collected.Diagnostics,
		session:     sess,
	}
	for _, doc := range collected.Documents {
		for _, g := range doc.Groups {
			res := adapt.Adapt(doc.Name, g)
			tree.Diagnostics = append(tree.Diagnostics, res.Skipped...)
			if len(res.Cases) == 0 {
				continue
			}
			tree.Suites = append(tree.Suites, &Suite{
				Document: doc.Name,
				Group:    g,
				cases:    res.Cases,
				manager:  manager,
			})
		}
	}
	// Cases run in (group, document, line) order.
	slices.SortStableFunc(tree.Suites, func(a, b *Suite) int {
		return cmp.Or(cmp.Compare(a.Group.Name, b.Group.Name), cmp.Compare(a.Document, b.Document))
	})
	d.logger.Debug("loaded documentation tree",
		"doc_root", dirs.DocRoot, "documents", len(collected.Documents),
		"suites", len(tree.Suites), "diagnostics", len(tree.Diagnostics))
	return tree, nil
}

// Close restores the runner's original compiler. It is safe to call more
// than once.
func (t *Tree) Close() {
	t.session.Close()
}

// CaseCount returns the number of cases across all suites.
func (t *Tree) CaseCount() int {
	n := 0
	for _, s := range t.Suites {
		n += len(s.cases)
	}
	return n
}
