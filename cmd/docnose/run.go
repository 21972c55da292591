// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/invowk/docnose/internal/collect"
	"github.com/invowk/docnose/internal/config"
	"github.com/invowk/docnose/internal/diagnostic"
	"github.com/invowk/docnose/internal/discovery"
	"github.com/invowk/docnose/internal/harness"
	"github.com/invowk/docnose/internal/issue"
)

// ErrExamplesFailed is returned by run when at least one case failed.
var ErrExamplesFailed = errors.New("examples failed")

type runFlagValues struct {
	filters  harness.RegexFilters
	watch    bool
	progress bool
	debug    bool
}

func newRunCommand(app *App) *cobra.Command {
	flags := &runFlagValues{}
	c := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run the examples of every documentation tree found under paths",
		Long: `Run the examples of every documentation tree found under paths.

A path that is itself a tree base is used directly; otherwise it is searched
recursively. With no paths the current directory is searched. Case IDs have
the form "document[group]/group:document:line" and can be selected with
--run and --skip.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctests(cmd, app, flags, args)
		},
	}
	f := c.Flags()
	f.Var(&flags.filters.MustMatch, "run", "run only cases whose ID matches this regex (repeatable)")
	f.Var(&flags.filters.MustNotMatch, "skip", "skip cases whose ID matches this regex (repeatable)")
	f.BoolVarP(&flags.watch, "watch", "w", false, "rerun when documents or configuration change")
	f.BoolVar(&flags.progress, "progress", false, "show a progress spinner while cases run")
	f.BoolVar(&flags.debug, "debug", false, "log every example and show full error chains")
	return c
}

func runDoctests(cmd *cobra.Command, app *App, flags *runFlagValues, args []string) error {
	ctx := cmd.Context()
	d := app.discovery(flags.debug)

	trees, err := locate(ctx, d, args)
	if err != nil {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.debug))
		return &ExitError{Code: 2, Err: err}
	}
	if desc := flags.filters.Describe(); desc != "" {
		fmt.Fprint(app.stdout, SubtitleStyle.Render(desc))
	}

	rerun := append([]string{"docnose", "run"}, args...)
	if flags.watch {
		if len(trees) != 1 {
			err := issue.NewErrorContext().
				WithOperation("watch documentation").
				WithResource(fmt.Sprintf("%d trees", len(trees))).
				WithSuggestion("Pass the base directory of a single tree to --watch").
				BuildError()
			fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.debug))
			return &ExitError{Code: 2, Err: err}
		}
		return app.watchTree(ctx, d, trees[0], flags, rerun)
	}

	failed := false
	for _, dirs := range trees {
		ok, _ := app.runTree(ctx, d, dirs, flags, rerun)
		failed = failed || !ok
	}
	if failed {
		return &ExitError{Code: 1, Err: ErrExamplesFailed}
	}
	return nil
}

// locate turns command line paths into accepted trees. Explicit tree bases
// win over searching below them.
func locate(ctx context.Context, d *discovery.Discovery, paths []string) ([]discovery.Dirs, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	var found []discovery.Dirs
	for _, p := range paths {
		if d.WantDirectory(p) {
			found = append(found, d.Dirs(p))
			continue
		}
		walked, err := d.Walk(ctx, p)
		if err != nil {
			return nil, issue.WrapWithContext(err, "search for documentation trees", p)
		}
		found = append(found, walked...)
	}
	found = uniqueTrees(found)
	if len(found) == 0 {
		return nil, issue.NewErrorContext().
			WithOperation("find documentation trees").
			WithResource(d.Dirs(paths[0]).DocRoot).
			WithSuggestions(
				"Create the doc dir and a build dir inside it, or pass --doc-dir and --build-dir",
				"Run 'docnose explain "+issue.Get(issue.DocRootNotFoundId).Name()+"' for details",
			).
			BuildError()
	}
	return found, nil
}

// uniqueTrees drops every tree whose doc root was already seen, keeping the
// command line order.
func uniqueTrees(trees []discovery.Dirs) []discovery.Dirs {
	seen := make(map[string]bool, len(trees))
	return slices.DeleteFunc(trees, func(d discovery.Dirs) bool {
		if seen[d.DocRoot] {
			return true
		}
		seen[d.DocRoot] = true
		return false
	})
}

// runTree loads one tree, runs it and writes its report. It returns whether
// every case passed, and the tree's configuration when it loaded.
func (a *App) runTree(ctx context.Context, d *discovery.Discovery, dirs discovery.Dirs, flags *runFlagValues, rerun []string) (bool, *config.Config) {
	fmt.Fprintf(a.stdout, "%s %s\n", TitleStyle.Render("docnose"), CmdStyle.Render(dirs.DocRoot))

	tree, err := d.Load(ctx, dirs)
	if err != nil {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.debug))
		return false, nil
	}
	defer tree.Close()
	printDiagnostics(a, tree.Diagnostics)

	loggers := harness.MultiLogger{&harness.ConsoleLogger{Out: a.stdout, Verbose: a.v.GetBool("verbose") || flags.debug}}
	var progress *harness.ProgressLogger
	if flags.progress {
		progress = harness.NewProgressLogger(a.stderr)
		loggers = append(loggers, progress)
	}
	h := harness.New(harness.WithFilter(flags.filters.AsFilter), harness.WithLogger(loggers))
	res := h.Run(ctx, tree.HarnessSuites())
	if progress != nil {
		progress.Finish()
	}

	report, err := harness.WriteReport(filepath.Join(dirs.BuildDir, collect.DoctestDir), res, rerun)
	if err != nil {
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+err.Error())
	}
	fmt.Fprintln(a.stdout, harness.Summary(res))
	if report != "" {
		fmt.Fprintf(a.stdout, "%s %s\n", SubtitleStyle.Render("report written to"), report)
	}
	if !res.OK() {
		fmt.Fprintln(a.stdout, SubtitleStyle.Render("Run 'docnose explain "+issue.Get(issue.ExamplesFailedId).Name()+"' for help reading failures"))
	}
	return res.OK(), tree.Config
}

func printDiagnostics(a *App, diags []diagnostic.Diagnostic) {
	for _, diag := range diags {
		style := WarningStyle
		if diag.Severity == diagnostic.SeverityError {
			style = ErrorStyle
		}
		fmt.Fprintln(a.stderr, style.Render(diag.String()))
	}
}
