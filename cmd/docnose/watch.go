// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/invowk/docnose/internal/config"
	"github.com/invowk/docnose/internal/discovery"
	"github.com/invowk/docnose/internal/issue"
	"github.com/invowk/docnose/internal/watch"
)

// watchTree runs the tree once, then again whenever a document, conf.cue or
// the env file changes. It returns when ctx is cancelled.
func (a *App) watchTree(ctx context.Context, d *discovery.Discovery, dirs discovery.Dirs, flags *runFlagValues, rerun []string) error {
	_, cfg := a.runTree(ctx, d, dirs, flags, rerun)
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	w, err := watch.New(watchConfig(dirs, cfg, a.logger(flags.debug), func(ctx context.Context, changed []string) error {
		fmt.Fprintf(a.stdout, "\n%s %d change(s): %s\n", CmdStyle.Render("→"), len(changed), strings.Join(changed, ", "))
		a.runTree(ctx, d, dirs, flags, rerun)
		fmt.Fprintf(a.stdout, "\n%s Watching for changes...\n", CmdStyle.Render("→"))
		return nil
	}))
	if err != nil {
		err = issue.NewErrorContext().
			WithOperation("watch documentation").
			WithResource(dirs.DocRoot).
			WithSuggestion("Run 'docnose explain " + issue.Get(issue.WatchFailedId).Name() + "'").
			Wrap(err).
			BuildError()
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.debug))
		return &ExitError{Code: 2, Err: err}
	}
	fmt.Fprintf(a.stdout, "\n%s Watching %s for changes (Ctrl+C to stop)...\n", CmdStyle.Render("→"), dirs.DocRoot)
	if err := w.Run(ctx); err != nil {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+err.Error())
		return &ExitError{Code: 2, Err: err}
	}
	return nil
}

// watchConfig watches the doc root for the configured document suffixes
// plus the tree's config files, ignoring the build directory.
func watchConfig(dirs discovery.Dirs, cfg *config.Config, logger *slog.Logger, onChange func(context.Context, []string) error) watch.Config {
	envFile := cfg.EnvFile
	if envFile == "" {
		envFile = config.DefaultEnvFile
	}
	wc := watch.Config{
		Root:     dirs.DocRoot,
		Patterns: watch.PatternsForSuffixes(cfg.Suffixes(), config.FileName, filepath.Base(envFile)),
		Ignore:   cfg.Exclude,
		OnChange: onChange,
		Logger:   logger,
	}
	if rel, err := filepath.Rel(dirs.DocRoot, dirs.BuildDir); err == nil && !strings.HasPrefix(rel, "..") {
		rel = filepath.ToSlash(rel)
		wc.Ignore = append([]string{rel, rel + "/**"}, wc.Ignore...)
	}
	return wc
}
