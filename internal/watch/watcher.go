// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// alwaysIgnored never trigger a rerun: VCS metadata and editor droppings.
var alwaysIgnored = []string{
	"**/.git/**",
	"**/*.swp",
	"**/*.swo",
	"**/*~",
	"**/.#*",
	"**/.DS_Store",
}

// ErrAlreadyRunning is returned by a second call to Run.
var ErrAlreadyRunning = errors.New("watch: Run called more than once")

type (
	// Config selects what is watched.
	Config struct {
		// Root is the directory watched recursively.
		Root string
		// Patterns are doublestar globs, relative to Root, of files whose
		// changes trigger a rerun. Empty means every file.
		Patterns []string
		// Ignore are doublestar globs, relative to Root, that never trigger.
		Ignore   []string
		Debounce time.Duration
		// OnChange receives the sorted, deduplicated changed paths relative
		// to Root. Its error is logged and watching continues.
		OnChange func(ctx context.Context, changed []string) error
		Logger   *slog.Logger
	}

	// Watcher reruns Config.OnChange on matching changes.
	Watcher struct {
		cfg     Config
		root    string
		ignore  []string
		fsw     *fsnotify.Watcher
		logger  *slog.Logger
		started bool
	}
)

// PatternsForSuffixes returns "**/*<suffix>" for every suffix plus the
// given extra file names, which match at any depth.
func PatternsForSuffixes(suffixes []string, extra ...string) []string {
	out := make([]string, 0, len(suffixes)+len(extra))
	for _, s := range suffixes {
		out = append(out, "**/*"+s)
	}
	for _, name := range extra {
		out = append(out, "**/"+name)
	}
	return out
}

// New validates cfg and registers every directory below Root.
func New(cfg Config) (*Watcher, error) {
	root := cfg.Root
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("watch: resolve root: %w", err)
	}
	for _, p := range slices.Concat(cfg.Patterns, cfg.Ignore) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("watch: invalid pattern %q: %w", p, doublestar.ErrBadPattern)
		}
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = defaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: create watcher: %w", err)
	}
	w := &Watcher{
		cfg:    cfg,
		root:   root,
		ignore: slices.Concat(alwaysIgnored, cfg.Ignore),
		fsw:    fsw,
		logger: logger,
	}
	if err := w.addTree(root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks until ctx is cancelled or the watcher breaks. Cancellation is
// a clean exit and returns nil.
func (w *Watcher) Run(ctx context.Context) error {
	if w.started {
		return ErrAlreadyRunning
	}
	w.started = true
	defer func() { _ = w.fsw.Close() }()

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.cfg.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case evt, ok := <-w.fsw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			rel, ok := w.relevant(evt)
			if !ok {
				continue
			}
			pending[rel] = struct{}{}
			timer.Reset(w.cfg.Debounce)

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := slices.Sorted(maps.Keys(pending))
			clear(pending)
			w.logger.Debug("documents changed", "paths", changed)
			if w.cfg.OnChange == nil {
				continue
			}
			if err := w.cfg.OnChange(ctx, changed); err != nil {
				w.logger.Warn("rerun failed", "error", err)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			if isFatalFsnotifyError(err) {
				return fmt.Errorf("watch: %w", err)
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// relevant filters an event, registering new directories on the way.
func (w *Watcher) relevant(evt fsnotify.Event) (string, bool) {
	rel, err := filepath.Rel(w.root, evt.Name)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return "", false
	}
	if evt.Has(fsnotify.Create) {
		if info, statErr := os.Stat(evt.Name); statErr == nil && info.IsDir() {
			if addErr := w.addTree(evt.Name); addErr != nil {
				w.logger.Warn("cannot watch new directory", "path", evt.Name, "error", addErr)
			}
			return "", false
		}
	}
	if evt.Op == fsnotify.Chmod {
		return "", false
	}
	return rel, w.matches(rel)
}

// addTree registers dir and every non-ignored directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Debug("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, relErr := filepath.Rel(w.root, path); relErr == nil && rel != "." {
			rel = filepath.ToSlash(rel)
			if w.ignored(rel) || w.ignored(rel+"/") {
				return filepath.SkipDir
			}
		}
		if err := w.fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(rel string) bool {
	return matchAny(w.ignore, rel)
}

func (w *Watcher) matches(rel string) bool {
	return len(w.cfg.Patterns) == 0 || matchAny(w.cfg.Patterns, rel)
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
