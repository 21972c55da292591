// SPDX-License-Identifier: MPL-2.0

package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/invowk/docnose/internal/testutil"
)

func TestPatternsForSuffixes(t *testing.T) {
	t.Parallel()

	got := PatternsForSuffixes([]string{".md", ".markdown"}, "conf.cue")
	want := []string{"**/*.md", "**/*.markdown", "**/conf.cue"}
	if !slices.Equal(got, want) {
		t.Errorf("PatternsForSuffixes() = %v, want %v", got, want)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{Root: t.TempDir(), Patterns: []string{"[unclosed"}}); err == nil {
		t.Error("New() should reject an invalid pattern")
	}
}

func TestWatcher_MatchesAndIgnores(t *testing.T) {
	t.Parallel()

	w := &Watcher{
		cfg:    Config{Patterns: PatternsForSuffixes([]string{".md"}, "conf.cue")},
		ignore: slices.Concat(alwaysIgnored, []string{"_build/**"}),
	}
	tests := []struct {
		rel     string
		matches bool
		ignored bool
	}{
		{"guide.md", true, false},
		{"deep/nested/page.md", true, false},
		{"conf.cue", true, false},
		{"image.png", false, false},
		{"_build/doctest/output.txt", false, true},
		{".git/HEAD", false, true},
		{"guide.md.swp", false, true},
	}
	for _, tt := range tests {
		if got := w.matches(tt.rel); got != tt.matches {
			t.Errorf("matches(%q) = %v, want %v", tt.rel, got, tt.matches)
		}
		if got := w.ignored(tt.rel); got != tt.ignored {
			t.Errorf("ignored(%q) = %v, want %v", tt.rel, got, tt.ignored)
		}
	}
}

func TestWatcher_CoalescesChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	testutil.MustMkdirAll(t, filepath.Join(root, "_build"))
	calls := make(chan []string, 4)
	w, err := New(Config{
		Root:     root,
		Patterns: PatternsForSuffixes([]string{".md"}),
		Ignore:   []string{"_build", "_build/**"},
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			calls <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	for _, name := range []string{"b.md", "a.md", "notes.txt", "_build/x.md"} {
		testutil.MustWriteFile(t, filepath.Join(root, name), "x")
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case changed := <-calls:
		if !slices.Equal(changed, []string{"a.md", "b.md"}) {
			t.Errorf("changed = %v, want [a.md b.md]", changed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("OnChange was not called")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if err := w.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestWatcher_NewDirectoriesAreWatched(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	calls := make(chan []string, 4)
	w, err := New(Config{
		Root:     root,
		Debounce: 100 * time.Millisecond,
		OnChange: func(_ context.Context, changed []string) error {
			calls <- changed
			return nil
		},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	testutil.MustWriteFile(t, filepath.Join(root, "sub", "page.md"), "x")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case changed := <-calls:
			if slices.Contains(changed, "sub/page.md") {
				return
			}
		case <-deadline:
			t.Fatal("change in new directory was not reported")
		}
	}
}
