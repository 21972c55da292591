// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/docnose/internal/collect"
	"github.com/invowk/docnose/internal/config"
	"github.com/invowk/docnose/internal/discovery"
	"github.com/invowk/docnose/internal/harness"
	"github.com/invowk/docnose/internal/testutil"
)

const passingDoc = `# Install

~~~doctest
$ name=docnose
$ echo "hello $name"
hello docnose
~~~

~~~testcode
echo $((1 + 2))
~~~

~~~testoutput
3
~~~
`

const failingDoc = `# Broken

~~~doctest
$ echo actual
expected
~~~
`

func TestRun_Passing(t *testing.T) {
	t.Parallel()

	tree := testutil.NewDocTree(t)
	tree.WriteDoc("install.md", passingDoc)

	stdout, stderr, err := execute(t, "run", tree.Base)
	if err != nil {
		t.Fatalf("run error = %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "2 passed") {
		t.Errorf("stdout = %q, want 2 passed", stdout)
	}

	report, readErr := os.ReadFile(filepath.Join(tree.BuildDir, collect.DoctestDir, harness.ReportFile))
	if readErr != nil {
		t.Fatalf("report not written: %v", readErr)
	}
	if !strings.Contains(string(report), "2 passed, 0 failed, 0 skipped") {
		t.Errorf("report = %q", report)
	}
}

func TestRun_FailingExitsWithOne(t *testing.T) {
	t.Parallel()

	tree := testutil.NewDocTree(t)
	tree.WriteDoc("broken.md", failingDoc)

	stdout, _, err := execute(t, "run", tree.Base)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("run error = %v, want exit code 1", err)
	}
	if !errors.Is(err, ErrExamplesFailed) {
		t.Errorf("errors.Is(err, ErrExamplesFailed) = false")
	}
	if !strings.Contains(stdout, "FAIL") || !strings.Contains(stdout, "broken[default]/default:broken:") {
		t.Errorf("stdout = %q, want a FAIL line for the broken case", stdout)
	}

	report, _ := os.ReadFile(filepath.Join(tree.BuildDir, collect.DoctestDir, harness.ReportFile))
	if !strings.Contains(string(report), "rerun: docnose run") || !strings.Contains(string(report), "--run") {
		t.Errorf("report lacks a rerun command:\n%s", report)
	}
}

func TestRun_Filters(t *testing.T) {
	t.Parallel()

	tree := testutil.NewDocTree(t)
	tree.WriteDoc("install.md", passingDoc)
	tree.WriteDoc("broken.md", failingDoc)

	stdout, _, err := execute(t, "run", "--skip", `^broken\[`, tree.Base)
	if err != nil {
		t.Fatalf("run --skip error = %v", err)
	}
	if !strings.Contains(stdout, "2 passed") || !strings.Contains(stdout, "1 skipped") {
		t.Errorf("stdout = %q, want 2 passed and 1 skipped", stdout)
	}

	stdout, _, err = execute(t, "run", "--run", `^install\[`, tree.Base)
	if err != nil {
		t.Fatalf("run --run error = %v", err)
	}
	if !strings.Contains(stdout, "1 skipped") {
		t.Errorf("stdout = %q, want the broken case skipped", stdout)
	}
}

func TestRun_WalksBelowPath(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, project := range []string{"alpha", "beta"} {
		testutil.MustMkdirAll(t, filepath.Join(root, project, "docs", "_build"))
		testutil.MustWriteFile(t, filepath.Join(root, project, "docs", "index.md"), passingDoc)
	}

	stdout, _, err := execute(t, "run", root)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if got := strings.Count(stdout, "2 passed"); got != 2 {
		t.Errorf("stdout has %d summaries, want 2:\n%s", got, stdout)
	}
}

func TestRun_RunsEachTreeOnce(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for _, project := range []string{"alpha", "beta"} {
		testutil.MustMkdirAll(t, filepath.Join(root, project, "docs", "_build"))
		testutil.MustWriteFile(t, filepath.Join(root, project, "docs", "index.md"), passingDoc)
	}
	alpha := filepath.Join(root, "alpha")

	stdout, _, err := execute(t, "run", alpha, root, alpha+string(filepath.Separator))
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if got := strings.Count(stdout, "2 passed"); got != 2 {
		t.Errorf("stdout has %d summaries, want 2:\n%s", got, stdout)
	}
}

func TestRun_NoTree(t *testing.T) {
	t.Parallel()

	_, stderr, err := execute(t, "run", t.TempDir())
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Fatalf("run error = %v, want exit code 2", err)
	}
	if !strings.Contains(stderr, "doc-root-not-found") {
		t.Errorf("stderr = %q, want a pointer to the issue", stderr)
	}
}

func TestRun_WatchRejectsSeveralTrees(t *testing.T) {
	t.Parallel()

	a, b := testutil.NewDocTree(t), testutil.NewDocTree(t)
	_, stderr, err := execute(t, "run", "--watch", a.Base, b.Base)
	if err == nil {
		t.Fatal("run --watch with two trees should fail")
	}
	if !strings.Contains(stderr, "single tree") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestWatchConfig_IgnoresBuildDir(t *testing.T) {
	t.Parallel()

	dirs := discovery.Options{}.Resolve(t.TempDir())
	cfg := config.DefaultConfig()
	cfg.SourceSuffixes = []string{"md"}
	cfg.Exclude = []string{"drafts/**"}

	wc := watchConfig(dirs, cfg, nil, nil)
	wantIgnore := []string{"_build", "_build/**", "drafts/**"}
	if strings.Join(wc.Ignore, " ") != strings.Join(wantIgnore, " ") {
		t.Errorf("Ignore = %v, want %v", wc.Ignore, wantIgnore)
	}
	wantPatterns := []string{"**/*.md", "**/conf.cue", "**/.env"}
	if strings.Join(wc.Patterns, " ") != strings.Join(wantPatterns, " ") {
		t.Errorf("Patterns = %v, want %v", wc.Patterns, wantPatterns)
	}
}

func TestRun_DefaultsToWorkingDirectory(t *testing.T) {
	// Not parallel: changes the process working directory.
	tree := testutil.NewDocTree(t)
	tree.WriteDoc("install.md", passingDoc)
	testutil.MustChdir(t, tree.Base)

	stdout, _, err := execute(t, "run")
	if err != nil {
		t.Fatalf("run error = %v", err)
	}
	if !strings.Contains(stdout, "2 passed") {
		t.Errorf("stdout = %q, want 2 passed", stdout)
	}
}
