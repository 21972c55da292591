// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

// execute runs the command tree with args and returns stdout, stderr and the
// command error.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := NewApp(&stdout, &stderr, []string{"PATH=" + os.Getenv("PATH")})
	root := NewRootCommand(app)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestGetVersionString(t *testing.T) {
	// Not parallel: subtests mutate package-level Version/Commit/BuildDate vars.

	t.Run("ldflags version", func(t *testing.T) {
		origVersion, origCommit, origBuildDate := Version, Commit, BuildDate
		t.Cleanup(func() {
			Version, Commit, BuildDate = origVersion, origCommit, origBuildDate
		})

		Version = "v1.2.3"
		Commit = "abc1234"
		BuildDate = "2026-01-15T10:00:00Z"

		got := getVersionString()
		want := "v1.2.3 (commit: abc1234, built: 2026-01-15T10:00:00Z)"
		if got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})

	t.Run("dev build", func(t *testing.T) {
		origVersion := Version
		t.Cleanup(func() { Version = origVersion })

		Version = "dev"
		if got, want := getVersionString(), "dev (built from source)"; got != want {
			t.Errorf("getVersionString() = %q, want %q", got, want)
		}
	})
}

func TestDiscoveryOptions_FlagsAndEnv(t *testing.T) {
	t.Setenv("DOCNOSE_DOC_DIR", "manual")
	t.Setenv("DOCNOSE_BUILD_DIR", "out")

	app := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, nil)
	root := NewRootCommand(app)
	if err := root.ParseFlags([]string{"--build-dir", "build"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	opts := app.discoveryOptions()
	if opts.DocDir != "manual" {
		t.Errorf("DocDir = %q, want %q from the environment", opts.DocDir, "manual")
	}
	if opts.BuildDir != "build" {
		t.Errorf("BuildDir = %q, want %q from the flag", opts.BuildDir, "build")
	}
	if opts.ConfDir != "" {
		t.Errorf("ConfDir = %q, want empty", opts.ConfDir)
	}
}

func TestDiscoveryOptions_Defaults(t *testing.T) {
	t.Parallel()

	app := NewApp(&bytes.Buffer{}, &bytes.Buffer{}, []string{})
	NewRootCommand(app)
	opts := app.discoveryOptions()
	if opts.DocDir != "docs" || opts.BuildDir != "_build" {
		t.Errorf("discoveryOptions() = %+v, want docs and _build", opts)
	}
	base := t.TempDir()
	if got, want := app.discovery(false).Dirs(base).BuildDir, filepath.Join(base, "docs", "_build"); got != want {
		t.Errorf("BuildDir = %q, want %q", got, want)
	}
}
