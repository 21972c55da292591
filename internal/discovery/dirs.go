// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/invowk/docnose/internal/collect"
)

const (
	// DefaultDocDir is the doc root used when none is configured.
	DefaultDocDir = "docs"
	// DefaultBuildDir is the build directory, relative to the doc root.
	DefaultBuildDir = "_build"

	// EnvDocDir overrides the doc root.
	EnvDocDir = "DOCNOSE_DOC_DIR"
	// EnvConfDir overrides the directory holding conf.cue.
	EnvConfDir = "DOCNOSE_CONF_DIR"
	// EnvBuildDir overrides the build directory.
	EnvBuildDir = "DOCNOSE_BUILD_DIR"
)

type (
	// Options locate a documentation tree relative to a base directory.
	Options struct {
		// DocDir is the doc root. Defaults to DefaultDocDir.
		DocDir string
		// ConfDir holds conf.cue. Defaults to the doc root.
		ConfDir string
		// BuildDir is relative to the doc root. Defaults to DefaultBuildDir.
		BuildDir string
	}

	// Dirs are the absolute directories of one documentation tree.
	Dirs struct {
		Base     string
		DocRoot  string
		ConfDir  string
		BuildDir string
	}
)

// OptionsFromEnv reads the DOCNOSE_*_DIR variables through lookup (usually
// os.LookupEnv). Unset variables leave the default in place.
func OptionsFromEnv(lookup func(string) (string, bool)) Options {
	var o Options
	if v, ok := lookup(EnvDocDir); ok {
		o.DocDir = v
	}
	if v, ok := lookup(EnvConfDir); ok {
		o.ConfDir = v
	}
	if v, ok := lookup(EnvBuildDir); ok {
		o.BuildDir = v
	}
	return o
}

// Resolve computes the tree's directories under base. Absolute options are
// kept as they are.
func (o Options) Resolve(base string) Dirs {
	if abs, err := filepath.Abs(base); err == nil {
		base = abs
	}
	docRoot := join(base, orDefault(o.DocDir, DefaultDocDir))
	confDir := docRoot
	if o.ConfDir != "" {
		confDir = join(base, o.ConfDir)
	}
	return Dirs{
		Base:     base,
		DocRoot:  docRoot,
		ConfDir:  confDir,
		BuildDir: join(docRoot, orDefault(o.BuildDir, DefaultBuildDir)),
	}
}

// Accept reports whether every directory of the tree exists. It never fails:
// an unreadable path simply makes the tree ineligible.
func (d Dirs) Accept() bool {
	for _, p := range []string{d.DocRoot, d.ConfDir, d.BuildDir} {
		if p == "" {
			return false
		}
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

// Walk returns every accepted tree at or below root, in lexical order. Hidden
// and tooling directories are not entered, nor are the doc roots of trees
// already found.
func Walk(ctx context.Context, root string, opts Options) ([]Dirs, error) {
	var found []Dirs
	docRoots := make(map[string]bool)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are ineligible, not fatal.
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && collect.SkipDir(d.Name()) {
			return filepath.SkipDir
		}
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return nil
		}
		if docRoots[abs] {
			return filepath.SkipDir
		}
		if dirs := opts.Resolve(abs); dirs.Accept() {
			found = append(found, dirs)
			docRoots[dirs.DocRoot] = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func join(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
