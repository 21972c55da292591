// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"testing"
)

// DocTree is an accepted documentation tree in a temporary directory:
// Base/docs with Base/docs/_build.
type DocTree struct {
	t        testing.TB
	Base     string
	DocRoot  string
	BuildDir string
}

// NewDocTree creates the tree under t.TempDir().
func NewDocTree(t testing.TB) *DocTree {
	t.Helper()
	base := t.TempDir()
	d := &DocTree{
		t:        t,
		Base:     base,
		DocRoot:  filepath.Join(base, "docs"),
		BuildDir: filepath.Join(base, "docs", "_build"),
	}
	MustMkdirAll(t, d.BuildDir)
	return d
}

// WriteDoc writes a document relative to the doc root and returns its path.
func (d *DocTree) WriteDoc(name, content string) string {
	d.t.Helper()
	path := filepath.Join(d.DocRoot, filepath.FromSlash(name))
	MustWriteFile(d.t, path, content)
	return path
}

// WriteConf writes conf.cue into the doc root.
func (d *DocTree) WriteConf(content string) {
	d.t.Helper()
	MustWriteFile(d.t, filepath.Join(d.DocRoot, "conf.cue"), content)
}

// Fence wraps body in a tilde fence with the given info string, so fixtures
// can be written inside Go raw strings.
func Fence(info, body string) string {
	return "~~~" + info + "\n" + body + "~~~\n"
}
