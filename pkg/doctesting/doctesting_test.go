// SPDX-License-Identifier: MPL-2.0

package doctesting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/invowk/docnose/internal/testutil"
)

const doc = `# Counter

~~~doctest
$ n=1
$ echo $n
1
~~~

~~~doctest
$ n=$((n+1))
$ echo $n
2
~~~
`

func TestRun_SharedGroupNamespace(t *testing.T) {
	tree := testutil.NewDocTree(t)
	tree.WriteDoc("counter.md", doc)

	Run(t, tree.Base, WithEnviron([]string{"PATH=" + os.Getenv("PATH")}))
}

func TestRun_CustomDirs(t *testing.T) {
	base := t.TempDir()
	testutil.MustMkdirAll(t, filepath.Join(base, "manual", "out"))
	testutil.MustWriteFile(t, filepath.Join(base, "manual", "counter.md"), doc)

	Run(t, base,
		WithDirs(Dirs{DocDir: "manual", BuildDir: "out"}),
		WithEnviron([]string{}),
	)
	if _, err := os.Stat(filepath.Join(base, "manual", "out", "doctrees")); err != nil {
		t.Errorf("build dir should be created under the custom doc root: %v", err)
	}
}

func TestRun_SkipsWithoutTree(t *testing.T) {
	var skipped bool
	t.Run("empty", func(t *testing.T) {
		defer func() { skipped = t.Skipped() }()
		Run(t, t.TempDir())
	})
	if !skipped {
		t.Error("Run() on a directory without a tree should skip")
	}
}
