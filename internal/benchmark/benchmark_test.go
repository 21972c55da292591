// SPDX-License-Identifier: MPL-2.0

package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/docnose/internal/collect"
	"github.com/invowk/docnose/internal/config"
	"github.com/invowk/docnose/internal/discovery"
	"github.com/invowk/docnose/internal/harness"
	"github.com/invowk/docnose/pkg/doctest"
)

const (
	// sampleTranscript exercises prompts, continuations, blank lines and an
	// expected exception.
	sampleTranscript = `$ greeting=hello
$ echo "$greeting world"
hello world
$ for i in 1 2 3; do
>   echo "line $i"
> done
line 1
line 2
line 3
$ printf 'a\n\nb\n'
a
<BLANKLINE>
b
$ raise ValueError boom
! ValueError: boom
`

	sampleConf = `global_setup:    "export BENCH=1"
default_flags:   ["+ELLIPSIS", "+NORMALIZE_WHITESPACE"]
source_suffixes: [".md"]
exclude:         ["drafts/**"]
default_group:   "default"
`

	samplePage = "# Page %d\n\n" +
		"~~~testsetup\nexport PAGE=%d\n~~~\n\n" +
		"~~~doctest\n$ echo \"page $PAGE\"\npage %d\n$ n=$((PAGE * 2))\n~~~\n\n" +
		"~~~testcode\necho $n\n~~~\n\n" +
		"~~~testoutput\n%d\n~~~\n\n" +
		"~~~doctest group=other options=+ELLIPSIS\n$ seq 1 20\n1\n...\n20\n~~~\n"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// writeTree creates an accepted tree with pages documents below b.TempDir().
func writeTree(b *testing.B, pages int) discovery.Dirs {
	b.Helper()
	base := b.TempDir()
	docs := filepath.Join(base, discovery.DefaultDocDir)
	if err := os.MkdirAll(filepath.Join(docs, discovery.DefaultBuildDir), 0o755); err != nil {
		b.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docs, config.FileName), []byte(sampleConf), 0o644); err != nil {
		b.Fatal(err)
	}
	for i := range pages {
		content := fmt.Sprintf(samplePage, i, i, i, i*2)
		path := filepath.Join(docs, fmt.Sprintf("section%d", i%4), fmt.Sprintf("page%d.md", i))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			b.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			b.Fatal(err)
		}
	}
	return discovery.Options{}.Resolve(base)
}

func BenchmarkTranscriptParsing(b *testing.B) {
	p := doctest.NewParser()

	b.ReportAllocs()
	b.ResetTimer()
	for b.Loop() {
		if _, err := p.Parse(sampleTranscript, "bench.md", 1); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}

func BenchmarkOutputChecking(b *testing.B) {
	c := &doctest.OutputChecker{}
	want := strings.Repeat("row ... of the table\n", 50)
	got := strings.Repeat("row 42 of the table\n", 50)
	opts, err := doctest.ParseOptions("+ELLIPSIS,+NORMALIZE_WHITESPACE")
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for b.Loop() {
		if !c.CheckOutput(want, got, opts) {
			b.Fatal("CheckOutput reported a mismatch")
		}
	}
}

func BenchmarkConfigLoad(b *testing.B) {
	dirs := writeTree(b, 0)
	ctx := context.Background()

	b.ResetTimer()
	for b.Loop() {
		if _, err := config.Load(ctx, dirs.ConfDir); err != nil {
			b.Fatalf("Load failed: %v", err)
		}
	}
}

func BenchmarkCollect(b *testing.B) {
	dirs := writeTree(b, 40)
	ctx := context.Background()
	newCollector := func() *collect.Collector {
		c, err := collect.New(collect.Options{
			DocRoot:        dirs.DocRoot,
			BuildDir:       dirs.BuildDir,
			SourceSuffixes: []string{".md"},
			Logger:         quietLogger(),
		})
		if err != nil {
			b.Fatal(err)
		}
		return c
	}

	b.Run("cached", func(b *testing.B) {
		if _, err := newCollector().Collect(ctx); err != nil {
			b.Fatal(err)
		}
		b.ResetTimer()
		for b.Loop() {
			if _, err := newCollector().Collect(ctx); err != nil {
				b.Fatalf("Collect failed: %v", err)
			}
		}
	})

	b.Run("cold", func(b *testing.B) {
		for b.Loop() {
			b.StopTimer()
			if err := os.RemoveAll(filepath.Join(dirs.BuildDir, collect.DoctreeDir)); err != nil {
				b.Fatal(err)
			}
			if err := collect.MakeBuildDirs(dirs.BuildDir); err != nil {
				b.Fatal(err)
			}
			b.StartTimer()
			if _, err := newCollector().Collect(ctx); err != nil {
				b.Fatalf("Collect failed: %v", err)
			}
		}
	})
}

// BenchmarkFullPipeline loads a tree and runs every case, the path taken by
// docnose run.
func BenchmarkFullPipeline(b *testing.B) {
	dirs := writeTree(b, 10)
	ctx := context.Background()
	d := discovery.New(discovery.Options{},
		discovery.WithEnviron([]string{"PATH=" + os.Getenv("PATH")}),
		discovery.WithLogger(quietLogger()),
	)

	b.ResetTimer()
	for b.Loop() {
		tree, err := d.Load(ctx, dirs)
		if err != nil {
			b.Fatalf("Load failed: %v", err)
		}
		res := harness.New().Run(ctx, tree.HarnessSuites())
		tree.Close()
		if !res.OK() {
			b.Fatalf("run failed: %v", res.Failures[0].Errors)
		}
	}
}
