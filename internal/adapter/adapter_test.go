// SPDX-License-Identifier: MPL-2.0

package adapter

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/invowk/docnose/internal/collect"
	"github.com/invowk/docnose/internal/diagnostic"
	"github.com/invowk/docnose/pkg/doctest"
)

func interleaved(code string, line int, opts doctest.OptionFlags) *collect.InterleavedBlock {
	return &collect.InterleavedBlock{Snippet: collect.Snippet{Code: code, Filename: "guide.md", Line: line, Options: opts}}
}

func TestAdapt_InterleavedPreservesOrderAndInheritsFlags(t *testing.T) {
	t.Parallel()

	g := &collect.Group{
		Name: "default",
		Blocks: []collect.Block{
			interleaved("$ echo  a\na\n$ echo b # doctest: -NORMALIZE_WHITESPACE\nb\n$ echo c\nc\n", 5,
				doctest.OptionFlags{doctest.NormalizeWhitespace: true}),
		},
	}

	res := New(nil).Adapt("guide", g)
	if len(res.Cases) != 1 {
		t.Fatalf("Adapt() returned %d cases, want 1", len(res.Cases))
	}
	c := res.Cases[0]
	if c.Mode != doctest.ModeInteractive {
		t.Errorf("Mode = %s, want interactive", c.Mode)
	}
	if c.Group != g {
		t.Error("case must reference its owning group")
	}
	if c.ID != (ID{Group: "default", Document: "guide", Line: 5}) {
		t.Errorf("ID = %s, want default:guide:5", c.ID)
	}

	var sources []string
	for _, ex := range c.Examples {
		sources = append(sources, ex.Source)
	}
	if want := []string{"echo  a\n", "echo b # doctest: -NORMALIZE_WHITESPACE\n", "echo c\n"}; !slices.Equal(sources, want) {
		t.Errorf("example sources = %q, want %q", sources, want)
	}

	if !c.Examples[0].Options.Enabled(doctest.NormalizeWhitespace) {
		t.Error("example 0 should inherit NORMALIZE_WHITESPACE from the block")
	}
	if c.Examples[1].Options.Enabled(doctest.NormalizeWhitespace) {
		t.Error("example 1 overrides NORMALIZE_WHITESPACE and should win")
	}
	if !c.Examples[2].Options.Enabled(doctest.NormalizeWhitespace) {
		t.Error("example 2 should inherit NORMALIZE_WHITESPACE from the block")
	}
}

func TestAdapt_DefaultsAreOutermostScope(t *testing.T) {
	t.Parallel()

	g := &collect.Group{
		Name:   "default",
		Blocks: []collect.Block{interleaved("$ echo a\na\n", 1, doctest.OptionFlags{doctest.Ellipsis: false})},
	}
	res := New(doctest.OptionFlags{doctest.Ellipsis: true, doctest.ReportUDiff: true}).Adapt("guide", g)

	opts := res.Cases[0].Examples[0].Options
	if opts.Enabled(doctest.Ellipsis) {
		t.Error("block -ELLIPSIS should override the configured default")
	}
	if !opts.Enabled(doctest.ReportUDiff) {
		t.Error("configured REPORT_UDIFF should be inherited")
	}
}

func TestAdapt_SplitWithoutOutput(t *testing.T) {
	t.Parallel()

	g := &collect.Group{
		Name:   "default",
		Blocks: []collect.Block{&collect.SplitBlock{Code: collect.Snippet{Code: "x = 1", Filename: "guide.md", Line: 3}}},
	}

	res := New(nil).Adapt("guide", g)
	if len(res.Cases) != 1 {
		t.Fatalf("Adapt() returned %d cases, want 1", len(res.Cases))
	}
	c := res.Cases[0]
	if c.Mode != doctest.ModeModule {
		t.Errorf("Mode = %s, want module", c.Mode)
	}
	if len(c.Examples) != 1 {
		t.Fatalf("case has %d examples, want 1", len(c.Examples))
	}
	ex := c.Examples[0]
	if ex.Want != "" {
		t.Errorf("Want = %q, want empty", ex.Want)
	}
	if ex.Source != "x = 1\n" {
		t.Errorf("Source = %q, want newline-terminated", ex.Source)
	}
	if !ex.Options.Enabled(doctest.DontAcceptBlankline) {
		t.Error("split examples must force DONT_ACCEPT_BLANKLINE")
	}
	if ex.Exception != nil {
		t.Errorf("Exception = %v, want nil", ex.Exception)
	}
}

func TestAdapt_SplitExceptionExpectation(t *testing.T) {
	t.Parallel()

	output := &collect.Snippet{Code: "ValueError: boom\n", Filename: "guide.md", Line: 8,
		Options: doctest.OptionFlags{doctest.DontAcceptBlankline: false, doctest.Ellipsis: true}}
	g := &collect.Group{
		Name: "default",
		Blocks: []collect.Block{&collect.SplitBlock{
			Code:   collect.Snippet{Code: "raise ValueError boom\n", Filename: "guide.md", Line: 4},
			Output: output,
		}},
	}

	ex := New(nil).Adapt("guide", g).Cases[0].Examples[0]
	if ex.Exception == nil {
		t.Fatal("Exception = nil, want structural expectation")
	}
	if ex.Exception.Kind != "ValueError" || ex.Exception.Message != "boom" {
		t.Errorf("Exception = %+v, want ValueError with message boom", ex.Exception)
	}
	if !ex.Options.Enabled(doctest.DontAcceptBlankline) {
		t.Error("forced DONT_ACCEPT_BLANKLINE must win over the output options")
	}
	if !ex.Options.Enabled(doctest.Ellipsis) {
		t.Error("output options should apply to the example")
	}
}

func TestAdapt_SplitCodeOptions(t *testing.T) {
	t.Parallel()

	g := &collect.Group{
		Name: "default",
		Blocks: []collect.Block{&collect.SplitBlock{
			Code: collect.Snippet{Code: "echo actual\n", Filename: "guide.md", Line: 4,
				Options: doctest.OptionFlags{doctest.Skip: true, doctest.Ellipsis: true}},
			Output: &collect.Snippet{Code: "expected\n", Filename: "guide.md", Line: 8,
				Options: doctest.OptionFlags{doctest.Ellipsis: false}},
		}},
	}

	ex := New(nil).Adapt("guide", g).Cases[0].Examples[0]
	if !ex.Options.Enabled(doctest.Skip) {
		t.Error("options on the code fence should apply to the example")
	}
	if ex.Options.Enabled(doctest.Ellipsis) {
		t.Error("output fence options should win over code fence options")
	}
}

func TestAdapt_DropsMalformedBlocks(t *testing.T) {
	t.Parallel()

	g := &collect.Group{
		Name: "default",
		Blocks: []collect.Block{
			interleaved("    $ echo a\n  a\n", 1, nil),
			interleaved("no prompts here\n", 10, nil),
			interleaved("$ echo ok\nok\n", 20, nil),
		},
	}

	res := New(nil).Adapt("guide", g)
	if len(res.Cases) != 1 || res.Cases[0].ID.Line != 20 {
		t.Fatalf("Cases = %+v, want only the valid block", res.Cases)
	}
	if len(res.Skipped) != 2 {
		t.Fatalf("Skipped = %v, want 2 diagnostics", res.Skipped)
	}
	if res.Skipped[0].Code != diagnostic.CodeBlockParseSkipped || res.Skipped[0].Cause == nil {
		t.Errorf("Skipped[0] = %+v, want parse skip with cause", res.Skipped[0])
	}
	if res.Skipped[1].Code != diagnostic.CodeBlockEmptySkipped {
		t.Errorf("Skipped[1] = %+v, want empty skip", res.Skipped[1])
	}
}

func TestSort_Deterministic(t *testing.T) {
	t.Parallel()

	ids := []ID{
		{Group: "a", Document: "guide", Line: 10},
		{Group: "a", Document: "guide", Line: 20},
		{Group: "a", Document: "intro", Line: 1},
		{Group: "b", Document: "guide", Line: 10},
		{Group: "b", Document: "guide", Line: 20},
	}

	for seed := range uint64(10) {
		cases := make([]Case, len(ids))
		for i, id := range ids {
			cases[i] = Case{ID: id}
		}
		r := rand.New(rand.NewPCG(seed, seed))
		r.Shuffle(len(cases), func(i, j int) { cases[i], cases[j] = cases[j], cases[i] })

		Sort(cases)
		for i, c := range cases {
			if c.ID != ids[i] {
				t.Fatalf("seed %d: position %d = %s, want %s", seed, i, c.ID, ids[i])
			}
		}
	}
}
