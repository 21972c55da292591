// SPDX-License-Identifier: MPL-2.0

package adapter

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/invowk/docnose/internal/collect"
	"github.com/invowk/docnose/internal/diagnostic"
	"github.com/invowk/docnose/pkg/doctest"
)

type (
	// ID identifies a case and defines its position in the run order.
	ID struct {
		Group    string
		Document string
		Line     int
	}

	// Case is one independently reportable unit of a group.
	Case struct {
		ID       ID
		Examples []*doctest.Example
		Mode     doctest.Mode
		// Group is the group the case belongs to; its namespace is shared by
		// every case of the group.
		Group *collect.Group
		// Filename is the document path.
		Filename string
	}

	// Result holds the cases produced for a group and the blocks that were dropped.
	Result struct {
		Cases   []Case
		Skipped []diagnostic.Diagnostic
	}

	// Adapter converts groups into cases.
	Adapter struct {
		parser   *doctest.Parser
		defaults doctest.OptionFlags
	}
)

// New returns an adapter. defaults are the outermost option scope, beneath
// block and example options.
func New(defaults doctest.OptionFlags) *Adapter {
	return &Adapter{parser: doctest.NewParser(), defaults: defaults.Clone()}
}

// String renders the ID as "group:document:line".
func (id ID) String() string {
	return fmt.Sprintf("%s:%s:%d", id.Group, id.Document, id.Line)
}

// Compare orders IDs by group, then document, then line.
func (id ID) Compare(other ID) int {
	return cmp.Or(
		cmp.Compare(id.Group, other.Group),
		cmp.Compare(id.Document, other.Document),
		cmp.Compare(id.Line, other.Line),
	)
}

// Adapt converts every block of g, collected from document doc, into cases
// sorted by ID.
func (a *Adapter) Adapt(doc string, g *collect.Group) Result {
	var res Result
	for _, block := range g.Blocks {
		switch b := block.(type) {
		case *collect.InterleavedBlock:
			c, skip, ok := a.interleaved(doc, g, b)
			if !ok {
				res.Skipped = append(res.Skipped, skip)
				continue
			}
			res.Cases = append(res.Cases, c)
		case *collect.SplitBlock:
			res.Cases = append(res.Cases, a.split(doc, g, b))
		}
	}
	Sort(res.Cases)
	return res
}

// Sort orders cases by ID. Cases with equal IDs keep their relative order.
func Sort(cases []Case) {
	slices.SortStableFunc(cases, func(x, y Case) int {
		return x.ID.Compare(y.ID)
	})
}

func (a *Adapter) interleaved(doc string, g *collect.Group, b *collect.InterleavedBlock) (Case, diagnostic.Diagnostic, bool) {
	examples, err := a.parser.Parse(b.Code, b.Filename, b.Line)
	if err != nil {
		return Case{}, diagnostic.New(diagnostic.CodeBlockParseSkipped, b.Filename, b.Line,
			"transcript block in group %q dropped", g.Name).WithCause(err), false
	}
	if len(examples) == 0 {
		return Case{}, diagnostic.New(diagnostic.CodeBlockEmptySkipped, b.Filename, b.Line,
			"transcript block in group %q has no examples", g.Name), false
	}
	for _, ex := range examples {
		ex.Options = doctest.Merge(a.defaults, b.Options, ex.Options)
	}
	return Case{
		ID:       ID{Group: g.Name, Document: doc, Line: examples[0].Line},
		Examples: examples,
		Mode:     doctest.ModeInteractive,
		Group:    g,
		Filename: b.Filename,
	}, diagnostic.Diagnostic{}, true
}

func (a *Adapter) split(doc string, g *collect.Group, b *collect.SplitBlock) Case {
	want := ""
	var opts doctest.OptionFlags
	if b.Output != nil {
		want = b.Output.Code
		opts = b.Output.Options
	}

	ex := &doctest.Example{
		Source:  ensureNewline(b.Code.Code),
		Want:    want,
		Line:    b.Code.Line,
		Options: doctest.Merge(a.defaults, b.Code.Options, opts, doctest.OptionFlags{doctest.DontAcceptBlankline: true}),
	}
	if exc, ok := doctest.ParseException(want); ok {
		ex.Exception = exc
	}

	return Case{
		ID:       ID{Group: g.Name, Document: doc, Line: ex.Line},
		Examples: []*doctest.Example{ex},
		Mode:     doctest.ModeModule,
		Group:    g,
		Filename: b.Code.Filename,
	}
}

func ensureNewline(s string) string {
	if s == "" || s[len(s)-1] == '\n' {
		return s
	}
	return s + "\n"
}
