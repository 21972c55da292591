// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"maps"
	"slices"

	"github.com/invowk/docnose/internal/diagnostic"
	"github.com/invowk/docnose/pkg/doctest"
)

// assembly builds the groups of one document from its raw blocks.
type assembly struct {
	path         string
	defaultGroup string
	groups       map[string]*Group
	diags        []diagnostic.Diagnostic
}

func assembleGroups(path, defaultGroup string, blocks []rawBlock, globalSetup, globalCleanup string) ([]*Group, []diagnostic.Diagnostic) {
	a := &assembly{path: path, defaultGroup: defaultGroup, groups: make(map[string]*Group)}

	var everyGroup []rawBlock
	for _, b := range blocks {
		if b.Skip {
			continue
		}
		names := b.Groups
		if len(names) == 0 {
			names = []string{a.defaultGroup}
		}
		if slices.Contains(names, AllGroups) {
			everyGroup = append(everyGroup, b)
			continue
		}
		for _, name := range names {
			a.add(a.group(name), b)
		}
	}

	names := slices.Sorted(maps.Keys(a.groups))
	for _, b := range everyGroup {
		for _, name := range names {
			a.add(a.groups[name], b)
		}
	}

	out := make([]*Group, 0, len(names))
	for _, name := range names {
		g := a.groups[name]
		if len(g.Blocks) == 0 {
			continue
		}
		if globalSetup != "" {
			g.Setup = slices.Insert(g.Setup, 0, Snippet{Code: globalSetup, Filename: "<global setup>"})
		}
		if globalCleanup != "" {
			g.Cleanup = append(g.Cleanup, Snippet{Code: globalCleanup, Filename: "<global cleanup>"})
		}
		out = append(out, g)
	}
	return out, a.diags
}

func (a *assembly) group(name string) *Group {
	g, ok := a.groups[name]
	if !ok {
		g = &Group{Name: name}
		a.groups[name] = g
	}
	return g
}

func (a *assembly) add(g *Group, b rawBlock) {
	opts, _ := doctest.ParseOptions(b.Options)
	snippet := Snippet{Code: b.Code, Filename: a.path, Line: b.Line, Options: opts}

	switch b.Kind {
	case kindTestsetup:
		g.Setup = append(g.Setup, snippet)
	case kindTestcleanup:
		g.Cleanup = append(g.Cleanup, snippet)
	case kindDoctest:
		g.Blocks = append(g.Blocks, &InterleavedBlock{Snippet: snippet})
	case kindTestcode:
		g.Blocks = append(g.Blocks, &SplitBlock{Code: snippet})
	case kindTestoutput:
		var last *SplitBlock
		if n := len(g.Blocks); n > 0 {
			last, _ = g.Blocks[n-1].(*SplitBlock)
		}
		if last == nil || last.Output != nil {
			a.diags = append(a.diags, diagnostic.New(diagnostic.CodeOrphanOutput, a.path, b.Line,
				"testoutput block in group %q has no preceding testcode block", g.Name))
			return
		}
		snippet.Code = doctest.StripBlanklineMarkers(snippet.Code)
		last.Output = &snippet
	}
}
