// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"iter"

	"github.com/invowk/docnose/internal/adapter"
	"github.com/invowk/docnose/internal/collect"
	"github.com/invowk/docnose/internal/harness"
	"github.com/invowk/docnose/internal/session"
)

// Suite holds the cases of one group of one document. Every case shares
// the group's namespace.
type Suite struct {
	Document string
	Group    *collect.Group
	cases    []adapter.Case
	manager  *session.Manager
}

// Name returns "document[group]".
func (s *Suite) Name() string {
	return s.Document + "[" + s.Group.Name + "]"
}

// Cases yields the wrapped cases in order. A case is wrapped only when it is
// reached, so an interrupted run never builds the rest.
func (s *Suite) Cases() iter.Seq[harness.Case] {
	return func(yield func(harness.Case) bool) {
		for _, c := range s.cases {
			if !yield(s.manager.Wrap(c)) {
				return
			}
		}
	}
}

// AdaptedCases returns the adapted cases without wrapping them.
func (s *Suite) AdaptedCases() []adapter.Case {
	return s.cases
}

// HarnessSuites converts a tree's suites for the harness.
func (t *Tree) HarnessSuites() []harness.Suite {
	out := make([]harness.Suite, len(t.Suites))
	for i, s := range t.Suites {
		out[i] = s
	}
	return out
}
