// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter decides whether a case runs.
type Filter func(TestID) bool

// RegexFilters keeps cases whose full ID matches any MustMatch pattern (when
// there are any) and no MustNotMatch pattern.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	name := id.String()
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(name)) &&
		!r.MustNotMatch.AnyMatch(name)
}

// Describe explains the active filters, or returns "" when there are none.
func (r RegexFilters) Describe() string {
	var b strings.Builder
	if r.MustMatch.IsDefined() {
		fmt.Fprintf(&b, "skip any not matching %s\n", r.MustMatch)
	}
	if r.MustNotMatch.IsDefined() {
		fmt.Fprintf(&b, "skip any matching %s\n", r.MustNotMatch)
	}
	return b.String()
}

// RegexList is a repeatable command line flag of regular expressions.
type RegexList struct {
	patterns []*regexp.Regexp
}

func (r RegexList) String() string {
	ss := make([]string, 0, len(r.patterns))
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set adds a pattern.
func (r *RegexList) Set(value string) error {
	rx, err := regexp.Compile(value)
	if err != nil {
		return fmt.Errorf("invalid regex: %w", err)
	}
	r.patterns = append(r.patterns, rx)
	return nil
}

// Type names the flag value type in help output.
func (r *RegexList) Type() string {
	return "regex"
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

func (r RegexList) AnyMatch(s string) bool {
	for _, p := range r.patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
