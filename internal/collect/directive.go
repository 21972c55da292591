// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/invowk/docnose/pkg/doctest"
)

const (
	kindDoctest     = "doctest"
	kindTestcode    = "testcode"
	kindTestoutput  = "testoutput"
	kindTestsetup   = "testsetup"
	kindTestcleanup = "testcleanup"
)

var directiveKinds = []string{kindDoctest, kindTestcode, kindTestoutput, kindTestsetup, kindTestcleanup}

// directive is the parsed info string of a fenced block.
type directive struct {
	Kind    string
	Groups  []string
	Options string
	Skip    bool
}

// parseDirective reads an info string such as
// "testcode group=a,b options=+ELLIPSIS". ok is false when the fence is not a
// test directive at all.
func parseDirective(info string) (d directive, ok bool, err error) {
	fields := strings.Fields(info)
	if len(fields) == 0 || !slices.Contains(directiveKinds, fields[0]) {
		return directive{}, false, nil
	}
	d.Kind = fields[0]

	for _, field := range fields[1:] {
		key, value, hasValue := strings.Cut(field, "=")
		switch {
		case key == "skip" && !hasValue:
			d.Skip = true
		case key == "group" && hasValue:
			for name := range strings.SplitSeq(value, ",") {
				if name = strings.TrimSpace(name); name != "" {
					d.Groups = append(d.Groups, name)
				}
			}
			if len(d.Groups) == 0 {
				return d, true, fmt.Errorf("empty group attribute in %q", info)
			}
		case key == "options" && hasValue:
			if _, err := doctest.ParseOptions(value); err != nil {
				return d, true, err
			}
			d.Options = value
		default:
			return d, true, fmt.Errorf("unknown attribute %q in %q", field, info)
		}
	}
	return d, true, nil
}
