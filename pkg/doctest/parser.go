// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// Prompt starts the first line of a transcript example.
	Prompt = "$ "
	// Continuation starts every further source line of the same example.
	Continuation = "> "
	// RaisePrefix marks the final expected-output line as an exception.
	RaisePrefix = "! "
)

// optionDirective matches "# doctest: +FLAG, -FLAG" at the end of a source line.
var optionDirective = regexp.MustCompile(`#\s*doctest:\s*([^#\n]*)$`)

type (
	// Parser splits a transcript into Examples.
	//
	// A transcript looks like a terminal session:
	//
	//	$ greeting=hello
	//	$ for i in 1 2; do
	//	>   echo "$greeting $i"
	//	> done
	//	hello 1
	//	hello 2
	//
	// Expected output runs until a blank line or the next prompt. An
	// expected exception is written as a final output line "! Kind: message".
	Parser struct{}

	// ParseError reports a malformed transcript.
	ParseError struct {
		Name string
		Line int
		Msg  string
	}
)

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Name, e.Line, e.Msg)
}

// NewParser returns a transcript parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts examples in source order. name is used in error messages and
// firstLine is the document line on which text starts.
func (p *Parser) Parse(text, name string, firstLine int) ([]*Example, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var examples []*Example

	for i := 0; i < len(lines); {
		indent, ok := promptIndent(lines[i])
		if !ok {
			i++
			continue
		}
		start := i
		pad := strings.Repeat(" ", indent)

		source := []string{lines[i][indent+len(Prompt):]}
		i++
		for i < len(lines) {
			rest, ok := strings.CutPrefix(lines[i], pad)
			if !ok || !(strings.HasPrefix(rest, Continuation) || rest == strings.TrimSpace(Continuation)) {
				break
			}
			source = append(source, strings.TrimPrefix(strings.TrimPrefix(rest, strings.TrimSpace(Continuation)), " "))
			i++
		}

		var want []string
		for i < len(lines) && strings.TrimSpace(lines[i]) != "" {
			if _, isPrompt := promptIndent(lines[i]); isPrompt {
				break
			}
			rest, ok := strings.CutPrefix(lines[i], pad)
			if !ok {
				return nil, &ParseError{
					Name: name,
					Line: firstLine + i,
					Msg:  fmt.Sprintf("inconsistent leading whitespace: %q", lines[i]),
				}
			}
			want = append(want, rest)
			i++
		}

		ex, err := p.build(name, firstLine+start, source, want)
		if err != nil {
			return nil, err
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

func (p *Parser) build(name string, line int, source, want []string) (*Example, error) {
	opts := make(OptionFlags)
	for n, src := range source {
		m := optionDirective.FindStringSubmatch(src)
		if m == nil {
			continue
		}
		if strings.TrimSpace(src[:len(src)-len(m[0])]) == "" {
			return nil, &ParseError{Name: name, Line: line + n, Msg: "option directive on a line without source"}
		}
		parsed, err := ParseOptions(m[1])
		if err != nil {
			return nil, &ParseError{Name: name, Line: line + n, Msg: err.Error()}
		}
		opts = Merge(opts, parsed)
	}

	ex := &Example{
		Source:  strings.Join(source, "\n") + "\n",
		Line:    line,
		Options: opts,
	}
	if len(want) > 0 {
		if exc, ok := strings.CutPrefix(want[len(want)-1], RaisePrefix); ok {
			parsed, ok := ParseException(exc)
			if !ok {
				return nil, &ParseError{
					Name: name,
					Line: line + len(source) + len(want) - 1,
					Msg:  fmt.Sprintf("malformed exception line %q", exc),
				}
			}
			ex.Exception = parsed
		}
		ex.Want = strings.Join(want, "\n") + "\n"
	}
	return ex, nil
}

func promptIndent(line string) (int, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if !strings.HasPrefix(trimmed, Prompt) {
		return 0, false
	}
	return len(line) - len(trimmed), true
}
