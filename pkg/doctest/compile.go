// SPDX-License-Identifier: MPL-2.0

package doctest

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// ModeInteractive evaluates each top-level statement on its own.
	ModeInteractive Mode = iota
	// ModeModule runs the whole snippet as one script.
	ModeModule
)

type (
	// Mode selects how a snippet is compiled and executed.
	Mode int

	// Compiler turns shell source into a Program. It is the single entry
	// point every example goes through, so replacing a Runner's Compiler
	// changes how all examples are compiled.
	Compiler interface {
		Compile(source, name string, mode Mode) (*Program, error)
	}

	// Program is compiled shell source ready for execution.
	Program struct {
		Name string
		Mode Mode
		file *syntax.File
	}

	// ShellCompiler parses POSIX or Bash source with mvdan/sh.
	ShellCompiler struct {
		variant syntax.LangVariant
	}
)

func (m Mode) String() string {
	switch m {
	case ModeInteractive:
		return "interactive"
	case ModeModule:
		return "module"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// NewShellCompiler returns a compiler for the Bash dialect.
func NewShellCompiler() *ShellCompiler {
	return &ShellCompiler{variant: syntax.LangBash}
}

// NewPOSIXCompiler returns a compiler that rejects Bash-only syntax.
func NewPOSIXCompiler() *ShellCompiler {
	return &ShellCompiler{variant: syntax.LangPOSIX}
}

// Compile parses source. A parse failure is returned as a RaisedError of
// kind SyntaxError, so it can be matched like any other raised exception.
func (c *ShellCompiler) Compile(source, name string, mode Mode) (*Program, error) {
	parser := syntax.NewParser(syntax.Variant(c.variant))
	file, err := parser.Parse(strings.NewReader(source), name)
	if err != nil {
		return nil, &RaisedError{Kind: KindSyntaxError, Message: err.Error(), Err: err}
	}
	if c.variant == syntax.LangPOSIX {
		if err := rejectBashTests(file, name); err != nil {
			return nil, err
		}
	}
	return &Program{Name: name, Mode: mode, file: file}, nil
}

// rejectBashTests fails on "[[ ... ]]". The POSIX parser has no such keyword
// and reads it as an ordinary command named "[[".
func rejectBashTests(file *syntax.File, name string) error {
	var found *syntax.CallExpr
	syntax.Walk(file, func(node syntax.Node) bool {
		if found != nil {
			return false
		}
		if call, ok := node.(*syntax.CallExpr); ok && len(call.Args) > 0 && call.Args[0].Lit() == "[[" {
			found = call
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	msg := fmt.Sprintf("%s:%s: [[ is a bash feature; use [ or test", name, found.Pos())
	return &RaisedError{Kind: KindSyntaxError, Message: msg}
}
