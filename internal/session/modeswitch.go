// SPDX-License-Identifier: MPL-2.0

package session

import (
	"github.com/invowk/docnose/pkg/doctest"
)

type (
	// ModeSwitch holds the compile mode the next compile call uses.
	// The zero value selects interactive mode.
	ModeSwitch struct {
		mode doctest.Mode
	}

	// modeAwareCompiler compiles with whatever mode the switch holds at the
	// moment of the call, ignoring the mode requested by the caller.
	modeAwareCompiler struct {
		original doctest.Compiler
		mode     *ModeSwitch
	}
)

// Get returns the current mode.
func (s *ModeSwitch) Get() doctest.Mode {
	return s.mode
}

// Set selects the mode for subsequent compile calls.
func (s *ModeSwitch) Set(m doctest.Mode) {
	s.mode = m
}

func (c *modeAwareCompiler) Compile(source, name string, _ doctest.Mode) (*doctest.Program, error) {
	return c.original.Compile(source, name, c.mode.Get())
}
