// SPDX-License-Identifier: MPL-2.0

package session

import (
	"github.com/invowk/docnose/pkg/doctest"
)

// Session is the scope during which a Runner compiles through the mode switch.
//
//	s := session.Open(runner)
//	defer s.Close()
type Session struct {
	runner   *doctest.Runner
	original doctest.Compiler
	mode     *ModeSwitch
	closed   bool
}

// Open captures runner's compiler and replaces it with a mode-aware wrapper.
func Open(runner *doctest.Runner) *Session {
	s := &Session{
		runner:   runner,
		original: runner.Compiler(),
		mode:     &ModeSwitch{},
	}
	runner.SetCompiler(&modeAwareCompiler{original: s.original, mode: s.mode})
	return s
}

// Switch returns the session's mode switch.
func (s *Session) Switch() *ModeSwitch {
	return s.mode
}

// Runner returns the runner the session is installed on.
func (s *Session) Runner() *doctest.Runner {
	return s.runner
}

// Close restores the compiler captured by Open. It is safe to call more than once.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.runner.SetCompiler(s.original)
	s.closed = true
}
