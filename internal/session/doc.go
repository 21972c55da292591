// SPDX-License-Identifier: MPL-2.0

// Package session runs adapted cases so that the cases of one group share
// state while each is still reported on its own.
//
// Every group owns one persistent namespace for the duration of a run. Before
// a case runs, that namespace is copied into a fresh live namespace and the
// group's setup snippets run inside it. After the case, the group's cleanup
// snippets run and the live namespace is copied back, becoming the starting
// point of the next case of the same group.
//
// A Session also owns the compile-mode switch. Open installs a compiler that
// reads the switch on every compile; Close puts the original compiler back.
package session
