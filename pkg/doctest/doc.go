// SPDX-License-Identifier: MPL-2.0

// Package doctest runs shell examples written as documentation transcripts.
//
// An Example is one snippet of shell source with the output it is expected to
// print, or the exception it is expected to raise. Examples are grouped into a
// DocTest and executed by a Runner, which compiles each snippet through a
// replaceable Compiler and executes it with the embedded mvdan/sh interpreter
// against the DocTest's Namespace.
//
// Two compile modes exist. ModeInteractive evaluates every top-level statement
// on its own and echoes non-zero exit statuses, the way a terminal session
// would. ModeModule runs the whole snippet as one script for its side effects.
//
// Output comparison follows the classic doctest rules: exact match first, then
// <BLANKLINE> markers, then whitespace normalization and "..." wildcards when
// the corresponding option flags are enabled.
package doctest
