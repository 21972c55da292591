// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates user CUE files against an embedded schema and
// reports failures with JSON-style field paths:
//
//	conf.cue: default_flags[1]: invalid value "ELLIPSIS" (does not match =~"^[+-]")
package cueutil
