// SPDX-License-Identifier: MPL-2.0

// Package adapter turns collected test groups into ordered, runnable cases.
//
// An interleaved block becomes one interactive case holding every example of
// its transcript. A split block becomes one module case holding exactly one
// example. Blocks that cannot be parsed are dropped and reported as skip
// diagnostics; they never abort the rest of the group.
package adapter
