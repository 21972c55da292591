// SPDX-License-Identifier: MPL-2.0

// Package collect walks a documentation tree and extracts its test groups.
//
// Examples live in fenced code blocks of Markdown documents. The info string
// of a fence selects a directive:
//
//	```doctest group=setup-demo options=+ELLIPSIS
//	$ echo hello
//	hello
//	```
//
// doctest fences hold interleaved transcripts. testcode and testoutput fences
// form a split block: the output fence belongs to the nearest preceding code
// fence of the same group. testsetup and testcleanup fences provide the
// snippets that run around every case of a group. The group "*" addresses
// every group of the document.
//
// Parsed documents are cached as JSON under the build directory's doctrees/
// folder, keyed by the document's content hash. Cache entries are validated
// against an embedded JSON Schema and silently rebuilt when invalid.
package collect
