// SPDX-License-Identifier: MPL-2.0

// Package discovery turns directories holding a documentation tree into
// runnable suites.
//
// A directory is accepted when its doc root, configuration directory and
// build directory all exist. Loading an accepted directory prepares the build
// directory, reads the tree's configuration, collects its documents and
// adapts every (document, group) pair into a Suite whose cases share the
// group's namespace.
//
// File organization:
//   - dirs.go: Options, Dirs, acceptance and Walk
//   - discovery.go: Discovery, Load and Tree
//   - suite.go: Suite and its lazy case enumeration
package discovery
