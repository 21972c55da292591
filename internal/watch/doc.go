// SPDX-License-Identifier: MPL-2.0

// Package watch reruns a callback when documents of a documentation tree
// change.
//
// Events are coalesced over a quiet period and the callback runs on the
// watcher's own goroutine, so at most one rerun is in flight and changes made
// during a rerun are delivered to the next one.
package watch
