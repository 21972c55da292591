// SPDX-License-Identifier: MPL-2.0

// Package diagnostic defines the structured, non-fatal problems reported while
// collecting and adapting documentation examples. Diagnostics are returned to
// callers instead of being written to stderr so the CLI decides how to render
// them.
package diagnostic
