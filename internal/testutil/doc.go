// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that build documentation trees
// on disk and fail fast on filesystem errors.
package testutil
