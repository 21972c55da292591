// SPDX-License-Identifier: MPL-2.0

// Package harness is the host test runner behind "docnose run".
//
// It drives suites of cases through the setUp/run/tearDown protocol one case
// at a time, applies --run/--skip filters, reports progress to TestLoggers
// and writes a plain-text summary into the build directory.
package harness
