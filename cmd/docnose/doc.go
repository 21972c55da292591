// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the docnose command line.
//
// Commands only wire flags to the internal packages: discovery locates and
// loads documentation trees, the harness runs their suites and watch reruns
// them on change.
package cmd
