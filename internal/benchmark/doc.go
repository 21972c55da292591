// SPDX-License-Identifier: MPL-2.0

// Package benchmark holds benchmarks for the docnose hot paths:
//   - transcript parsing and output checking
//   - doc-tree configuration loading
//   - document collection, cold and cached
//   - loading and running a whole tree through the harness
//
// They double as a PGO profile source:
//
//	go test ./internal/benchmark -bench=. -cpuprofile=default.pgo
package benchmark
