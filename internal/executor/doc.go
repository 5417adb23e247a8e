// SPDX-License-Identifier: MPL-2.0

// Package executor realizes a target: it walks the dependency chain depth
// first, in declaration order, and runs each recipe line through a runtime
// after variable substitution.
//
// The walk is single-threaded; at most one process runs at a time and the
// first failing line stops the run. A target with no rule is a no-op.
// Re-entering a target that is still on the walk stack returns a
// *dag.CycleError. By default a target reachable along N paths runs N times;
// WithOnce(true) records finished targets and skips them afterwards.
package executor
