// SPDX-License-Identifier: MPL-2.0

// Package runtime runs a single recipe command line and reports its outcome.
//
// Two runtime implementations are available:
//   - native: splits the line on whitespace and spawns the first word as a
//     process with the remaining words as arguments (no shell, no quoting)
//   - virtual: interprets the line with the embedded mvdan/sh shell
//
// Both capture stdout and stderr into a single combined Result.Output.
// A Registry maps RuntimeType values to implementations.
package runtime
