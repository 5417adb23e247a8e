// SPDX-License-Identifier: MPL-2.0

// Package bakefile provides the in-memory model of a Bakefile and the
// line-oriented parser that builds it.
//
// A Bakefile holds three ordered sequences: variables, rules and pending
// include references. The parser appends into these sequences; several sources
// (the root file and every resolved include) may be parsed into the same model.
// Once loading is finished the model is treated as read-only.
//
// Variable substitution ($NAME, $(NAME), ${NAME}) is implemented by Expand.
package bakefile
