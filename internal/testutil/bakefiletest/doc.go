// SPDX-License-Identifier: MPL-2.0

// Package bakefiletest provides test helpers for building bakefile.Bakefile
// values without going through the parser.
//
// This package is separate from testutil so testutil stays free of domain
// imports.
//
// # Usage
//
//	bf := bakefiletest.New(
//	    bakefiletest.WithVariable("CC", "gcc"),
//	    bakefiletest.WithRule("all", bakefiletest.DependsOn("build"), bakefiletest.Recipe("echo done")),
//	)
package bakefiletest
