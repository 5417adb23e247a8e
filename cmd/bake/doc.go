// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the bake command-line interface.
//
// The root command runs a target (bake build, or bake -r build); the list,
// inspect, validate, config and completion subcommands work on the same
// loaded Bakefile and configuration. Commands are built from an App so
// tests can swap the config provider, loader and runtimes.
package cmd
