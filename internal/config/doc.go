// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/bake/config.cue (or the XDG equivalent on Linux,
// ~/Library/Application Support/bake/config.cue on macOS, %APPDATA%\bake\config.cue on
// Windows), falling back to ./bake.cue in the working directory. Every key can be
// overridden from the environment with a BAKE_ prefix (BAKE_RUNTIME, BAKE_UI_VERBOSE,
// BAKE_INCLUDE_TIMEOUT, ...).
//
// Files are validated against the embedded CUE schema (config_schema.cue) before they
// are merged over the defaults.
package config
