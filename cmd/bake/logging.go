// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates the CLI logger. It doubles as the slog handler for the
// library packages, which log through log/slog only.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "bake",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
