// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"
)

// consoleReporter prints run progress. Captured output of successful
// commands is only shown in verbose mode.
type consoleReporter struct {
	out     io.Writer
	verbose bool
}

func newConsoleReporter(out io.Writer, verbose bool) *consoleReporter {
	return &consoleReporter{out: out, verbose: verbose}
}

func (r *consoleReporter) TargetStarted(target string) {
	fmt.Fprintln(r.out, targetStyle.Render("• "+target))
}

func (r *consoleReporter) CommandStarted(_, line string) {
	fmt.Fprintln(r.out, "  "+CmdStyle.Render("$ "+line))
}

func (r *consoleReporter) CommandSucceeded(_, _, output string) {
	if !r.verbose || output == "" {
		return
	}
	writeIndented(r.out, output)
}

// writeIndented prints captured process output under its command line.
func writeIndented(w io.Writer, output string) {
	for _, line := range strings.Split(strings.TrimRight(output, "\n"), "\n") {
		fmt.Fprintln(w, "    "+VerboseStyle.Render(line))
	}
}
