// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime interprets command lines with the embedded mvdan/sh shell.
// Unlike the native runtime it honours quoting, pipes and redirections, and
// it does not depend on a shell being installed on the host.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return string(RuntimeTypeVirtual)
}

// Available returns whether this runtime is available
func (r *VirtualRuntime) Available() bool {
	// Virtual runtime is always available as it's built-in
	return true
}

// Execute parses and runs the command line, capturing combined output.
func (r *VirtualRuntime) Execute(ec *ExecutionContext) *Result {
	if strings.TrimSpace(ec.Line) == "" {
		return NewErrorResult(1, ErrEmptyCommand)
	}

	prog, err := syntax.NewParser().Parse(strings.NewReader(ec.Line), "recipe")
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to parse command: %w", err))
	}

	var output bytes.Buffer
	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(append(os.Environ(), ec.Env...)...)),
		interp.StdIO(ec.Stdin, &output, &output),
	}
	if ec.WorkDir != "" {
		opts = append(opts, interp.Dir(ec.WorkDir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(1, fmt.Errorf("failed to create interpreter: %w", err))
	}

	if err := runner.Run(ec.Context, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return NewExitCodeResult(ExitCode(exitStatus), output.String())
		}
		return &Result{
			ExitCode: 1,
			Error:    fmt.Errorf("command execution failed: %w", err),
			Output:   output.String(),
		}
	}

	return NewSuccessResult(output.String())
}
