// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// NativeRuntime spawns the command word of a line directly, without a shell.
// The line is split on whitespace; quotes and escapes have no meaning.
type NativeRuntime struct{}

// NewNativeRuntime creates a new native runtime
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return string(RuntimeTypeNative)
}

// Available returns whether this runtime is available
func (r *NativeRuntime) Available() bool {
	return true
}

// Execute runs the command line and captures combined stdout and stderr.
func (r *NativeRuntime) Execute(ec *ExecutionContext) *Result {
	words := strings.Fields(ec.Line)
	if len(words) == 0 {
		return NewErrorResult(1, ErrEmptyCommand)
	}

	cmd := exec.CommandContext(ec.Context, words[0], words[1:]...)
	if ec.WorkDir != "" {
		cmd.Dir = ec.WorkDir
	}
	if len(ec.Env) > 0 {
		cmd.Env = append(os.Environ(), ec.Env...)
	}
	cmd.Stdin = ec.Stdin

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitResult(exitErr, output.String())
		}
		return &Result{
			ExitCode: 1,
			Error:    fmt.Errorf("failed to execute %s: %w", words[0], err),
			Output:   output.String(),
		}
	}

	return NewSuccessResult(output.String())
}

// exitResult converts a process exit into a Result. A process terminated by
// a signal has no exit status and is reported as an error.
func exitResult(exitErr *exec.ExitError, output string) *Result {
	code := ExitCode(exitErr.ExitCode())
	if valid, _ := code.IsValid(); !valid {
		return &Result{
			ExitCode: 1,
			Error:    fmt.Errorf("process did not exit normally: %w", exitErr),
			Output:   output,
		}
	}
	return NewExitCodeResult(code, output)
}
