// SPDX-License-Identifier: MPL-2.0

package executor

import (
	"errors"
	"fmt"

	"github.com/bakebuild/bake/internal/runtime"
)

var (
	// ErrCommandSpawn is wrapped by CommandError when a process could not be started.
	ErrCommandSpawn = errors.New("command could not be started")
	// ErrCommandExit is wrapped by CommandError when a process exited non-zero.
	ErrCommandExit = errors.New("command exited with non-zero status")
)

// CommandError reports the recipe line that stopped a run.
type CommandError struct {
	// Target owns the recipe line.
	Target string
	// Line is the command line after substitution.
	Line string
	// ExitCode is the process exit status (1 for spawn failures).
	ExitCode runtime.ExitCode
	// Output is the captured combined output of the failed process.
	Output string
	// Kind is ErrCommandSpawn or ErrCommandExit.
	Kind error
	// Err is the underlying runtime error, nil for a plain non-zero exit.
	Err error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("target %q: %v: %q: %v", e.Target, e.Kind, e.Line, e.Err)
	}
	return fmt.Sprintf("target %q: %v: %q (exit code %d)", e.Target, e.Kind, e.Line, e.ExitCode)
}

// Unwrap exposes both the kind sentinel and the runtime error to errors.Is/As.
func (e *CommandError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
