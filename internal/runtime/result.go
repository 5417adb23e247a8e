// SPDX-License-Identifier: MPL-2.0

package runtime

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and the captured output.
func NewSuccessResult(output string) *Result {
	return &Result{Output: output}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than spawn failures.
func NewExitCodeResult(code ExitCode, output string) *Result {
	return &Result{ExitCode: code, Output: output}
}
