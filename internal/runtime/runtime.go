// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

// Runtime type constants for the supported execution strategies.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

var (
	// ErrEmptyCommand is returned when a command line has no command word.
	ErrEmptyCommand = errors.New("empty command line")
	// ErrRuntimeNotFound is returned by Registry.Get for unregistered types.
	ErrRuntimeNotFound = errors.New("runtime not registered")
)

type (
	// ExecutionContext contains everything needed to run one command line.
	ExecutionContext struct {
		// Context cancels the running process.
		Context context.Context
		// Line is the fully substituted command line.
		Line string
		// WorkDir is the process working directory; empty means the current one.
		WorkDir string
		// Env holds extra KEY=VALUE entries appended to the host environment.
		Env []string
		// Stdin is connected to the process; nil means no input.
		Stdin io.Reader
	}

	// Result contains the outcome of a command execution.
	Result struct {
		// ExitCode is the process exit status.
		ExitCode ExitCode
		// Error is set when the process could not be spawned or run.
		Error error
		// Output holds the combined stdout and stderr of the process.
		Output string
	}

	// Runtime executes command lines.
	Runtime interface {
		// Name returns the runtime name
		Name() string
		// Available reports whether the runtime can run on this host
		Available() bool
		// Execute runs ec.Line to completion
		Execute(ec *ExecutionContext) *Result
	}

	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// Registry holds all available runtimes
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext creates an execution context for line with defaults.
func NewExecutionContext(ctx context.Context, line string) *ExecutionContext {
	if ctx == nil {
		ctx = context.Background()
	}
	return &ExecutionContext{
		Context: ctx,
		Line:    line,
	}
}

// Success returns true if the command executed successfully
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// String returns the string representation of the RuntimeType.
func (t RuntimeType) String() string { return string(t) }

// NewRegistry creates a new runtime registry
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// DefaultRegistry returns a registry with the native and virtual runtimes.
func DefaultRegistry() *Registry {
	reg := NewRegistry()
	reg.Register(RuntimeTypeNative, NewNativeRuntime())
	reg.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	return reg
}

// Register adds a runtime to the registry
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRuntimeNotFound, typ)
	}
	return rt, nil
}

// Types returns the registered runtime types in sorted order.
func (r *Registry) Types() []RuntimeType {
	types := make([]RuntimeType, 0, len(r.runtimes))
	for typ := range r.runtimes {
		types = append(types, typ)
	}
	slices.Sort(types)
	return types
}
