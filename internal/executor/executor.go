// SPDX-License-Identifier: MPL-2.0

package executor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bakebuild/bake/internal/dag"
	"github.com/bakebuild/bake/internal/runtime"
	"github.com/bakebuild/bake/pkg/bakefile"
)

type (
	// Reporter receives progress events from a run.
	Reporter interface {
		// TargetStarted is called before a target's recipe runs, after its dependencies.
		TargetStarted(target string)
		// CommandStarted is called before a line is handed to the runtime.
		CommandStarted(target, line string)
		// CommandSucceeded is called with the captured output of a line that exited zero.
		CommandSucceeded(target, line, output string)
	}

	// Step is one recipe line a run would execute.
	Step struct {
		Target string `json:"target"`
		Line   string `json:"line"`
		// Depth is the dependency depth of Target below the requested target.
		Depth int `json:"depth"`
	}

	// Executor runs targets of a loaded Bakefile.
	Executor struct {
		bf       *bakefile.Bakefile
		expander *bakefile.Expander
		runtime  runtime.Runtime
		reporter Reporter
		logger   *slog.Logger
		workDir  string
		env      []string
		once     bool
	}

	// Option configures an Executor.
	Option func(*Executor)

	// traversal holds per-run walk state.
	traversal struct {
		stack   []string
		onStack map[string]bool
		done    map[string]bool
		// enter is called once a target's dependencies are realized (optional).
		enter func(target string)
		visit func(step Step) error
	}

	nopReporter struct{}
)

// WithRuntime sets the runtime recipe lines run in.
func WithRuntime(rt runtime.Runtime) Option {
	return func(e *Executor) {
		e.runtime = rt
	}
}

// WithOnce enables skipping targets that already finished in the same run.
func WithOnce(once bool) Option {
	return func(e *Executor) {
		e.once = once
	}
}

// WithReporter sets the progress reporter.
func WithReporter(r Reporter) Option {
	return func(e *Executor) {
		e.reporter = r
	}
}

// WithLogger sets the logger for traversal tracing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = l
	}
}

// WithWorkDir sets the working directory of spawned processes.
func WithWorkDir(dir string) Option {
	return func(e *Executor) {
		e.workDir = dir
	}
}

// WithEnv adds KEY=VALUE entries to the environment of spawned processes.
func WithEnv(env ...string) Option {
	return func(e *Executor) {
		e.env = append(e.env, env...)
	}
}

// New creates an Executor for bf. The model must be fully loaded; it is
// only read from here on. Without options lines run in the native runtime.
func New(bf *bakefile.Bakefile, opts ...Option) *Executor {
	e := &Executor{
		bf:       bf,
		expander: bakefile.NewExpander(bf.Variables),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.runtime == nil {
		e.runtime = runtime.NewNativeRuntime()
	}
	if e.reporter == nil {
		e.reporter = nopReporter{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Execute realizes target: dependencies first, then each recipe line in
// order. It stops at the first failing line with a *CommandError.
func (e *Executor) Execute(ctx context.Context, target string) error {
	w := e.newWalk(func(step Step) error {
		return e.run(ctx, step)
	})
	w.enter = e.reporter.TargetStarted
	return e.walk(w, target)
}

// Plan returns the lines Execute would run for target, in order, without
// running any of them.
func (e *Executor) Plan(target string) ([]Step, error) {
	var steps []Step
	w := e.newWalk(func(step Step) error {
		steps = append(steps, step)
		return nil
	})
	if err := e.walk(w, target); err != nil {
		return nil, err
	}
	return steps, nil
}

func (e *Executor) newWalk(visit func(Step) error) *traversal {
	return &traversal{
		onStack: make(map[string]bool),
		done:    make(map[string]bool),
		visit:   visit,
	}
}

func (e *Executor) walk(w *traversal, target string) error {
	rule, ok := e.bf.Lookup(target)
	if !ok {
		e.logger.Debug("no rule for target, nothing to do", "target", target)
		return nil
	}
	if w.onStack[target] {
		return dag.CyclePath(w.stack, target)
	}
	if e.once && w.done[target] {
		e.logger.Debug("target already done", "target", target)
		return nil
	}

	depth := len(w.stack)
	w.stack = append(w.stack, target)
	w.onStack[target] = true

	for _, dep := range rule.Dependencies {
		if err := e.walk(w, dep); err != nil {
			return err
		}
	}

	if w.enter != nil {
		w.enter(target)
	}
	for _, raw := range rule.Recipe {
		line := e.expander.Expand(raw)
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := w.visit(Step{Target: target, Line: line, Depth: depth}); err != nil {
			return err
		}
	}

	w.stack = w.stack[:depth]
	delete(w.onStack, target)
	w.done[target] = true
	return nil
}

func (e *Executor) run(ctx context.Context, step Step) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run canceled before %q: %w", step.Line, err)
	}

	e.reporter.CommandStarted(step.Target, step.Line)
	e.logger.Debug("running command", "target", step.Target, "line", step.Line, "runtime", e.runtime.Name())

	ec := runtime.NewExecutionContext(ctx, step.Line)
	ec.WorkDir = e.workDir
	ec.Env = e.env

	res := e.runtime.Execute(ec)
	switch {
	case res.Error != nil:
		return &CommandError{
			Target:   step.Target,
			Line:     step.Line,
			ExitCode: res.ExitCode,
			Output:   res.Output,
			Kind:     ErrCommandSpawn,
			Err:      res.Error,
		}
	case !res.ExitCode.IsSuccess():
		return &CommandError{
			Target:   step.Target,
			Line:     step.Line,
			ExitCode: res.ExitCode,
			Output:   res.Output,
			Kind:     ErrCommandExit,
		}
	}

	e.reporter.CommandSucceeded(step.Target, step.Line, res.Output)
	return nil
}

func (nopReporter) TargetStarted(string)                    {}
func (nopReporter) CommandStarted(string, string)           {}
func (nopReporter) CommandSucceeded(string, string, string) {}
