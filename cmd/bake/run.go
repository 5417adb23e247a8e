// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bakebuild/bake/internal/executor"
	"github.com/bakebuild/bake/internal/runtime"
	"github.com/bakebuild/bake/pkg/bakefile"

	"github.com/spf13/cobra"
)

// runTarget loads the Bakefile and realizes target, or prints its plan
// with --dry-run.
func runTarget(cmd *cobra.Command, app *App, s *session, opts *rootOptions, target string) error {
	ctx := cmd.Context()

	bf, err := s.load(cmd, app)
	if err != nil {
		return err
	}

	rt, err := app.Runtimes.Get(runtime.RuntimeType(s.runtime))
	if err != nil {
		return s.fail(app, err)
	}
	if !rt.Available() {
		return s.fail(app, fmt.Errorf("runtime %q is not available on this host", rt.Name()))
	}

	ex := executor.New(bf,
		executor.WithRuntime(rt),
		executor.WithOnce(s.once),
		executor.WithReporter(newConsoleReporter(app.stdout, s.verbose)),
		executor.WithLogger(s.logger),
		executor.WithWorkDir(s.workDir),
		executor.WithEnv(opts.env...),
	)

	if opts.dryRun {
		steps, err := ex.Plan(target)
		if err != nil {
			return s.fail(app, err)
		}
		renderPlan(app.stdout, target, steps)
		return nil
	}

	if err := ex.Execute(ctx, target); err != nil {
		var cmdErr *executor.CommandError
		if errors.As(err, &cmdErr) && cmdErr.Output != "" {
			writeIndented(app.stderr, cmdErr.Output)
		}
		return s.fail(app, err)
	}
	return nil
}

// load resolves the root Bakefile and its includes.
func (s *session) load(cmd *cobra.Command, app *App) (*bakefile.Bakefile, error) {
	bf, err := app.NewLoader(s.cfg, s.logger).Load(cmd.Context(), s.file)
	if err != nil {
		return nil, s.fail(app, err)
	}
	s.logger.Debug("bakefile loaded", "sources", len(bf.Sources), "rules", len(bf.Rules), "variables", len(bf.Variables))
	return bf, nil
}

// renderPlan prints the steps of a dry run, indented by dependency depth.
func renderPlan(w io.Writer, target string, steps []executor.Step) {
	fmt.Fprintln(w, TitleStyle.Render("Dry Run")+" "+SubtitleStyle.Render(target))
	if len(steps) == 0 {
		fmt.Fprintln(w, "  "+SubtitleStyle.Render("(nothing to run)"))
		return
	}
	for _, step := range steps {
		fmt.Fprintf(w, "  %s%s %s\n",
			strings.Repeat("  ", step.Depth),
			targetStyle.Render(step.Target+":"),
			CmdStyle.Render(step.Line))
	}
}
