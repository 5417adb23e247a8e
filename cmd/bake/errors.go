// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bakebuild/bake/internal/config"
	"github.com/bakebuild/bake/internal/dag"
	"github.com/bakebuild/bake/internal/executor"
	"github.com/bakebuild/bake/internal/include"
	"github.com/bakebuild/bake/internal/issue"
)

// displayError prints an ActionableError with its suggestions, and the
// error chain in verbose mode.
type displayError struct {
	*issue.ActionableError
	verbose bool
}

func (e *displayError) Error() string { return e.Format(e.verbose) }

func (e *displayError) Unwrap() error { return e.ActionableError }

// classifyError maps domain failures to actionable errors linked to issue pages.
// Errors that are already actionable pass through unchanged.
func classifyError(err error) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	ec := issue.NewErrorContext()
	var (
		cycleErr *dag.CycleError
		cmdErr   *executor.CommandError
	)
	switch {
	case errors.Is(err, include.ErrRootFileMissing):
		ec.WithOperation("read Bakefile").
			WithIssue(issue.BakefileNotFoundId).
			WithSuggestions(
				"Create a Bakefile in the current directory",
				"Point to another rule file with --file",
			)
	case errors.Is(err, include.ErrIncludeFileMissing):
		ec.WithOperation("resolve includes").
			WithIssue(issue.IncludeFileNotFoundId).
			WithSuggestion("Relative include paths are resolved against the including file's directory")
	case errors.Is(err, include.ErrInvalidIncludeURL):
		ec.WithOperation("resolve includes").
			WithIssue(issue.InvalidIncludeURLId).
			WithSuggestion("Any include reference containing \"http\" must be an absolute http(s) URL")
	case errors.Is(err, include.ErrIncludeFetch):
		ec.WithOperation("resolve includes").
			WithIssue(issue.IncludeFetchFailedId).
			WithSuggestions(
				"Check the URL and your network connection",
				"Raise include.timeout in the config if the server is slow",
			)
	case errors.As(err, &cycleErr):
		ec.WithOperation("walk dependencies").
			WithIssue(issue.DependencyCycleId).
			WithSuggestion("Run 'bake validate' to list every cycle")
	case errors.As(err, &cmdErr) && errors.Is(err, executor.ErrCommandSpawn):
		ec.WithOperation("run recipe").
			WithResource(cmdErr.Target).
			WithIssue(issue.CommandSpawnFailedId).
			WithSuggestion("Recipe lines are split on whitespace; wrap shell syntax in sh -c or use --runtime virtual")
	case errors.As(err, &cmdErr):
		ec.WithOperation("run recipe").
			WithResource(cmdErr.Target).
			WithIssue(issue.CommandFailedId)
	case errors.Is(err, config.ErrInvalidConfig):
		ec.WithOperation("load configuration").
			WithIssue(issue.ConfigLoadFailedId).
			WithSuggestions(
				"Run 'bake config show' to see the effective values",
				"Check the "+config.EnvPrefix+"_* environment variables",
			)
	default:
		ec.WithOperation("run bake")
	}
	return ec.Wrap(err).Build()
}

// fail converts err into an ExitError for fang to print. In verbose mode the
// linked issue page is rendered to stderr first.
func (s *session) fail(app *App, err error) error {
	ae := classifyError(err)

	if s.verbose {
		if page := ae.Page(); page != nil {
			rendered, renderErr := page.Render(glamourStyle(s.cfg))
			if renderErr != nil {
				slog.Warn("failed to render issue page", "issueID", ae.Issue, "error", renderErr)
			} else {
				fmt.Fprint(app.stderr, rendered)
			}
		}
	}

	return &ExitError{Code: 1, Err: &displayError{ActionableError: ae, verbose: s.verbose}}
}

// glamourStyle picks the issue page style from the configured color scheme.
func glamourStyle(cfg *config.Config) string {
	if cfg == nil {
		return "auto"
	}
	switch cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}
