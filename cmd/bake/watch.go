// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bakebuild/bake/internal/watch"

	"github.com/spf13/cobra"
)

// watchTarget runs target once, then again whenever a file next to the
// Bakefile changes. The Bakefile and its includes are reloaded for every run.
// Run failures are printed and watching continues until interrupted.
func watchTarget(cmd *cobra.Command, app *App, s *session, opts *rootOptions, target string) error {
	if opts.dryRun {
		return errors.New("--watch and --dry-run cannot be used together")
	}

	absFile, err := filepath.Abs(s.file)
	if err != nil {
		return s.fail(app, err)
	}

	build := func() {
		if err := runTarget(cmd, app, s, opts, target); err != nil {
			fmt.Fprintln(app.stderr, WarningStyle.Render("!")+" "+err.Error())
		}
	}

	w, err := watch.New(watch.Config{
		BaseDir:  filepath.Dir(absFile),
		Ignore:   s.cfg.Watch.Ignore,
		Debounce: s.cfg.Watch.Debounce,
		Logger:   s.logger,
		OnChange: func(_ context.Context, changed []string) error {
			fmt.Fprintln(app.stdout, SubtitleStyle.Render("changed: "+strings.Join(changed, ", ")))
			build()
			return nil
		},
	})
	if err != nil {
		return s.fail(app, err)
	}

	build()
	fmt.Fprintln(app.stdout, SubtitleStyle.Render("watching "+w.BaseDir()+" (Ctrl+C to stop)"))
	if err := w.Run(cmd.Context()); err != nil {
		return s.fail(app, err)
	}
	return nil
}
