// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bakebuild/bake/internal/config"
	"github.com/bakebuild/bake/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// rootOptions holds the raw flag values.
	rootOptions struct {
		rule       string
		file       string
		directory  string
		configPath string
		runtime    string
		env        []string
		verbose    bool
		dryRun     bool
		once       bool
		watch      bool
	}

	// session is the effective configuration of one invocation: flags
	// merged over the loaded config.
	session struct {
		cfg     *config.Config
		logger  *slog.Logger
		file    string
		workDir string
		runtime config.RuntimeMode
		verbose bool
		once    bool
	}
)

// NewRootCommand builds the bake command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}
	s := &session{}

	root := &cobra.Command{
		Use:   "bake [target]",
		Short: "Run targets from a Bakefile",
		Long: TitleStyle.Render("bake") + SubtitleStyle.Render(" - a small declarative build runner") + `

bake reads a Bakefile, walks the dependencies of the requested target
depth first, and runs each recipe line after variable substitution.

` + SubtitleStyle.Render("Bakefile format:") + `
  # comment
  CC=gcc                     define a variable
  build: deps                open a rule
  	$(CC) -o app main.c      recipe line (indented)
  include:                   pull in more rule files
  	common.bake
  	"https://example.com/shared.bake"

` + SubtitleStyle.Render("Examples:") + `
  bake build                 Run the 'build' target
  bake -r build -v           Same, echoing command output
  bake -n release            Show what 'release' would run
  bake -w test               Re-run 'test' on every change
  bake list                  List targets`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		ValidArgsFunction: completeTargets(opts),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.init(cmd, app, opts)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := opts.target(args)
			if err != nil {
				return err
			}
			if opts.watch {
				return watchTarget(cmd, app, s, opts, target)
			}
			return runTarget(cmd, app, s, opts, target)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "echo command output and debug logs")
	pf.StringVarP(&opts.file, "file", "f", "", "rule file to read (default from config, else ./Bakefile)")
	pf.StringVarP(&opts.directory, "directory", "C", "", "change to this directory before doing anything")
	pf.StringVar(&opts.configPath, "config", "", "config file (default is $HOME/.config/bake/config.cue)")

	f := root.Flags()
	f.StringVarP(&opts.rule, "rule", "r", "", "target to run")
	f.BoolVarP(&opts.dryRun, "dry-run", "n", false, "print the commands that would run without running them")
	f.BoolVar(&opts.once, "once", false, "run each target at most once")
	f.BoolVarP(&opts.watch, "watch", "w", false, "re-run the target when files next to the Bakefile change")
	f.StringVar(&opts.runtime, "runtime", "", "runtime for recipe lines: native or virtual")
	f.StringArrayVarP(&opts.env, "env", "e", nil, "extra KEY=VALUE for recipe processes (repeatable)")

	root.AddCommand(
		newListCommand(app, s),
		newInspectCommand(app, s),
		newValidateCommand(app, s),
		newConfigCommand(app, opts, s),
		newCompletionCommand(),
	)

	return root
}

// target returns the requested target from --rule or the positional argument.
func (o *rootOptions) target(args []string) (string, error) {
	switch {
	case len(args) == 1 && o.rule != "" && args[0] != o.rule:
		return "", fmt.Errorf("conflicting targets: --rule %q and argument %q", o.rule, args[0])
	case len(args) == 1:
		return args[0], nil
	case o.rule != "":
		return o.rule, nil
	default:
		return "", errors.New("no target given: pass a target or use --rule/-r")
	}
}

// init loads configuration and merges the flags over it.
func (s *session) init(cmd *cobra.Command, app *App, opts *rootOptions) error {
	if opts.directory != "" {
		abs, err := filepath.Abs(opts.directory)
		if err != nil {
			return fmt.Errorf("resolve --directory: %w", err)
		}
		s.workDir = abs
	}

	s.verbose = opts.verbose
	s.logger = slog.New(newLogger(app.stderr, s.verbose))

	cfg, err := app.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: opts.configPath,
		BaseDir:        s.workDir,
	})
	if err != nil {
		return s.fail(app, err)
	}
	s.cfg = cfg

	s.once = opts.once || cfg.Execution.Once
	if cfg.UI.Verbose && !s.verbose {
		s.verbose = true
		s.logger = slog.New(newLogger(app.stderr, s.verbose))
	}
	slog.SetDefault(s.logger)

	s.file = cfg.Bakefile
	if opts.file != "" {
		s.file = opts.file
	}
	if s.workDir != "" && !filepath.IsAbs(s.file) {
		s.file = filepath.Join(s.workDir, s.file)
	}

	s.runtime = cfg.Runtime
	if opts.runtime != "" {
		s.runtime = config.RuntimeMode(opts.runtime)
	}
	if valid, errs := s.runtime.IsValid(); !valid {
		return s.fail(app, issue.NewErrorContext().
			WithOperation("select runtime").
			WithResource(s.runtime.String()).
			WithIssue(issue.InvalidRuntimeModeId).
			WithSuggestion("Use --runtime native or --runtime virtual").
			Wrap(errs[0]).
			Build())
	}

	s.logger.Debug("configuration loaded",
		"bakefile", s.file, "runtime", s.runtime, "once", s.once, "workdir", s.workDir)
	return nil
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Run executes the CLI with os.Args and returns the process exit code.
func Run() int {
	root := NewRootCommand(NewApp(Dependencies{}))
	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return 1
	}
	return 0
}

// Execute runs the CLI and exits the process. This is called by main.main().
func Execute() {
	os.Exit(Run())
}
