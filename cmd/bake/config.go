// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/bakebuild/bake/internal/config"
	"github.com/bakebuild/bake/internal/watch"

	"github.com/spf13/cobra"
)

// newConfigCommand creates the `bake config` command tree.
func newConfigCommand(app *App, opts *rootOptions, s *session) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage bake configuration",
		Long: `Manage bake configuration.

Configuration is read from the first of:
  - the file given with --config
  - Linux: ~/.config/bake/config.cue
    macOS: ~/Library/Application Support/bake/config.cue
    Windows: %APPDATA%\bake\config.cue
  - ./bake.cue

Every key can be overridden with a BAKE_ environment variable, e.g.
BAKE_RUNTIME=virtual or BAKE_INCLUDE_TIMEOUT=10s. List values such as
watch.ignore take a comma-separated string.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.Config.Path(loadOptions(opts, s))
			if err != nil {
				return s.fail(app, err)
			}
			showConfig(app, s.cfg, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.Config.Path(loadOptions(opts, s))
			if err != nil {
				return s.fail(app, err)
			}
			if path == "" {
				dir, err := config.ConfigDir()
				if err != nil {
					return s.fail(app, err)
				}
				fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("(not created)"), dir)
				return nil
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(app.stdout, config.GenerateCUE(s.cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return s.fail(app, err)
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("✓ config:"), path)
			return nil
		},
	})

	return cfgCmd
}

func loadOptions(opts *rootOptions, s *session) config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: opts.configPath, BaseDir: s.workDir}
}

func showConfig(app *App, cfg *config.Config, path string) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	if path != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("bakefile"), valueStyle.Render(cfg.Bakefile))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("runtime"), valueStyle.Render(cfg.Runtime.String()))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("execution"))
	fmt.Fprintf(app.stdout, "  once: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.Execution.Once)))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("include"))
	fmt.Fprintf(app.stdout, "  timeout: %s\n", valueStyle.Render(cfg.Include.Timeout.String()))
	fmt.Fprintf(app.stdout, "  user_agent: %s\n", valueStyle.Render(cfg.Include.UserAgent))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("watch"))
	fmt.Fprintf(app.stdout, "  debounce: %s\n", valueStyle.Render(cfg.Watch.Debounce.String()))
	fmt.Fprintf(app.stdout, "  ignore: %s\n", valueStyle.Render(strings.Join(cfg.Watch.Ignore, ", ")))
	fmt.Fprintf(app.stdout, "  always ignored: %s\n", valueStyle.Render(strings.Join(watch.DefaultIgnores(), ", ")))

	fmt.Fprintln(app.stdout)
	fmt.Fprintf(app.stdout, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(app.stdout, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
}
