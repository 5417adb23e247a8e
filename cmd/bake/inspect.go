// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bakebuild/bake/pkg/bakefile"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

func newInspectCommand(app *App, s *session) *cobra.Command {
	var format string

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the fully loaded Bakefile model",
		Long: `Print the model bake builds from the root Bakefile and every include:
sources in parse order, variables in declaration order, and all rules
(including repeated targets).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bf, err := s.load(cmd, app)
			if err != nil {
				return err
			}
			return writeModel(app.stdout, bf, format)
		},
	}

	inspectCmd.Flags().StringVarP(&format, "format", "o", formatText, "output format: text, json, yaml or toml")
	_ = inspectCmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{formatText, formatJSON, formatYAML, formatTOML}, cobra.ShellCompDirectiveNoFileComp))

	return inspectCmd
}

func writeModel(w io.Writer, bf *bakefile.Bakefile, format string) error {
	switch format {
	case formatText:
		writeModelText(w, bf)
		return nil
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(bf)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(bf); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case formatTOML:
		if err := toml.NewEncoder(w).Encode(bf); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (valid: text, json, yaml, toml)", format)
	}
}

func writeModelText(w io.Writer, bf *bakefile.Bakefile) {
	fmt.Fprintln(w, TitleStyle.Render("Sources"))
	for _, src := range bf.Sources {
		fmt.Fprintln(w, "  "+src)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Variables"))
	if len(bf.Variables) == 0 {
		fmt.Fprintln(w, "  "+SubtitleStyle.Render("(none)"))
	}
	for _, v := range bf.Variables {
		fmt.Fprintf(w, "  %s = %s\n", CmdStyle.Render(v.Name), v.Value)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Rules"))
	if len(bf.Rules) == 0 {
		fmt.Fprintln(w, "  "+SubtitleStyle.Render("(none)"))
	}
	for _, rule := range bf.Rules {
		fmt.Fprintf(w, "  %s %s\n",
			targetStyle.Render(rule.Target+":"+joinPrefixed(rule.Dependencies)),
			SubtitleStyle.Render("("+rule.Source+")"))
		for _, line := range rule.Recipe {
			fmt.Fprintln(w, "    "+line)
		}
	}
}

func joinPrefixed(deps []string) string {
	if len(deps) == 0 {
		return ""
	}
	return " " + strings.Join(deps, " ")
}
