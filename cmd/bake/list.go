// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newListCommand(app *App, s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the targets of the Bakefile",
		Long: `List every target with its dependencies, in declaration order.

Targets declared more than once are listed once; the first declaration is
the one bake runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bf, err := s.load(cmd, app)
			if err != nil {
				return err
			}

			targets := bf.Targets()
			if len(targets) == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no targets)"))
				return nil
			}
			for _, target := range targets {
				rule, _ := bf.Lookup(target)
				line := targetStyle.Render(target)
				if len(rule.Dependencies) > 0 {
					line += SubtitleStyle.Render(": " + strings.Join(rule.Dependencies, " "))
				}
				fmt.Fprintln(app.stdout, line)
			}
			return nil
		},
	}
}
