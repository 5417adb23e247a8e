// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bakebuild/bake/internal/config"
	"github.com/bakebuild/bake/pkg/bakefile"

	"github.com/spf13/cobra"
)

// newCompletionCommand creates the `bake completion` command.
func newCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for bake.

` + SubtitleStyle.Render("Bash:") + `
  eval "$(bake completion bash)"

` + SubtitleStyle.Render("Zsh:") + `
  bake completion zsh > "${fpath[1]}/_bake"

` + SubtitleStyle.Render("Fish:") + `
  bake completion fish > ~/.config/fish/completions/bake.fish

` + SubtitleStyle.Render("PowerShell:") + `
  bake completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// completeTargets suggests targets from the root rule file only. Includes
// are not resolved so completion never touches the network.
func completeTargets(opts *rootOptions) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		path := opts.file
		if path == "" {
			path = config.DefaultConfig().Bakefile
		}
		if opts.directory != "" && !filepath.IsAbs(path) {
			path = filepath.Join(opts.directory, path)
		}

		f, err := os.Open(path)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		defer f.Close()

		bf, err := bakefile.Parse(f, path)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var targets []string
		for _, target := range bf.Targets() {
			if strings.HasPrefix(target, toComplete) {
				targets = append(targets, target)
			}
		}
		return targets, cobra.ShellCompDirectiveNoFileComp
	}
}
