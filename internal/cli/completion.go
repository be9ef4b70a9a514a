package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts. Completion for the
// diagram subcommands covers flags and file arguments only.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for alluvial.

  bash:        source <(alluvial completion bash)
  zsh:         alluvial completion zsh > "${fpath[1]}/_alluvial"
  fish:        alluvial completion fish > ~/.config/fish/completions/alluvial.fish
  powershell:  alluvial completion powershell | Out-String | Invoke-Expression

Start a new shell afterwards for the completions to load.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
