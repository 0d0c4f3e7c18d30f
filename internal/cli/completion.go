package cli

import "github.com/spf13/cobra"

// newCompletionCmd creates the completion command.
func (cli *CLI) newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ccswitch.

To load completions:

Bash:
  $ source <(ccswitch completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ ccswitch completion bash > /etc/bash_completion.d/ccswitch
  # macOS:
  $ ccswitch completion bash > $(brew --prefix)/etc/bash_completion.d/ccswitch

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ ccswitch completion zsh > "${fpath[1]}/_ccswitch"
  # You may need to start a new shell for this to take effect.

Fish:
  $ ccswitch completion fish | source
  # To load completions for each session, execute once:
  $ ccswitch completion fish > ~/.config/fish/completions/ccswitch.fish

PowerShell:
  PS> ccswitch completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> ccswitch completion powershell > ccswitch.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
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
	return cmd
}
