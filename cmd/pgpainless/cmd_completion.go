package main

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for pgpainless.

To load completions:

Bash:
  $ source <(pgpainless completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ pgpainless completion bash > /etc/bash_completion.d/pgpainless
  # macOS:
  $ pgpainless completion bash > $(brew --prefix)/etc/bash_completion.d/pgpainless

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ pgpainless completion zsh > "${fpath[1]}/_pgpainless"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ pgpainless completion fish | source

  # To load completions for each session, execute once:
  $ pgpainless completion fish > ~/.config/fish/completions/pgpainless.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish"},
	Args:                  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			_ = cmd.Root().GenFishCompletion(os.Stdout, true)
		default:
			_ = cmd.Help()
		}
	},
}
