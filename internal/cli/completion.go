package cli

import (
	"io"

	"github.com/spf13/cobra"
)

// completionWriters maps each supported shell to its script generator.
var completionWriters = map[string]func(*cobra.Command, io.Writer) error{
	"bash":       (*cobra.Command).GenBashCompletion,
	"zsh":        (*cobra.Command).GenZshCompletion,
	"fish":       func(c *cobra.Command, w io.Writer) error { return c.GenFishCompletion(w, true) },
	"powershell": (*cobra.Command).GenPowerShellCompletionWithDesc,
}

func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion <bash|zsh|fish|powershell>",
		Short: "Print a shell completion script",
		Long: `Print a completion script for the given shell. Effect names complete
for every command that takes a graph source.

  $ source <(metagraph completion bash)
  $ metagraph completion zsh > "${fpath[1]}/_metagraph"
  $ metagraph completion fish > ~/.config/fish/completions/metagraph.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return completionWriters[args[0]](cmd.Root(), out)
		},
	}
}
