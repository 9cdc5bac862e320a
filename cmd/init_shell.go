package cmd

import (
	"strings"

	"github.com/GioMjds/commitly/internal/shell"
	"github.com/spf13/cobra"
)

var initShellCmd = &cobra.Command{
	Use:   "init <shell>",
	Short: "Output shell integration script",
	Long: `Output shell integration script for eval.

Generates shell-specific initialization code that sets up:
- A prompt hook exporting COMMITLY_* status variables
- A commitly_prompt_info helper function

Supported shells: ` + strings.Join(shell.Supported(), ", "),
	Example: `  # Add to ~/.bashrc
  eval "$(commitly init bash)"

  # Add to ~/.zshrc
  eval "$(commitly init zsh)"

  # Add to ~/.config/fish/config.fish
  commitly init fish | source`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := shell.WriteInit(cmd.OutOrStdout(), args[0]); err != nil {
			return userError("%v", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initShellCmd)
}
