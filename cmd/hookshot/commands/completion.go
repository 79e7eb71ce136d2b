package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate completion script",
	Long: `To load completions:

Bash:
  $ source <(hookshot completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ hookshot completion bash > /etc/bash_completion.d/hookshot
  # macOS:
  $ hookshot completion bash > /usr/local/etc/bash_completion.d/hookshot

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ hookshot completion zsh > "${fpath[1]}/_hookshot"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ hookshot completion fish | source

  # To load completions for each session, execute once:
  $ hookshot completion fish > ~/.config/fish/completions/hookshot.fish
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(_ *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			fmt.Print(humanBashCompletion)
		case "zsh":
			rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			rootCmd.GenPowerShellCompletion(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// humanBashCompletion is a handcrafted, minimal bash completion script
// that avoids the robotic verbosity of auto-generated ones.
const humanBashCompletion = `
# hookshot bash completion

_hookshot_completion() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"
    opts="run install uninstall autoupdate validate-config validate-manifest migrate-config sample-config policy schema completion help"

    case "${prev}" in
        run)
            COMPREPLY=( $(compgen -W "--all-files --files --from-ref --to-ref --hook-stage --fail-fast --verbose --output --help" -- ${cur}) )
            return 0
            ;;
        install)
            COMPREPLY=( $(compgen -W "--hook-type --overwrite --allow-missing-config --help" -- ${cur}) )
            return 0
            ;;
        uninstall)
            COMPREPLY=( $(compgen -W "--hook-type --help" -- ${cur}) )
            return 0
            ;;
        autoupdate)
            COMPREPLY=( $(compgen -W "--repo --bleeding-edge --dry-run --select --help" -- ${cur}) )
            return 0
            ;;
        policy)
            COMPREPLY=( $(compgen -W "--rules --help" -- ${cur}) )
            return 0
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh fish powershell" -- ${cur}) )
            return 0
            ;;
        --hook-stage|--hook-type)
            local stages="pre-commit pre-merge-commit pre-push prepare-commit-msg commit-msg post-checkout post-commit post-merge post-rewrite pre-rebase manual"
            COMPREPLY=( $(compgen -W "${stages}" -- ${cur}) )
            return 0
            ;;
        *)
            ;;
    esac

    # Global Flags
    if [[ ${cur} == -* ]] ; then
        COMPREPLY=( $(compgen -W "--help --version --config --color --jobs --log-format --log-level" -- ${cur}) )
        return 0
    fi

    # Subcommands
    COMPREPLY=( $(compgen -W "${opts}" -- ${cur}) )
}

complete -F _hookshot_completion hookshot
`
