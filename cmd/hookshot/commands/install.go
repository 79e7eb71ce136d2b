package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/hookshot-sh/hookshot/pkg/install"
)

var (
	installHookTypes   []string
	installOverwrite   bool
	installAllowNoConf bool
	uninstallHookTypes []string
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the git hook shims",
	Long: `Install writes a small shell shim into the repository's hooks directory
for each requested hook type. An existing hook that hookshot did not write
is moved aside to <type>.legacy and keeps running before the shim.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := install.Install(cmd.Context(), install.Options{
			HookTypes:          installHookTypes,
			ConfigPath:         configPath,
			Overwrite:          installOverwrite,
			AllowMissingConfig: installAllowNoConf,
			Out:                os.Stdout,
		})
		return err
	},
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the git hook shims",
	Long: `Uninstall removes the shims hookshot installed and restores any hook
that was preserved as <type>.legacy. Hooks written by other tools are
left alone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := install.Uninstall(cmd.Context(), install.Options{
			HookTypes: uninstallHookTypes,
			Out:       os.Stdout,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(uninstallCmd)

	installCmd.Flags().StringSliceVarP(&installHookTypes, "hook-type", "t", nil, "hook type to install (may repeat)")
	installCmd.Flags().BoolVarP(&installOverwrite, "overwrite", "f", false, "replace an existing hook instead of chaining it")
	installCmd.Flags().BoolVar(&installAllowNoConf, "allow-missing-config", false, "let the shim pass when the configuration is absent")

	uninstallCmd.Flags().StringSliceVarP(&uninstallHookTypes, "hook-type", "t", nil, "hook type to uninstall (may repeat)")
}
