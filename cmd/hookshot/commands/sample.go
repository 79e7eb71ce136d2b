package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hookshot-sh/hookshot/pkg/config"
)

var sampleConfigCmd = &cobra.Command{
	Use:   "sample-config",
	Short: "Print a starter configuration",
	Args:  cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Print(config.Sample)
	},
}

var migrateConfigCmd = &cobra.Command{
	Use:   "migrate-config",
	Short: "Rewrite legacy configuration layouts in place",
	Long: `Migrate-config upgrades a configuration that still uses the historical
top-level repository list or sha: pins to the current layout. Comments and
formatting outside the migrated nodes are preserved.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		path := defaultConfigPath()
		changed, err := config.MigrateFile(path)
		if err != nil {
			return err
		}
		if changed {
			fmt.Printf("%s migrated\n", path)
		} else {
			fmt.Printf("%s is already up to date\n", path)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleConfigCmd)
	rootCmd.AddCommand(migrateConfigCmd)
}
