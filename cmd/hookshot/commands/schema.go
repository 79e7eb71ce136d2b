package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hookshot-sh/hookshot/pkg/config"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration JSON Schema",
	Long: `Schema emits a JSON Schema document for .pre-commit-config.yaml,
suitable for editor integrations and CI-side validation.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		out, err := config.Schema()
		if err != nil {
			return err
		}
		if _, err := os.Stdout.Write(out); err != nil {
			return err
		}
		fmt.Println()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
