package commands

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/engine/policy"
)

var policyRules string

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Evaluate CEL policy rules over the configuration",
	Long: `Policy compiles the rules file and evaluates every rule against every
configured hook. A rule that evaluates to true is a violation. Error
severity findings fail the command, warnings do not.`,
	Example: `  hookshot policy --rules .hookshot-policy.yaml`,
	Args:    cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		if policyRules == "" {
			return usageError{errors.New("--rules is required")}
		}

		path := defaultConfigPath()
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		findings, err := policy.Check(policyRules, path, cfg, nil)
		if err != nil {
			return err
		}

		printFindings(os.Stdout, findings)
		if findings.HasErrors() {
			return errFailed
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(policyCmd)

	policyCmd.Flags().StringVar(&policyRules, "rules", "", "CEL rules file to evaluate")
}
