package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/diag"
	"github.com/hookshot-sh/hookshot/pkg/manifest"
	"github.com/hookshot-sh/hookshot/pkg/registry"
)

var (
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5555")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C"))
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config [FILE]...",
	Short: "Check hook configuration files for mistakes",
	Long: `Validate-config parses each file as a hook configuration and reports
schema violations, bad regexes, unknown stages and hooks that the pinned
repositories do not advertise.`,
	RunE: func(_ *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{defaultConfigPath()}
		}

		validator := config.NewValidator(config.WithHookLookup(registry.KnownHookIDs))
		failed := false
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			findings := validator.Validate(path, data)
			printFindings(os.Stdout, findings)
			if findings.HasErrors() {
				failed = true
			}
		}
		if failed {
			return errFailed
		}
		return nil
	},
}

var validateManifestCmd = &cobra.Command{
	Use:   "validate-manifest [FILE]...",
	Short: "Check hook manifest files for mistakes",
	RunE: func(_ *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{manifest.FileName}
		}

		failed := false
		for _, path := range paths {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			findings := manifest.Validate(path, data)
			printFindings(os.Stdout, findings)
			if findings.HasErrors() {
				failed = true
			}
		}
		if failed {
			return errFailed
		}
		return nil
	},
}

func printFindings(w io.Writer, findings diag.List) {
	useColor := colorEnabled()
	for _, f := range findings {
		line := f.String()
		if useColor {
			if f.Severity == diag.SeverityError {
				line = errorStyle.Render(line)
			} else {
				line = warnStyle.Render(line)
			}
		}
		fmt.Fprintln(w, line)
	}
}

func init() {
	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(validateManifestCmd)
}
