package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/hookshot-sh/hookshot/internal/logging"
	"github.com/hookshot-sh/hookshot/pkg/config"
	"github.com/hookshot-sh/hookshot/pkg/engine"
	"github.com/hookshot-sh/hookshot/pkg/version"
)

// errFailed marks hook or validation failures that were already reported
// to the user; Execute maps it to exit code 1 without reprinting.
var errFailed = errors.New("failures reported")

// usageError wraps bad invocations so Execute can exit 2.
type usageError struct{ err error }

func (u usageError) Error() string { return u.err.Error() }
func (u usageError) Unwrap() error { return u.err }

var (
	settingsFile string
	configPath   string
	colorMode    string
	logFormat    string
	logLevel     string
	jobs         int
	otelEndpoint string
	noTelemetry  bool
)

var rootCmd = &cobra.Command{
	Use:   "hookshot",
	Short: "Git hook manager and configuration toolchain",
	Long: `hookshot runs the hooks pinned in .pre-commit-config.yaml and keeps
that file healthy: validation, migration, rev updates and policy checks.`,
	Version:       version.Current,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var usage usageError
	switch {
	case errors.Is(err, errFailed) || errors.Is(err, engine.ErrHooksFailed):
		os.Exit(1)
	case errors.As(err, &usage):
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initSettings)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&settingsFile, "settings", "", "operator settings file (default ~/.hookshot.yaml)")
	pf.StringVarP(&configPath, "config", "c", "", "hook configuration path (default .pre-commit-config.yaml)")
	pf.StringVar(&colorMode, "color", "auto", "colorize output: auto, always or never")
	pf.StringVar(&logFormat, "log-format", "text", "log format: text or json")
	pf.StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	pf.IntVarP(&jobs, "jobs", "j", 0, "workers for command batches (default: one per CPU)")
	pf.StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP trace endpoint")
	pf.BoolVar(&noTelemetry, "no-telemetry", false, "disable trace export")

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		backfillFromSettings(cmd.Root().PersistentFlags())
		logging.Setup(logFormat, logLevel, os.Stderr)
		applyColorMode()
	}

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		renderHelp(cmd)
	})
}

func initSettings() {
	if settingsFile != "" {
		viper.SetConfigFile(settingsFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.SetConfigFile(filepath.Join(home, ".hookshot.yaml"))
			viper.SetConfigType("yaml")
		}
	}
	viper.SetEnvPrefix("HOOKSHOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	viper.ReadInConfig()
}

// backfillFromSettings fills flags the user did not pass from the
// settings file and HOOKSHOT_* environment.
func backfillFromSettings(flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) {
			flags.Set(f.Name, viper.GetString(f.Name))
		}
	})
}

// defaultConfigPath resolves the hook configuration path for commands
// that operate on the file directly.
func defaultConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.FileName
}

func colorEnabled() bool {
	switch colorMode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}

// applyColorMode forces or strips styling; in auto mode lipgloss detects
// the terminal itself.
func applyColorMode() {
	switch colorMode {
	case "always":
		lipgloss.SetColorProfile(termenv.TrueColor)
	case "never":
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

func renderHelp(cmd *cobra.Command) {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00FF99")).
		MarginBottom(1)

	flagStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA"))

	fmt.Println(titleStyle.Render(fmt.Sprintf("HOOKSHOT %s", version.Current)))
	fmt.Println(cmd.Short)

	fmt.Println(titleStyle.Render("USAGE"))
	fmt.Printf("  %s\n\n", cmd.UseLine())

	if cmd.HasAvailableSubCommands() {
		fmt.Println(titleStyle.Render("COMMANDS"))
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() {
				fmt.Printf("  %-18s %s\n", c.Name(), c.Short)
			}
		}
		fmt.Println("")
	}

	if cmd == rootCmd {
		fmt.Println(titleStyle.Render("EXAMPLES"))
		fmt.Println("  hookshot install                   # run hooks on every commit")
		fmt.Println("  hookshot run --all-files           # one-off sweep of the whole tree")
		fmt.Println("  hookshot autoupdate --dry-run      # see which revs are stale")
		fmt.Println("")
	}

	fmt.Println(titleStyle.Render("FLAGS"))
	printFlags := func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		output := fmt.Sprintf("  --%-22s %s", f.Name, f.Usage)
		if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" {
			output += fmt.Sprintf(" (default %s)", f.DefValue)
		}
		fmt.Println(flagStyle.Render(output))
	}
	cmd.LocalFlags().VisitAll(printFlags)
	cmd.InheritedFlags().VisitAll(printFlags)
	fmt.Println("")
}
