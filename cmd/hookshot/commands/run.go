package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hookshot-sh/hookshot/pkg/engine"
	"github.com/hookshot-sh/hookshot/pkg/engine/report"
)

var (
	runAllFiles bool
	runFiles    []string
	runFromRef  string
	runToRef    string
	runStage    string
	runFailFast bool
	runVerbose  bool
	runOutput   string
)

var runCmd = &cobra.Command{
	Use:   "run [HOOK]...",
	Short: "Run the configured hooks against the selected files",
	Long: `Run executes every hook configured for the chosen stage, or only the
hooks named as arguments. Without file flags it runs on the staged files,
which is what the installed git shim does on every commit.`,
	Example: `  hookshot run
  hookshot run trailing-whitespace --all-files
  hookshot run --from-ref origin/main --to-ref HEAD`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if runOutput != "text" && runOutput != "json" {
			return usageError{fmt.Errorf("unknown output format %q, expected text or json", runOutput)}
		}

		opts := []engine.Option{engine.WithOptions(engine.Options{
			ConfigPath:    configPath,
			Stage:         runStage,
			HookIDs:       args,
			AllFiles:      runAllFiles,
			Files:         runFiles,
			FromRef:       runFromRef,
			ToRef:         runToRef,
			FailFast:      runFailFast,
			Verbose:       runVerbose,
			Jobs:          jobs,
			OtelEndpoint:  otelEndpoint,
			SkipTelemetry: noTelemetry,
		})}

		// JSON mode keeps stdout clean for the report document.
		if runOutput == "text" {
			renderer := report.NewRenderer(os.Stdout)
			renderer.Color = colorEnabled()
			renderer.Verbose = runVerbose
			opts = append(opts, engine.WithRenderer(renderer))
		}

		eng, err := engine.New(cmd.Context(), opts...)
		if err != nil {
			return err
		}

		run, err := eng.Run(cmd.Context())
		if err != nil && !errors.Is(err, engine.ErrHooksFailed) {
			return err
		}
		if runOutput == "json" && run != nil {
			if werr := report.WriteJSON(os.Stdout, run); werr != nil {
				return werr
			}
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runAllFiles, "all-files", "a", false, "run on all tracked files")
	runCmd.Flags().StringSliceVar(&runFiles, "files", nil, "run on these files only")
	runCmd.Flags().StringVar(&runFromRef, "from-ref", "", "run on files changed since this ref (needs --to-ref)")
	runCmd.Flags().StringVar(&runToRef, "to-ref", "", "upper bound for --from-ref")
	runCmd.Flags().StringVar(&runStage, "hook-stage", "pre-commit", "stage to run hooks for")
	runCmd.Flags().BoolVar(&runFailFast, "fail-fast", false, "stop after the first failing hook")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "show output of passing hooks")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "text", "output format: text or json")
}
