package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hookshot-sh/hookshot/pkg/autoupdate"
	"github.com/hookshot-sh/hookshot/pkg/config"
)

var (
	updateRepos        []string
	updateBleedingEdge bool
	updateDryRun       bool
	updateSelect       bool
)

var autoupdateCmd = &cobra.Command{
	Use:   "autoupdate",
	Short: "Update pinned revs to the latest released tags",
	Long: `Autoupdate asks every remote repository in the configuration for its
tags and rewrites each rev to the newest release. Comments and formatting
in the configuration survive the rewrite.`,
	Example: `  hookshot autoupdate
  hookshot autoupdate --repo https://github.com/psf/black
  hookshot autoupdate --bleeding-edge --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := defaultConfigPath()

		only := updateRepos
		if updateSelect {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("--select needs an interactive terminal")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			chosen, err := PromptForRepos(autoupdate.RemoteURLs(cfg))
			if err != nil {
				return err
			}
			if len(chosen) == 0 {
				fmt.Println("nothing selected")
				return nil
			}
			only = chosen
		}

		_, err := autoupdate.Run(cmd.Context(), autoupdate.Options{
			ConfigPath:   path,
			OnlyRepos:    only,
			BleedingEdge: updateBleedingEdge,
			Jobs:         jobs,
			DryRun:       updateDryRun,
			Out:          os.Stdout,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(autoupdateCmd)

	autoupdateCmd.Flags().StringArrayVar(&updateRepos, "repo", nil, "only update this repository (may repeat)")
	autoupdateCmd.Flags().BoolVar(&updateBleedingEdge, "bleeding-edge", false, "pin the default branch head instead of the latest tag")
	autoupdateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "report stale revs without rewriting the file")
	autoupdateCmd.Flags().BoolVar(&updateSelect, "select", false, "pick repositories interactively")
}
