package main

import (
	"github.com/spf13/cobra"

	"github.com/promptdeck/promptdeck/internal/api"
	"github.com/promptdeck/promptdeck/version"
)

var (
	cfgFile      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "promptdeck",
	Short: "Prompt management backend with versioning and test runs",
	Long: `Promptdeck is a backend for managing LLM prompts across projects.

It provides:
  - Automatic prompt versioning (significant edits mint new versions)
  - Test sets executed against any model via OpenRouter or OpenAI
  - A model catalog search and a single-shot playground
  - Per-user provider API keys`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.promptdeck/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
