// Package cli implements the relnotes command tree: extracting a version
// section from a ChangeLog document, enriching its entries with pull request
// context and summaries, and inspecting queue progress.
package cli

import (
	"fmt"
	"os"

	"github.com/ariel-frischer/relnotes/internal/config"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relnotes",
	Short: "Turn raw ChangeLog entries into audience-tailored release notes",
	Long: `relnotes fetches a project's ChangeLog document from GitHub, extracts the
section for one version, classifies each entry by audience (end users vs
developers), resolves entries to merged pull requests, and generates
audience-tailored summaries from the PR description and diff.

Progress is persisted in a local SQLite database, one table per version, so
interrupted runs resume where they stopped and already-summarized entries are
never reprocessed.

Repository, branch, model, and storage settings come from .relnotes/config.yml
(project) or ~/.config/relnotes/config.yml (user), overridable with RELNOTES_*
environment variables.

More info: https://github.com/ariel-frischer/relnotes`,
	Example: `  # Extract the 21.x section and queue its entries
  relnotes extract 21

  # Summarize 10 pending entries (requires RELNOTES_GITHUB_TOKEN and OPENAI_API_KEY)
  relnotes enrich 21

  # Extract and enrich in one shot
  relnotes run 21 --limit 25

  # Show queue progress for a version
  relnotes status 21`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to config file (default: .relnotes/config.yml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Directory for extracted sections, logs, and the database")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug output")
}

// Execute runs the root command and returns any error for exit-code mapping.
// A panic that escapes a command is caught here so the process still exits
// with a diagnostic instead of a stack trace.
func Execute() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected internal error: %v", r)
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}()

	err = rootCmd.Execute()
	if err != nil {
		if cliErr := clierrors.AsCLIError(err); cliErr != nil {
			clierrors.PrintError(cliErr)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	return err
}

// loadConfig loads configuration honoring the persistent --config and
// --data-dir flags.
func loadConfig(cmd *cobra.Command) (*config.Configuration, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "failed to load config",
			"Check the syntax of .relnotes/config.yml",
			"Run with --config to point at an explicit config file")
	}

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}

	return cfg, nil
}
