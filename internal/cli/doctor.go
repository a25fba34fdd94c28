package cli

import (
	"fmt"

	"github.com/ariel-frischer/relnotes/internal/health"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that relnotes is ready to run",
	Long: `Check configuration, credentials, and local storage.

Verifies that the config loads, the data directory is writable, and the
credentials enrich needs are present. No network requests are made and no
credential leaves the machine.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		report := health.RunHealthChecks(cfg)
		fmt.Fprint(cmd.OutOrStdout(), health.FormatReport(report))

		if !report.Passed {
			return NewExitError(ExitInvalidArguments, fmt.Errorf("environment checks failed"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
