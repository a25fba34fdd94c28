package cli

import (
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/store"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <version>",
	Short: "Show queue progress for a version",
	Long: `Show how many entries for a version are pending, done, and not supported.

A version that was never extracted reports zero in every column.

Examples:
  relnotes status 21`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatus(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, version string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	queue, err := store.Open(cfg.DataDir, cfg.DBName, version)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "failed to open work queue")
	}
	defer queue.Close()

	return printCounts(cmd.OutOrStdout(), queue, version)
}
