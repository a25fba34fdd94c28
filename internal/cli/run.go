package cli

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <version>",
	Short: "Extract a version's section and enrich its entries in one shot",
	Long: `Run the full pipeline for a version: extract the ChangeLog section, queue
its classified entries, then immediately enrich a batch of pending entries.

Equivalent to 'relnotes extract <version>' followed by
'relnotes enrich <version>' with the same flags.

Examples:
  relnotes run 21
  relnotes run 21 --limit 50 --random`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runExtract(cmd, args[0]); err != nil {
			return err
		}
		return runEnrich(cmd, args[0])
	},
}

func init() {
	runCmd.Flags().IntP("limit", "l", 0, "Max entries to process this run (default: batch_limit from config)")
	runCmd.Flags().Bool("random", false, "Process pending entries in random order")
	runCmd.Flags().String("token", "", "GitHub API token (overrides RELNOTES_GITHUB_TOKEN)")
	rootCmd.AddCommand(runCmd)
}
