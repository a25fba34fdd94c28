package cli

import (
	"fmt"
	"io"
	"net/http"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/enrich"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/llm"
	"github.com/ariel-frischer/relnotes/internal/output"
	"github.com/ariel-frischer/relnotes/internal/progress"
	"github.com/ariel-frischer/relnotes/internal/resolver"
	"github.com/ariel-frischer/relnotes/internal/store"
	"github.com/spf13/cobra"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <version>",
	Short: "Resolve queued entries to PRs and generate summaries",
	Long: `Process pending queue entries for a version: resolve each to a merged pull
request, fetch the PR diff, and generate an audience-tailored summary.

Entries that cannot be resolved, whose diff is unavailable, or whose
summarization fails are marked not-supported with a reason and never retried.
Successful entries are marked done with the PR context attached. Either way,
each entry is finalized exactly once; rerunning enrich only touches entries
still pending.

The per-entry results of the batch are appended to
<data_dir>/summaries_v<version>.txt.

Requires a GitHub token (--token or RELNOTES_GITHUB_TOKEN) and a
summarization API key (OPENAI_API_KEY or RELNOTES_LLM_API_KEY).

Examples:
  relnotes enrich 21              # Process up to batch_limit entries
  relnotes enrich 21 --limit 50   # Larger batch
  relnotes enrich 21 --random     # Sample entries in random order`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEnrich(cmd, args[0])
	},
}

func init() {
	enrichCmd.Flags().IntP("limit", "l", 0, "Max entries to process this run (default: batch_limit from config)")
	enrichCmd.Flags().Bool("random", false, "Process pending entries in random order")
	enrichCmd.Flags().String("token", "", "GitHub API token (overrides RELNOTES_GITHUB_TOKEN)")
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, version string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = cfg.BatchLimit
	}
	randomize, _ := cmd.Flags().GetBool("random")

	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = cfg.GitHubToken
	}
	if token == "" {
		return clierrors.NewConfigError("GitHub token is required for PR lookup",
			"Set the RELNOTES_GITHUB_TOKEN environment variable",
			"Or pass --token on the command line")
	}
	if cfg.LLMAPIKey == "" {
		return clierrors.NewConfigError("summarization API key is required",
			"Set the OPENAI_API_KEY environment variable",
			"Or set RELNOTES_LLM_API_KEY for a non-OpenAI endpoint")
	}

	host, err := github.New(token, cfg.Owner, cfg.Repo,
		github.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout()}))
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}

	summarizer, err := llm.New(cfg.LLMAPIKey, cfg.Model, llm.WithBaseURL(cfg.LLMBaseURL))
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}

	queue, err := store.Open(cfg.DataDir, cfg.DBName, version)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "failed to open work queue")
	}
	defer queue.Close()

	out := cmd.OutOrStdout()
	display := progress.NewDisplay(out, progress.DetectTerminalCapabilities())
	display.Start(fmt.Sprintf("Enriching up to %d entries for version %s", limit, version))

	orchestrator := enrich.New(queue, resolver.New(host, cfg.Owner, cfg.Repo), host, summarizer)
	orchestrator.MaxDiffChars = cfg.MaxDiffChars
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		orchestrator.Logf = func(format string, args ...any) {
			fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
		}
	}

	batchLog, err := orchestrator.RunBatch(cmd.Context(), limit, randomize)
	if err != nil {
		display.Fail("Enrichment failed")
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "enrichment batch failed")
	}
	display.Succeed("Batch complete")

	if batchLog != "" {
		logPath := changelog.SummaryFilePath(cfg.DataDir, version)
		if _, err := changelog.AppendText(batchLog+enrich.LogSeparator, logPath); err != nil {
			return clierrors.Wrap(err, clierrors.Runtime)
		}
		output.PrintInfo(out, fmt.Sprintf("Batch log appended to %s", logPath))
	}

	if err := printCounts(out, queue, version); err != nil {
		return err
	}
	output.PrintBatchEnd(out)
	return nil
}

// printCounts prints the work queue tallies for a version.
func printCounts(out io.Writer, queue *store.Queue, version string) error {
	pending, done, notSupported, err := queue.Counts()
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "failed to read queue counts")
	}
	output.PrintSuccess(out, fmt.Sprintf("Version %s: %d done, %d not supported, %d pending",
		version, done, notSupported, pending))
	return nil
}
