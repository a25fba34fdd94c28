package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/github"
	"github.com/ariel-frischer/relnotes/internal/output"
	"github.com/ariel-frischer/relnotes/internal/store"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract <version>",
	Short: "Extract one version's ChangeLog section and queue its entries",
	Long: `Extract the ChangeLog section for a major version and queue its entries.

The ChangeLog document is downloaded from the configured repository branch,
the section matching the version is located by its banner header, and each
entry line is classified by audience (end users vs developers) and inserted
into the local work queue as pending. Lines already queued for this version
are skipped, so repeated extractions are safe.

The raw section is also saved to <data_dir>/changelog_v<version>.txt.

Examples:
  relnotes extract 21        # Section for the 21.0.0 release line
  relnotes extract 20        # Section for the 20.0.0 release line`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExtract(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, version string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	output.PrintStepHeader(out, 1, 3, fmt.Sprintf("Downloading %s from %s/%s@%s", cfg.ChangelogPath, cfg.Owner, cfg.Repo, cfg.Branch))

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HTTPTimeout())
	defer cancel()

	document, err := github.FetchRawFile(ctx, cfg.Owner, cfg.Repo, cfg.Branch, cfg.ChangelogPath)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewExitError(ExitTimeout, clierrors.WrapWithMessage(err, clierrors.Network,
				"timed out downloading ChangeLog",
				"Raise http_timeout_secs in .relnotes/config.yml",
				"Check network connectivity and try again"))
		}
		if errors.Is(err, github.ErrNotFound) {
			return NewExitError(ExitDocumentNotFound, clierrors.WrapWithMessage(err, clierrors.Network,
				"ChangeLog document not found",
				fmt.Sprintf("Check that %s exists on branch %q of %s/%s", cfg.ChangelogPath, cfg.Branch, cfg.Owner, cfg.Repo),
				"Override the location with changelog_path/branch in .relnotes/config.yml"))
		}
		return clierrors.WrapWithMessage(err, clierrors.Network, "failed to download ChangeLog",
			"Check network connectivity and try again")
	}

	output.PrintStepHeader(out, 2, 3, fmt.Sprintf("Extracting section for version %s", version))

	section := changelog.ExtractSection(document, version)
	if len(section) == 0 {
		return NewExitError(ExitDocumentNotFound, clierrors.NewRuntimeError(
			fmt.Sprintf("no ChangeLog section found for version %s", version),
			"Check the version against the document's banner headers",
			"Major versions are matched as <version>.0.0 with optional patch suffixes"))
	}

	sectionPath := changelog.SectionFilePath(cfg.DataDir, version)
	if _, err := changelog.SaveLines(section, sectionPath); err != nil {
		return clierrors.Wrap(err, clierrors.Runtime)
	}
	output.PrintInfo(out, fmt.Sprintf("Section saved to %s (%d lines)", sectionPath, len(section)))

	output.PrintStepHeader(out, 3, 3, "Queueing classified entries")

	lines := changelog.Classify(section)

	queue, err := store.Open(cfg.DataDir, cfg.DBName, version)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Runtime, "failed to open work queue")
	}
	defer queue.Close()

	inserted, skipped := 0, 0
	for _, line := range lines {
		_, added, err := queue.InsertLine(line.Content, line.Audience)
		if err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Runtime, "failed to queue entry")
		}
		if added {
			inserted++
		} else {
			skipped++
		}
	}

	output.PrintSuccess(out, fmt.Sprintf("Queued %d new entries (%d already present) for version %s", inserted, skipped, version))
	return nil
}
