// Package enrich drives the per-entry enrichment workflow: resolve the
// pull request behind a changelog line, fetch its diff, ask the
// summarization model for an audience-tailored summary and record the
// outcome in the work queue. Entries are processed sequentially, each one
// inside its own failure boundary so a single bad entry never aborts the
// batch.
package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/ariel-frischer/relnotes/internal/llm"
	"github.com/ariel-frischer/relnotes/internal/resolver"
	"github.com/ariel-frischer/relnotes/internal/store"
)

// LogSeparator joins the per-entry blocks in the aggregated log output.
const LogSeparator = "\n\n========== CHANGELOG ENTRY ==========\n\n"

// WorkQueue is the slice of the persisted store the orchestrator needs.
type WorkQueue interface {
	PendingLines(limit int, randomize bool) ([]store.Entry, error)
	MarkDone(id int64, outcome store.Outcome) error
	MarkNotSupported(id int64, reason, prLink string) error
}

// PRResolver identifies the pull request behind a changelog line.
type PRResolver interface {
	Resolve(ctx context.Context, line string) (*resolver.Resolution, error)
}

// DiffFetcher retrieves the unified diff of a pull request.
type DiffFetcher interface {
	PRDiff(ctx context.Context, number int) (string, error)
}

// Summarizer produces the summary text for a prompt.
type Summarizer interface {
	Complete(ctx context.Context, messages []llm.Message) (*llm.Completion, error)
}

// Orchestrator runs enrichment batches against a work queue.
type Orchestrator struct {
	queue      WorkQueue
	resolver   PRResolver
	diffs      DiffFetcher
	summarizer Summarizer

	// MaxDiffChars caps the diff excerpt embedded in each prompt.
	// Zero falls back to llm.MaxDiffChars.
	MaxDiffChars int

	// Logf receives progress and error messages. Nil disables logging.
	Logf func(format string, args ...any)
}

// New creates an Orchestrator over the given collaborators.
func New(queue WorkQueue, prResolver PRResolver, diffs DiffFetcher, summarizer Summarizer) *Orchestrator {
	return &Orchestrator{
		queue:      queue,
		resolver:   prResolver,
		diffs:      diffs,
		summarizer: summarizer,
	}
}

func (o *Orchestrator) logf(format string, args ...any) {
	if o.Logf != nil {
		o.Logf(format, args...)
	}
}

// RunBatch pulls up to limit pending entries and processes them one by
// one. It returns the aggregated per-entry log, or an empty string when
// nothing was pending or no entry produced output. An unexpected failure
// while processing one entry is logged and leaves that entry pending; the
// batch continues with the next one.
func (o *Orchestrator) RunBatch(ctx context.Context, limit int, randomize bool) (string, error) {
	entries, err := o.queue.PendingLines(limit, randomize)
	if err != nil {
		return "", fmt.Errorf("selecting pending entries: %w", err)
	}
	if len(entries) == 0 {
		o.logf("no pending entries to process")
		return "", nil
	}

	o.logf("processing %d pending entries", len(entries))
	var logs []string
	for _, entry := range entries {
		entryLog, err := o.processEntry(ctx, entry)
		if err != nil {
			o.logf("entry %d: unexpected error, left pending: %v", entry.ID, err)
			continue
		}
		if entryLog != "" {
			logs = append(logs, entryLog)
		}
	}
	o.logf("batch finished")

	return strings.Join(logs, LogSeparator), nil
}

// processEntry runs the full workflow for one entry and records exactly
// one terminal outcome, or none when an unexpected panic occurs. The
// returned string is this entry's block of the aggregated log.
func (o *Orchestrator) processEntry(ctx context.Context, entry store.Entry) (entryLog string, err error) {
	defer func() {
		if r := recover(); r != nil {
			entryLog = ""
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	prefix := fmt.Sprintf("[%s] entry %d (%q):", entry.Audience, entry.ID, entry.Content)

	if strings.TrimSpace(entry.Content) == "" {
		if err := o.queue.MarkNotSupported(entry.ID, "empty content", ""); err != nil {
			return "", err
		}
		return prefix + " empty content, skipped.", nil
	}

	res, resolveErr := o.resolver.Resolve(ctx, entry.Content)
	if resolveErr != nil {
		o.logf("entry %d: no PR resolved: %v", entry.ID, resolveErr)
		if err := o.queue.MarkNotSupported(entry.ID, resolveErr.Error(), ""); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s no PR resolved (%v), no summary generated.", prefix, resolveErr), nil
	}
	o.logf("entry %d: PR #%d identified (%s)", entry.ID, res.Number, res.Method)

	diff, diffErr := o.diffs.PRDiff(ctx, res.Number)
	if diffErr != nil || diff == "" {
		reason := fmt.Sprintf("diff unavailable for PR #%d", res.Number)
		o.logf("entry %d: %s", entry.ID, reason)
		// The PR link is still worth keeping for later human review.
		if err := o.queue.MarkNotSupported(entry.ID, reason, res.Link); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s, no summary generated.", prefix, reason), nil
	}

	prompt := llm.BuildPrompt(entry.Content, res, diff, entry.Audience, o.MaxDiffChars)
	completion, llmErr := o.summarizer.Complete(ctx, []llm.Message{{Role: "user", Content: prompt}})
	if llmErr != nil {
		reason := fmt.Sprintf("summarization failed: %v", llmErr)
		o.logf("entry %d: %s", entry.ID, reason)
		if err := o.queue.MarkNotSupported(entry.ID, reason, res.Link); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s", prefix, reason), nil
	}

	description := res.Body
	if description == "" {
		description = llm.NoDescriptionMsg
	}
	outcome := store.Outcome{
		PRDescription: fmt.Sprintf("PR title: %s\n\nPR description:\n%s", res.Title, description),
		PRLink:        res.Link,
		PRDiff:        diff,
		TokenCount:    int64(completion.PromptTokens + completion.CompletionTokens),
	}
	if err := o.queue.MarkDone(entry.ID, outcome); err != nil {
		return "", err
	}
	o.logf("entry %d: summary recorded (%d tokens)", entry.ID, outcome.TokenCount)

	return fmt.Sprintf("%s summary generated: %s", prefix, completion.Text), nil
}
