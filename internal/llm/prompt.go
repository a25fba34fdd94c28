package llm

import (
	"fmt"
	"unicode/utf8"

	"github.com/ariel-frischer/relnotes/internal/changelog"
	"github.com/ariel-frischer/relnotes/internal/resolver"
)

const (
	// MaxDiffChars is the default bound on the diff excerpt embedded in
	// the prompt, used when no budget is configured.
	MaxDiffChars = 3500

	// InsufficientInfoMsg is the exact sentence the model is told to reply
	// with when the material does not support a summary. The pipeline
	// stores it verbatim like any other summary.
	InsufficientInfoMsg = "Not enough information to summarize."

	// NoDescriptionMsg stands in for an absent pull request description.
	NoDescriptionMsg = "No description provided."
)

const userInstruction = "Based on the 'Original changelog line' and the technical details provided (PR description, diff), " +
	"rephrase this new feature or fix in a few simple, concise sentences for an end user of Dolibarr. " +
	"Explain clearly what it changes or brings for them in their daily use, avoiding technical jargon. " +
	"If the change introduces a new feature or modifies an existing interaction, state in simple terms how the user can reach or notice it " +
	"(e.g. 'You will find this option under menu X > Y' or 'When creating an invoice, you will notice that...'). " +
	"For bug fixes that restore expected behavior, focus on the benefit of the fix. " +
	"If this information is not sufficient for a relevant summary, reply '" + InsufficientInfoMsg + "'."

const devInstruction = "Based primarily on the diff and the technical PR description, helped by the 'Original changelog line', " +
	"generate a concise technical summary (1 to 2 sentences at most). The summary must explain " +
	"the nature of the change (e.g. refactoring, new hook, API modification, query optimization) and its main technical impact " +
	"(e.g. key modules/classes affected, performance consequences, dependency changes, feature deprecations) for another developer. " +
	"If this information is not sufficient for a relevant summary, reply '" + InsufficientInfoMsg + "'."

const promptTemplate = `Context: You are an AI assistant writing clear, concise release notes for the Dolibarr software, adapting the message to the target audience.

Information available to generate the summary:

1. Original changelog line: "%s"

2. Technical information from the associated pull request (PR) #%d:
   * PR title: %s
   * PR description:
     %s

3. Diff of the changes (excerpt, possibly truncated):
` + "```diff\n%s\n```" + `
   (Note: the diff above may be truncated to %d characters.)

Your task is to generate a summary for %s.

Specific instruction for the summary:
%s

Important rules for the summary:
- Do NOT mention the PR number.
- Start directly with the summary.
- If you judge the information insufficient, reply ONLY with the sentence '%s'.
`

// BuildPrompt assembles the single-message prompt for one changelog entry.
// The diff is truncated to diffBudget bytes (MaxDiffChars when diffBudget
// is not positive), never splitting a multi-byte rune. An empty pull
// request body is replaced by NoDescriptionMsg. Lines without a known
// audience get the user-facing instruction.
func BuildPrompt(line string, res *resolver.Resolution, diff string, audience changelog.Audience, diffBudget int) string {
	description := res.Body
	if description == "" {
		description = NoDescriptionMsg
	}
	if diffBudget <= 0 {
		diffBudget = MaxDiffChars
	}
	diff = truncateRunes(diff, diffBudget)

	instruction := userInstruction
	target := "an end user of Dolibarr"
	if audience == changelog.AudienceDev {
		instruction = devInstruction
		target = "a developer"
	}

	return fmt.Sprintf(promptTemplate,
		line,
		res.Number,
		res.Title,
		description,
		diff,
		diffBudget,
		target,
		instruction,
		InsufficientInfoMsg,
	)
}

// truncateRunes cuts s to at most limit bytes, backing off to the start
// of the rune that would otherwise be split.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
