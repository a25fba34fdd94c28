package changelog

import (
	"regexp"
	"strings"
)

// warningPreamble is the fixed sentence the upstream project prints before
// its "Warning:" blocks. It carries no entry content and is skipped.
const warningPreamble = "the following changes may create regressions for some external modules, but were necessary to make dolibarr better:"

// mainHeaderPrefix identifies a section banner when compared case-insensitively.
const mainHeaderPrefix = "***** changelog for "

// separatorPattern matches horizontal rules made of dashes.
var separatorPattern = regexp.MustCompile(`^-+$`)

// Classify walks an extracted section once and returns its content lines,
// each tagged with the audience implied by the most recently seen context
// header ("For Users:", "For Developers:", "Warning:"). Structural lines
// (context headers, section banners, dash separators, the warning preamble
// and blank lines) are dropped and never appear in the result.
//
// Classification is pure: persisting the returned lines is the caller's
// concern.
func Classify(sectionLines []string) []Line {
	var out []Line
	current := AudienceUnknown

	for _, raw := range sectionLines {
		trimmed := strings.TrimSpace(raw)
		lower := strings.ToLower(trimmed)

		switch {
		case trimmed == "":
			continue
		case lower == "for users:":
			current = AudienceUser
		case lower == "for developers:" || lower == "warning:":
			// "Warning:" blocks describe module-facing regressions and
			// are addressed to developers.
			current = AudienceDev
		case strings.HasPrefix(lower, mainHeaderPrefix) && strings.HasSuffix(trimmed, "*****"):
			current = AudienceUnknown
		case separatorPattern.MatchString(trimmed):
			continue
		case lower == warningPreamble:
			continue
		default:
			out = append(out, Line{Content: trimmed, Audience: current})
		}
	}
	return out
}
