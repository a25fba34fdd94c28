// Package changelog extracts and classifies version sections from the
// loosely structured ChangeLog document published in the Dolibarr
// repository. Sections are delimited by banner lines of the form
// "***** ChangeLog for <version> compared to <previous> *****".
package changelog

import (
	"fmt"
	"regexp"
	"strings"
)

// genericHeaderPattern matches the banner line that starts any version
// section, regardless of version.
var genericHeaderPattern = regexp.MustCompile(`^\*\*\*\*\* ChangeLog for .* compared to .* \*\*\*\*\*$`)

// sectionHeaderPattern builds the pattern matching the banner for the
// requested version prefix. The prefix is quoted so literal dots in a
// supplied version number do not act as wildcards.
//
// The pattern appends a fixed ".0.0" suffix followed by an optional run
// of digits and dots, so a prefix of "22" matches "22.0.0" while a prefix
// of "22.0.0" would require a banner announcing "22.0.0.0.0". Callers
// should pass the major version only.
func sectionHeaderPattern(versionPrefix string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`^\*\*\*\*\* ChangeLog for %s\.0\.0(?:[.\d]*)? compared to .* \*\*\*\*\*$`,
		regexp.QuoteMeta(versionPrefix),
	))
}

// ExtractSection returns the lines of the changelog section belonging to
// the given version prefix. The returned slice starts with the section's
// own banner line and ends just before the next banner (which is not
// consumed) or at end of document. It is empty when no banner matches the
// requested version; an absent section is not an error at this level.
func ExtractSection(document, versionPrefix string) []string {
	headerPattern := sectionHeaderPattern(versionPrefix)

	var section []string
	inSection := false
	for _, line := range strings.Split(document, "\n") {
		line = strings.TrimRight(line, "\r")
		if !inSection {
			if headerPattern.MatchString(line) {
				inSection = true
				section = append(section, line)
			}
			continue
		}
		if genericHeaderPattern.MatchString(line) {
			// A new section begins; the current one is complete.
			break
		}
		section = append(section, line)
	}
	return section
}
