package changelog

// Audience identifies which summarization instruction an entry receives.
// The zero value means no audience context was in effect when the line
// was classified.
type Audience string

const (
	// AudienceUser marks entries aimed at end users of the product.
	AudienceUser Audience = "user"
	// AudienceDev marks entries aimed at developers, including the
	// "Warning:" blocks about potential module regressions.
	AudienceDev Audience = "dev"
	// AudienceUnknown marks entries seen outside any audience context.
	AudienceUnknown Audience = ""
)

// String returns a human-readable name for the audience, using "unknown"
// for the zero value so log output is never blank.
func (a Audience) String() string {
	if a == AudienceUnknown {
		return "unknown"
	}
	return string(a)
}

// Line is a single classified content line from a changelog section.
type Line struct {
	Content  string
	Audience Audience
}
