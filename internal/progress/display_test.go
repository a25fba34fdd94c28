package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func nonTTYCaps() TerminalCapabilities {
	return TerminalCapabilities{IsTTY: false}
}

func TestDisplay_NonTTYFallsBackToLines(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := NewDisplay(&buf, nonTTYCaps())

	d.Start("downloading changelog")
	d.Succeed("changelog downloaded")

	out := buf.String()
	assert.Contains(t, out, "downloading changelog...")
	assert.Contains(t, out, "[OK] changelog downloaded")
}

func TestDisplay_FailureSymbol(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := NewDisplay(&buf, nonTTYCaps())

	d.Start("enriching entries")
	d.Fail("enrichment failed")

	assert.Contains(t, buf.String(), "[FAIL] enrichment failed")
}

func TestSelectSymbols(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		caps          TerminalCapabilities
		wantCheckmark string
		wantSpinner   int
	}{
		"unicode terminal": {
			caps:          TerminalCapabilities{SupportsUnicode: true},
			wantCheckmark: "✓",
			wantSpinner:   14,
		},
		"ascii terminal": {
			caps:          TerminalCapabilities{SupportsUnicode: false},
			wantCheckmark: "[OK]",
			wantSpinner:   9,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			symbols := SelectSymbols(tt.caps)
			assert.Equal(t, tt.wantCheckmark, symbols.Checkmark)
			assert.Equal(t, tt.wantSpinner, symbols.SpinnerSet)
		})
	}
}
