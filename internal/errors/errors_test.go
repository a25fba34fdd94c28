package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryString(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		category ErrorCategory
		want     string
	}{
		"argument":      {category: Argument, want: "Argument Error"},
		"configuration": {category: Configuration, want: "Configuration Error"},
		"network":       {category: Network, want: "Network Error"},
		"runtime":       {category: Runtime, want: "Runtime Error"},
		"unknown":       {category: ErrorCategory(42), want: "Error"},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.category.String())
		})
	}
}

func TestWrap(t *testing.T) {
	t.Parallel()

	t.Run("nil error wraps to nil", func(t *testing.T) {
		t.Parallel()

		assert.Nil(t, Wrap(nil, Network))
	})

	t.Run("preserves original message", func(t *testing.T) {
		t.Parallel()

		wrapped := Wrap(stderrors.New("boom"), Network, "check connectivity")
		require.NotNil(t, wrapped)
		assert.Equal(t, "boom", wrapped.Error())
		assert.Equal(t, Network, wrapped.Category)
		assert.Equal(t, []string{"check connectivity"}, wrapped.Remediation)
	})
}

func TestWrapWithMessage(t *testing.T) {
	t.Parallel()

	wrapped := WrapWithMessage(stderrors.New("boom"), Runtime, "enrichment failed")
	require.NotNil(t, wrapped)
	assert.Equal(t, "enrichment failed: boom", wrapped.Error())
}

func TestAsCLIError(t *testing.T) {
	t.Parallel()

	cliErr := NewArgumentError("bad version")
	assert.Equal(t, cliErr, AsCLIError(cliErr))
	assert.Nil(t, AsCLIError(stderrors.New("plain")))
}

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	err := &CLIError{
		Category:    Argument,
		Message:     "version is required",
		Usage:       "relnotes extract <version>",
		Remediation: []string{"pass the major version number, e.g. 22"},
	}

	out := FormatErrorPlain(err)
	assert.Contains(t, out, "Error [Argument Error]: version is required")
	assert.Contains(t, out, "Usage: relnotes extract <version>")
	assert.Contains(t, out, "To fix this:")
	assert.Contains(t, out, "• pass the major version number, e.g. 22")
}
