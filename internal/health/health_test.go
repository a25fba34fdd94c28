package health

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ariel-frischer/relnotes/internal/config"
)

func TestCheckDataDir(t *testing.T) {
	t.Parallel()

	t.Run("writable directory passes", func(t *testing.T) {
		t.Parallel()

		check := CheckDataDir(filepath.Join(t.TempDir(), "data"))
		assert.True(t, check.Passed)
		assert.Contains(t, check.Message, "writable")
	})

	t.Run("uncreatable directory fails", func(t *testing.T) {
		t.Parallel()

		check := CheckDataDir(string([]byte{0}))
		assert.False(t, check.Passed)
	})
}

func TestCheckCredentials(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		check      CheckResult
		wantPassed bool
	}{
		"token present":   {check: CheckGitHubToken("ghp_x"), wantPassed: true},
		"token missing":   {check: CheckGitHubToken(""), wantPassed: false},
		"llm key present": {check: CheckLLMKey("sk-x"), wantPassed: true},
		"llm key missing": {check: CheckLLMKey(""), wantPassed: false},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantPassed, tt.check.Passed)
		})
	}
}

func TestRunHealthChecks(t *testing.T) {
	t.Parallel()

	cfg := &config.Configuration{
		DataDir:     filepath.Join(t.TempDir(), "data"),
		GitHubToken: "ghp_x",
		LLMAPIKey:   "sk-x",
	}

	report := RunHealthChecks(cfg)
	assert.True(t, report.Passed)
	assert.Len(t, report.Checks, 3)

	formatted := FormatReport(report)
	assert.Contains(t, formatted, "All checks passed")
}

func TestRunHealthChecks_MissingCredentials(t *testing.T) {
	t.Parallel()

	cfg := &config.Configuration{DataDir: t.TempDir()}

	report := RunHealthChecks(cfg)
	assert.False(t, report.Passed)

	formatted := FormatReport(report)
	assert.Contains(t, formatted, "✗ GitHub token")
	assert.Contains(t, formatted, "✗ Summarization API key")
}
