// Package health provides environment checks for relnotes. It validates
// that configuration loads, credentials are present, and the data directory
// is writable, returning structured reports used by the 'relnotes doctor'
// command.
package health

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ariel-frischer/relnotes/internal/config"
)

// CheckResult represents the result of a single health check
type CheckResult struct {
	Name    string
	Passed  bool
	Message string
}

// HealthReport contains all health check results
type HealthReport struct {
	Checks []CheckResult
	Passed bool
}

// RunHealthChecks runs all health checks against the given configuration
// and returns a report. Credential checks only verify presence: the token
// and key are never sent anywhere by doctor.
func RunHealthChecks(cfg *config.Configuration) *HealthReport {
	report := &HealthReport{Passed: true}

	for _, check := range []CheckResult{
		CheckDataDir(cfg.DataDir),
		CheckGitHubToken(cfg.GitHubToken),
		CheckLLMKey(cfg.LLMAPIKey),
	} {
		report.Checks = append(report.Checks, check)
		if !check.Passed {
			report.Passed = false
		}
	}

	return report
}

// CheckDataDir checks that the data directory exists or can be created,
// and is writable.
func CheckDataDir(dataDir string) CheckResult {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return CheckResult{
			Name:    "Data directory",
			Passed:  false,
			Message: fmt.Sprintf("cannot create %s: %v", dataDir, err),
		}
	}

	probe := filepath.Join(dataDir, ".relnotes-doctor")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return CheckResult{
			Name:    "Data directory",
			Passed:  false,
			Message: fmt.Sprintf("%s is not writable: %v", dataDir, err),
		}
	}
	_ = os.Remove(probe)

	return CheckResult{
		Name:    "Data directory",
		Passed:  true,
		Message: fmt.Sprintf("%s is writable", dataDir),
	}
}

// CheckGitHubToken checks that a GitHub token is configured.
func CheckGitHubToken(token string) CheckResult {
	if token == "" {
		return CheckResult{
			Name:    "GitHub token",
			Passed:  false,
			Message: "not set (export RELNOTES_GITHUB_TOKEN); required by enrich",
		}
	}
	return CheckResult{
		Name:    "GitHub token",
		Passed:  true,
		Message: "configured",
	}
}

// CheckLLMKey checks that a summarization API key is configured.
func CheckLLMKey(key string) CheckResult {
	if key == "" {
		return CheckResult{
			Name:    "Summarization API key",
			Passed:  false,
			Message: "not set (export OPENAI_API_KEY); required by enrich",
		}
	}
	return CheckResult{
		Name:    "Summarization API key",
		Passed:  true,
		Message: "configured",
	}
}

// FormatReport formats the health report for console output
func FormatReport(report *HealthReport) string {
	var output string
	for _, check := range report.Checks {
		if check.Passed {
			output += fmt.Sprintf("✓ %s: %s\n", check.Name, check.Message)
		} else {
			output += fmt.Sprintf("✗ %s: %s\n", check.Name, check.Message)
		}
	}

	if report.Passed {
		output += "\nAll checks passed.\n"
	} else {
		output += "\nSome checks failed. enrich will not run until they pass.\n"
	}
	return output
}
