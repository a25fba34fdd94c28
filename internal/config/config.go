// Package config provides hierarchical configuration management for relnotes using koanf.
// Configuration is loaded with priority: environment variables > project config (.relnotes/config.yml)
// > user config (~/.config/relnotes/config.yml) > defaults. It supports both YAML and legacy JSON
// formats; legacy JSON is read-only and triggers a deprecation warning.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the relnotes CLI tool configuration
type Configuration struct {
	// Owner is the GitHub organization or user owning the target repository.
	// Can be set via RELNOTES_OWNER env var.
	Owner string `koanf:"owner" validate:"required"`

	// Repo is the GitHub repository name holding the ChangeLog document and
	// the pull requests that changelog lines resolve to.
	// Can be set via RELNOTES_REPO env var.
	Repo string `koanf:"repo" validate:"required"`

	// Branch is the branch the ChangeLog document is fetched from.
	Branch string `koanf:"branch" validate:"required"`

	// ChangelogPath is the path of the ChangeLog document inside the repository.
	ChangelogPath string `koanf:"changelog_path" validate:"required"`

	// DataDir is where extracted sections, summary logs, and the SQLite
	// database are written. Created on first use.
	DataDir string `koanf:"data_dir" validate:"required"`

	// DBName is the SQLite database file name inside DataDir.
	DBName string `koanf:"db_name" validate:"required"`

	// GitHubToken authenticates API requests for PR lookup, search, and diffs.
	// Set via RELNOTES_GITHUB_TOKEN env var or the --token flag; config files
	// are supported but discouraged for secrets.
	GitHubToken string `koanf:"github_token"`

	// Model is the chat completion model used for summarization.
	Model string `koanf:"model" validate:"required"`

	// LLMBaseURL is the base URL of the OpenAI-compatible completions API.
	LLMBaseURL string `koanf:"llm_base_url" validate:"required,url"`

	// LLMAPIKey authenticates completion requests. Set via OPENAI_API_KEY
	// or RELNOTES_LLM_API_KEY.
	LLMAPIKey string `koanf:"llm_api_key"`

	// BatchLimit is the default number of pending entries processed per
	// enrich invocation. Overridable with --limit.
	BatchLimit int `koanf:"batch_limit" validate:"min=1,max=1000"`

	// HTTPTimeoutSecs bounds each GitHub HTTP request.
	HTTPTimeoutSecs int `koanf:"http_timeout_secs" validate:"min=1,max=600"`

	// MaxDiffChars caps how much of a PR diff is embedded in a prompt.
	MaxDiffChars int `koanf:"max_diff_chars" validate:"min=100"`
}

// HTTPTimeout returns the configured GitHub request timeout as a duration.
func (c *Configuration) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSecs) * time.Second
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relnotes/config.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
//
// YAML config paths:
//   - User config: ~/.config/relnotes/config.yml (XDG compliant)
//   - Project config: .relnotes/config.yml
//
// Legacy JSON config paths (deprecated, read-only):
//   - User config: ~/.relnotes/config.json
//   - Project config: .relnotes/config.json
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if err := loadUserConfig(k, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}
}

// loadUserConfig loads user-level config (YAML preferred, legacy JSON supported).
// Priority: YAML (~/.config/relnotes/config.yml) > JSON (~/.relnotes/config.json).
func loadUserConfig(k *koanf.Koanf, warningWriter io.Writer, skipWarnings bool) error {
	userYAMLPath, _ := UserConfigPath()
	legacyUserPath, _ := LegacyUserConfigPath()

	if fileExists(userYAMLPath) {
		if err := loadYAMLConfig(k, userYAMLPath, "user"); err != nil {
			return fmt.Errorf("loading user YAML config: %w", err)
		}
		return nil
	}
	if fileExists(legacyUserPath) {
		if err := loadLegacyJSONConfig(k, legacyUserPath, "user", warningWriter, skipWarnings); err != nil {
			return fmt.Errorf("loading legacy user JSON config: %w", err)
		}
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON supported).
// Supports custom path override (for testing).
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	projectYAMLPath := ProjectConfigPath()
	if customPath != "" {
		projectYAMLPath = customPath
	}
	legacyProjectPath := LegacyProjectConfigPath()

	if fileExists(projectYAMLPath) {
		if err := loadYAMLConfig(k, projectYAMLPath, "project"); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		return nil
	}
	if fileExists(legacyProjectPath) {
		if err := loadLegacyJSONConfig(k, legacyProjectPath, "project", warningWriter, skipWarnings); err != nil {
			return fmt.Errorf("loading legacy project JSON config: %w", err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about migration
func loadLegacyJSONConfig(k *koanf.Koanf, path, configType string, warningWriter io.Writer, skipWarnings bool) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy %s config %s: %w", configType, path, err)
	}
	if !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(warningWriter, "  Rewrite it as YAML at %s.\n\n", yamlPathFor(configType))
	}
	return nil
}

// yamlPathFor returns the preferred YAML path for a config type, for warning text.
func yamlPathFor(configType string) string {
	if configType == "user" {
		if p, err := UserConfigPath(); err == nil {
			return p
		}
	}
	return ProjectConfigPath()
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("RELNOTES_", ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// OPENAI_API_KEY is the conventional variable for completion APIs and
	// wins only when no relnotes-specific key is set.
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: RELNOTES_CHANGELOG_PATH -> changelog_path
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, "RELNOTES_"))
}
