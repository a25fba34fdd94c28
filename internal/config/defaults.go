package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# relnotes Configuration
# Values here are overridden by RELNOTES_* environment variables.

# Repository settings
owner: dolibarr                       # GitHub owner of the target repository
repo: dolibarr                        # Repository name
branch: develop                       # Branch the ChangeLog is fetched from
changelog_path: ChangeLog             # Path of the ChangeLog document in the repo

# Local storage settings
data_dir: data                        # Directory for sections, logs, and the database
db_name: changelog_parser.sqlite3     # SQLite database file name inside data_dir

# Summarization settings
model: gpt-4o-mini                    # Chat completion model
llm_base_url: https://api.openai.com/v1  # OpenAI-compatible API base URL
max_diff_chars: 3500                  # Max PR diff characters embedded in a prompt

# Processing settings
batch_limit: 10                       # Entries processed per enrich run
http_timeout_secs: 20                 # Per-request GitHub timeout in seconds

# Credentials (prefer env vars: RELNOTES_GITHUB_TOKEN, OPENAI_API_KEY)
# github_token: ""
# llm_api_key: ""
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		// Repository defaults target the Dolibarr ERP/CRM project, whose
		// ChangeLog banner format the extractor understands.
		"owner":          "dolibarr",
		"repo":           "dolibarr",
		"branch":         "develop",
		"changelog_path": "ChangeLog",
		// data_dir/db_name: local artifacts live under ./data by default so a
		// run never writes outside the working directory.
		"data_dir": "data",
		"db_name":  "changelog_parser.sqlite3",
		"model":    "gpt-4o-mini",
		// llm_base_url: any OpenAI-compatible endpoint works; only the
		// /chat/completions route is used.
		"llm_base_url": "https://api.openai.com/v1",
		// batch_limit: small default keeps a first run cheap; raise it once
		// summaries look right for the target version.
		"batch_limit":       10,
		"http_timeout_secs": 20,
		// max_diff_chars: diffs beyond this are truncated in the prompt with
		// an explicit truncation note.
		"max_diff_chars": 3500,
		"github_token":   "",
		"llm_api_key":    "",
	}
}
