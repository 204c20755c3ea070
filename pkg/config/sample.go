package config

// SampleConfig is the starter configuration printed by sample-config.
const SampleConfig = `# See https://pre-commit.com for more information
# See https://pre-commit.com/hooks.html for more hooks
repos:
-   repo: https://github.com/pre-commit/pre-commit-hooks
    rev: v3.2.0
    hooks:
    -   id: trailing-whitespace
    -   id: end-of-file-fixer
    -   id: check-yaml
    -   id: check-added-large-files
`

// DefaultConfig returns SampleConfig as a value.
func DefaultConfig() *Config {
	return &Config{
		Repos: []Repo{
			{
				Repo: "https://github.com/pre-commit/pre-commit-hooks",
				Rev:  "v3.2.0",
				Hooks: []Hook{
					{ID: "trailing-whitespace"},
					{ID: "end-of-file-fixer"},
					{ID: "check-yaml"},
					{ID: "check-added-large-files"},
				},
			},
		},
	}
}
