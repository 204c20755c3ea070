// Package config provides configuration parsing and validation for pre-commit
// style hook configuration (.pre-commit-config.yaml) and hook manifests
// (.pre-commit-hooks.yaml).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blairham/hookcfg/pkg/constants"
)

// ErrLegacyFormat is returned for configs written as a bare list of repos.
var ErrLegacyFormat = errors.New(
	"configuration is in the legacy list format; run `hookcfg migrate-config` to update it",
)

// Config represents the .pre-commit-config.yaml structure
type Config struct {
	DefaultLanguageVersion  map[string]string `yaml:"default_language_version,omitempty" json:"default_language_version,omitempty" jsonschema:"description=Default language_version per language"`
	CI                      *CIConfig         `yaml:"ci,omitempty"                       json:"ci,omitempty"                       jsonschema:"description=Settings for the pre-commit.ci service"`
	Files                   string            `yaml:"files,omitempty"                    json:"files,omitempty"                    jsonschema:"description=Global include regex"`
	ExcludeRegex            string            `yaml:"exclude,omitempty"                  json:"exclude,omitempty"                  jsonschema:"description=Global exclude regex"`
	MinimumPreCommitVersion string            `yaml:"minimum_pre_commit_version,omitempty" json:"minimum_pre_commit_version,omitempty"`
	Repos                   []Repo            `yaml:"repos"                              json:"repos"                              jsonschema:"required,description=Hook repositories"`
	DefaultStages           []string          `yaml:"default_stages,omitempty"           json:"default_stages,omitempty"`
	DefaultInstallHookTypes []string          `yaml:"default_install_hook_types,omitempty" json:"default_install_hook_types,omitempty"`
	FailFast                bool              `yaml:"fail_fast,omitempty"                json:"fail_fast,omitempty"`

	// warnings collected while parsing; see Warnings.
	warnings []string
}

// Repo represents a repository configuration
type Repo struct {
	Repo  string `yaml:"repo"          json:"repo"          jsonschema:"required,description=Repository URL or one of local/meta"`
	Rev   string `yaml:"rev,omitempty" json:"rev,omitempty" jsonschema:"description=Revision pin (tag or commit)"`
	Hooks []Hook `yaml:"hooks"         json:"hooks"         jsonschema:"required"`
}

// Hook represents a hook configuration. In a manifest the same structure
// defines the hook; in a config it overrides the manifest definition.
type Hook struct {
	PassFilenames           *bool    `yaml:"pass_filenames,omitempty"            json:"pass_filenames,omitempty"`
	ID                      string   `yaml:"id"                                  json:"id"                                  jsonschema:"required"`
	Alias                   string   `yaml:"alias,omitempty"                     json:"alias,omitempty"`
	Name                    string   `yaml:"name,omitempty"                      json:"name,omitempty"`
	Entry                   string   `yaml:"entry,omitempty"                     json:"entry,omitempty"`
	Language                string   `yaml:"language,omitempty"                  json:"language,omitempty"`
	Files                   string   `yaml:"files,omitempty"                     json:"files,omitempty"`
	ExcludeRegex            string   `yaml:"exclude,omitempty"                   json:"exclude,omitempty"`
	LogFile                 string   `yaml:"log_file,omitempty"                  json:"log_file,omitempty"`
	Description             string   `yaml:"description,omitempty"               json:"description,omitempty"`
	LanguageVersion         string   `yaml:"language_version,omitempty"          json:"language_version,omitempty"`
	MinimumPreCommitVersion string   `yaml:"minimum_pre_commit_version,omitempty" json:"minimum_pre_commit_version,omitempty"`
	Types                   []string `yaml:"types,omitempty"                     json:"types,omitempty"`
	TypesOr                 []string `yaml:"types_or,omitempty"                  json:"types_or,omitempty"`
	ExcludeTypes            []string `yaml:"exclude_types,omitempty"             json:"exclude_types,omitempty"`
	AdditionalDeps          []string `yaml:"additional_dependencies,omitempty"   json:"additional_dependencies,omitempty"`
	Args                    []string `yaml:"args,omitempty"                      json:"args,omitempty"`
	Stages                  []string `yaml:"stages,omitempty"                    json:"stages,omitempty"`
	AlwaysRun               bool     `yaml:"always_run,omitempty"                json:"always_run,omitempty"`
	Verbose                 bool     `yaml:"verbose,omitempty"                   json:"verbose,omitempty"`
	RequireSerial           bool     `yaml:"require_serial,omitempty"            json:"require_serial,omitempty"`
	FailFast                bool     `yaml:"fail_fast,omitempty"                 json:"fail_fast,omitempty"`

	// present holds the keys written in the YAML the hook was decoded from.
	present map[string]bool
}

// UnmarshalYAML decodes the hook and records which keys were written, so
// that an explicit false or empty list still overrides a manifest value.
func (h *Hook) UnmarshalYAML(node *yaml.Node) error {
	type plain Hook
	var decoded plain
	if err := node.Decode(&decoded); err != nil {
		return err
	}
	*h = Hook(decoded)
	if node.Kind == yaml.MappingNode {
		h.present = make(map[string]bool, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			h.present[node.Content[i].Value] = true
		}
	}
	return nil
}

// Has reports whether key was written in the hook's YAML.
func (h Hook) Has(key string) bool { return h.present[key] }

// ConfigFileName is the default name for the pre-commit configuration file
const ConfigFileName = constants.ConfigFileName

// IsLocal reports whether the repo holds inline hook definitions.
func (r Repo) IsLocal() bool { return r.Repo == constants.LocalRepo }

// IsMeta reports whether the repo holds built-in meta hooks.
func (r Repo) IsMeta() bool { return r.Repo == constants.MetaRepo }

// IsRemote reports whether the repo must be fetched.
func (r Repo) IsRemote() bool { return !r.IsLocal() && !r.IsMeta() }

// DisplayName returns the hook name, falling back to its id.
func (h Hook) DisplayName() string {
	if h.Name != "" {
		return h.Name
	}
	return h.ID
}

// Warnings returns non-fatal problems found while parsing and validating.
func (c *Config) Warnings() []string {
	out := make([]string, 0, len(c.warnings))
	out = append(out, c.warnings...)
	return append(out, c.semanticWarnings()...)
}

// LoadConfig loads the pre-commit configuration from file
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = ConfigFileName
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- user-selected config file
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Parse decodes configuration content. Unknown keys are reported through
// Warnings rather than failing the parse.
func Parse(data []byte) (*Config, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.New("config is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	doc := documentBody(&root)
	switch {
	case doc == nil:
		return nil, errors.New("config is empty")
	case doc.Kind == yaml.SequenceNode:
		return nil, ErrLegacyFormat
	case doc.Kind != yaml.MappingNode:
		return nil, fmt.Errorf("config must be a mapping, got %s", nodeKindName(doc.Kind))
	}

	if mappingValue(doc, "repos") == nil {
		return nil, errors.New("missing required key: repos")
	}

	var cfg Config
	if err := doc.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config structure: %w", err)
	}
	cfg.warnings = unknownKeyWarnings(doc)

	return &cfg, nil
}

// Marshal renders the configuration back to YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}

// HookByID finds a configured hook and its repo.
func (c *Config) HookByID(id string) (Repo, Hook, bool) {
	for _, repo := range c.Repos {
		for _, hook := range repo.Hooks {
			if hook.ID == id || (hook.Alias != "" && hook.Alias == id) {
				return repo, hook, true
			}
		}
	}
	return Repo{}, Hook{}, false
}

func documentBody(root *yaml.Node) *yaml.Node {
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil
		}
		return root.Content[0]
	}
	if root.Kind == 0 {
		return nil
	}
	return root
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	default:
		return "document"
	}
}
