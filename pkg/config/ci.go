package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Autoupdate schedules accepted by pre-commit.ci
var validAutoupdateSchedules = []string{"weekly", "monthly", "quarterly"}

// CIConfig is the ci: block read by the pre-commit.ci service. hookcfg does
// not talk to the service; it validates the block and honours ci.skip in
// the hooks listing.
type CIConfig struct {
	AutofixCommitMsg    string   `yaml:"autofix_commit_msg,omitempty"    json:"autofix_commit_msg,omitempty"    mapstructure:"autofix_commit_msg"`
	AutoupdateBranch    string   `yaml:"autoupdate_branch,omitempty"     json:"autoupdate_branch,omitempty"     mapstructure:"autoupdate_branch"`
	AutoupdateCommitMsg string   `yaml:"autoupdate_commit_msg,omitempty" json:"autoupdate_commit_msg,omitempty" mapstructure:"autoupdate_commit_msg"`
	AutoupdateSchedule  string   `yaml:"autoupdate_schedule,omitempty"   json:"autoupdate_schedule,omitempty"   mapstructure:"autoupdate_schedule" jsonschema:"enum=weekly,enum=monthly,enum=quarterly"`
	Skip                []string `yaml:"skip,omitempty"                  json:"skip,omitempty"                  mapstructure:"skip"`
	AutofixPRs          *bool    `yaml:"autofix_prs,omitempty"           json:"autofix_prs,omitempty"           mapstructure:"autofix_prs"`
	Submodules          bool     `yaml:"submodules,omitempty"            json:"submodules,omitempty"            mapstructure:"submodules"`

	// Unused holds keys the service does not define.
	Unused []string `yaml:"-" json:"-" mapstructure:"-"`
}

// UnmarshalYAML decodes the block through mapstructure so that unknown keys
// are collected instead of silently dropped.
func (c *CIConfig) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]any
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("ci: %w", err)
	}
	decoded, err := decodeCI(raw)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

func decodeCI(raw map[string]any) (*CIConfig, error) {
	var ci CIConfig
	var md mapstructure.Metadata

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata:         &md,
		Result:           &ci,
		WeaklyTypedInput: false,
		ErrorUnused:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("ci: failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("ci: %w", err)
	}

	ci.Unused = md.Unused
	return &ci, nil
}
