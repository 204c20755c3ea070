package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localHook(id string) Hook {
	return Hook{ID: id, Name: id, Entry: id, Language: "system"}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		config    *Config
		name      string
		wantPaths []string
	}{
		{
			name: "valid remote",
			config: &Config{Repos: []Repo{{
				Repo:  "https://github.com/test/repo",
				Rev:   "v1.0.0",
				Hooks: []Hook{{ID: "test-hook"}},
			}}},
		},
		{
			name:   "empty repos list",
			config: &Config{Repos: []Repo{}},
		},
		{
			name: "repo without url",
			config: &Config{Repos: []Repo{{
				Rev:   "v1.0.0",
				Hooks: []Hook{{ID: "test-hook"}},
			}}},
			wantPaths: []string{"repos[0].repo"},
		},
		{
			name: "remote without rev",
			config: &Config{Repos: []Repo{{
				Repo:  "https://github.com/test/repo",
				Hooks: []Hook{{ID: "test-hook"}},
			}}},
			wantPaths: []string{"repos[0].rev"},
		},
		{
			name: "local with rev",
			config: &Config{Repos: []Repo{{
				Repo:  "local",
				Rev:   "v1",
				Hooks: []Hook{localHook("a")},
			}}},
			wantPaths: []string{"repos[0].rev"},
		},
		{
			name: "repo without hooks",
			config: &Config{Repos: []Repo{{
				Repo: "https://github.com/test/repo",
				Rev:  "v1.0.0",
			}}},
			wantPaths: []string{"repos[0].hooks"},
		},
		{
			name: "hook without id",
			config: &Config{Repos: []Repo{{
				Repo:  "https://github.com/test/repo",
				Rev:   "v1.0.0",
				Hooks: []Hook{{Name: "nameless"}},
			}}},
			wantPaths: []string{"repos[0].hooks[0].id"},
		},
		{
			name: "local hook missing fields",
			config: &Config{Repos: []Repo{{
				Repo:  "local",
				Hooks: []Hook{{ID: "a"}},
			}}},
			wantPaths: []string{
				"repos[0].hooks[0].name",
				"repos[0].hooks[0].entry",
				"repos[0].hooks[0].language",
			},
		},
		{
			name: "unknown language",
			config: &Config{Repos: []Repo{{
				Repo:  "local",
				Hooks: []Hook{{ID: "a", Name: "a", Entry: "a", Language: "cobol"}},
			}}},
			wantPaths: []string{"repos[0].hooks[0].language"},
		},
		{
			name: "legacy language accepted",
			config: &Config{Repos: []Repo{{
				Repo:  "local",
				Hooks: []Hook{{ID: "a", Name: "a", Entry: "a", Language: "python_venv"}},
			}}},
		},
		{
			name: "invalid regexes",
			config: &Config{
				Files:        "(",
				ExcludeRegex: "[",
				Repos: []Repo{{
					Repo:  "local",
					Hooks: []Hook{func() Hook { h := localHook("a"); h.Files = "(?P<x"; return h }()},
				}},
			},
			wantPaths: []string{"files", "exclude", "repos[0].hooks[0].files"},
		},
		{
			name: "python regex features accepted",
			config: &Config{
				ExcludeRegex: `(?x)^(
    docs/|
    vendor/
)`,
				Repos: []Repo{{
					Repo:  "local",
					Hooks: []Hook{func() Hook { h := localHook("a"); h.Files = `(?P<ext>\.py)\Z`; return h }()},
				}},
			},
		},
		{
			name: "unknown stages",
			config: &Config{
				DefaultStages: []string{"pre-commit", "sometimes"},
				Repos: []Repo{{
					Repo:  "local",
					Hooks: []Hook{func() Hook { h := localHook("a"); h.Stages = []string{"commit", "never"}; return h }()},
				}},
			},
			wantPaths: []string{"default_stages[1]", "repos[0].hooks[0].stages[1]"},
		},
		{
			name: "minimum version too new",
			config: &Config{
				MinimumPreCommitVersion: "99.0.0",
				Repos:                   []Repo{},
			},
			wantPaths: []string{"minimum_pre_commit_version"},
		},
		{
			name: "bad autoupdate schedule",
			config: &Config{
				CI:    &CIConfig{AutoupdateSchedule: "daily"},
				Repos: []Repo{},
			},
			wantPaths: []string{"ci.autoupdate_schedule"},
		},
		{
			name: "meta hooks",
			config: &Config{Repos: []Repo{{
				Repo: "meta",
				Hooks: []Hook{
					{ID: MetaCheckHooksApply},
					{ID: "not-a-meta-hook"},
					{ID: MetaIdentity, Entry: "echo"},
				},
			}}},
			wantPaths: []string{"repos[0].hooks[1].id", "repos[0].hooks[2].entry"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if len(tt.wantPaths) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr))

			paths := make([]string, 0, len(validationErr.Issues))
			for _, issue := range validationErr.Issues {
				paths = append(paths, issue.Path)
			}
			assert.Equal(t, tt.wantPaths, paths)
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	single := &ValidationError{Issues: []Issue{{Path: "repos[0].rev", Message: "missing"}}}
	assert.Equal(t, "repos[0].rev: missing", single.Error())

	multi := &ValidationError{Issues: []Issue{
		{Path: "files", Message: "bad"},
		{Message: "no path"},
	}}
	assert.Equal(t, "2 validation errors:\n  - files: bad\n  - no path", multi.Error())
}

func TestCheckMinimumVersion(t *testing.T) {
	assert.NoError(t, CheckMinimumVersion("1.0"))
	assert.NoError(t, CheckMinimumVersion("4.2.0"))

	err := CheckMinimumVersion("99.1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires version")

	err = CheckMinimumVersion("not-a-version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version")
}

func TestIsMutableRev(t *testing.T) {
	tests := []struct {
		rev  string
		want bool
	}{
		{"main", true},
		{"master", true},
		{"v1.2.3", false},
		{"1.0", false},
		{"a1b2c3d4e5f6", false},
		{"deadbeef", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.rev, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMutableRev(tt.rev))
		})
	}
}

func TestDeprecatedStageWarning(t *testing.T) {
	cfg := &Config{Repos: []Repo{{
		Repo:  "local",
		Hooks: []Hook{func() Hook { h := localHook("a"); h.Stages = []string{"push"}; return h }()},
	}}}

	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "deprecated stage name 'push'")
	assert.Contains(t, warnings[0], "'pre-push'")
}
