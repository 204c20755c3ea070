package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeStage(t *testing.T) {
	assert.Equal(t, "pre-commit", NormalizeStage("commit"))
	assert.Equal(t, "pre-push", NormalizeStage("push"))
	assert.Equal(t, "pre-merge-commit", NormalizeStage("merge-commit"))
	assert.Equal(t, "manual", NormalizeStage("manual"))

	assert.True(t, IsKnownStage("commit"))
	assert.True(t, IsKnownStage("post-checkout"))
	assert.False(t, IsKnownStage("pre-lunch"))
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		DefaultStages:          []string{"commit"},
		DefaultLanguageVersion: map[string]string{"python": "python3.12"},
	}

	hook := cfg.ApplyDefaults(Hook{ID: "black", Language: "python_venv"})
	assert.Equal(t, "black", hook.Name)
	assert.Equal(t, "python", hook.Language)
	assert.Equal(t, []string{"pre-commit"}, hook.Stages)
	assert.Equal(t, "python3.12", hook.LanguageVersion)

	// the config's default stages are not modified in place
	assert.Equal(t, []string{"commit"}, cfg.DefaultStages)

	explicit := cfg.ApplyDefaults(Hook{ID: "x", Name: "X", Language: "python", LanguageVersion: "3.9", Stages: []string{"push"}})
	assert.Equal(t, "X", explicit.Name)
	assert.Equal(t, "3.9", explicit.LanguageVersion)
	assert.Equal(t, []string{"pre-push"}, explicit.Stages)

	other := cfg.ApplyDefaults(Hook{ID: "y", Language: "system"})
	assert.Empty(t, other.LanguageVersion)
}

func TestMergeHook(t *testing.T) {
	no := false
	base := Hook{
		ID:       "flake8",
		Name:     "flake8",
		Entry:    "flake8",
		Language: "python",
		Files:    `\.py$`,
		Types:    []string{"python"},
	}
	override := Hook{
		ID:            "flake8",
		Args:          []string{"--max-line-length=100"},
		ExcludeRegex:  "^migrations/",
		PassFilenames: &no,
		Verbose:       true,
	}

	merged := MergeHook(base, override)
	assert.Equal(t, "flake8", merged.Entry)
	assert.Equal(t, `\.py$`, merged.Files)
	assert.Equal(t, "^migrations/", merged.ExcludeRegex)
	assert.Equal(t, []string{"python"}, merged.Types)
	assert.Equal(t, []string{"--max-line-length=100"}, merged.Args)
	assert.False(t, merged.ShouldPassFilenames())
	assert.True(t, merged.Verbose)
}

func TestMergeHookExplicitZeroValues(t *testing.T) {
	base := Hook{
		ID:            "mypy",
		Entry:         "mypy",
		Language:      "python",
		Files:         `\.py$`,
		Args:          []string{"--strict"},
		AlwaysRun:     true,
		RequireSerial: true,
		Verbose:       true,
		FailFast:      true,
	}

	cfg, err := Parse([]byte(`repos:
-   repo: https://github.com/pre-commit/mirrors-mypy
    rev: v1.8.0
    hooks:
    -   id: mypy
        always_run: false
        require_serial: false
        verbose: false
        fail_fast: false
        files: ''
        args: []
`))
	require.NoError(t, err)
	override := cfg.Repos[0].Hooks[0]
	assert.True(t, override.Has("always_run"))
	assert.False(t, override.Has("entry"))

	merged := MergeHook(base, override)
	assert.False(t, merged.AlwaysRun)
	assert.False(t, merged.RequireSerial)
	assert.False(t, merged.Verbose)
	assert.False(t, merged.FailFast)
	assert.Empty(t, merged.Files)
	assert.Empty(t, merged.Args)
	assert.Equal(t, "mypy", merged.Entry)
	assert.Equal(t, "python", merged.Language)
}

func TestMergeHookUnwrittenKeysKeepBase(t *testing.T) {
	base := Hook{ID: "mypy", Entry: "mypy", Args: []string{"--strict"}, AlwaysRun: true}

	cfg, err := Parse([]byte("repos:\n- repo: https://example.com/r\n  rev: v1\n  hooks:\n  - id: mypy\n"))
	require.NoError(t, err)

	merged := MergeHook(base, cfg.Repos[0].Hooks[0])
	assert.True(t, merged.AlwaysRun)
	assert.Equal(t, []string{"--strict"}, merged.Args)
}

func TestMetaHooks(t *testing.T) {
	assert.Equal(t, []string{MetaCheckHooksApply, MetaCheckUselessExcludes, MetaIdentity}, MetaHookIDs())

	hook, ok := MetaHook(MetaCheckUselessExcludes)
	assert.True(t, ok)
	assert.Equal(t, `^\.pre-commit-config\.yaml$`, hook.Files)

	_, ok = MetaHook("nope")
	assert.False(t, ok)
}
