package config

import "slices"

// Languages accepted in the language field. hookcfg runs system, script,
// fail and pygrep natively; the rest run their entry from PATH.
var Languages = []string{
	"conda", "coursier", "dart", "docker", "docker_image", "dotnet", "fail",
	"golang", "haskell", "julia", "lua", "node", "perl", "pygrep", "python",
	"r", "ruby", "rust", "script", "swift", "system", "unsupported",
	"unsupported_script",
}

// Stages are the hook stages a hook may be bound to.
var Stages = []string{
	"commit-msg", "manual", "post-checkout", "post-commit", "post-merge",
	"post-rewrite", "pre-commit", "pre-merge-commit", "pre-push", "pre-rebase",
	"prepare-commit-msg",
}

var legacyStages = map[string]string{
	"commit":       "pre-commit",
	"merge-commit": "pre-merge-commit",
	"push":         "pre-push",
}

var legacyLanguages = map[string]string{
	"python_venv": "python",
}

// NormalizeStage maps legacy stage names onto their current spelling.
func NormalizeStage(stage string) string {
	if current, ok := legacyStages[stage]; ok {
		return current
	}
	return stage
}

// IsKnownStage reports whether stage (legacy spellings included) is valid.
func IsKnownStage(stage string) bool {
	return slices.Contains(Stages, NormalizeStage(stage))
}

// IsKnownLanguage reports whether language is valid.
func IsKnownLanguage(language string) bool {
	if _, ok := legacyLanguages[language]; ok {
		return true
	}
	return slices.Contains(Languages, language)
}

// ApplyDefaults fills the fields pre-commit derives when a config leaves them
// unset: the display name, the stages from default_stages and the language
// version from default_language_version.
func (c *Config) ApplyDefaults(hook Hook) Hook {
	if hook.Name == "" {
		hook.Name = hook.ID
	}

	if current, ok := legacyLanguages[hook.Language]; ok {
		hook.Language = current
	}

	if len(hook.Stages) == 0 {
		hook.Stages = slices.Clone(c.DefaultStages)
	} else {
		hook.Stages = slices.Clone(hook.Stages)
	}
	for i, stage := range hook.Stages {
		hook.Stages[i] = NormalizeStage(stage)
	}

	hook.LanguageVersion = ResolveEffectiveLanguageVersion(hook, *c)
	return hook
}

// ResolveEffectiveLanguageVersion determines the effective language version for a hook
// considering both the hook's specific language_version and the default_language_version config.
func ResolveEffectiveLanguageVersion(hook Hook, config Config) string {
	if hook.LanguageVersion != "" {
		return hook.LanguageVersion
	}

	if config.DefaultLanguageVersion != nil {
		if defaultVersion, exists := config.DefaultLanguageVersion[hook.Language]; exists {
			return defaultVersion
		}
	}

	return ""
}

// MergeHook overlays the fields set in a config entry onto a manifest
// definition. Keys written in the entry's YAML always win, even as false or
// an empty list. Otherwise only non-zero override fields replace the base.
func MergeHook(base, override Hook) Hook {
	result := base
	applyOverride(&result.Alias, override.Alias, override.Has("alias"))
	applyOverride(&result.Name, override.Name, override.Has("name"))
	applyOverride(&result.Entry, override.Entry, override.Has("entry"))
	applyOverride(&result.Language, override.Language, override.Has("language"))
	applyOverride(&result.Files, override.Files, override.Has("files"))
	applyOverride(&result.ExcludeRegex, override.ExcludeRegex, override.Has("exclude"))
	applySliceOverride(&result.Types, override.Types, override.Has("types"))
	applySliceOverride(&result.TypesOr, override.TypesOr, override.Has("types_or"))
	applySliceOverride(&result.ExcludeTypes, override.ExcludeTypes, override.Has("exclude_types"))
	applySliceOverride(&result.AdditionalDeps, override.AdditionalDeps, override.Has("additional_dependencies"))
	applySliceOverride(&result.Args, override.Args, override.Has("args"))
	applyOverride(&result.AlwaysRun, override.AlwaysRun, override.Has("always_run"))
	applyOverride(&result.Verbose, override.Verbose, override.Has("verbose"))
	applyOverride(&result.FailFast, override.FailFast, override.Has("fail_fast"))
	applyOverride(&result.LogFile, override.LogFile, override.Has("log_file"))
	if override.PassFilenames != nil {
		result.PassFilenames = override.PassFilenames
	}
	applyOverride(&result.Description, override.Description, override.Has("description"))
	applyOverride(&result.LanguageVersion, override.LanguageVersion, override.Has("language_version"))
	applyOverride(&result.MinimumPreCommitVersion, override.MinimumPreCommitVersion, override.Has("minimum_pre_commit_version"))
	applyOverride(&result.RequireSerial, override.RequireSerial, override.Has("require_serial"))
	applySliceOverride(&result.Stages, override.Stages, override.Has("stages"))

	result.present = nil
	return result
}

func applyOverride[T comparable](target *T, value T, written bool) {
	var zero T
	if written || value != zero {
		*target = value
	}
}

func applySliceOverride[T any](target *[]T, value []T, written bool) {
	if written || len(value) > 0 {
		*target = value
	}
}

// ShouldPassFilenames resolves the tri-state pass_filenames field.
func (h Hook) ShouldPassFilenames() bool {
	if h.PassFilenames != nil {
		return *h.PassFilenames
	}
	return true
}
