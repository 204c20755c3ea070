package config

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/pattern"
)

// Issue is a single validation failure located by a dotted path such as
// repos[0].hooks[2].files.
type Issue struct {
	Path    string
	Message string
}

func (i Issue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError aggregates every issue found in a document.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return e.Issues[0].String()
	}
	lines := make([]string, 0, len(e.Issues)+1)
	lines = append(lines, fmt.Sprintf("%d validation errors:", len(e.Issues)))
	for _, issue := range e.Issues {
		lines = append(lines, "  - "+issue.String())
	}
	return strings.Join(lines, "\n")
}

type validator struct {
	issues []Issue
}

func (v *validator) addf(path, format string, args ...any) {
	v.issues = append(v.issues, Issue{Path: path, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) err() error {
	if len(v.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: v.issues}
}

// Validate validates the configuration. All problems are reported together
// as a *ValidationError.
func (c *Config) Validate() error {
	v := &validator{}

	v.checkRegex("files", c.Files)
	v.checkRegex("exclude", c.ExcludeRegex)
	v.checkMinimumVersion("minimum_pre_commit_version", c.MinimumPreCommitVersion)

	for i, stage := range c.DefaultStages {
		if !IsKnownStage(stage) {
			v.addf(fmt.Sprintf("default_stages[%d]", i), "unknown stage %q", stage)
		}
	}

	if c.CI != nil && c.CI.AutoupdateSchedule != "" &&
		!slices.Contains(validAutoupdateSchedules, c.CI.AutoupdateSchedule) {
		v.addf("ci.autoupdate_schedule", "expected one of %s, got %q",
			strings.Join(validAutoupdateSchedules, ", "), c.CI.AutoupdateSchedule)
	}

	for i, repo := range c.Repos {
		v.checkRepo(fmt.Sprintf("repos[%d]", i), repo)
	}

	return v.err()
}

func (v *validator) checkRepo(path string, repo Repo) {
	switch {
	case repo.Repo == "":
		v.addf(path+".repo", "repository URL is required")
	case repo.IsRemote() && repo.Rev == "":
		v.addf(path+".rev", "revision is required for repo %s", repo.Repo)
	case !repo.IsRemote() && repo.Rev != "":
		v.addf(path+".rev", "%s repos must not set a revision", repo.Repo)
	}

	if len(repo.Hooks) == 0 {
		v.addf(path+".hooks", "no hooks configured")
	}

	for j, hook := range repo.Hooks {
		hookPath := fmt.Sprintf("%s.hooks[%d]", path, j)
		v.checkHook(hookPath, hook)

		switch {
		case repo.IsLocal():
			v.checkLocalHook(hookPath, hook)
		case repo.IsMeta():
			if _, ok := MetaHook(hook.ID); hook.ID != "" && !ok {
				v.addf(hookPath+".id", "unknown meta hook %q (expected one of %s)",
					hook.ID, strings.Join(MetaHookIDs(), ", "))
			}
			if hook.Entry != "" {
				v.addf(hookPath+".entry", "meta hooks cannot override entry")
			}
		}
	}
}

// checkHook applies to every hook regardless of its repo.
func (v *validator) checkHook(path string, hook Hook) {
	if hook.ID == "" {
		v.addf(path+".id", "hook ID is required")
	}
	if hook.Language != "" && !IsKnownLanguage(hook.Language) {
		v.addf(path+".language", "%q is not a valid language", hook.Language)
	}

	v.checkRegex(path+".files", hook.Files)
	v.checkRegex(path+".exclude", hook.ExcludeRegex)
	v.checkMinimumVersion(path+".minimum_pre_commit_version", hook.MinimumPreCommitVersion)

	for i, stage := range hook.Stages {
		if !IsKnownStage(stage) {
			v.addf(fmt.Sprintf("%s.stages[%d]", path, i), "unknown stage %q", stage)
		}
	}
}

// checkLocalHook enforces the fields a manifest would otherwise provide.
func (v *validator) checkLocalHook(path string, hook Hook) {
	if hook.Name == "" {
		v.addf(path+".name", "local hooks require a name")
	}
	if hook.Entry == "" {
		v.addf(path+".entry", "local hooks require an entry")
	}
	if hook.Language == "" {
		v.addf(path+".language", "local hooks require a language")
	}
}

func (v *validator) checkRegex(path, expr string) {
	if expr == "" {
		return
	}
	if _, err := pattern.Compile(expr); err != nil {
		v.addf(path, "%v", err)
	}
}

func (v *validator) checkMinimumVersion(path, minimum string) {
	if minimum == "" {
		return
	}
	if err := CheckMinimumVersion(minimum); err != nil {
		v.addf(path, "%v", err)
	}
}

// CheckMinimumVersion fails when minimum is newer than the implemented
// pre-commit version.
func CheckMinimumVersion(minimum string) error {
	required, err := version.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", minimum, err)
	}
	current := version.Must(version.NewVersion(constants.Version))
	if current.LessThan(required) {
		return fmt.Errorf("requires version %s but hookcfg implements %s", required, current)
	}
	return nil
}

var hexRevPattern = regexp.MustCompile(`^[a-fA-F0-9]+$`)

// IsMutableRev reports whether rev looks like a branch name rather than a
// tag or commit: it has no dot and is not hexadecimal.
func IsMutableRev(rev string) bool {
	return rev != "" && !strings.Contains(rev, ".") && !hexRevPattern.MatchString(rev)
}

func (c *Config) semanticWarnings() []string {
	var warnings []string

	for _, repo := range c.Repos {
		if repo.IsRemote() && IsMutableRev(repo.Rev) {
			warnings = append(warnings, fmt.Sprintf(
				"The 'rev' field of repo '%s' appears to be a mutable reference "+
					"(moving tag / branch). Mutable references are never updated after first install "+
					"and are not supported.", repo.Repo))
		}
		for _, hook := range repo.Hooks {
			for _, stage := range hook.Stages {
				if current, ok := legacyStages[stage]; ok {
					warnings = append(warnings, fmt.Sprintf(
						"hook '%s' uses deprecated stage name '%s' (use '%s'); run `hookcfg migrate-config`",
						hook.ID, stage, current))
				}
			}
		}
	}

	if c.CI != nil {
		for _, id := range c.CI.Skip {
			if _, _, ok := c.HookByID(id); !ok {
				warnings = append(warnings, fmt.Sprintf("ci.skip references unknown hook '%s'", id))
			}
		}
		if len(c.CI.Unused) > 0 {
			unused := slices.Clone(c.CI.Unused)
			sort.Strings(unused)
			warnings = append(warnings, fmt.Sprintf("Unexpected key(s) present in ci: %s", strings.Join(unused, ", ")))
		}
	}

	return warnings
}
