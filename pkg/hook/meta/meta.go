// Package meta implements the hooks of the meta repository, which check
// the configuration itself rather than the files being committed.
package meta

import (
	"fmt"
	"io"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/hook/commands"
	"github.com/blairham/hookcfg/pkg/hook/matching"
)

// CheckHooksApply reports every hook that selects no file in the
// repository. files are all tracked files; hooks are fully resolved.
// It returns true when some hook does not apply.
func CheckHooksApply(out io.Writer, cfg *config.Config, hooks []config.Hook, m *matching.Matcher, files []string) bool {
	files = matching.FilterRoot(cfg, files)

	failed := false
	for _, hook := range hooks {
		if hook.AlwaysRun || commands.Normalize(hook.Language) == commands.LanguageFail {
			continue
		}
		if len(m.FilesForHook(hook, files)) == 0 {
			fmt.Fprintf(out, "%s does not apply to this repository\n", hook.ID)
			failed = true
		}
	}
	return failed
}

// CheckUselessExcludes reports exclude patterns, global or per hook, that
// remove no file. It returns true when one is found.
func CheckUselessExcludes(out io.Writer, cfg *config.Config, m *matching.Matcher, files []string) bool {
	failed := false

	if !excludeMatchesAny(files, "", cfg.ExcludeRegex) {
		fmt.Fprintf(out, "The global exclude pattern '%s' does not match any files\n", cfg.ExcludeRegex)
		failed = true
	}

	candidates := matching.Filter(files, cfg.Files, cfg.ExcludeRegex)
	for _, repo := range cfg.Repos {
		for _, hook := range repo.Hooks {
			// No default types here: a hook may target symlinks.
			var names []string
			for _, file := range candidates {
				if m.MatchesTypes(file, hook.Types, hook.TypesOr, hook.ExcludeTypes) {
					names = append(names, file)
				}
			}
			if !excludeMatchesAny(names, hook.Files, hook.ExcludeRegex) {
				fmt.Fprintf(out, "The exclude pattern '%s' for %s does not match any files\n", hook.ExcludeRegex, hook.ID)
				failed = true
			}
		}
	}

	return failed
}

// excludeMatchesAny reports whether exclude removes a file include selects.
// An unset exclude never counts as useless.
func excludeMatchesAny(files []string, include, exclude string) bool {
	if exclude == "" || exclude == "^$" {
		return true
	}
	return matching.AnyMatch(exclude, matching.Filter(files, include, ""))
}

// Identity prints the files it is given, one per line.
func Identity(out io.Writer, files []string) {
	for _, file := range files {
		fmt.Fprintln(out, file)
	}
}
