package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/blairham/hookcfg/pkg/git"
)

// Git hook types
const (
	hookTypePreCommit      = "pre-commit"
	hookTypePreMergeCommit = "pre-merge-commit"
	hookTypePrePush        = "pre-push"
	hookTypePrepareCommit  = "prepare-commit-msg"
	hookTypeCommitMsg      = "commit-msg"
	hookTypePostCheckout   = "post-checkout"
	hookTypePostCommit     = "post-commit"
	hookTypePostMerge      = "post-merge"
	hookTypePostRewrite    = "post-rewrite"
	hookTypePreRebase      = "pre-rebase"
)

var hookTypes = []string{
	hookTypeCommitMsg, hookTypePostCheckout, hookTypePostCommit, hookTypePostMerge,
	hookTypePostRewrite, hookTypePreCommit, hookTypePreMergeCommit, hookTypePrePush,
	hookTypePreRebase, hookTypePrepareCommit,
}

func isHookType(name string) bool {
	return slices.Contains(hookTypes, name)
}

// OptionsUsage is the usage line of commands without positional arguments.
const OptionsUsage = "[OPTIONS]"

const hookScriptTemplate = `#!/usr/bin/env bash
%s
# See https://github.com/blairham/hookcfg
ARGS=(hook-impl --config=%s --hook-type=%s%s)
# end templated

HERE="$(cd "$(dirname "$0")" && pwd)"
ARGS+=(--hook-dir "$HERE" -- "$@")

INSTALLED=%s
if [ -x "$INSTALLED" ]; then
    exec "$INSTALLED" "${ARGS[@]}"
elif command -v hookcfg > /dev/null; then
    exec hookcfg "${ARGS[@]}"
else
    echo '` + "`hookcfg`" + ` not found.  Install it or add it to PATH.' 1>&2
    exit 1
fi
`

// hookScript renders the script installed as a git hook. executable is
// the hookcfg binary that installed it, tried before PATH.
func hookScript(configPath, hookType, executable string, skipOnMissingConfig bool) string {
	extra := ""
	if skipOnMissingConfig {
		extra = " --skip-on-missing-config"
	}
	return fmt.Sprintf(hookScriptTemplate,
		git.HookMarker, shellQuote(configPath), shellQuote(hookType), extra, shellQuote(executable))
}

// shellQuote quotes s for bash.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if strings.IndexFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./=:+@%", r))
	}) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
