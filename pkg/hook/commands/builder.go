// Package commands turns hook definitions into command lines
package commands

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/google/shlex"

	"github.com/blairham/hookcfg/pkg/config"
)

// ErrEmptyEntry is returned for hooks whose entry has no command.
var ErrEmptyEntry = errors.New("hook entry is empty")

// Builder handles building commands for different hook languages
type Builder struct {
	repoRoot string
}

// NewBuilder creates a builder whose commands run in repoRoot.
func NewBuilder(repoRoot string) *Builder {
	return &Builder{repoRoot: repoRoot}
}

// Argv returns the command line for a hook without filenames: the entry
// split with shell quoting rules, then the hook's args. hookPath is the
// checkout of the hook's repository ("" for local hooks); script entries
// resolve against it.
func (b *Builder) Argv(hook config.Hook, hookPath string) ([]string, error) {
	entry, err := shlex.Split(hook.Entry)
	if err != nil {
		return nil, fmt.Errorf("failed to parse entry %q: %w", hook.Entry, err)
	}
	if len(entry) == 0 {
		return nil, ErrEmptyEntry
	}

	switch Normalize(hook.Language) {
	case LanguageScript:
		entry[0] = b.scriptPath(entry[0], hookPath)
	case LanguageDockerImage:
		entry = append(b.dockerRunPrefix(), entry...)
	}

	argv := make([]string, 0, len(entry)+len(hook.Args))
	argv = append(argv, entry...)
	return append(argv, hook.Args...), nil
}

// Command creates the process for argv followed by files, killed when ctx
// is done.
func (b *Builder) Command(ctx context.Context, argv, files []string) *exec.Cmd {
	args := make([]string, 0, len(argv)-1+len(files))
	args = append(args, argv[1:]...)
	args = append(args, files...)

	cmd := exec.CommandContext(ctx, argv[0], args...) // #nosec G204 -- hooks are user configured commands
	cmd.Dir = b.repoRoot
	return cmd
}

func (b *Builder) scriptPath(script, hookPath string) string {
	if filepath.IsAbs(script) {
		return script
	}
	base := hookPath
	if base == "" {
		base = b.repoRoot
	}
	return filepath.Join(base, script)
}
