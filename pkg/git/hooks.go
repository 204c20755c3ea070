package git

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrHooksPathSet is returned when core.hooksPath redirects git hooks away
// from .git/hooks.
var ErrHooksPathSet = errors.New("cowardly refusing to install hooks with `core.hooksPath` set")

// HookMarker identifies hook scripts written by hookcfg.
const HookMarker = "# File generated by hookcfg"

// pre-commit's script identifier; scripts carrying it are interchangeable
// with ours.
const preCommitHash = "138fd403232d2ddd5efb44317e38bf03"

// HooksDir returns the directory git runs hooks from.
func (r *Repository) HooksDir() (string, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return "", fmt.Errorf("failed to read git config: %w", err)
	}
	if cfg.Raw.Section("core").Option("hooksPath") != "" {
		return "", ErrHooksPathSet
	}

	gitDir, err := gitDirAt(r.Root)
	if err != nil {
		return "", err
	}
	// Linked worktrees share the hooks of the main repository.
	if common, err := os.ReadFile(filepath.Join(gitDir, "commondir")); err == nil { // #nosec G304 -- git metadata
		dir := string(bytes.TrimSpace(common))
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(gitDir, dir)
		}
		gitDir = dir
	}
	return filepath.Join(gitDir, "hooks"), nil
}

// IsOurHook reports whether the script at path was written by hookcfg or
// pre-commit.
func IsOurHook(path string) bool {
	content, err := os.ReadFile(path) // #nosec G304 -- hook script
	if err != nil {
		return false
	}
	return bytes.Contains(content, []byte(HookMarker)) || bytes.Contains(content, []byte(preCommitHash))
}

// InstallHook writes script as the hookType hook. A foreign hook already in
// place is kept as <hook>.legacy and keeps running before ours, unless
// overwrite is set. It returns the installed path and whether a legacy hook
// remains.
func (r *Repository) InstallHook(hookType, script string, overwrite bool) (string, bool, error) {
	hooksDir, err := r.HooksDir()
	if err != nil {
		return "", false, err
	}
	if err := os.MkdirAll(hooksDir, 0o750); err != nil {
		return "", false, fmt.Errorf("failed to create hooks directory: %w", err)
	}

	hookPath := filepath.Join(hooksDir, hookType)
	legacyPath := hookPath + ".legacy"

	if _, err := os.Stat(hookPath); err == nil && !IsOurHook(hookPath) {
		if err := os.Rename(hookPath, legacyPath); err != nil {
			return "", false, fmt.Errorf("failed to move existing hook: %w", err)
		}
	}

	if overwrite {
		if err := os.Remove(legacyPath); err != nil && !os.IsNotExist(err) {
			return "", false, fmt.Errorf("failed to remove legacy hook: %w", err)
		}
	}

	// #nosec G306 -- hook scripts must be executable
	if err := os.WriteFile(hookPath, []byte(script), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to write hook file: %w", err)
	}
	if err := os.Chmod(hookPath, 0o755); err != nil { // #nosec G302
		return "", false, fmt.Errorf("failed to make hook executable: %w", err)
	}

	_, legacyErr := os.Stat(legacyPath)
	return hookPath, legacyErr == nil, nil
}

// UninstallHook removes our hookType hook and puts a legacy hook back in
// its place. Hooks we did not write are left alone. It reports whether
// anything was removed and whether a legacy hook was restored.
func (r *Repository) UninstallHook(hookType string) (removed, restored bool, err error) {
	hooksDir, err := r.HooksDir()
	if err != nil {
		return false, false, err
	}

	hookPath := filepath.Join(hooksDir, hookType)
	if !IsOurHook(hookPath) {
		return false, false, nil
	}
	if err := os.Remove(hookPath); err != nil {
		return false, false, fmt.Errorf("failed to remove hook: %w", err)
	}

	legacyPath := hookPath + ".legacy"
	if _, err := os.Stat(legacyPath); err == nil {
		if err := os.Rename(legacyPath, hookPath); err != nil {
			return true, false, fmt.Errorf("failed to restore legacy hook: %w", err)
		}
		return true, true, nil
	}
	return true, false, nil
}

// LegacyHook returns the path of a previous hook kept next to ours, if any.
func (r *Repository) LegacyHook(hookType string) (string, bool) {
	hooksDir, err := r.HooksDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(hooksDir, hookType+".legacy")
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
