// Package cache manages the on-disk hook repository cache: its location,
// its inter-process lock and the registry of checkouts and configs.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blairham/hookcfg/pkg/constants"
)

// Dir returns the cache directory: PRE_COMMIT_HOME, else
// $XDG_CACHE_HOME/pre-commit, else ~/.cache/pre-commit.
func Dir() (string, error) {
	if home := os.Getenv(constants.EnvPreCommitHome); home != "" {
		return home, nil
	}
	if xdg := os.Getenv(constants.EnvXDGCacheHome); xdg != "" {
		return filepath.Join(xdg, "pre-commit"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cache", "pre-commit"), nil
}

// Clean removes the cache directory and everything in it.
func Clean(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove cache %s: %w", dir, err)
	}
	return nil
}
