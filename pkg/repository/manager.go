// Package repository fetches hook repositories into the cache and resolves
// hook definitions against their manifests.
package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/blairham/hookcfg/pkg/cache"
	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/logging"
)

var logger = logging.NewLogger("repository")

// ErrHookNotFound is returned when a configured hook id is missing from its
// repository's manifest.
var ErrHookNotFound = errors.New("hook not found in repository")

// Manager handles repository checkouts and hook resolution
type Manager struct {
	cache *cache.Manager

	mu        sync.Mutex
	manifests map[string][]config.Hook
}

// NewManager opens the cache in cacheDir, or in cache.Dir() when cacheDir
// is empty.
func NewManager(cacheDir string) (*Manager, error) {
	if cacheDir == "" {
		dir, err := cache.Dir()
		if err != nil {
			return nil, err
		}
		cacheDir = dir
	}

	cacheManager, err := cache.NewManager(cacheDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache manager: %w", err)
	}

	return &Manager{
		cache:     cacheManager,
		manifests: make(map[string][]config.Hook),
	}, nil
}

// Close closes the cache registry
func (m *Manager) Close() error {
	return m.cache.Close()
}

// Cache returns the underlying cache.
func (m *Manager) Cache() *cache.Manager {
	return m.cache
}

// Ensure returns the checkout of repo at its rev, cloning it on first use.
// Concurrent processes serialize on the cache lock.
func (m *Manager) Ensure(ctx context.Context, repo config.Repo) (string, error) {
	if !repo.IsRemote() {
		return "", fmt.Errorf("%s repos have no checkout", repo.Repo)
	}
	if path, ok := m.cache.Lookup(ctx, repo.Repo, repo.Rev); ok {
		return path, nil
	}

	var path string
	err := m.cache.Lock().WithLock(ctx, func() error {
		// Another process may have cloned it while we waited.
		if existing, ok := m.cache.Lookup(ctx, repo.Repo, repo.Rev); ok {
			path = existing
			return nil
		}

		dir, err := m.cache.NewRepoDir()
		if err != nil {
			return err
		}

		logger.WithField("repo", repo.Repo).Infof("Initializing environment for %s.", repo.Repo)
		if err := cloneAt(ctx, repo.Repo, repo.Rev, dir); err != nil {
			_ = os.RemoveAll(dir)
			return err
		}
		if err := m.cache.Record(ctx, repo.Repo, repo.Rev, dir); err != nil {
			return err
		}
		path = dir
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

// ResolveHook returns the full definition of a configured hook and the
// checkout it runs from ("" for local and meta hooks).
func (m *Manager) ResolveHook(ctx context.Context, repo config.Repo, hook config.Hook) (string, config.Hook, error) {
	switch {
	case repo.IsLocal():
		return "", hook, nil
	case repo.IsMeta():
		base, ok := config.MetaHook(hook.ID)
		if !ok {
			return "", hook, fmt.Errorf("%w: %s is not a meta hook", ErrHookNotFound, hook.ID)
		}
		return "", config.MergeHook(base, hook), nil
	}

	path, err := m.Ensure(ctx, repo)
	if err != nil {
		return "", hook, err
	}

	hooks, err := m.manifest(path)
	if err != nil {
		return "", hook, err
	}

	base, ok := config.FindManifestHook(hooks, hook.ID)
	if !ok {
		return "", hook, fmt.Errorf(
			"%w: `%s` is not present in repository %s at %s. Typo? Perhaps it is introduced "+
				"in a newer version? `hookcfg autoupdate` often fixes this",
			ErrHookNotFound, hook.ID, repo.Repo, repo.Rev)
	}
	return path, config.MergeHook(base, hook), nil
}

// Manifest returns the hook definitions published by the checkout at path.
func (m *Manager) Manifest(path string) ([]config.Hook, error) {
	return m.manifest(path)
}

func (m *Manager) manifest(path string) ([]config.Hook, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hooks, ok := m.manifests[path]; ok {
		return hooks, nil
	}
	hooks, err := config.LoadManifest(filepath.Join(path, config.ManifestFileName))
	if err != nil {
		return nil, err
	}
	m.manifests[path] = hooks
	return hooks, nil
}
