package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/logging"
)

var logger = logging.NewLogger("cache")

// Entry is one cached checkout.
type Entry struct {
	Repo string
	Ref  string
	Path string
}

// Manager owns the cache registry, a SQLite database with the same schema
// pre-commit uses, so both tools can share one cache.
type Manager struct {
	db       *sql.DB
	cacheDir string
	dbPath   string
}

// NewManager opens (creating when needed) the cache in cacheDir.
func NewManager(cacheDir string) (*Manager, error) {
	if err := os.MkdirAll(cacheDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "db.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := initDatabase(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Manager{db: db, cacheDir: cacheDir, dbPath: dbPath}, nil
}

// CacheDir returns the cache directory
func (m *Manager) CacheDir() string {
	return m.cacheDir
}

// DBPath returns the registry database path
func (m *Manager) DBPath() string {
	return m.dbPath
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}

// Lock returns the cache's inter-process lock.
func (m *Manager) Lock() *FileLock {
	return NewFileLock(m.cacheDir)
}

// Lookup returns the checkout recorded for repo at ref. Entries whose
// directory has disappeared are dropped.
func (m *Manager) Lookup(ctx context.Context, repo, ref string) (string, bool) {
	var path string
	err := m.db.QueryRowContext(ctx,
		"SELECT path FROM repos WHERE repo = ? AND ref = ?", repo, ref,
	).Scan(&path)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.Warnf("failed to query cache for %s: %v", repo, err)
		}
		return "", false
	}

	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		return path, true
	}

	logger.WithField("repo", repo).Debugf("dropping stale cache entry %s", path)
	if err := m.forgetRepo(ctx, repo, ref); err != nil {
		logger.Warnf("failed to remove stale entry: %v", err)
	}
	return "", false
}

// NewRepoDir creates an empty repoXXXXXXXX directory for a checkout.
func (m *Manager) NewRepoDir() (string, error) {
	dir, err := os.MkdirTemp(m.cacheDir, "repo")
	if err != nil {
		return "", fmt.Errorf("failed to create repository directory: %w", err)
	}
	return dir, nil
}

// Record stores the checkout of repo at ref.
func (m *Manager) Record(ctx context.Context, repo, ref, path string) error {
	_, err := m.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO repos (repo, ref, path) VALUES (?, ?, ?)",
		repo, ref, normalizePath(path),
	)
	if err != nil {
		return fmt.Errorf("failed to record %s@%s: %w", repo, ref, err)
	}
	return nil
}

// Repos lists every cached checkout.
func (m *Manager) Repos(ctx context.Context) ([]Entry, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT repo, ref, path FROM repos ORDER BY repo, ref")
	if err != nil {
		return nil, fmt.Errorf("failed to list cached repos: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Repo, &e.Ref, &e.Path); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkConfigUsed records a config file as a user of the cache. Missing
// files are not recorded.
func (m *Manager) MarkConfigUsed(ctx context.Context, configPath string) error {
	path := normalizePath(configPath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	_, err := m.db.ExecContext(ctx, "INSERT OR IGNORE INTO configs VALUES (?)", path)
	return err
}

// Configs lists the recorded config files.
func (m *Manager) Configs(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, "SELECT path FROM configs ORDER BY path")
	if err != nil {
		return nil, fmt.Errorf("failed to list configs: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, rows.Err()
}

// GC forgets configs that are gone or no longer parse, then deletes every
// checkout no remaining config references. It returns how many checkouts
// were removed.
func (m *Manager) GC(ctx context.Context) (int, error) {
	var removed int
	err := m.Lock().WithLock(ctx, func() error {
		var err error
		removed, err = m.gc(ctx)
		return err
	})
	return removed, err
}

func (m *Manager) gc(ctx context.Context) (int, error) {
	configs, err := m.Configs(ctx)
	if err != nil {
		return 0, err
	}

	inUse := make(map[Entry]bool)
	for _, path := range configs {
		cfg, err := config.LoadConfig(path)
		if err != nil {
			logger.WithField("config", path).Debugf("forgetting config: %v", err)
			if _, err := m.db.ExecContext(ctx, "DELETE FROM configs WHERE path = ?", path); err != nil {
				return 0, fmt.Errorf("failed to forget config %s: %w", path, err)
			}
			continue
		}
		for _, repo := range cfg.Repos {
			if repo.IsRemote() {
				inUse[Entry{Repo: repo.Repo, Ref: repo.Rev}] = true
			}
		}
	}

	entries, err := m.Repos(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if inUse[Entry{Repo: e.Repo, Ref: e.Ref}] {
			continue
		}
		if err := os.RemoveAll(e.Path); err != nil {
			return removed, fmt.Errorf("failed to remove %s: %w", e.Path, err)
		}
		if err := m.forgetRepo(ctx, e.Repo, e.Ref); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (m *Manager) forgetRepo(ctx context.Context, repo, ref string) error {
	_, err := m.db.ExecContext(ctx, "DELETE FROM repos WHERE repo = ? AND ref = ?", repo, ref)
	return err
}

// normalizePath resolves path to an absolute path without symlinks, falling
// back to the absolute path when it cannot be resolved.
func normalizePath(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		return realPath
	}
	return absPath
}

func initDatabase(db *sql.DB) error {
	const createRepos = `
	CREATE TABLE IF NOT EXISTS repos (
		repo TEXT,
		ref TEXT,
		path TEXT,
		PRIMARY KEY (repo, ref)
	);`
	const createConfigs = `
	CREATE TABLE IF NOT EXISTS configs (
		path TEXT NOT NULL,
		PRIMARY KEY (path)
	);`

	if _, err := db.ExecContext(context.Background(), createRepos); err != nil {
		return fmt.Errorf("failed to create repos table: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), createConfigs); err != nil {
		return fmt.Errorf("failed to create configs table: %w", err)
	}
	return nil
}
