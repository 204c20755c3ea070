package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 100 * time.Millisecond

// FileLock is an exclusive lock on <cache>/.lock shared with other hookcfg
// and pre-commit processes.
type FileLock struct {
	lock *flock.Flock
}

// NewFileLock creates a new file lock for the given directory
func NewFileLock(cacheDir string) *FileLock {
	return &FileLock{lock: flock.New(filepath.Join(cacheDir, ".lock"))}
}

// Lock blocks until the lock is held or ctx is done.
func (fl *FileLock) Lock(ctx context.Context) error {
	locked, err := fl.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire file lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire file lock %s", fl.lock.Path())
	}
	return nil
}

// Unlock releases the file lock
func (fl *FileLock) Unlock() error {
	return fl.lock.Unlock()
}

// WithLock executes a function while holding the file lock
func (fl *FileLock) WithLock(ctx context.Context, fn func() error) error {
	if err := fl.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		if err := fl.Unlock(); err != nil {
			logger.Warnf("failed to unlock %s: %v", fl.lock.Path(), err)
		}
	}()

	return fn()
}
