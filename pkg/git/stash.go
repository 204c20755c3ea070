package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNoStashRequired is returned when there are no unstaged changes to stash.
var ErrNoStashRequired = errors.New("no unstaged changes to stash")

// StashInfo holds information about a stashed set of changes
type StashInfo struct {
	PatchFile string
	Files     []string
}

// UnstagedFiles returns tracked files whose work tree content differs from
// the index.
func (r *Repository) UnstagedFiles(ctx context.Context) ([]string, error) {
	out, err := r.run(ctx, "diff", "--name-only", "--no-ext-diff", "-z")
	if err != nil {
		return nil, fmt.Errorf("failed to get unstaged files: %w", err)
	}

	var files []string
	for _, file := range strings.Split(string(out), "\x00") {
		if file != "" {
			files = append(files, file)
		}
	}
	return files, nil
}

// StashUnstagedChanges saves the unstaged changes of tracked files as a
// binary patch in patchDir and resets the work tree to the index, so hooks
// only see what is about to be committed. Untracked files are left alone.
func (r *Repository) StashUnstagedChanges(ctx context.Context, patchDir string, out io.Writer) (*StashInfo, error) {
	files, err := r.UnstagedFiles(ctx)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoStashRequired
	}

	patch, err := r.run(ctx, "diff", "--ignore-submodules", "--binary", "--no-color", "--no-ext-diff")
	if err != nil {
		return nil, fmt.Errorf("failed to create patch: %w", err)
	}

	if err := os.MkdirAll(patchDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create patch directory: %w", err)
	}
	patchFile := filepath.Join(patchDir, fmt.Sprintf("patch%d-%d", time.Now().Unix(), os.Getpid()))
	if err := os.WriteFile(patchFile, patch, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write patch file: %w", err)
	}

	fmt.Fprintln(out, "[WARNING] Unstaged files detected.")
	fmt.Fprintf(out, "[INFO] Stashing unstaged files to %s.\n", patchFile)

	stash := &StashInfo{PatchFile: patchFile, Files: files}
	if err := r.checkoutIndex(ctx); err != nil {
		if restoreErr := r.applyPatch(ctx, patchFile); restoreErr != nil {
			logger.Warnf("failed to restore stashed changes: %v", restoreErr)
		}
		return nil, err
	}
	return stash, nil
}

// RestoreFromStash re-applies stashed changes. When hooks modified the same
// files the patch conflicts: their changes are rolled back and the patch is
// applied to the pristine index content instead.
func (r *Repository) RestoreFromStash(ctx context.Context, stash *StashInfo, out io.Writer) error {
	if stash == nil {
		return nil
	}

	if err := r.applyPatch(ctx, stash.PatchFile); err != nil {
		fmt.Fprintln(out, "[WARNING] Stashed changes conflicted with hook auto-fixes... Rolling back fixes...")
		if err := r.checkoutIndex(ctx); err != nil {
			return err
		}
		if err := r.applyPatch(ctx, stash.PatchFile); err != nil {
			return fmt.Errorf("failed to restore stashed changes from %s: %w", stash.PatchFile, err)
		}
	}

	fmt.Fprintf(out, "[INFO] Restored changes from %s.\n", stash.PatchFile)
	if err := os.Remove(stash.PatchFile); err != nil {
		logger.Warnf("failed to remove patch file: %v", err)
	}
	return nil
}

func (r *Repository) checkoutIndex(ctx context.Context) error {
	if _, err := r.run(ctx, "-c", "submodule.recurse=0", "checkout", "--", "."); err != nil {
		return fmt.Errorf("failed to reset work tree to the index: %w", err)
	}
	return nil
}

func (r *Repository) applyPatch(ctx context.Context, patchFile string) error {
	_, err := r.run(ctx, "apply", "--whitespace=nowarn", patchFile)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("patch does not apply: %w", err)
	}
	return err
}
