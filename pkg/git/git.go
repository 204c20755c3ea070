// Package git provides the repository operations a hook run needs: locating
// the work tree, listing candidate files, stashing unstaged changes and
// managing the hook scripts in .git/hooks.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/blairham/hookcfg/pkg/logging"
)

var logger = logging.NewLogger("git")

// ErrNotRepository is returned outside a git work tree.
var ErrNotRepository = errors.New("not in a git repository")

// Repository represents a git repository
type Repository struct {
	repo *git.Repository
	Root string
}

// NewRepository opens the repository containing path ("" for the working
// directory).
func NewRepository(path string) (*Repository, error) {
	root, err := FindGitRoot(path)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	return &Repository{Root: root, repo: repo}, nil
}

// FindGitRoot finds the root of the git repository
func FindGitRoot(path string) (string, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path: %w", err)
	}

	for {
		if _, err := gitDirAt(path); err == nil {
			return path, nil
		}
		parent := filepath.Dir(path)
		if parent == path {
			return "", ErrNotRepository
		}
		path = parent
	}
}

// gitDirAt returns the git directory of a work tree root: .git itself, or
// the target of a "gitdir:" file for worktrees and submodules.
func gitDirAt(root string) (string, error) {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return dotGit, nil
	}

	content, err := os.ReadFile(dotGit) // #nosec G304 -- reading git metadata
	if err != nil {
		return "", err
	}
	target, ok := strings.CutPrefix(strings.TrimSpace(string(content)), "gitdir: ")
	if !ok {
		return "", fmt.Errorf("%s is not a gitdir file", dotGit)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	return target, nil
}

// StagedFiles returns added, copied and modified files in the index.
func (r *Repository) StagedFiles() ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}

	var files []string
	for file, fileStatus := range status {
		switch fileStatus.Staging {
		case git.Added, git.Modified, git.Copied, git.Renamed:
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// AllFiles returns every file in the index, like `git ls-files`.
func (r *Repository) AllFiles() ([]string, error) {
	idx, err := r.repo.Storer.Index()
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	seen := make(map[string]bool, len(idx.Entries))
	files := make([]string, 0, len(idx.Entries))
	for _, entry := range idx.Entries {
		// Conflicted files have one entry per stage.
		if seen[entry.Name] {
			continue
		}
		seen[entry.Name] = true
		files = append(files, entry.Name)
	}
	sort.Strings(files)
	return files, nil
}

// ChangedFiles returns files added or modified between two refs. Deleted
// files are left out.
func (r *Repository) ChangedFiles(fromRef, toRef string) ([]string, error) {
	fromHash, err := r.resolveReference(fromRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference %s: %w", fromRef, err)
	}
	toHash, err := r.resolveReference(toRef)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference %s: %w", toRef, err)
	}

	fromCommit, err := r.repo.CommitObject(fromHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", fromRef, err)
	}
	toCommit, err := r.repo.CommitObject(toHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", toRef, err)
	}

	// Compare against the merge base, like `git diff from...to`.
	if bases, err := fromCommit.MergeBase(toCommit); err == nil && len(bases) > 0 {
		fromCommit = bases[0]
	}

	fromTree, err := fromCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for %s: %w", fromRef, err)
	}
	toTree, err := toCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for %s: %w", toRef, err)
	}

	changes, err := fromTree.Diff(toTree)
	if err != nil {
		return nil, fmt.Errorf("failed to get diff between %s and %s: %w", fromRef, toRef, err)
	}

	var files []string
	for _, change := range changes {
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		}
	}
	sort.Strings(files)
	return files, nil
}

// UnmergedFiles returns files with unresolved merge conflicts.
func (r *Repository) UnmergedFiles() ([]string, error) {
	status, err := r.status()
	if err != nil {
		return nil, err
	}

	var files []string
	for file, fileStatus := range status {
		if fileStatus.Staging == git.UpdatedButUnmerged || fileStatus.Worktree == git.UpdatedButUnmerged {
			files = append(files, file)
		}
	}
	sort.Strings(files)
	return files, nil
}

// IsMerging reports whether a merge is in progress.
func (r *Repository) IsMerging() bool {
	gitDir, err := gitDirAt(r.Root)
	if err != nil {
		return false
	}
	for _, name := range []string{"MERGE_MSG", "MERGE_HEAD"} {
		if _, err := os.Stat(filepath.Join(gitDir, name)); err != nil {
			return false
		}
	}
	return true
}

// HasUnstagedChangesForFile checks if a specific file has unstaged changes
func (r *Repository) HasUnstagedChangesForFile(filePath string) bool {
	status, err := r.status()
	if err != nil {
		return false
	}
	fileStatus, ok := status[filepath.ToSlash(filePath)]
	return ok && fileStatus.Worktree == git.Modified
}

// Diff returns `git diff` of the work tree, used to show what hooks changed.
func (r *Repository) Diff(ctx context.Context, color bool) (string, error) {
	colorArg := "--color=never"
	if color {
		colorArg = "--color=always"
	}
	out, err := r.run(ctx, "diff", "--no-ext-diff", colorArg)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (r *Repository) status() (git.Status, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}
	return status, nil
}

// resolveReference resolves a git reference (branch, tag, commit hash) to a hash
func (r *Repository) resolveReference(ref string) (plumbing.Hash, error) {
	if resolved, err := r.repo.ResolveRevision(plumbing.Revision(ref)); err == nil {
		return *resolved, nil
	}
	if hash := plumbing.NewHash(ref); !hash.IsZero() {
		return hash, nil
	}
	return plumbing.ZeroHash, fmt.Errorf("unable to resolve reference: %s", ref)
}

// run executes the git binary in the work tree. Git's environment is passed
// through unchanged so GIT_INDEX_FILE and friends keep pointing at the
// index of the commit in progress.
func (r *Repository) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Root
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return out, fmt.Errorf("git %s: %w", args[0], err)
		}
		return out, fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return out, nil
}

// RunGit executes an arbitrary git command in the work tree.
func (r *Repository) RunGit(ctx context.Context, args ...string) (string, error) {
	out, err := r.run(ctx, args...)
	return string(out), err
}
