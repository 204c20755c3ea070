package repository

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// cloneAt clones url into dir and checks out rev.
func cloneAt(ctx context.Context, url, rev, dir string) error {
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL:  url,
		Tags: git.AllTags,
	})
	if err != nil {
		return fmt.Errorf("failed to clone repository %s: %w", url, err)
	}

	if rev == "" {
		return nil
	}

	hash, err := resolveRevision(repo, rev)
	if err != nil {
		return err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: hash, Force: true}); err != nil {
		return fmt.Errorf("failed to checkout revision %s: %w", rev, err)
	}
	return nil
}

// resolveRevision finds the commit for a hash, tag or branch name. Annotated
// tags are peeled to their commit.
func resolveRevision(repo *git.Repository, rev string) (plumbing.Hash, error) {
	if isValidCommitHash(rev) && len(rev) == 40 {
		hash := plumbing.NewHash(rev)
		if _, err := repo.CommitObject(hash); err == nil {
			return hash, nil
		}
	}

	candidates := []string{
		"refs/tags/" + rev,
		"refs/remotes/origin/" + rev,
		rev,
	}
	for _, candidate := range candidates {
		if hash, err := repo.ResolveRevision(plumbing.Revision(candidate)); err == nil {
			return *hash, nil
		}
	}
	return plumbing.ZeroHash, fmt.Errorf("failed to resolve revision %s", rev)
}

// isValidCommitHash checks if a string looks like a git commit hash
func isValidCommitHash(s string) bool {
	if len(s) < 7 || len(s) > 40 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
