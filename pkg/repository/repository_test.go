package repository

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookcfg/pkg/config"
)

const testManifest = `-   id: say-hello
    name: Say hello
    entry: echo hello
    language: system
-   id: lint
    name: Lint
    entry: lint
    language: python
    types: [python]
`

// hookRepo creates a hook repository with one commit tagged v1.0.0 and
// returns its path and that commit.
func hookRepo(t *testing.T) (string, plumbing.Hash) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.ManifestFileName), []byte(testManifest), 0o644))

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	_, err = worktree.Add(config.ManifestFileName)
	require.NoError(t, err)
	hash, err := worktree.Commit("add hooks", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	_, err = repo.CreateTag("v1.0.0", hash, nil)
	require.NoError(t, err)
	return dir, hash
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_ResolveHook_LocalAndMeta(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	hook := config.Hook{ID: "mine", Entry: "true", Language: "system"}
	path, resolved, err := m.ResolveHook(ctx, config.Repo{Repo: "local"}, hook)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, hook, resolved)

	_, resolved, err = m.ResolveHook(ctx, config.Repo{Repo: "meta"}, config.Hook{ID: config.MetaCheckUselessExcludes})
	require.NoError(t, err)
	assert.Equal(t, "Check for useless excludes", resolved.Name)

	_, _, err = m.ResolveHook(ctx, config.Repo{Repo: "meta"}, config.Hook{ID: "nope"})
	assert.True(t, errors.Is(err, ErrHookNotFound))
}

func TestManager_EnsureAndResolveRemote(t *testing.T) {
	src, commit := hookRepo(t)
	m := newTestManager(t)
	ctx := context.Background()

	repo := config.Repo{Repo: src, Rev: "v1.0.0"}
	path, err := m.Ensure(ctx, repo)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(path, config.ManifestFileName))

	again, err := m.Ensure(ctx, repo)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	checkoutPath, hook, err := m.ResolveHook(ctx, repo, config.Hook{ID: "lint", Args: []string{"--strict"}})
	require.NoError(t, err)
	assert.Equal(t, path, checkoutPath)
	assert.Equal(t, "Lint", hook.Name)
	assert.Equal(t, []string{"python"}, hook.Types)
	assert.Equal(t, []string{"--strict"}, hook.Args)

	_, _, err = m.ResolveHook(ctx, repo, config.Hook{ID: "missing"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrHookNotFound))

	byHash, err := m.Ensure(ctx, config.Repo{Repo: src, Rev: commit.String()})
	require.NoError(t, err)
	assert.NotEqual(t, path, byHash)
}

func TestManager_EnsureBadRevision(t *testing.T) {
	src, _ := hookRepo(t)
	m := newTestManager(t)

	_, err := m.Ensure(context.Background(), config.Repo{Repo: src, Rev: "v9.9.9"})
	require.Error(t, err)

	entries, err := m.Cache().Repos(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLatestRevision(t *testing.T) {
	src, commit := hookRepo(t)

	rev, err := LatestRevision(context.Background(), src, false)
	require.NoError(t, err)
	assert.Equal(t, "v1.0.0", rev.Tag)
	assert.Equal(t, commit.String(), rev.Hash)
	assert.Equal(t, "v1.0.0", rev.Rev())

	rev, err = LatestRevision(context.Background(), src, true)
	require.NoError(t, err)
	assert.Empty(t, rev.Tag)
	assert.Equal(t, commit.String(), rev.Rev())
}

func TestLatestFromRefs(t *testing.T) {
	head := plumbing.NewHash("1111111111111111111111111111111111111111")
	refs := []*plumbing.Reference{
		plumbing.NewSymbolicReference(plumbing.HEAD, "refs/heads/main"),
		plumbing.NewHashReference("refs/heads/main", head),
		plumbing.NewHashReference("refs/tags/v1.2.0", plumbing.NewHash("2222222222222222222222222222222222222222")),
		plumbing.NewHashReference("refs/tags/v1.10.0", plumbing.NewHash("3333333333333333333333333333333333333333")),
		plumbing.NewHashReference("refs/tags/v1.10.0^{}", plumbing.NewHash("4444444444444444444444444444444444444444")),
		plumbing.NewHashReference("refs/tags/v2.0.0-rc1", plumbing.NewHash("5555555555555555555555555555555555555555")),
		plumbing.NewHashReference("refs/tags/nightly", plumbing.NewHash("6666666666666666666666666666666666666666")),
	}

	rev, err := latestFromRefs(refs, false)
	require.NoError(t, err)
	assert.Equal(t, Revision{Tag: "v1.10.0", Hash: "4444444444444444444444444444444444444444"}, rev)

	rev, err = latestFromRefs(refs, true)
	require.NoError(t, err)
	assert.Equal(t, Revision{Hash: head.String()}, rev)

	rev, err = latestFromRefs(refs[:2], false)
	require.NoError(t, err)
	assert.Equal(t, head.String(), rev.Rev())

	_, err = latestFromRefs(nil, false)
	assert.Error(t, err)
}

func TestIsValidCommitHash(t *testing.T) {
	assert.True(t, isValidCommitHash("abc1234"))
	assert.True(t, isValidCommitHash("a1b2c3d4e5f6789012345678901234567890abcd"))
	assert.False(t, isValidCommitHash("v1.0.0"))
	assert.False(t, isValidCommitHash("abc"))
}
