package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a repository with one commit holding a.txt and
// b.txt.
func setupTestRepo(t *testing.T) *Repository {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	writeFile(t, dir, "a.txt", "a\n")
	writeFile(t, dir, "b.txt", "b\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	repo, err := NewRepository(dir)
	require.NoError(t, err)
	return repo
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %s: %s", strings.Join(args, " "), out)
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestFindGitRoot(t *testing.T) {
	repo := setupTestRepo(t)
	sub := filepath.Join(repo.Root, "nested", "dir")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	root, err := FindGitRoot(sub)
	require.NoError(t, err)
	assert.Equal(t, repo.Root, root)

	_, err = FindGitRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrNotRepository)
}

func TestFindGitRootWithGitFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".git", "gitdir: ../elsewhere/.git\n")

	root, err := FindGitRoot(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestRepository_Files(t *testing.T) {
	repo := setupTestRepo(t)

	writeFile(t, repo.Root, "c.txt", "c\n")
	writeFile(t, repo.Root, "a.txt", "a changed\n")
	writeFile(t, repo.Root, "untracked.txt", "u\n")
	runGit(t, repo.Root, "add", "c.txt", "a.txt")

	staged, err := repo.StagedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "c.txt"}, staged)

	all, err := repo.AllFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, all)
}

func TestRepository_ChangedFiles(t *testing.T) {
	repo := setupTestRepo(t)
	from := runGit(t, repo.Root, "rev-parse", "HEAD")

	writeFile(t, repo.Root, "b.txt", "b changed\n")
	writeFile(t, repo.Root, "d.txt", "d\n")
	runGit(t, repo.Root, "rm", "-q", "a.txt")
	runGit(t, repo.Root, "add", ".")
	runGit(t, repo.Root, "commit", "-q", "-m", "second")

	files, err := repo.ChangedFiles(from, "HEAD")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt", "d.txt"}, files)

	_, err = repo.ChangedFiles("does-not-exist", "HEAD")
	assert.Error(t, err)
}

func TestRepository_HasUnstagedChangesForFile(t *testing.T) {
	repo := setupTestRepo(t)
	assert.False(t, repo.HasUnstagedChangesForFile("a.txt"))

	writeFile(t, repo.Root, "a.txt", "edited\n")
	assert.True(t, repo.HasUnstagedChangesForFile("a.txt"))

	runGit(t, repo.Root, "add", "a.txt")
	assert.False(t, repo.HasUnstagedChangesForFile("a.txt"))
}

func TestRepository_UnmergedFiles(t *testing.T) {
	repo := setupTestRepo(t)
	files, err := repo.UnmergedFiles()
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.False(t, repo.IsMerging())
}

func TestRepository_Diff(t *testing.T) {
	repo := setupTestRepo(t)
	writeFile(t, repo.Root, "a.txt", "a\nmore\n")

	diff, err := repo.Diff(context.Background(), false)
	require.NoError(t, err)
	assert.Contains(t, diff, "+more")
	assert.NotContains(t, diff, "\x1b[")
}
