package commands

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookcfg/pkg/constants"
	"github.com/blairham/hookcfg/pkg/git"
)

const localConfig = `repos:
-   repo: local
    hooks:
    -   id: no-todo
        name: No TODO
        entry: TODO
        language: pygrep
        files: \.txt$
`

// testStreams returns streams writing to buffers.
func testStreams() (Streams, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return Streams{Out: &out, Err: &errOut}, &out, &errOut
}

// setupTestRepo creates a repository with one commit holding README.txt,
// makes it the working directory and points the cache at a temporary
// directory.
func setupTestRepo(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("hook scripts require bash")
	}
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	dir := t.TempDir()
	// Resolve symlinked temp dirs so paths compare equal to git's.
	dir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	runGit(t, dir, "init", "-q")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	writeFile(t, dir, "README.txt", "hello\n")
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-q", "-m", "initial")

	t.Chdir(dir)
	t.Setenv("PRE_COMMIT_HOME", t.TempDir())
	t.Setenv(constants.EnvColor, "never")
	return dir
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

func TestParseArgs(t *testing.T) {
	var opts RunOptions

	remaining, err := runHelp.ParseArgs(&opts, []string{"--all-files", "lint", "-v"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lint"}, remaining)
	assert.True(t, opts.AllFiles)
	assert.True(t, opts.Verbose)
	assert.Equal(t, constants.ConfigFileName, opts.Config)

	_, err = runHelp.ParseArgs(&RunOptions{}, []string{"--no-such-flag"})
	require.Error(t, err)
	assert.Equal(t, constants.ExitFailure, parseExit(err))

	assert.Equal(t, constants.ExitOK, parseExit(errHelpShown))
}

func TestGenerateHelp(t *testing.T) {
	help := runHelp.GenerateHelp(&RunOptions{})
	assert.Contains(t, help, "Run hooks.")
	assert.Contains(t, help, "Examples:")
	assert.Contains(t, help, "hookcfg run --all-files")
	assert.Contains(t, help, "--hook-stage")
	assert.Contains(t, help, "hookcfg run [OPTIONS] [HOOK...]")
}

func TestStreamsMessages(t *testing.T) {
	streams, out, errOut := testStreams()

	assert.Equal(t, constants.ExitFailure, streams.fail(errors.New("bad input")))
	assert.Equal(t, constants.ExitUnexpected, streams.unexpected(errors.New("boom")))
	streams.warnf("careful")
	streams.printf("done\n")

	assert.Equal(t, "done\n", out.String())
	assert.Equal(t,
		"Error: bad input\nAn unexpected error has occurred: boom\n[WARNING] careful\n",
		errOut.String())
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	streams, _, errOut := testStreams()

	_, err := streams.loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "is not a file")

	writeFile(t, dir, "bad.yaml", "repos: [")
	_, err = streams.loadConfig(filepath.Join(dir, "bad.yaml"))
	assert.ErrorContains(t, err, "invalid config")

	writeFile(t, dir, "ok.yaml", localConfig)
	cfg, err := streams.loadConfig(filepath.Join(dir, "ok.yaml"))
	require.NoError(t, err)
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, "no-todo", cfg.Repos[0].Hooks[0].ID)
	assert.Empty(t, errOut.String())
}

func TestRequireGitRepository(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := requireGitRepository()
	if err == nil {
		t.Skip("temp dir is inside a git repository")
	}
	assert.NotErrorIs(t, err, git.ErrNotRepository)
	assert.Contains(t, err.Error(), "are you in a Git repository directory?")
}

func TestRelativeTo(t *testing.T) {
	root := t.TempDir()

	assert.Equal(t, "a/b.txt", relativeTo(root, filepath.Join(root, "a", "b.txt")))
	outside := filepath.Join(filepath.Dir(root), "elsewhere.txt")
	assert.Equal(t, filepath.ToSlash(outside), relativeTo(root, outside))

	// "..foo" is a file name, not a parent reference.
	assert.Equal(t, "..foo", relativeTo(root, filepath.Join(root, "..foo")))
}

func TestResolveHookTypes(t *testing.T) {
	types, err := resolveHookTypes(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{hookTypePreCommit}, types)

	types, err = resolveHookTypes(nil, []string{hookTypePrePush})
	require.NoError(t, err)
	assert.Equal(t, []string{hookTypePrePush}, types)

	types, err = resolveHookTypes([]string{hookTypeCommitMsg}, []string{hookTypePrePush})
	require.NoError(t, err)
	assert.Equal(t, []string{hookTypeCommitMsg}, types)

	_, err = resolveHookTypes([]string{"pre-auto-gc"}, nil)
	assert.ErrorContains(t, err, "unsupported hook type")
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, ".pre-commit-config.yaml", shellQuote(".pre-commit-config.yaml"))
	assert.Equal(t, "'my config.yaml'", shellQuote("my config.yaml"))
	assert.Equal(t, `'it'"'"'s'`, shellQuote("it's"))
	assert.Equal(t, "'$HOME'", shellQuote("$HOME"))
}

func TestHookScript(t *testing.T) {
	script := hookScript("cfg dir/.pre-commit-config.yaml", hookTypePrePush, "/usr/local/bin/hookcfg", true)

	assert.True(t, strings.HasPrefix(script, "#!/usr/bin/env bash\n"))
	assert.Contains(t, script, git.HookMarker)
	assert.Contains(t, script,
		"ARGS=(hook-impl --config='cfg dir/.pre-commit-config.yaml' --hook-type=pre-push --skip-on-missing-config)")
	assert.Contains(t, script, "INSTALLED=/usr/local/bin/hookcfg\n")
	assert.Contains(t, script, `--hook-dir "$HERE" -- "$@"`)

	plain := hookScript(".pre-commit-config.yaml", hookTypePreCommit, "", false)
	assert.NotContains(t, plain, "--skip-on-missing-config")
	assert.Contains(t, plain, "INSTALLED=''\n")
}
