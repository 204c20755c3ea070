package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
)

const legacyConfig = `# old style
-   repo: https://github.com/pre-commit/pre-commit-hooks
    sha: v1.0.0
    hooks:
    -   id: trailing-whitespace
        stages: [commit]
`

func TestMigrateConfigCommand_Help(t *testing.T) {
	cmd := &MigrateConfigCommand{}
	assert.Contains(t, cmd.Help(), "--config")
	assert.NotEmpty(t, cmd.Synopsis())
}

func TestMigrateConfigCommand_Run(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(legacyConfig), 0o600))

	streams, out, errOut := testStreams()
	code := (&MigrateConfigCommand{Streams: streams}).Run([]string{"-c", path})
	require.Equal(t, constants.ExitOK, code, errOut.String())
	assert.Equal(t, "Configuration has been migrated.\n", out.String())

	data := readFile(t, dir, "cfg.yaml")
	assert.Contains(t, data, "# old style")
	cfg, err := config.Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, cfg.Repos, 1)
	assert.Equal(t, "v1.0.0", cfg.Repos[0].Rev)
	assert.Equal(t, []string{"pre-commit"}, cfg.Repos[0].Hooks[0].Stages)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	streams, out, _ = testStreams()
	require.Equal(t, constants.ExitOK, (&MigrateConfigCommand{Streams: streams}).Run([]string{"-c", path}))
	assert.Equal(t, "Configuration is already migrated.\n", out.String())
}

func TestMigrateConfigCommand_MissingFile(t *testing.T) {
	streams, _, errOut := testStreams()
	code := (&MigrateConfigCommand{Streams: streams}).Run([]string{"-c", filepath.Join(t.TempDir(), "none.yaml")})
	assert.Equal(t, constants.ExitFailure, code)
	assert.NotEmpty(t, errOut.String())
}
