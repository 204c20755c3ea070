package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookcfg/pkg/constants"
)

func TestUninstallCommand_Help(t *testing.T) {
	cmd := &UninstallCommand{}
	assert.Contains(t, cmd.Help(), "--hook-type")
	assert.NotEmpty(t, cmd.Synopsis())
}

func TestUninstallCommand_Run(t *testing.T) {
	dir := setupTestRepo(t)
	streams, _, _ := testStreams()
	require.Equal(t, constants.ExitOK, (&InstallCommand{Streams: streams}).Run(nil))

	streams, out, _ := testStreams()
	require.Equal(t, constants.ExitOK, (&UninstallCommand{Streams: streams}).Run(nil))
	assert.Equal(t, "pre-commit uninstalled\n", out.String())
	assert.NoFileExists(t, filepath.Join(dir, ".git", "hooks", "pre-commit"))

	// Nothing left to remove.
	streams, out, _ = testStreams()
	require.Equal(t, constants.ExitOK, (&UninstallCommand{Streams: streams}).Run(nil))
	assert.Empty(t, out.String())
}

func TestUninstallCommand_RestoresLegacyHook(t *testing.T) {
	dir := setupTestRepo(t)
	writeFile(t, dir, ".git/hooks/pre-commit", "#!/bin/sh\necho legacy\n")
	streams, _, _ := testStreams()
	require.Equal(t, constants.ExitOK, (&InstallCommand{Streams: streams}).Run(nil))

	streams, out, _ := testStreams()
	require.Equal(t, constants.ExitOK, (&UninstallCommand{Streams: streams}).Run(nil))
	assert.Contains(t, out.String(), "pre-commit uninstalled\n")
	assert.Contains(t, out.String(), "Restored previous hooks to pre-commit\n")
	assert.Equal(t, "#!/bin/sh\necho legacy\n", readFile(t, dir, ".git/hooks/pre-commit"))
}

func TestUninstallCommand_LeavesForeignHook(t *testing.T) {
	dir := setupTestRepo(t)
	writeFile(t, dir, ".git/hooks/pre-commit", "#!/bin/sh\necho mine\n")
	streams, out, _ := testStreams()

	require.Equal(t, constants.ExitOK, (&UninstallCommand{Streams: streams}).Run(nil))
	assert.Empty(t, out.String())
	assert.FileExists(t, filepath.Join(dir, ".git", "hooks", "pre-commit"))
}
