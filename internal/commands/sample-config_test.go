package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/constants"
)

func TestSampleConfigCommand_Help(t *testing.T) {
	cmd := &SampleConfigCommand{}
	assert.Contains(t, cmd.Help(), "--write")
	assert.NotEmpty(t, cmd.Synopsis())
}

func TestSampleConfigCommand_Stdout(t *testing.T) {
	t.Chdir(t.TempDir())
	streams, out, _ := testStreams()

	require.Equal(t, constants.ExitOK, (&SampleConfigCommand{Streams: streams}).Run(nil))
	assert.Equal(t, config.SampleConfig, out.String())
	assert.NoFileExists(t, constants.ConfigFileName)

	cfg, err := config.Parse(out.Bytes())
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
}

func TestSampleConfigCommand_Write(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	streams, out, _ := testStreams()
	require.Equal(t, constants.ExitOK, (&SampleConfigCommand{Streams: streams}).Run([]string{"--write"}))
	assert.Equal(t, "Wrote .pre-commit-config.yaml\n", out.String())
	assert.Equal(t, config.SampleConfig, readFile(t, dir, constants.ConfigFileName))

	writeFile(t, dir, constants.ConfigFileName, "repos: []\n")
	streams, _, errOut := testStreams()
	assert.Equal(t, constants.ExitFailure, (&SampleConfigCommand{Streams: streams}).Run([]string{"-w"}))
	assert.Contains(t, errOut.String(), "already exists")
	assert.Equal(t, "repos: []\n", readFile(t, dir, constants.ConfigFileName))

	streams, _, _ = testStreams()
	require.Equal(t, constants.ExitOK, (&SampleConfigCommand{Streams: streams}).Run([]string{"-w", "--force"}))
	assert.Equal(t, config.SampleConfig, readFile(t, dir, constants.ConfigFileName))
}
