package commands

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookcfg/pkg/config"
)

func TestBuilder_Argv(t *testing.T) {
	builder := NewBuilder("/work/project")

	tests := []struct {
		name     string
		hook     config.Hook
		hookPath string
		expected []string
	}{
		{
			name:     "system entry with args",
			hook:     config.Hook{Entry: "mypy", Language: "system", Args: []string{"--strict"}},
			expected: []string{"mypy", "--strict"},
		},
		{
			name:     "quoted entry",
			hook:     config.Hook{Entry: `sh -c 'echo "$@" | wc -l' --`, Language: "system"},
			expected: []string{"sh", "-c", `echo "$@" | wc -l`, "--"},
		},
		{
			name:     "managed language runs entry as is",
			hook:     config.Hook{Entry: "python -m mypy", Language: "python", Args: []string{"--no-color"}},
			expected: []string{"python", "-m", "mypy", "--no-color"},
		},
		{
			name:     "local script resolves against the project",
			hook:     config.Hook{Entry: "scripts/check.sh --fast", Language: "script"},
			expected: []string{filepath.Join("/work/project", "scripts/check.sh"), "--fast"},
		},
		{
			name:     "remote script resolves against the hook checkout",
			hook:     config.Hook{Entry: "bin/run", Language: "unsupported_script"},
			hookPath: "/cache/repo-abc",
			expected: []string{filepath.Join("/cache/repo-abc", "bin/run")},
		},
		{
			name:     "absolute script",
			hook:     config.Hook{Entry: "/usr/local/bin/thing", Language: "script"},
			expected: []string{"/usr/local/bin/thing"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := builder.Argv(tt.hook, tt.hookPath)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, argv)
		})
	}
}

func TestBuilder_ArgvDockerImage(t *testing.T) {
	builder := NewBuilder("/work/project")

	argv, err := builder.Argv(config.Hook{Entry: "koalaman/shellcheck:v0.9 --color", Language: "docker_image"}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"docker", "run", "--rm"}, argv[:3])
	assert.Contains(t, argv, "/work/project:/src:rw,Z")
	assert.Equal(t, []string{"koalaman/shellcheck:v0.9", "--color"}, argv[len(argv)-2:])
}

func TestBuilder_ArgvErrors(t *testing.T) {
	builder := NewBuilder("")

	_, err := builder.Argv(config.Hook{Entry: "   "}, "")
	assert.ErrorIs(t, err, ErrEmptyEntry)

	_, err = builder.Argv(config.Hook{Entry: `echo "unterminated`}, "")
	assert.Error(t, err)
}

func TestBuilder_Command(t *testing.T) {
	builder := NewBuilder("/work/project")

	cmd := builder.Command(context.Background(), []string{"echo", "-n"}, []string{"a.go", "b.go"})
	assert.Equal(t, []string{"echo", "-n", "a.go", "b.go"}, cmd.Args)
	assert.Equal(t, "/work/project", cmd.Dir)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, LanguageSystem, Normalize(""))
	assert.Equal(t, LanguageSystem, Normalize("unsupported"))
	assert.Equal(t, LanguageScript, Normalize("unsupported_script"))
	assert.Equal(t, "golang", Normalize("golang"))

	assert.True(t, InProcess("fail"))
	assert.True(t, InProcess("pygrep"))
	assert.False(t, InProcess("system"))
}
