package pygrep

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupFiles(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"a.py":     "import os\nimport pdb; pdb.set_trace()\nprint('ok')\r\n",
		"b.py":     "x = 1\n",
		"c.py":     "def f():\n    return (\n        1\n    )\n",
		"upper.py": "IMPORT PDB\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}
	return root
}

func TestParseArgs(t *testing.T) {
	opts, err := ParseArgs([]string{"--ignore-case", "--negate"})
	require.NoError(t, err)
	assert.Equal(t, Options{IgnoreCase: true, Negate: true}, opts)

	opts, err = ParseArgs([]string{"-i", "--multiline"})
	require.NoError(t, err)
	assert.Equal(t, Options{IgnoreCase: true, Multiline: true}, opts)

	_, err = ParseArgs([]string{"--bogus"})
	assert.Error(t, err)

	_, err = ParseArgs([]string{"stray"})
	assert.Error(t, err)
}

func TestGrep(t *testing.T) {
	root := setupFiles(t)
	files := []string{"a.py", "b.py", "c.py", "upper.py", "gone.py"}

	tests := []struct {
		name     string
		expr     string
		opts     Options
		failed   bool
		expected string
	}{
		{
			name:     "line match",
			expr:     `pdb\.set_trace\(\)`,
			failed:   true,
			expected: "a.py:2:import pdb; pdb.set_trace()\n",
		},
		{
			name:     "trailing carriage return stripped",
			expr:     `print`,
			failed:   true,
			expected: "a.py:3:print('ok')\n",
		},
		{
			name:     "ignore case",
			expr:     `import pdb`,
			opts:     Options{IgnoreCase: true},
			failed:   true,
			expected: "a.py:2:import pdb; pdb.set_trace()\nupper.py:1:IMPORT PDB\n",
		},
		{
			name: "no match",
			expr: `breakpoint\(\)`,
		},
		{
			name:     "negate",
			expr:     `^import`,
			opts:     Options{Negate: true},
			failed:   true,
			expected: "b.py\nc.py\nupper.py\n",
		},
		{
			name:     "multiline",
			expr:     `return \(\n\s+1`,
			opts:     Options{Multiline: true},
			failed:   true,
			expected: "c.py:2:    return (\n        1\n",
		},
		{
			name:     "multiline dot matches newline",
			expr:     `os.import`,
			opts:     Options{Multiline: true},
			failed:   true,
			expected: "a.py:1:import os\nimport\n",
		},
		{
			name:     "multiline negate",
			expr:     `^x = `,
			opts:     Options{Multiline: true, Negate: true},
			failed:   true,
			expected: "a.py\nc.py\nupper.py\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			failed, err := Grep(&out, tt.expr, tt.opts, root, files)
			require.NoError(t, err)
			assert.Equal(t, tt.failed, failed)
			assert.Equal(t, tt.expected, out.String())
		})
	}
}

func TestGrepInvalidPattern(t *testing.T) {
	_, err := Grep(&bytes.Buffer{}, "(", Options{}, t.TempDir(), nil)
	assert.Error(t, err)
}

func TestGrepMultilineInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "latin1.txt"), []byte("caf\xe9\n\xe9\xe9\xe9\xe9X\n"), 0o644))

	var out bytes.Buffer
	failed, err := Grep(&out, "X", Options{Multiline: true}, root, []string{"latin1.txt"})
	require.NoError(t, err)
	assert.True(t, failed)
	assert.Equal(t, "latin1.txt:2:\xe9\xe9\xe9\xe9X\n", out.String())
}

func TestByteOffset(t *testing.T) {
	assert.Equal(t, 0, byteOffset("abc", 0))
	assert.Equal(t, 2, byteOffset("abc", 2))
	assert.Equal(t, 3, byteOffset("héllo", 2))
	assert.Equal(t, 5, byteOffset("caf\xe9 X", 5))
	assert.Equal(t, 3, byteOffset("abc", 10))
}
