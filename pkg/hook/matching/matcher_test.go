package matching

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookcfg/pkg/config"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestFilter(t *testing.T) {
	files := []string{"main.py", "pkg/util.py", "docs/index.md", "vendor/lib.py"}

	tests := []struct {
		name     string
		include  string
		exclude  string
		expected []string
	}{
		{name: "no patterns", expected: files},
		{name: "include", include: `\.py$`, expected: []string{"main.py", "pkg/util.py", "vendor/lib.py"}},
		{name: "search not match", include: `util`, expected: []string{"pkg/util.py"}},
		{name: "exclude", exclude: `^vendor/`, expected: []string{"main.py", "pkg/util.py", "docs/index.md"}},
		{name: "both", include: `\.py$`, exclude: `^(vendor|pkg)/`, expected: []string{"main.py"}},
		{name: "lookahead", include: `^(?!docs/).*`, expected: []string{"main.py", "pkg/util.py", "vendor/lib.py"}},
		{name: "nothing", include: `\.rs$`, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Filter(files, tt.include, tt.exclude))
		})
	}
}

func TestFilterRoot(t *testing.T) {
	cfg := &config.Config{ExcludeRegex: `^generated/`}
	assert.Equal(t, []string{"a.go"}, FilterRoot(cfg, []string{"a.go", "generated/b.go"}))
}

func TestAnyMatch(t *testing.T) {
	files := []string{"a.py", "b.md"}
	assert.True(t, AnyMatch(`\.md$`, files))
	assert.False(t, AnyMatch(`\.rs$`, files))
	assert.False(t, AnyMatch(`x`, nil))
}

func TestMatcher_FilesForHook(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"main.py":        "print('hi')\n",
		"test_main.py":   "def test(): pass\n",
		"README.md":      "# readme\n",
		"config.yaml":    "a: 1\n",
		"image.png":      "\x89PNG\r\n\x1a\n\x00\x00",
		"scripts/run.sh": "#!/bin/sh\necho hi\n",
	})
	files := []string{"main.py", "test_main.py", "README.md", "config.yaml", "image.png", "scripts/run.sh", "deleted.py"}
	m := NewMatcher(root)

	tests := []struct {
		name     string
		hook     config.Hook
		expected []string
	}{
		{
			name:     "default types skip missing files",
			hook:     config.Hook{ID: "all"},
			expected: []string{"main.py", "test_main.py", "README.md", "config.yaml", "image.png", "scripts/run.sh"},
		},
		{
			name:     "files pattern",
			hook:     config.Hook{ID: "py", Files: `\.py$`},
			expected: []string{"main.py", "test_main.py"},
		},
		{
			name:     "files and exclude",
			hook:     config.Hook{ID: "py", Files: `\.py$`, ExcludeRegex: `^test_`},
			expected: []string{"main.py"},
		},
		{
			name:     "types",
			hook:     config.Hook{ID: "py", Types: []string{"python"}},
			expected: []string{"main.py", "test_main.py"},
		},
		{
			name:     "types are anded",
			hook:     config.Hook{ID: "t", Types: []string{"text", "yaml"}},
			expected: []string{"config.yaml"},
		},
		{
			name:     "types_or",
			hook:     config.Hook{ID: "t", TypesOr: []string{"markdown", "yaml"}},
			expected: []string{"README.md", "config.yaml"},
		},
		{
			name:     "exclude_types",
			hook:     config.Hook{ID: "t", Types: []string{"file"}, ExcludeTypes: []string{"binary", "shell"}},
			expected: []string{"main.py", "test_main.py", "README.md", "config.yaml"},
		},
		{
			name:     "binary",
			hook:     config.Hook{ID: "t", Types: []string{"binary"}},
			expected: []string{"image.png"},
		},
		{
			name:     "unknown type matches nothing",
			hook:     config.Hook{ID: "t", Types: []string{"cobol"}},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.FilesForHook(tt.hook, files))
		})
	}
}
