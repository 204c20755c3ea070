package matching

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blairham/hookcfg/pkg/config"
)

func TestTags(t *testing.T) {
	root := writeFiles(t, map[string]string{
		"app.py":     "import os\n",
		"Dockerfile": "FROM scratch\n",
		"data.bin":   "\x00\x01\x02",
		"notes":      "plain words\n",
	})
	m := NewMatcher(root)

	tests := []struct {
		file    string
		want    []string
		notWant []string
	}{
		{file: "app.py", want: []string{"file", "text", "python", "non-executable"}, notWant: []string{"binary", "executable"}},
		{file: "Dockerfile", want: []string{"file", "text", "dockerfile"}},
		{file: "data.bin", want: []string{"file", "binary"}, notWant: []string{"text"}},
		{file: "notes", want: []string{"file", "text"}},
		{file: "missing.txt", notWant: []string{"file", "text"}},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			tags := m.Tags(tt.file)
			for _, tag := range tt.want {
				assert.True(t, tags[tag], "expected tag %s", tag)
			}
			for _, tag := range tt.notWant {
				assert.False(t, tags[tag], "unexpected tag %s", tag)
			}
		})
	}
}

func TestTagsExecutableShebang(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("executable bits are not tracked on windows")
	}

	root := t.TempDir()
	path := filepath.Join(root, "tool")
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env -S python3 -u\nprint(1)\n"), 0o755))

	tags := NewMatcher(root).Tags("tool")
	assert.True(t, tags[TagExecutable])
	assert.True(t, tags["python"])
	assert.True(t, tags["python3"])
	assert.False(t, tags[TagNonExecutable])
}

func TestTagsSymlinkAndDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	root := writeFiles(t, map[string]string{"target.txt": "x\n"})
	require.NoError(t, os.Symlink("target.txt", filepath.Join(root, "link")))
	require.NoError(t, os.Mkdir(filepath.Join(root, "sub"), 0o755))

	m := NewMatcher(root)
	assert.Equal(t, map[string]bool{TagSymlink: true}, m.Tags("link"))
	assert.Equal(t, map[string]bool{TagDirectory: true}, m.Tags("sub"))

	// symlinks are skipped unless a hook asks for them
	assert.Empty(t, m.FilesForHook(config.Hook{ID: "any"}, []string{"link", "sub"}))
	assert.Equal(t, []string{"link"}, m.FilesForHook(config.Hook{ID: "links", Types: []string{TagSymlink}}, []string{"link", "sub"}))
	assert.True(t, m.MatchesTypes("link", nil, nil, nil))
}

func TestTagsFromShebang(t *testing.T) {
	tests := []struct {
		head string
		want []string
	}{
		{"#!/bin/bash\n", []string{"shell", "bash"}},
		{"#!/usr/bin/env node\n", []string{"javascript"}},
		{"#!/usr/bin/env\n", nil},
		{"#!\n", nil},
		{"echo no shebang\n", nil},
		{"#!/opt/custom/thing\n", nil},
	}
	for _, tt := range tests {
		t.Run(tt.head, func(t *testing.T) {
			assert.Equal(t, tt.want, tagsFromShebang([]byte(tt.head)))
		})
	}
}

func TestIsText(t *testing.T) {
	assert.True(t, isText([]byte("hello\tworld\r\n")))
	assert.True(t, isText([]byte("caf\xc3\xa9")))
	assert.True(t, isText(nil))
	assert.False(t, isText([]byte("a\x00b")))
	assert.False(t, isText([]byte{0x7f}))
}
