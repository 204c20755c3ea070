package matching

import (
	"bufio"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Filesystem tags
const (
	TagFile          = "file"
	TagDirectory     = "directory"
	TagSymlink       = "symlink"
	TagExecutable    = "executable"
	TagNonExecutable = "non-executable"
	TagText          = "text"
	TagBinary        = "binary"
)

// sniffSize is how much of a file is read to tell text from binary.
const sniffSize = 1024

// extensionTags maps a lower-cased extension to its tags.
var extensionTags = invert(map[string][]string{
	"bash":       {".bash"},
	"c":          {".c", ".h"},
	"c++":        {".cpp", ".cc", ".cxx", ".hpp", ".hxx", ".hh"},
	"clojure":    {".clj", ".cljs", ".cljc"},
	"csharp":     {".cs"},
	"css":        {".css"},
	"dart":       {".dart"},
	"elixir":     {".ex", ".exs"},
	"erlang":     {".erl", ".hrl"},
	"go":         {".go"},
	"haskell":    {".hs", ".lhs"},
	"html":       {".html", ".htm", ".xhtml"},
	"ini":        {".ini", ".cfg"},
	"java":       {".java"},
	"javascript": {".js", ".mjs", ".cjs"},
	"jsx":        {".jsx"},
	"json":       {".json"},
	"julia":      {".jl"},
	"kotlin":     {".kt", ".kts"},
	"less":       {".less"},
	"lua":        {".lua"},
	"markdown":   {".md", ".markdown", ".mdown", ".mkd"},
	"perl":       {".pl", ".pm"},
	"php":        {".php", ".phtml"},
	"powershell": {".ps1", ".psm1", ".psd1"},
	"pyi":        {".pyi"},
	"python":     {".py", ".pyi", ".pyx"},
	"r":          {".r"},
	"rst":        {".rst"},
	"ruby":       {".rb"},
	"rust":       {".rs"},
	"sass":       {".sass"},
	"scala":      {".scala", ".sc"},
	"scss":       {".scss"},
	"shell":      {".sh", ".bash", ".zsh", ".fish"},
	"sql":        {".sql"},
	"svg":        {".svg"},
	"swift":      {".swift"},
	"toml":       {".toml"},
	"ts":         {".ts"},
	"tsx":        {".tsx"},
	"vue":        {".vue"},
	"xml":        {".xml", ".xsd", ".xsl", ".svg"},
	"yaml":       {".yaml", ".yml"},
	"zsh":        {".zsh"},
})

// nameTags maps well-known file names without a telling extension.
var nameTags = map[string][]string{
	"Dockerfile":    {"dockerfile"},
	"Makefile":      {"makefile"},
	"GNUmakefile":   {"makefile"},
	"makefile":      {"makefile"},
	"Gemfile":       {"ruby"},
	"Rakefile":      {"ruby"},
	"Pipfile":       {"toml"},
	".bashrc":       {"bash", "shell"},
	".zshrc":        {"zsh", "shell"},
	".gitignore":    {"gitignore"},
	".gitmodules":   {"gitmodules"},
	".editorconfig": {"editorconfig"},
}

// interpreterTags maps a shebang interpreter to its tags.
var interpreterTags = map[string][]string{
	"ash":     {"shell", "ash"},
	"bash":    {"shell", "bash"},
	"node":    {"javascript"},
	"perl":    {"perl"},
	"python":  {"python"},
	"python2": {"python", "python2"},
	"python3": {"python", "python3"},
	"ruby":    {"ruby"},
	"sh":      {"shell", "sh"},
	"zsh":     {"shell", "zsh"},
}

func invert(byTag map[string][]string) map[string][]string {
	out := make(map[string][]string)
	for tag, exts := range byTag {
		for _, ext := range exts {
			out[ext] = append(out[ext], tag)
		}
	}
	return out
}

func tagsFromPath(root, file string) map[string]bool {
	path := filepath.Join(root, file)

	info, err := os.Lstat(path)
	if err != nil {
		return map[string]bool{}
	}

	switch mode := info.Mode(); {
	case mode&fs.ModeSymlink != 0:
		return map[string]bool{TagSymlink: true}
	case mode.IsDir():
		return map[string]bool{TagDirectory: true}
	case !mode.IsRegular():
		return map[string]bool{}
	}

	tags := map[string]bool{TagFile: true}
	executable := info.Mode().Perm()&0o111 != 0
	if executable {
		tags[TagExecutable] = true
	} else {
		tags[TagNonExecutable] = true
	}

	for _, tag := range tagsFromFilename(filepath.Base(file)) {
		tags[tag] = true
	}

	head := readHead(path)
	if executable {
		for _, tag := range tagsFromShebang(head) {
			tags[tag] = true
		}
	}
	if isText(head) {
		tags[TagText] = true
	} else {
		tags[TagBinary] = true
	}

	return tags
}

func tagsFromFilename(name string) []string {
	if tags, ok := nameTags[name]; ok {
		return tags
	}
	return extensionTags[strings.ToLower(filepath.Ext(name))]
}

func readHead(path string) []byte {
	f, err := os.Open(path) // #nosec G304 -- path comes from the git index
	if err != nil {
		return nil
	}
	defer f.Close()

	head, _ := io.ReadAll(io.LimitReader(f, sniffSize))
	return head
}

// tagsFromShebang reads "#!/usr/bin/env python3 -u" style first lines.
func tagsFromShebang(head []byte) []string {
	if !bytes.HasPrefix(head, []byte("#!")) {
		return nil
	}

	line, _, _ := bufio.NewReader(bytes.NewReader(head[2:])).ReadLine()
	fields := strings.Fields(string(line))
	if len(fields) == 0 {
		return nil
	}

	interpreter := filepath.Base(fields[0])
	if interpreter == "env" {
		args := fields[1:]
		for len(args) > 0 && strings.HasPrefix(args[0], "-") {
			args = args[1:]
		}
		if len(args) == 0 {
			return nil
		}
		interpreter = args[0]
	}
	return interpreterTags[interpreter]
}

// isText treats content as text unless it holds control bytes other than
// the usual whitespace and escape characters.
func isText(head []byte) bool {
	for _, b := range head {
		switch {
		case b >= 0x20 && b != 0x7f:
		case b >= 7 && b <= 13, b == 27:
		default:
			return false
		}
	}
	return true
}
