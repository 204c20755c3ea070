// Package pygrep implements the pygrep hook language: the entry is a
// regular expression searched for in each file, and any match fails the
// hook (or any file without a match, with --negate).
package pygrep

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"github.com/jessevdk/go-flags"

	"github.com/blairham/hookcfg/pkg/pattern"
)

// Options are the flags a pygrep hook accepts in args.
type Options struct {
	IgnoreCase bool `short:"i" long:"ignore-case" description:"Match case-insensitively"`
	Multiline  bool `long:"multiline" description:"Search whole files; . matches newlines"`
	Negate     bool `long:"negate" description:"Fail files that do not match"`
}

// ParseArgs reads pygrep options from hook args. Positional arguments are
// rejected.
func ParseArgs(args []string) (Options, error) {
	var opts Options
	rest, err := flags.NewParser(&opts, flags.PassDoubleDash).ParseArgs(args)
	if err != nil {
		return Options{}, fmt.Errorf("pygrep: %w", err)
	}
	if len(rest) > 0 {
		return Options{}, fmt.Errorf("pygrep: unexpected arguments: %s", strings.Join(rest, " "))
	}
	return opts, nil
}

// Grep searches files (relative to root) for expr and writes findings to
// out in grep format. It reports whether the hook failed.
func Grep(out io.Writer, expr string, opts Options, root string, files []string) (bool, error) {
	re, err := pattern.CompileWithFlags(expr, pattern.Flags{
		IgnoreCase: opts.IgnoreCase,
		Multiline:  opts.Multiline,
		DotAll:     opts.Multiline,
	})
	if err != nil {
		return false, err
	}

	s := &searcher{out: out, re: re}
	failed := false
	for _, file := range files {
		content, err := os.ReadFile(filepath.Join(root, file)) // #nosec G304 -- files come from the git index
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return failed, fmt.Errorf("pygrep: %w", err)
		}

		var fileFailed bool
		switch {
		case opts.Multiline && opts.Negate:
			fileFailed, err = s.wholeNegated(file, content)
		case opts.Multiline:
			fileFailed, err = s.whole(file, content)
		case opts.Negate:
			fileFailed, err = s.linesNegated(file, content)
		default:
			fileFailed, err = s.lines(file, content)
		}
		if err != nil {
			return failed, fmt.Errorf("pygrep: %s: %w", file, err)
		}
		failed = failed || fileFailed
	}
	return failed, nil
}

type searcher struct {
	out io.Writer
	re  *regexp2.Regexp
}

// first returns the byte offset and text of the first match in text.
func (s *searcher) first(text string) (int, string, bool, error) {
	m, err := s.re.FindStringMatch(text)
	if err != nil || m == nil {
		return 0, "", false, err
	}
	return byteOffset(text, m.Index), m.String(), true, nil
}

// byteOffset converts a rune index reported by regexp2 into a byte offset
// of text. regexp2 decodes each invalid byte as one U+FFFD rune, as
// utf8.DecodeRuneInString does.
func byteOffset(text string, runes int) int {
	offset := 0
	for ; runes > 0 && offset < len(text); runes-- {
		_, size := utf8.DecodeRuneInString(text[offset:])
		offset += size
	}
	return offset
}

func (s *searcher) lines(file string, content []byte) (bool, error) {
	failed := false
	r := bufio.NewReader(bytes.NewReader(content))
	for lineNo := 1; ; lineNo++ {
		line, readErr := r.ReadString('\n')
		if line != "" {
			matched, err := s.re.MatchString(line)
			if err != nil {
				return failed, err
			}
			if matched {
				failed = true
				fmt.Fprintf(s.out, "%s:%d:%s\n", file, lineNo, strings.TrimRight(line, "\r\n"))
			}
		}
		if readErr != nil {
			return failed, nil
		}
	}
}

func (s *searcher) linesNegated(file string, content []byte) (bool, error) {
	r := bufio.NewReader(bytes.NewReader(content))
	for {
		line, readErr := r.ReadString('\n')
		if line != "" {
			matched, err := s.re.MatchString(line)
			if err != nil {
				return false, err
			}
			if matched {
				return false, nil
			}
		}
		if readErr != nil {
			break
		}
	}
	fmt.Fprintln(s.out, file)
	return true, nil
}

func (s *searcher) whole(file string, content []byte) (bool, error) {
	text := string(content)
	start, matched, ok, err := s.first(text)
	if err != nil || !ok {
		return false, err
	}

	lineNo := strings.Count(text[:start], "\n")
	matchedLines := strings.Split(matched, "\n")
	matchedLines[0] = strings.Split(text, "\n")[lineNo]

	fmt.Fprintf(s.out, "%s:%d:%s\n", file, lineNo+1, strings.Join(matchedLines, "\n"))
	return true, nil
}

func (s *searcher) wholeNegated(file string, content []byte) (bool, error) {
	matched, err := s.re.MatchString(string(content))
	if err != nil || matched {
		return false, err
	}
	fmt.Fprintln(s.out, file)
	return true, nil
}
