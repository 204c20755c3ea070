// Package pattern compiles the Python-flavoured regular expressions used in
// pre-commit configuration (files, exclude, pygrep entries).
//
// Go's regexp package is RE2 and rejects lookarounds and backreferences that
// Python's re module accepts, so expressions are compiled with regexp2.
package pattern

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// MatchTimeout bounds a single match so a pathological expression cannot hang a run.
const MatchTimeout = 2 * time.Second

// Flags mirror the subset of Python re flags pre-commit exposes.
type Flags struct {
	IgnoreCase bool
	Multiline  bool
	// DotAll lets . match newlines (re.DOTALL).
	DotAll bool
}

type cacheKey struct {
	expr  string
	flags Flags
}

var cache sync.Map // cacheKey -> *regexp2.Regexp

// Compile compiles expr, reusing a previous compilation when possible.
func Compile(expr string) (*regexp2.Regexp, error) {
	return CompileWithFlags(expr, Flags{})
}

// CompileWithFlags compiles expr with the given flags.
func CompileWithFlags(expr string, flags Flags) (*regexp2.Regexp, error) {
	key := cacheKey{expr: expr, flags: flags}
	if re, ok := cache.Load(key); ok {
		return re.(*regexp2.Regexp), nil
	}

	opts := regexp2.None
	if flags.IgnoreCase {
		opts |= regexp2.IgnoreCase
	}
	if flags.Multiline {
		opts |= regexp2.Multiline
	}
	if flags.DotAll {
		opts |= regexp2.Singleline
	}

	re, err := regexp2.Compile(translate(expr), opts)
	if err != nil {
		return nil, fmt.Errorf("invalid regex %q: %w", expr, err)
	}
	re.MatchTimeout = MatchTimeout

	cache.Store(key, re)
	return re, nil
}

// Search reports whether expr matches anywhere in s, like Python's re.search.
func Search(expr, s string) (bool, error) {
	re, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return re.MatchString(s)
}

// MustSearch is Search for expressions already validated by the caller.
// An invalid expression or a timed-out match reports false.
func MustSearch(expr, s string) bool {
	matched, err := Search(expr, s)
	return err == nil && matched
}

// translate rewrites Python-only syntax into the .NET dialect regexp2 speaks:
// (?P<name>...) named groups, (?P=name) backreferences and the \Z anchor.
func translate(expr string) string {
	if !strings.Contains(expr, "(?P") && !strings.Contains(expr, `\Z`) {
		return expr
	}

	var b strings.Builder
	b.Grow(len(expr))

	for i := 0; i < len(expr); i++ {
		c := expr[i]

		if c == '\\' && i+1 < len(expr) {
			if expr[i+1] == 'Z' {
				b.WriteString(`\z`)
			} else {
				b.WriteByte(c)
				b.WriteByte(expr[i+1])
			}
			i++
			continue
		}

		if strings.HasPrefix(expr[i:], "(?P<") {
			b.WriteString("(?<")
			i += len("(?P<") - 1
			continue
		}

		if strings.HasPrefix(expr[i:], "(?P=") {
			end := strings.IndexByte(expr[i:], ')')
			if end > 0 {
				name := expr[i+len("(?P=") : i+end]
				b.WriteString(`\k<` + name + `>`)
				i += end
				continue
			}
		}

		b.WriteByte(c)
	}

	return b.String()
}
