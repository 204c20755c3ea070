// Package diagnostics extracts file/line findings from linter output so that
// failing hooks can be summarised.
package diagnostics

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Severities
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityNote    = "note"
)

// Diagnostic is one finding reported by a tool.
type Diagnostic struct {
	File     string
	Severity string
	Message  string
	Code     string
	Line     int
	Column   int
}

func (d Diagnostic) String() string {
	loc := d.File + ":" + strconv.Itoa(d.Line)
	if d.Column > 0 {
		loc += ":" + strconv.Itoa(d.Column)
	}
	s := fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
	if d.Code != "" {
		s += "  [" + d.Code + "]"
	}
	return s
}

var (
	// mypy: path.py:12: error: Incompatible return value type  [return-value]
	severityLine = regexp.MustCompile(
		`^([^:\s][^:]*):(\d+)(?::(\d+))?: (error|warning|note): (.+?)(?:  \[([\w-]+)\])?$`)
	// flake8, ruff, pylint --output-format=parseable: path.py:3:1: F401 'os' imported but unused
	codeLine = regexp.MustCompile(`^([^:\s][^:]*):(\d+):(\d+): ([A-Z]+[0-9]+) (.+)$`)
)

// Parse scans tool output line by line. Lines in neither format are ignored.
func Parse(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(line, "\r")
		if d, ok := parseLine(line); ok {
			diags = append(diags, d)
		}
	}
	return diags
}

func parseLine(line string) (Diagnostic, bool) {
	if m := severityLine.FindStringSubmatch(line); m != nil {
		return Diagnostic{
			File:     m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Severity: m[4],
			Message:  m[5],
			Code:     m[6],
		}, true
	}

	if m := codeLine.FindStringSubmatch(line); m != nil {
		severity := SeverityError
		if strings.HasPrefix(m[4], "W") {
			severity = SeverityWarning
		}
		return Diagnostic{
			File:     m[1],
			Line:     atoi(m[2]),
			Column:   atoi(m[3]),
			Severity: severity,
			Message:  m[5],
			Code:     m[4],
		}, true
	}

	return Diagnostic{}, false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Summary counts diagnostics.
type Summary struct {
	ByCode   map[string]int
	Files    int
	Errors   int
	Warnings int
}

// Summarize counts errors and warnings, the files they touch and each code.
// Notes are not counted.
func Summarize(diags []Diagnostic) Summary {
	s := Summary{ByCode: make(map[string]int)}
	files := make(map[string]bool)

	for _, d := range diags {
		switch d.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		default:
			continue
		}
		files[d.File] = true
		if d.Code != "" {
			s.ByCode[d.Code]++
		}
	}

	s.Files = len(files)
	return s
}

// Empty reports whether nothing was counted.
func (s Summary) Empty() bool {
	return s.Errors == 0 && s.Warnings == 0
}

// String renders "2 errors, 1 warning in 2 files (arg-type: 2, W291: 1)".
// Codes are ordered by count, then name.
func (s Summary) String() string {
	var parts []string
	if s.Errors > 0 {
		parts = append(parts, plural(s.Errors, "error"))
	}
	if s.Warnings > 0 {
		parts = append(parts, plural(s.Warnings, "warning"))
	}
	if len(parts) == 0 {
		return "no diagnostics"
	}

	out := strings.Join(parts, ", ") + " in " + plural(s.Files, "file")

	if len(s.ByCode) > 0 {
		codes := make([]string, 0, len(s.ByCode))
		for code := range s.ByCode {
			codes = append(codes, code)
		}
		sort.Slice(codes, func(i, j int) bool {
			if s.ByCode[codes[i]] != s.ByCode[codes[j]] {
				return s.ByCode[codes[i]] > s.ByCode[codes[j]]
			}
			return codes[i] < codes[j]
		})

		counts := make([]string, 0, len(codes))
		for _, code := range codes {
			counts = append(counts, fmt.Sprintf("%s: %d", code, s.ByCode[code]))
		}
		out += " (" + strings.Join(counts, ", ") + ")"
	}
	return out
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
