package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// RevUpdate is a new pin for one entry of repos.
type RevUpdate struct {
	Rev string
	// Frozen is the tag a commit hash stands for. It is recorded in a
	// "# frozen: <tag>" comment after the rev.
	Frozen string
}

var revValuePattern = regexp.MustCompile(`^(['"]?)([^\s#'",}\]]*)(['"]?)(.*)$`)

// UpdateRevs rewrites the rev of the repos at the given indexes. Only the
// rev lines change: comments, quoting and layout elsewhere are kept. A
// stale "# frozen:" comment is dropped when the new rev is not frozen.
func UpdateRevs(data []byte, updates map[int]RevUpdate) ([]byte, error) {
	if len(updates) == 0 {
		return data, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	repos := mappingValue(documentBody(&root), "repos")
	if repos == nil || repos.Kind != yaml.SequenceNode {
		return nil, errors.New("config has no repos list")
	}

	lines := strings.Split(string(data), "\n")
	for index, update := range updates {
		if index < 0 || index >= len(repos.Content) {
			return nil, fmt.Errorf("repos[%d] does not exist", index)
		}
		rev := mappingValue(repos.Content[index], "rev")
		if rev == nil || rev.Kind != yaml.ScalarNode || rev.Line < 1 || rev.Line > len(lines) {
			return nil, fmt.Errorf("repos[%d] has no rev to update", index)
		}
		lines[rev.Line-1] = replaceRev(lines[rev.Line-1], rev.Column, update)
	}
	out := []byte(strings.Join(lines, "\n"))
	if err := yaml.Unmarshal(out, &yaml.Node{}); err != nil {
		return nil, fmt.Errorf("rewritten config is invalid YAML: %w", err)
	}
	return out, nil
}

func replaceRev(line string, column int, update RevUpdate) string {
	line, cr := strings.CutSuffix(line, "\r")
	runes := []rune(line)
	if column < 1 || column > len(runes) {
		return line
	}
	prefix, value := string(runes[:column-1]), string(runes[column-1:])

	m := revValuePattern.FindStringSubmatch(value)
	quote, rest := m[1], m[4]

	// In a flow mapping the rest of the line holds more entries; only a
	// trailing frozen comment is replaced there.
	if trimmed := strings.TrimSpace(rest); trimmed == "" || strings.HasPrefix(trimmed, "#") {
		if update.Frozen != "" || strings.HasPrefix(trimmed, "# frozen:") {
			rest = ""
		}
	} else if i := strings.LastIndex(rest, "# frozen:"); i >= 0 {
		rest = strings.TrimRight(rest[:i], " \t")
	}
	if update.Frozen != "" {
		rest += "  # frozen: " + update.Frozen
	}

	out := prefix + quote + update.Rev + quote + rest
	if cr {
		out += "\r"
	}
	return out
}
