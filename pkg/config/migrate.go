package config

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Migrate rewrites legacy configuration content to the current format:
//
//   - a top-level list of repos becomes a repos: mapping
//   - sha: becomes rev:
//   - language: python_venv becomes python
//   - legacy stage names (commit, push, merge-commit) get their pre- prefix
//
// Comments survive the rewrite. The returned flag reports whether anything
// changed; when it is false the input is returned unmodified.
func Migrate(data []byte) ([]byte, bool, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, false, fmt.Errorf("invalid YAML: %w", err)
	}

	doc := documentBody(&root)
	if doc == nil {
		return nil, false, errors.New("config is empty")
	}

	m := &migration{}
	if doc.Kind == yaml.SequenceNode {
		doc = m.wrapRepos(&root, doc)
	}
	if doc.Kind != yaml.MappingNode {
		return nil, false, fmt.Errorf("config must be a mapping, got %s", nodeKindName(doc.Kind))
	}

	m.stageList(mappingValue(doc, "default_stages"))
	if repos := mappingValue(doc, "repos"); repos != nil && repos.Kind == yaml.SequenceNode {
		for _, repo := range repos.Content {
			m.repo(repo)
		}
	}

	if !m.changed {
		return data, false, nil
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&root); err != nil {
		return nil, false, fmt.Errorf("failed to encode migrated config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, false, fmt.Errorf("failed to encode migrated config: %w", err)
	}
	return buf.Bytes(), true, nil
}

type migration struct {
	changed bool
}

func (m *migration) wrapRepos(root, list *yaml.Node) *yaml.Node {
	mapping := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "repos"},
			list,
		},
	}
	mapping.HeadComment, list.HeadComment = list.HeadComment, ""

	if root.Kind == yaml.DocumentNode {
		root.Content[0] = mapping
	} else {
		*root = *mapping
	}
	m.changed = true
	return mapping
}

func (m *migration) repo(repo *yaml.Node) {
	if repo.Kind != yaml.MappingNode {
		return
	}

	if mappingValue(repo, "rev") == nil {
		for i := 0; i+1 < len(repo.Content); i += 2 {
			if repo.Content[i].Value == "sha" {
				repo.Content[i].Value = "rev"
				m.changed = true
			}
		}
	}

	hooks := mappingValue(repo, "hooks")
	if hooks == nil || hooks.Kind != yaml.SequenceNode {
		return
	}
	for _, hook := range hooks.Content {
		if language := mappingValue(hook, "language"); language != nil && language.Kind == yaml.ScalarNode {
			if current, ok := legacyLanguages[language.Value]; ok {
				language.Value = current
				m.changed = true
			}
		}
		m.stageList(mappingValue(hook, "stages"))
	}
}

func (m *migration) stageList(stages *yaml.Node) {
	if stages == nil || stages.Kind != yaml.SequenceNode {
		return
	}
	for _, stage := range stages.Content {
		if stage.Kind != yaml.ScalarNode {
			continue
		}
		if current := NormalizeStage(stage.Value); current != stage.Value {
			stage.Value = current
			m.changed = true
		}
	}
}
