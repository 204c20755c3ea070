package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/blairham/hookcfg/pkg/constants"
)

// ManifestFileName is the hook manifest published by hook repositories
const ManifestFileName = constants.ManifestFileName

// LoadManifest reads and parses a .pre-commit-hooks.yaml file.
func LoadManifest(path string) ([]Hook, error) {
	if path == "" {
		path = ManifestFileName
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-selected manifest
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	hooks, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return hooks, nil
}

// ParseManifest decodes manifest content: a list of hook definitions.
func ParseManifest(data []byte) ([]Hook, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, errors.New("manifest is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	doc := documentBody(&root)
	if doc == nil {
		return nil, errors.New("manifest is empty")
	}
	if doc.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("manifest must be a list of hooks, got %s", nodeKindName(doc.Kind))
	}

	var hooks []Hook
	if err := doc.Decode(&hooks); err != nil {
		return nil, fmt.Errorf("invalid manifest structure: %w", err)
	}
	return hooks, nil
}

// ValidateManifest checks that every hook carries the fields a manifest must
// define and that its patterns and stages are valid.
func ValidateManifest(hooks []Hook) error {
	v := &validator{}

	if len(hooks) == 0 {
		v.addf("", "manifest defines no hooks")
	}

	seen := make(map[string]int, len(hooks))
	for i, hook := range hooks {
		path := fmt.Sprintf("[%d]", i)
		v.checkHook(path, hook)

		if hook.Name == "" {
			v.addf(path+".name", "manifest hooks require a name")
		}
		if hook.Entry == "" {
			v.addf(path+".entry", "manifest hooks require an entry")
		}
		if hook.Language == "" {
			v.addf(path+".language", "manifest hooks require a language")
		}

		if hook.ID != "" {
			if first, dup := seen[hook.ID]; dup {
				v.addf(path+".id", "duplicate hook id %q (first defined at [%d])", hook.ID, first)
			} else {
				seen[hook.ID] = i
			}
		}
	}

	return v.err()
}

// FindManifestHook returns the manifest definition with the given id.
func FindManifestHook(hooks []Hook, id string) (Hook, bool) {
	for _, hook := range hooks {
		if hook.ID == id {
			return hook, true
		}
	}
	return Hook{}, false
}
