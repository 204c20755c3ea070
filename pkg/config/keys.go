package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	configKeys = yamlKeys(reflect.TypeFor[Config]())
	repoKeys   = yamlKeys(reflect.TypeFor[Repo]())
	hookKeys   = yamlKeys(reflect.TypeFor[Hook]())
)

// yamlKeys lists the yaml keys a struct type decodes.
func yamlKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		keys[name] = true
	}
	return keys
}

// unknownKeyWarnings walks the document and reports keys hookcfg ignores,
// mirroring pre-commit's "Unexpected key(s) present" warnings.
func unknownKeyWarnings(doc *yaml.Node) []string {
	var warnings []string

	warnings = appendUnknown(warnings, doc, configKeys, "at root")

	repos := mappingValue(doc, "repos")
	if repos == nil || repos.Kind != yaml.SequenceNode {
		return warnings
	}

	for _, repo := range repos.Content {
		repoName := scalarValue(mappingValue(repo, "repo"))
		warnings = appendUnknown(warnings, repo, repoKeys, fmt.Sprintf("on repo `%s`", repoName))

		hooks := mappingValue(repo, "hooks")
		if hooks == nil || hooks.Kind != yaml.SequenceNode {
			continue
		}
		for _, hook := range hooks.Content {
			hookID := scalarValue(mappingValue(hook, "id"))
			warnings = appendUnknown(warnings, hook, hookKeys,
				fmt.Sprintf("on hook `%s` in repo `%s`", hookID, repoName))
		}
	}

	return warnings
}

func appendUnknown(warnings []string, m *yaml.Node, known map[string]bool, where string) []string {
	if m == nil || m.Kind != yaml.MappingNode {
		return warnings
	}

	var unknown []string
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := m.Content[i].Value
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return warnings
	}

	sort.Strings(unknown)
	return append(warnings, fmt.Sprintf("Unexpected key(s) present %s: %s", where, strings.Join(unknown, ", ")))
}

func scalarValue(n *yaml.Node) string {
	if n == nil || n.Kind != yaml.ScalarNode {
		return ""
	}
	return n.Value
}
