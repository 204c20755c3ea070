package config

import (
	"regexp"
	"sort"
)

// Meta hook ids
const (
	MetaCheckHooksApply      = "check-hooks-apply"
	MetaCheckUselessExcludes = "check-useless-excludes"
	MetaIdentity             = "identity"
)

var configFilePattern = "^" + regexp.QuoteMeta(ConfigFileName) + "$"

// metaHooks are the definitions of hooks implemented by hookcfg itself.
var metaHooks = map[string]Hook{
	MetaCheckHooksApply: {
		ID:       MetaCheckHooksApply,
		Name:     "Check hooks apply to the repository",
		Language: "system",
		Entry:    MetaCheckHooksApply,
		Files:    configFilePattern,
	},
	MetaCheckUselessExcludes: {
		ID:       MetaCheckUselessExcludes,
		Name:     "Check for useless excludes",
		Language: "system",
		Entry:    MetaCheckUselessExcludes,
		Files:    configFilePattern,
	},
	MetaIdentity: {
		ID:       MetaIdentity,
		Name:     "identity",
		Language: "system",
		Entry:    MetaIdentity,
		Verbose:  true,
	},
}

// MetaHook returns the built-in definition for a meta hook id.
func MetaHook(id string) (Hook, bool) {
	hook, ok := metaHooks[id]
	return hook, ok
}

// MetaHookIDs lists the meta hook ids in sorted order.
func MetaHookIDs() []string {
	ids := make([]string, 0, len(metaHooks))
	for id := range metaHooks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
