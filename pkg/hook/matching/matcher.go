// Package matching selects the files each hook runs against
package matching

import (
	"slices"
	"sync"

	"github.com/blairham/hookcfg/pkg/config"
	"github.com/blairham/hookcfg/pkg/logging"
	"github.com/blairham/hookcfg/pkg/pattern"
)

var logger = logging.NewLogger("matching")

// defaultTypes applies when a hook leaves types unset.
var defaultTypes = []string{TagFile}

// Matcher handles file filtering and type matching. Paths are interpreted
// relative to root; tags are computed once per path.
type Matcher struct {
	root string
	tags sync.Map // path -> map[string]bool
}

// NewMatcher creates a matcher for files under root ("" for the working
// directory).
func NewMatcher(root string) *Matcher {
	return &Matcher{root: root}
}

// Filter keeps the files that search-match include (when set) and do not
// search-match exclude (when set).
func Filter(files []string, include, exclude string) []string {
	var out []string
	for _, file := range files {
		if include != "" && !pattern.MustSearch(include, file) {
			continue
		}
		if exclude != "" && pattern.MustSearch(exclude, file) {
			continue
		}
		out = append(out, file)
	}
	return out
}

// FilterRoot applies the top-level files and exclude patterns.
func FilterRoot(cfg *config.Config, files []string) []string {
	return Filter(files, cfg.Files, cfg.ExcludeRegex)
}

// AnyMatch reports whether expr search-matches at least one file.
func AnyMatch(expr string, files []string) bool {
	return slices.ContainsFunc(files, func(file string) bool {
		return pattern.MustSearch(expr, file)
	})
}

// FilesForHook returns the files a hook runs against: those passing the
// hook's files/exclude patterns and then its types, types_or and
// exclude_types filters. Root filtering is the caller's job.
func (m *Matcher) FilesForHook(hook config.Hook, files []string) []string {
	candidates := Filter(files, hook.Files, hook.ExcludeRegex)

	types := hook.Types
	if len(types) == 0 {
		types = defaultTypes
	}

	var out []string
	for _, file := range candidates {
		if m.MatchesTypes(file, types, hook.TypesOr, hook.ExcludeTypes) {
			out = append(out, file)
		}
	}

	logger.WithField("hook", hook.ID).Debugf("%d of %d files selected", len(out), len(files))
	return out
}

// MatchesTypes applies the tag filters: every tag in types, at least one
// tag in typesOr (when set) and no tag in excludeTypes.
func (m *Matcher) MatchesTypes(file string, types, typesOr, excludeTypes []string) bool {
	tags := m.Tags(file)
	for _, tag := range types {
		if !tags[tag] {
			return false
		}
	}
	if len(typesOr) > 0 && !slices.ContainsFunc(typesOr, func(tag string) bool { return tags[tag] }) {
		return false
	}
	return !slices.ContainsFunc(excludeTypes, func(tag string) bool { return tags[tag] })
}

// Tags returns the tags identifying file. Missing files have no tags.
func (m *Matcher) Tags(file string) map[string]bool {
	if cached, ok := m.tags.Load(file); ok {
		return cached.(map[string]bool)
	}
	tags := tagsFromPath(m.root, file)
	m.tags.Store(file, tags)
	return tags
}
