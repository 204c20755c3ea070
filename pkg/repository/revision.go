package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/hashicorp/go-version"
)

// Revision is an update target for a repo pin.
type Revision struct {
	// Tag is the tag name, empty when updating to a bare commit.
	Tag string
	// Hash is the commit the revision points at.
	Hash string
}

// Rev returns the value to write into a config rev field.
func (r Revision) Rev() string {
	if r.Tag != "" {
		return r.Tag
	}
	return r.Hash
}

// LatestRevision lists the remote's refs and returns the newest release tag
// by version ordering. With bleedingEdge, or when the remote has no
// version-like tags, it returns the commit at HEAD.
func LatestRevision(ctx context.Context, url string, bleedingEdge bool) (Revision, error) {
	remote := git.NewRemote(memory.NewStorage(), &gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	refs, err := remote.ListContext(ctx, &git.ListOptions{PeelingOption: git.AppendPeeled})
	if err != nil {
		return Revision{}, fmt.Errorf("failed to list refs of %s: %w", url, err)
	}
	return latestFromRefs(refs, bleedingEdge)
}

func latestFromRefs(refs []*plumbing.Reference, bleedingEdge bool) (Revision, error) {
	byName := make(map[plumbing.ReferenceName]*plumbing.Reference, len(refs))
	peeled := make(map[string]string)
	for _, ref := range refs {
		name := ref.Name().String()
		if tag, ok := strings.CutSuffix(name, "^{}"); ok {
			peeled[tag] = ref.Hash().String()
			continue
		}
		byName[ref.Name()] = ref
	}

	if !bleedingEdge {
		if rev, ok := newestTag(byName, peeled); ok {
			return rev, nil
		}
	}

	head, ok := byName[plumbing.HEAD]
	if !ok {
		return Revision{}, errors.New("remote has no HEAD")
	}
	if head.Type() == plumbing.SymbolicReference {
		target, ok := byName[head.Target()]
		if !ok {
			return Revision{}, fmt.Errorf("remote HEAD points at missing %s", head.Target())
		}
		head = target
	}
	return Revision{Hash: head.Hash().String()}, nil
}

type taggedVersion struct {
	name    string
	version *version.Version
	hash    string
}

// newestTag picks the highest version tag, ignoring pre-releases unless
// nothing else is tagged.
func newestTag(refs map[plumbing.ReferenceName]*plumbing.Reference, peeled map[string]string) (Revision, bool) {
	var releases, prereleases []taggedVersion
	for name, ref := range refs {
		if !name.IsTag() {
			continue
		}
		v, err := version.NewVersion(name.Short())
		if err != nil {
			continue
		}
		hash := ref.Hash().String()
		if commit, ok := peeled[name.String()]; ok {
			hash = commit
		}
		tv := taggedVersion{name: name.Short(), version: v, hash: hash}
		if v.Prerelease() != "" {
			prereleases = append(prereleases, tv)
		} else {
			releases = append(releases, tv)
		}
	}

	candidates := releases
	if len(candidates) == 0 {
		candidates = prereleases
	}
	if len(candidates) == 0 {
		return Revision{}, false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if c := candidates[i].version.Compare(candidates[j].version); c != 0 {
			return c > 0
		}
		// v1.0 and 1.0 compare equal; prefer the longer spelling.
		return len(candidates[i].name) > len(candidates[j].name)
	})
	best := candidates[0]
	return Revision{Tag: best.name, Hash: best.hash}, true
}
