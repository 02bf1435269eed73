// Package graph walks the child→parent edges declared by inherits references
// across an arbitrary set of loaded profiles. All traversals carry a visited
// set keyed by qualified name, so circular or repeated references terminate.
package graph

import (
	"github.com/slicekit/profilectl/internal/profile"
)

// DirectChildren returns the profiles whose inherits reference matches
// parentName under graduated matching.
func DirectChildren(profiles []*profile.Profile, parentName string) []*profile.Profile {
	var out []*profile.Profile
	for _, p := range profiles {
		if profile.InheritsFrom(p, parentName) {
			out = append(out, p)
		}
	}
	return out
}

// Descendants computes the breadth-first closure of DirectChildren starting
// from the seed names. Profiles reachable via multiple paths appear once, in
// first-discovery order.
func Descendants(profiles []*profile.Profile, seedNames []string) []*profile.Profile {
	visited := make(map[string]bool)
	queue := append([]string(nil), seedNames...)

	var out []*profile.Profile
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]

		for _, child := range DirectChildren(profiles, name) {
			qn := child.QualifiedName()
			if visited[qn] {
				continue
			}
			visited[qn] = true
			out = append(out, child)
			queue = append(queue, child.Name)
		}
	}
	return out
}

// FindParent resolves a profile's inherits reference against the loaded set,
// returning nil for roots and for references that match nothing. The first
// match in load order is canonical.
func FindParent(profiles []*profile.Profile, child *profile.Profile) *profile.Profile {
	ref := child.Inherits()
	if ref == "" {
		return nil
	}
	for _, candidate := range profiles {
		if candidate == child {
			continue
		}
		if profile.RefMatches(ref, candidate.Name) {
			return candidate
		}
	}
	return nil
}

// AncestorChain walks inherits upward one hop at a time, returning the
// ordered chain from the direct parent to the root. An unresolvable direct
// parent yields an empty chain; a cycle truncates the walk where it closes.
func AncestorChain(p *profile.Profile, profiles []*profile.Profile) []*profile.Profile {
	visited := map[string]bool{p.QualifiedName(): true}

	var chain []*profile.Profile
	current := p
	for {
		parent := FindParent(profiles, current)
		if parent == nil || visited[parent.QualifiedName()] {
			break
		}
		visited[parent.QualifiedName()] = true
		chain = append(chain, parent)
		current = parent
	}
	return chain
}
