// Package clean removes properties whose value is already supplied by an
// ancestor, walking each profile's inheritance chain transitively.
package clean

import (
	"log/slog"

	"github.com/slicekit/profilectl/internal/bundle"
	"github.com/slicekit/profilectl/internal/corpus"
	"github.com/slicekit/profilectl/internal/fileutil"
	"github.com/slicekit/profilectl/internal/graph"
	"github.com/slicekit/profilectl/internal/profile"
)

// InheritedClosure merges the property mappings of a profile's ancestor
// chain, nearest ancestor winning, without the profile's own properties. The
// inherits pointers themselves are not part of the closure.
func InheritedClosure(p *profile.Profile, all []*profile.Profile) map[string]string {
	visited := map[string]bool{p.QualifiedName(): true}
	return closure(p, all, visited)
}

func closure(p *profile.Profile, all []*profile.Profile, visited map[string]bool) map[string]string {
	parent := graph.FindParent(all, p)
	if parent == nil || visited[parent.QualifiedName()] {
		return make(map[string]string)
	}
	visited[parent.QualifiedName()] = true

	// Grandparents first, then the parent's own values overlay them.
	merged := closure(parent, all, visited)
	for key, val := range parent.Properties {
		if key == profile.InheritsKey {
			continue
		}
		merged[key] = val
	}
	return merged
}

// CleanProfile strips every property whose value the profile would inherit
// anyway, returning the removed keys. The inherits key is always preserved.
func CleanProfile(p *profile.Profile, all []*profile.Profile) []string {
	inherited := InheritedClosure(p, all)

	var removed []string
	for key, val := range p.Properties {
		if key == profile.InheritsKey {
			continue
		}
		if implied, ok := inherited[key]; ok && implied == val {
			removed = append(removed, key)
		}
	}
	for _, key := range removed {
		delete(p.Properties, key)
	}
	return removed
}

// Result reports what a clean run touched.
type Result struct {
	ProfilesCleaned   int      `json:"profiles_cleaned"`
	PropertiesRemoved int      `json:"properties_removed"`
	PropertiesHoisted int      `json:"properties_hoisted"`
	FilesRewritten    []string `json:"files_rewritten"`
}

// Run cleans every profile in the corpus and, when a bundle file is given,
// additionally re-hoists properties that turn out to be common across all
// children of a synthesized bundle parent. The second pass is bundle-only;
// plain combined parents are left alone.
func Run(c *corpus.Corpus, bundleFile *corpus.File) (*Result, error) {
	// The bundle file usually lives under the profile directory, so the
	// corpus walk loads it too. Keep only the explicit bundleFile object,
	// otherwise every bundle profile appears twice and phantom siblings
	// defeat the re-hoist child threshold.
	files := make([]*corpus.File, 0, len(c.Files)+1)
	for _, f := range c.Files {
		if bundleFile != nil && f.Path == bundleFile.Path {
			continue
		}
		files = append(files, f)
	}
	if bundleFile != nil {
		files = append(files, bundleFile)
	}

	var all []*profile.Profile
	for _, f := range files {
		all = append(all, f.Profiles...)
	}

	result := &Result{FilesRewritten: []string{}}
	dirty := make(map[string]*corpus.File)

	for _, f := range files {
		for _, p := range f.Profiles {
			removed := CleanProfile(p, all)
			if len(removed) == 0 {
				continue
			}
			result.ProfilesCleaned++
			result.PropertiesRemoved += len(removed)
			dirty[f.Path] = f
			slog.Debug("cleaned profile", "profile", p.QualifiedName(), "removed", len(removed))
		}
	}

	if bundleFile != nil {
		result.PropertiesHoisted = rehoist(bundleFile, all, dirty, c)
	}

	for _, path := range fileutil.MapKeysSorted(filePathSet(dirty)) {
		wrote, err := dirty[path].Write()
		if err != nil {
			slog.Warn("failed to rewrite profile file", "path", path, "error", err)
			continue
		}
		if wrote {
			result.FilesRewritten = append(result.FilesRewritten, path)
		}
	}
	return result, nil
}

// rehoist moves properties still common across every child of a privatized
// bundle parent up into that parent, beyond what bundling hoisted initially.
func rehoist(bundleFile *corpus.File, all []*profile.Profile, dirty map[string]*corpus.File, c *corpus.Corpus) int {
	hoisted := 0
	for _, parent := range bundleFile.Profiles {
		if !parent.IsPrivate() {
			continue
		}
		children := graph.DirectChildren(all, parent.Name)
		if len(children) < 2 {
			continue
		}

		for key, val := range bundle.CommonProperties(children) {
			if existing, ok := parent.Properties[key]; ok && existing == val {
				continue
			}
			parent.Properties[key] = val
			for _, child := range children {
				delete(child.Properties, key)
				if f := fileFor(child, c, bundleFile); f != nil {
					dirty[f.Path] = f
				}
			}
			dirty[bundleFile.Path] = bundleFile
			hoisted++
		}
	}
	return hoisted
}

func fileFor(p *profile.Profile, c *corpus.Corpus, bundleFile *corpus.File) *corpus.File {
	if bundleFile != nil && p.File == bundleFile.Path {
		return bundleFile
	}
	return c.FileOf(p)
}

func filePathSet(files map[string]*corpus.File) map[string]bool {
	out := make(map[string]bool, len(files))
	for path := range files {
		out[path] = true
	}
	return out
}
