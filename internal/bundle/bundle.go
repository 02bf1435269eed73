package bundle

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/slicekit/profilectl/internal/corpus"
	"github.com/slicekit/profilectl/internal/fileutil"
	"github.com/slicekit/profilectl/internal/profile"
	"github.com/slicekit/profilectl/internal/stanza"
)

// ErrNothingToBundle signals that the selection contains no internal
// profiles, so there is nothing to relocate.
var ErrNothingToBundle = errors.New("selection contains no internal profiles to bundle")

// Result reports what a bundle run touched. It replaces the hidden mutable
// counters the operation would otherwise accumulate, so callers and tests see
// the whole outcome in one value.
type Result struct {
	BundlePath        string   `json:"bundle_path"`
	ParentName        string   `json:"parent_name"`
	ProfilesMoved     int      `json:"profiles_moved"`
	ReferencesRewired int      `json:"references_rewired"`
	FilesRewritten    []string `json:"files_rewritten"`
	FilesDeleted      []string `json:"files_deleted"`
}

// LoadOrCreateBundleFile opens an existing bundle file or prepares a new one
// carrying the given vendor stanza.
func LoadOrCreateBundleFile(path string, typ profile.Type, vendor *stanza.VendorInfo) (*corpus.File, error) {
	if _, err := os.Stat(path); err == nil {
		return corpus.LoadFile(path, typ)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to inspect bundle file %s: %w", path, err)
	}
	return &corpus.File{Path: path, Vendor: vendor}, nil
}

// Bundle relocates the selection's internal profiles into the bundle file
// under privatized names, synthesizes a shared parent from their common
// properties, rewires every corpus-wide reference to a moved profile, and
// removes the moved profiles from their original files. Re-running with the
// same selection is idempotent: profiles already present in the bundle are
// not appended again, but stale originals are still cleaned up.
func Bundle(c *corpus.Corpus, bundleFile *corpus.File, selection []*profile.Profile, bundleName string) (*Result, error) {
	if bundleName == "" {
		return nil, errors.New("bundle requires a bundle name")
	}
	if bundleFile.Vendor != nil {
		if err := bundleFile.Vendor.Validate(); err != nil {
			slog.Warn("bundle vendor stanza is invalid", "path", bundleFile.Path, "error", err)
		}
	}

	internal, leaves := Classify(selection)
	if len(internal) == 0 {
		return nil, ErrNothingToBundle
	}
	slog.Debug("classified selection", "internal", len(internal), "leaves", len(leaves))

	// Factoring a synthetic parent out of the internal set needs siblings to
	// factor between. A lone internal profile is privatized and moved as-is,
	// keeping its own properties and parent link.
	synthesize := len(internal) >= 2
	var common map[string]string
	var hoistedInherits string
	if synthesize {
		common = CommonProperties(internal)
		hoistedInherits = sharedInherits(internal)
	}

	// Rename plan for every internal profile; already-privatized names pass
	// through unchanged.
	rewriteOrder := make([]string, 0, len(internal))
	rewrites := make(map[string]string, len(internal))
	for _, p := range internal {
		rewriteOrder = append(rewriteOrder, p.Name)
		rewrites[p.Name] = profile.Privatize(p.Name)
	}

	parentName := profile.Privatize(bundleName)
	var parent *profile.Profile
	if synthesize {
		parent = findByName(bundleFile.Profiles, parentName)
		if parent == nil {
			parent = profile.New(c.Type, parentName)
			parent.File = bundleFile.Path
			bundleFile.Profiles = append(bundleFile.Profiles, parent)
		}
		for key, val := range common {
			parent.Properties[key] = val
		}
		if hoistedInherits != "" {
			parent.SetInherits(hoistedInherits)
		}
	}

	result := &Result{
		BundlePath:     bundleFile.Path,
		FilesRewritten: []string{},
		FilesDeleted:   []string{},
	}
	if synthesize {
		result.ParentName = parentName
	}

	present := make(map[string]bool, len(bundleFile.Profiles))
	for _, p := range bundleFile.Profiles {
		present[p.QualifiedName()] = true
	}

	moved := make(map[string]bool, len(internal))
	for _, p := range internal {
		moved[p.QualifiedName()] = true

		clone := p.Clone()
		if synthesize {
			for key := range common {
				delete(clone.Properties, key)
			}
			delete(clone.Properties, profile.InheritsKey)
			clone.SetInherits(parentName)
		}
		clone.Name = rewrites[p.Name]
		clone.File = bundleFile.Path
		clone.Default = false

		if present[clone.QualifiedName()] {
			continue
		}
		present[clone.QualifiedName()] = true
		bundleFile.Profiles = append(bundleFile.Profiles, clone)
		result.ProfilesMoved++
	}

	// Resolve a reference against the whole rename plan. Graduated matches
	// across every entry win before the looser core-name fallback is
	// consulted, so an exact reference to one tagged sibling is never
	// captured by another sibling sharing its core name. The fallback still
	// catches children that name a tagged parent without its tags.
	rewriteTarget := func(ref string) (string, bool) {
		for _, origName := range rewriteOrder {
			if ref == rewrites[origName] {
				return "", false
			}
		}
		for _, origName := range rewriteOrder {
			if profile.RefMatches(ref, origName) {
				return rewrites[origName], true
			}
		}
		for _, origName := range rewriteOrder {
			if profile.CoreNameEquals(ref, origName) {
				return rewrites[origName], true
			}
		}
		return "", false
	}

	// Rewire references corpus-wide, bundle file included.
	dirty := make(map[string]*corpus.File)
	rewire := func(f *corpus.File) {
		for _, q := range f.Profiles {
			if moved[q.QualifiedName()] && q.File != bundleFile.Path {
				continue
			}
			if q == parent && hoistedInherits != "" {
				continue
			}
			ref := q.Inherits()
			if ref == "" {
				continue
			}
			if privName, ok := rewriteTarget(ref); ok {
				q.SetInherits(privName)
				result.ReferencesRewired++
				dirty[f.Path] = f
			}
		}
	}
	for _, f := range c.Files {
		rewire(f)
	}
	rewire(bundleFile)

	// Remove relocated profiles from their original files.
	for _, f := range c.Files {
		if f.Path == bundleFile.Path {
			continue
		}
		if f.Remove(moved) == 0 {
			continue
		}
		if f.Empty() {
			delete(dirty, f.Path)
			if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
				slog.Warn("failed to delete emptied profile file", "path", f.Path, "error", err)
				continue
			}
			result.FilesDeleted = append(result.FilesDeleted, f.Path)
			continue
		}
		dirty[f.Path] = f
	}

	if _, err := bundleFile.Write(); err != nil {
		return nil, fmt.Errorf("failed to write bundle file %s: %w", bundleFile.Path, err)
	}

	for _, path := range fileutil.MapKeysSorted(pathSet(dirty)) {
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

func findByName(profiles []*profile.Profile, name string) *profile.Profile {
	for _, p := range profiles {
		if p.Name == name {
			return p
		}
	}
	return nil
}
